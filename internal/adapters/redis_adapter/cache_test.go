package redis_a_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/storefront-inventory/internal/adapters/redis_adapter"
	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/test/helpers"
)

func newCache(t *testing.T) (*redis_a.Cache, *helpers.TestRedis) {
	t.Helper()
	r := helpers.SetupTestRedis(t)
	return redis_a.NewCache(r.Client, 5*time.Minute, helpers.TestLogger()), r
}

func TestCache_SetAndGet_Variants(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	in := []*domain.Variant{
		helpers.CreateTestVariant(),
		helpers.CreateTestVariant(func(v *domain.Variant) {
			v.Size = "L"
			v.VariantKey = "P1|RED|L"
			v.SKU = "P1-RED-L"
			v.InventoryCount = 0
		}),
	}

	require.NoError(t, cache.SetWithTTL(ctx, "inv:variants:P1:0", in, 0))

	var out []*domain.Variant
	require.NoError(t, cache.Get(ctx, "inv:variants:P1:0", &out))
	require.Len(t, out, 2)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, "P1-RED-L", out[1].SKU)
	assert.Equal(t, 0, out[1].InventoryCount)
}

func TestCache_MissAndExpiry(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	var s string
	err := cache.Get(ctx, "absent", &s)
	assert.True(t, errors.Is(err, ports.ErrCacheMiss))

	require.NoError(t, cache.SetWithTTL(ctx, "default:test", "value", 0))
	assert.Equal(t, 5*time.Minute, r.Server.TTL("default:test"))

	require.NoError(t, cache.SetWithTTL(ctx, "ttl:test", "value", 100*time.Millisecond))
	require.NoError(t, cache.Get(ctx, "ttl:test", &s))
	assert.Equal(t, "value", s)

	r.Server.FastForward(200 * time.Millisecond)

	err = cache.Get(ctx, "ttl:test", &s)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_UndecodableValueIsAMiss(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	require.NoError(t, r.Server.Set("inv:variants:P9", "{not json"))

	var out []*domain.Variant
	err := cache.Get(ctx, "inv:variants:P9", &out)

	assert.ErrorIs(t, err, ports.ErrCacheMiss)
	assert.False(t, r.Server.Exists("inv:variants:P9"))
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	keys := []string{"inv:variants:P1", "dash:inventory"}
	for _, key := range keys {
		require.NoError(t, cache.SetWithTTL(ctx, key, "value", time.Minute))
	}

	require.NoError(t, cache.Delete(ctx, keys...))

	for _, key := range keys {
		var result string
		assert.ErrorIs(t, cache.Get(ctx, key, &result), redis_a.ErrCacheMiss)
	}
	assert.NoError(t, cache.Delete(ctx))
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	fetchCount := 0
	fetch := func() (interface{}, error) {
		fetchCount++
		return &domain.InventorySummary{TotalVariants: 3, TotalUnits: 42}, nil
	}

	var first domain.InventorySummary
	require.NoError(t, cache.GetOrSet(ctx, "dash:inventory", &first, fetch, time.Minute))
	assert.Equal(t, int64(42), first.TotalUnits)
	assert.Equal(t, 1, fetchCount)

	var second domain.InventorySummary
	require.NoError(t, cache.GetOrSet(ctx, "dash:inventory", &second, fetch, time.Minute))
	assert.Equal(t, int64(3), second.TotalVariants)
	assert.Equal(t, 1, fetchCount)

	var failed domain.InventorySummary
	err := cache.GetOrSet(ctx, "dash:other", &failed, func() (interface{}, error) {
		return nil, errors.New("db down")
	}, time.Minute)
	assert.ErrorContains(t, err, "db down")
}

func TestCache_Increment(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	val, err := cache.Increment(ctx, "inv:variants-gen:P1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)

	val, err = cache.Increment(ctx, "inv:variants-gen:P1", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), val)
	assert.Equal(t, 2*time.Hour, r.Server.TTL("inv:variants-gen:P1"))

	var generation int64
	require.NoError(t, cache.Get(ctx, "inv:variants-gen:P1", &generation))
	assert.Equal(t, int64(2), generation)

	r.Server.FastForward(3 * time.Hour)
	assert.ErrorIs(t, cache.Get(ctx, "inv:variants-gen:P1", &generation), ports.ErrCacheMiss)
}

func TestCache_IncrementOnNonCounterFails(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "dash:inventory", map[string]int{"units": 1}, time.Minute))

	_, err := cache.Increment(ctx, "dash:inventory", time.Minute)
	assert.ErrorContains(t, err, "redis incr error")
}

func TestCache_BuildKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   redis_a.CacheKeyPrefix
		parts    []string
		expected string
	}{
		{name: "variants", prefix: redis_a.PrefixInventory, parts: []string{"variants", "P1"}, expected: "inv:variants:P1"},
		{name: "dashboard", prefix: redis_a.PrefixDashboard, parts: []string{"inventory"}, expected: "dash:inventory"},
		{name: "idempotency", prefix: redis_a.PrefixIdempotency, parts: []string{"order-1"}, expected: "inv:idem:order-1"},
		{name: "no_parts", prefix: redis_a.PrefixImport, parts: nil, expected: "inv:import"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, redis_a.BuildKey(tt.prefix, tt.parts...))
		})
	}
}

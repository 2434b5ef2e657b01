// internal/core/services/variants_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/storefront-inventory/internal/adapters/redis_adapter"
	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/internal/core/services"
	"github.com/ammerola/storefront-inventory/test/helpers"
	"github.com/ammerola/storefront-inventory/test/mocks"
)

func TestInventoryService_CreateVariants(t *testing.T) {
	tests := []struct {
		name        string
		cmd         domain.CreateVariantsCommand
		opts        func(*services.Options)
		setupMocks  func(f *fixture)
		wantKind    domain.ErrorKind
		wantCreated int
	}{
		{
			name: "creates_full_matrix_with_case_insensitive_dedup",
			cmd: domain.CreateVariantsCommand{
				ProductID:    "P1",
				Colors:       []string{"Red", "red", "Blue"},
				Sizes:        []string{"S", "M"},
				InitialCount: 4,
			},
			setupMocks: func(f *fixture) {
				f.variants.EXPECT().
					InsertMissing(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, vs []*domain.Variant) ([]*domain.Variant, error) {
						require.Len(t, vs, 4)
						keys := make([]string, len(vs))
						for i, v := range vs {
							keys[i] = v.VariantKey
							assert.Equal(t, 4, v.InventoryCount)
							assert.Equal(t, 4, v.InitialCount)
							assert.Equal(t, 7, v.LowStockThreshold)
						}
						assert.Equal(t, []string{"P1|RED|S", "P1|RED|M", "P1|BLUE|S", "P1|BLUE|M"}, keys)
						return vs, nil
					})
				f.expectInvalidate("P1")
			},
			wantCreated: 4,
		},
		{
			name: "repeat_call_creates_nothing",
			cmd: domain.CreateVariantsCommand{
				ProductID: "P1",
				Colors:    []string{"Red"},
				Sizes:     []string{"M"},
			},
			setupMocks: func(f *fixture) {
				f.variants.EXPECT().InsertMissing(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantCreated: 0,
		},
		{
			name: "explicit_threshold_wins",
			cmd: domain.CreateVariantsCommand{
				ProductID:         "P1",
				Colors:            []string{"Red"},
				Sizes:             []string{"M"},
				LowStockThreshold: helpers.IntPtr(0),
			},
			setupMocks: func(f *fixture) {
				f.variants.EXPECT().
					InsertMissing(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, vs []*domain.Variant) ([]*domain.Variant, error) {
						assert.Equal(t, 0, vs[0].LowStockThreshold)
						return vs, nil
					})
				f.expectInvalidate("P1")
			},
			wantCreated: 1,
		},
		{
			name: "too_many_combinations",
			cmd: domain.CreateVariantsCommand{
				ProductID: "P1",
				Colors:    []string{"Red", "Blue"},
				Sizes:     []string{"S", "M"},
			},
			opts:       func(o *services.Options) { o.MaxVariantsPerProduct = 3 },
			setupMocks: func(f *fixture) {},
			wantKind:   domain.KindInvalidInput,
		},
		{
			name: "separator_in_option_rejected",
			cmd: domain.CreateVariantsCommand{
				ProductID: "P1",
				Colors:    []string{"Red|Blue"},
				Sizes:     []string{"M"},
			},
			setupMocks: func(f *fixture) {},
			wantKind:   domain.KindInvalidInput,
		},
		{
			name: "negative_initial_count_rejected",
			cmd: domain.CreateVariantsCommand{
				ProductID:    "P1",
				Colors:       []string{"Red"},
				Sizes:        []string{"M"},
				InitialCount: -1,
			},
			setupMocks: func(f *fixture) {},
			wantKind:   domain.KindInvalidInput,
		},
		{
			name: "storage_error",
			cmd: domain.CreateVariantsCommand{
				ProductID: "P1",
				Colors:    []string{"Red"},
				Sizes:     []string{"M"},
			},
			setupMocks: func(f *fixture) {
				f.variants.EXPECT().InsertMissing(gomock.Any(), gomock.Any()).Return(nil, errors.New("deadlock detected"))
			},
			wantKind: domain.KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.DefaultLowStockThreshold = 7
			if tt.opts != nil {
				tt.opts(&opts)
			}
			f := newFixture(t, opts)
			tt.setupMocks(f)

			created, err := f.svc.CreateVariants(context.Background(), tt.cmd)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, created)
			assert.Len(t, created, tt.wantCreated)
		})
	}
}

func TestInventoryService_GetProductVariants_Cache(t *testing.T) {
	t.Run("cache_hit_skips_database", func(t *testing.T) {
		f := newFixture(t, testOptions())
		cached := helpers.CreateTestVariant()

		f.expectGeneration("P1", 3)
		f.cache.EXPECT().
			Get(gomock.Any(), "inv:variants:P1:3", gomock.Any()).
			DoAndReturn(func(ctx context.Context, key string, dest interface{}) error {
				*dest.(*[]*domain.Variant) = []*domain.Variant{cached}
				return nil
			})

		got, err := f.svc.GetProductVariants(context.Background(), "P1")

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cached.SKU, got[0].SKU)
	})

	t.Run("cache_miss_loads_and_fills", func(t *testing.T) {
		f := newFixture(t, testOptions())
		rows := []*domain.Variant{helpers.CreateTestVariant()}

		f.expectGeneration("P1", 0)
		f.cache.EXPECT().Get(gomock.Any(), "inv:variants:P1:0", gomock.Any()).Return(ports.ErrCacheMiss)
		f.variants.EXPECT().FindByProduct(gomock.Any(), "P1").Return(rows, nil)
		f.cache.EXPECT().SetWithTTL(gomock.Any(), "inv:variants:P1:0", rows, 5*time.Minute).Return(nil)

		got, err := f.svc.GetProductVariants(context.Background(), "P1")

		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("cache_outage_is_not_fatal", func(t *testing.T) {
		f := newFixture(t, testOptions())
		rows := []*domain.Variant{helpers.CreateTestVariant()}

		f.cache.EXPECT().Get(gomock.Any(), "inv:variants-gen:P1", gomock.Any()).Return(errors.New("i/o timeout"))
		f.variants.EXPECT().FindByProduct(gomock.Any(), "P1").Return(rows, nil)

		got, err := f.svc.GetProductVariants(context.Background(), "P1")

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("load_outlives_canceled_caller", func(t *testing.T) {
		f := newFixture(t, testOptions())
		rows := []*domain.Variant{helpers.CreateTestVariant()}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f.expectGeneration("P1", 0)
		f.cache.EXPECT().Get(gomock.Any(), "inv:variants:P1:0", gomock.Any()).Return(ports.ErrCacheMiss)
		f.variants.EXPECT().
			FindByProduct(gomock.Any(), "P1").
			DoAndReturn(func(ctx context.Context, productID string) ([]*domain.Variant, error) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return rows, nil
			})
		f.cache.EXPECT().SetWithTTL(gomock.Any(), "inv:variants:P1:0", rows, 5*time.Minute).Return(nil)

		got, err := f.svc.GetProductVariants(ctx, "P1")

		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("works_without_cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		variants := mocks.NewMockVariantRepository(ctrl)
		svc := services.NewInventoryService(variants, mocks.NewMockLedgerRepository(ctrl),
			mocks.NewMockTransactor(ctrl), nil, nil, testOptions(), helpers.TestLogger())

		variants.EXPECT().FindByProduct(gomock.Any(), "P1").Return([]*domain.Variant{}, nil)

		got, err := svc.GetProductVariants(context.Background(), "P1")

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty_product_id", func(t *testing.T) {
		f := newFixture(t, testOptions())

		_, err := f.svc.GetProductVariants(context.Background(), "  ")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestInventoryService_GetProductVariants_FillRacingWriteIsNotServed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testOptions())
	r := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(r.Client, time.Hour, helpers.TestLogger())
	svc := services.NewInventoryService(f.variants, f.ledger, f.tx, cache, f.idem, testOptions(), helpers.TestLogger())

	before := helpers.CreateTestVariant()
	after := helpers.CreateTestVariant(func(v *domain.Variant) { v.IsActive = false; v.Version = 2 })

	f.variants.EXPECT().FindByKey(gomock.Any(), "P1|RED|M").Return(helpers.CreateTestVariant(), nil)
	f.variants.EXPECT().UpdateSettings(gomock.Any(), gomock.Any(), int64(1)).Return(true, nil)

	gomock.InOrder(
		// The settings write commits and invalidates while the first read
		// is still holding the rows it loaded.
		f.variants.EXPECT().
			FindByProduct(gomock.Any(), "P1").
			DoAndReturn(func(ctx context.Context, productID string) ([]*domain.Variant, error) {
				_, err := svc.UpdateVariantSettings(ctx, "P1", "Red", "M", domain.VariantSettings{
					IsActive: helpers.BoolPtr(false),
				})
				require.NoError(t, err)
				return []*domain.Variant{before}, nil
			}),
		f.variants.EXPECT().FindByProduct(gomock.Any(), "P1").Return([]*domain.Variant{after}, nil),
	)

	got, err := svc.GetProductVariants(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, got[0].IsActive)

	got, err = svc.GetProductVariants(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, got[0].IsActive)

	// The fresh list is cached now.
	got, err = svc.GetProductVariants(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, got[0].IsActive)
}

func TestInventoryService_GetProductVariantsWithStock(t *testing.T) {
	f := newFixture(t, testOptions())
	low := helpers.CreateTestVariant(func(v *domain.Variant) { v.InventoryCount = 5 })
	ok := helpers.CreateTestVariant(func(v *domain.Variant) { v.Size = "L"; v.InventoryCount = 6 })
	inactive := helpers.CreateTestVariant(func(v *domain.Variant) { v.Size = "S"; v.InventoryCount = 0; v.IsActive = false })

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(ports.ErrCacheMiss).Times(2)
	f.variants.EXPECT().FindByProduct(gomock.Any(), "P1").Return([]*domain.Variant{low, ok, inactive}, nil)
	f.cache.EXPECT().SetWithTTL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	got, err := f.svc.GetProductVariantsWithStock(context.Background(), "P1")

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, *got[0].IsLowStock)
	assert.False(t, *got[1].IsLowStock)
	assert.False(t, *got[2].IsLowStock)
	assert.Nil(t, low.IsLowStock, "cached rows must not be mutated")
}

func TestInventoryService_GetVariant(t *testing.T) {
	f := newFixture(t, testOptions())
	f.variants.EXPECT().FindByKey(gomock.Any(), "P1|BLUE|XL").Return(nil, nil)

	_, err := f.svc.GetVariant(context.Background(), "P1", " blue ", "xl")

	assert.ErrorIs(t, err, domain.ErrVariantNotFound)
}

func TestInventoryService_UpdateVariantSettings(t *testing.T) {
	t.Run("applies_patch_with_version_check", func(t *testing.T) {
		f := newFixture(t, testOptions())
		v := helpers.CreateTestVariant(func(v *domain.Variant) { v.Version = 4 })

		f.variants.EXPECT().FindByKey(gomock.Any(), "P1|RED|M").Return(v, nil)
		f.variants.EXPECT().
			UpdateSettings(gomock.Any(), gomock.Any(), int64(4)).
			DoAndReturn(func(ctx context.Context, got *domain.Variant, expected int64) (bool, error) {
				assert.Equal(t, 2, got.LowStockThreshold)
				assert.False(t, got.IsActive)
				assert.Equal(t, 10, got.InventoryCount)
				return true, nil
			})
		f.expectInvalidate("P1")

		got, err := f.svc.UpdateVariantSettings(context.Background(), "P1", "Red", "M", domain.VariantSettings{
			LowStockThreshold: helpers.IntPtr(2),
			IsActive:          helpers.BoolPtr(false),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Version)
		assert.False(t, *got.IsLowStock)
	})

	t.Run("retries_on_conflict", func(t *testing.T) {
		f := newFixture(t, testOptions())

		f.variants.EXPECT().FindByKey(gomock.Any(), "P1|RED|M").
			DoAndReturn(func(context.Context, string) (*domain.Variant, error) {
				return helpers.CreateTestVariant(), nil
			}).Times(2)
		gomock.InOrder(
			f.variants.EXPECT().UpdateSettings(gomock.Any(), gomock.Any(), int64(1)).Return(false, nil),
			f.variants.EXPECT().UpdateSettings(gomock.Any(), gomock.Any(), int64(1)).Return(true, nil),
		)
		f.expectInvalidate("P1")

		_, err := f.svc.UpdateVariantSettings(context.Background(), "P1", "Red", "M", domain.VariantSettings{
			LowStockThreshold: helpers.IntPtr(3),
		})

		require.NoError(t, err)
	})

	t.Run("gives_up_without_waiting_after_last_attempt", func(t *testing.T) {
		opts := testOptions()
		opts.CASBackoff = time.Minute
		opts.MaxCASRetries = 1
		f := newFixture(t, opts)

		f.variants.EXPECT().FindByKey(gomock.Any(), "P1|RED|M").Return(helpers.CreateTestVariant(), nil)
		f.variants.EXPECT().UpdateSettings(gomock.Any(), gomock.Any(), int64(1)).Return(false, nil)

		start := time.Now()
		_, err := f.svc.UpdateVariantSettings(context.Background(), "P1", "Red", "M", domain.VariantSettings{
			LowStockThreshold: helpers.IntPtr(3),
		})

		require.Error(t, err)
		assert.Equal(t, domain.KindStorage, domain.KindOf(err))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("empty_patch_rejected", func(t *testing.T) {
		f := newFixture(t, testOptions())

		_, err := f.svc.UpdateVariantSettings(context.Background(), "P1", "Red", "M", domain.VariantSettings{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown_variant", func(t *testing.T) {
		f := newFixture(t, testOptions())
		f.variants.EXPECT().FindByKey(gomock.Any(), "P1|RED|M").Return(nil, nil)

		_, err := f.svc.UpdateVariantSettings(context.Background(), "P1", "Red", "M", domain.VariantSettings{
			IsActive: helpers.BoolPtr(true),
		})

		assert.ErrorIs(t, err, domain.ErrVariantNotFound)
	})
}

func TestInventoryService_ListVariants_CapsPageSize(t *testing.T) {
	f := newFixture(t, testOptions())
	f.variants.EXPECT().
		List(gomock.Any(), ports.VariantFilter{ProductID: "P1", Limit: 500}).
		Return([]*domain.Variant{helpers.CreateTestVariant()}, nil)

	got, err := f.svc.ListVariants(context.Background(), ports.VariantFilter{ProductID: "P1", Limit: 10_000})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].IsLowStock)
}

// internal/core/services/reconciliation_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/test/helpers"
)

func TestInventoryService_BulkSetCounts(t *testing.T) {
	f := newFixture(t, testOptions())

	red := helpers.CreateTestVariant()
	blue := helpers.CreateTestVariant(func(v *domain.Variant) {
		v.Color = "Blue"
		v.VariantKey = "P1|BLUE|M"
		v.SKU = "P1-BLUE-M"
		v.InventoryCount = 7
	})
	black := helpers.CreateTestVariant(func(v *domain.Variant) {
		v.Color = "Black"
		v.VariantKey = "P1|BLACK|M"
		v.SKU = "P1-BLACK-M"
	})

	f.variants.EXPECT().FindByKey(gomock.Any(), "P1|RED|M").Return(red, nil)
	f.variants.EXPECT().CompareAndSwapCount(gomock.Any(), red.ID, int64(1), 4).Return(true, nil)
	f.ledger.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e *domain.InventoryTransaction) error {
			assert.Equal(t, domain.TransactionAdjustment, e.TransactionType)
			assert.Equal(t, domain.BulkUpdateNote, e.Notes)
			assert.Equal(t, -6, e.QuantityChange)
			assert.Equal(t, "admin-1", e.CreatedBy)
			assert.Empty(t, e.IdempotencyKey)
			return nil
		})

	f.variants.EXPECT().FindByKey(gomock.Any(), "P1|BLUE|M").Return(blue, nil)
	f.variants.EXPECT().FindByKey(gomock.Any(), "P1|GREEN|L").Return(nil, nil)
	f.variants.EXPECT().FindByKey(gomock.Any(), "P1|BLACK|M").Return(black, nil)
	f.variants.EXPECT().CompareAndSwapCount(gomock.Any(), black.ID, int64(1), 12).Return(false, errors.New("connection refused"))

	f.expectInvalidate("P1").Times(1)

	results, err := f.svc.BulkSetCounts(context.Background(), domain.BulkSetCountsCommand{
		ProductID:    "P1",
		ActingUserID: "admin-1",
		Targets: []domain.BulkTarget{
			{Color: "Red", Size: "M", InventoryCount: 4},
			{Color: "Blue", Size: "M", InventoryCount: 7},
			{Color: "Green", Size: "L", InventoryCount: 3},
			{Color: "Red", Size: "S", InventoryCount: -1},
			{Color: "Black", Size: "M", InventoryCount: 12},
		},
	})

	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, domain.BulkUpdated, results[0].Status)
	assert.Equal(t, 10, results[0].PreviousCount)
	assert.Equal(t, 4, results[0].InventoryCount)
	assert.Equal(t, -6, results[0].Delta)
	require.NotNil(t, results[0].Variant)
	assert.True(t, *results[0].Variant.IsLowStock)

	assert.Equal(t, domain.BulkUnchanged, results[1].Status)
	assert.Equal(t, 0, results[1].Delta)

	assert.Equal(t, domain.BulkSkipped, results[2].Status)
	assert.Equal(t, domain.KindVariantNotFound, results[2].ErrorCode)

	assert.Equal(t, domain.BulkFailed, results[3].Status)
	assert.Equal(t, domain.KindInvalidInput, results[3].ErrorCode)

	assert.Equal(t, domain.BulkFailed, results[4].Status)
	assert.Equal(t, domain.KindStorage, results[4].ErrorCode)

	assert.Equal(t, 2, domain.BulkFailures(results))
}

func TestInventoryService_BulkSetCounts_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  domain.BulkSetCountsCommand
	}{
		{name: "missing_product", cmd: domain.BulkSetCountsCommand{Targets: []domain.BulkTarget{{Color: "Red", Size: "M"}}}},
		{name: "no_targets", cmd: domain.BulkSetCountsCommand{ProductID: "P1"}},
		{name: "too_many_targets", cmd: domain.BulkSetCountsCommand{ProductID: "P1", Targets: make([]domain.BulkTarget, 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.MaxBulkTargets = 2
			f := newFixture(t, opts)

			_, err := f.svc.BulkSetCounts(context.Background(), tt.cmd)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestInventoryService_BulkSetCounts_NothingChanged(t *testing.T) {
	f := newFixture(t, testOptions())
	f.variants.EXPECT().FindByKey(gomock.Any(), "P1|RED|M").Return(helpers.CreateTestVariant(), nil)

	results, err := f.svc.BulkSetCounts(context.Background(), domain.BulkSetCountsCommand{
		ProductID: "P1",
		Targets:   []domain.BulkTarget{{Color: "red", Size: "m", InventoryCount: 10}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BulkUnchanged, results[0].Status)
}

func TestInventoryService_BulkSetCounts_Cancelled(t *testing.T) {
	f := newFixture(t, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := f.svc.BulkSetCounts(ctx, domain.BulkSetCountsCommand{
		ProductID: "P1",
		Targets:   []domain.BulkTarget{{Color: "Red", Size: "M", InventoryCount: 1}},
	})

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Empty(t, results)
}

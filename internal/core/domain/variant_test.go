package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

func TestVariantKey(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		color     string
		size      string
		want      string
		wantError bool
	}{
		{name: "normalizes_case", productID: "prod-1", color: "Red", size: "m", want: "prod-1|RED|M"},
		{name: "trims_whitespace", productID: " prod-1 ", color: " red ", size: "XL ", want: "prod-1|RED|XL"},
		{name: "empty_color", productID: "prod-1", color: "  ", size: "M", wantError: true},
		{name: "empty_size", productID: "prod-1", color: "Red", size: "", wantError: true},
		{name: "empty_product", productID: "", color: "Red", size: "M", wantError: true},
		{name: "separator_in_color", productID: "prod-1", color: "Red|Blue", size: "M", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.VariantKey(tt.productID, tt.color, tt.size)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVariantKey_CaseInsensitiveIdentity(t *testing.T) {
	a, err := domain.VariantKey("p1", "Red", "Small")
	require.NoError(t, err)
	b, err := domain.VariantKey("p1", "red", "SMALL")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildSKU(t *testing.T) {
	sku, err := domain.BuildSKU("shirt-42", "navy blue", "xl")
	require.NoError(t, err)
	assert.Equal(t, "shirt-42-NAVY BLUE-XL", sku)

	_, err = domain.BuildSKU("shirt-42", "", "xl")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewVariant(t *testing.T) {
	adj := decimal.NewFromFloat(2.5)
	v, err := domain.NewVariant("p1", " Red ", "M", 10, 3, &adj)
	require.NoError(t, err)

	assert.Equal(t, "Red", v.Color)
	assert.Equal(t, "p1|RED|M", v.VariantKey)
	assert.Equal(t, "p1-RED-M", v.SKU)
	assert.Equal(t, 10, v.InventoryCount)
	assert.Equal(t, 10, v.InitialCount)
	assert.Equal(t, 3, v.LowStockThreshold)
	assert.True(t, v.IsActive)
	assert.Equal(t, int64(1), v.Version)
	assert.True(t, v.PriceAdjustment.Equal(adj))
}

func TestVariant_LowStock(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		threshold int
		active    bool
		want      bool
	}{
		{name: "at_threshold_is_low", count: 5, threshold: 5, active: true, want: true},
		{name: "above_threshold_is_not_low", count: 6, threshold: 5, active: true, want: false},
		{name: "zero_is_low", count: 0, threshold: 0, active: true, want: true},
		{name: "inactive_never_low", count: 0, threshold: 5, active: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &domain.Variant{InventoryCount: tt.count, LowStockThreshold: tt.threshold, IsActive: tt.active}
			assert.Equal(t, tt.want, v.IsLow())
			v.WithStockFlag()
			require.NotNil(t, v.IsLowStock)
			assert.Equal(t, tt.want, *v.IsLowStock)
		})
	}
}

func TestCreateVariantsCommand_Validate(t *testing.T) {
	negative := -1
	tests := []struct {
		name      string
		cmd       domain.CreateVariantsCommand
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid",
			cmd:  domain.CreateVariantsCommand{ProductID: "p1", Colors: []string{"Red"}, Sizes: []string{"M"}},
		},
		{
			name:      "no_colors",
			cmd:       domain.CreateVariantsCommand{ProductID: "p1", Sizes: []string{"M"}},
			wantError: true,
			errorMsg:  "color",
		},
		{
			name:      "no_sizes",
			cmd:       domain.CreateVariantsCommand{ProductID: "p1", Colors: []string{"Red"}},
			wantError: true,
			errorMsg:  "size",
		},
		{
			name:      "negative_initial_count",
			cmd:       domain.CreateVariantsCommand{ProductID: "p1", Colors: []string{"Red"}, Sizes: []string{"M"}, InitialCount: -1},
			wantError: true,
			errorMsg:  "initial_count",
		},
		{
			name:      "negative_threshold",
			cmd:       domain.CreateVariantsCommand{ProductID: "p1", Colors: []string{"Red"}, Sizes: []string{"M"}, LowStockThreshold: &negative},
			wantError: true,
			errorMsg:  "low_stock_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreateVariantsCommand_Combinations(t *testing.T) {
	cmd := domain.CreateVariantsCommand{
		ProductID: "p1",
		Colors:    []string{"Red", "red", "Blue"},
		Sizes:     []string{"S", "M", " s "},
	}

	pairs, err := cmd.Combinations()
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"Red", "S"}, {"Red", "M"},
		{"Blue", "S"}, {"Blue", "M"},
	}, pairs)

	cmd.Colors = []string{"Red", " "}
	_, err = cmd.Combinations()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVariantSettings(t *testing.T) {
	threshold := 8
	inactive := false
	adj := decimal.NewFromInt(3)

	t.Run("empty_patch_rejected", func(t *testing.T) {
		s := domain.VariantSettings{}
		assert.ErrorIs(t, s.Validate(), domain.ErrInvalidInput)
	})

	t.Run("conflicting_price_fields_rejected", func(t *testing.T) {
		s := domain.VariantSettings{PriceAdjustment: &adj, ClearPriceAdjustment: true}
		assert.ErrorIs(t, s.Validate(), domain.ErrInvalidInput)
	})

	t.Run("apply_leaves_counter_alone", func(t *testing.T) {
		v := &domain.Variant{InventoryCount: 4, LowStockThreshold: 5, IsActive: true}
		s := domain.VariantSettings{LowStockThreshold: &threshold, IsActive: &inactive, PriceAdjustment: &adj}
		require.NoError(t, s.Validate())
		s.Apply(v)

		assert.Equal(t, 4, v.InventoryCount)
		assert.Equal(t, 8, v.LowStockThreshold)
		assert.False(t, v.IsActive)
		assert.True(t, v.PriceAdjustment.Equal(adj))

		clear := domain.VariantSettings{ClearPriceAdjustment: true}
		clear.Apply(v)
		assert.Nil(t, v.PriceAdjustment)
	})
}

// internal/core/domain/variant.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold applies when provisioning does not supply one.
const DefaultLowStockThreshold = 5

const keySeparator = "|"

// Variant is a single (color, size) instance of a product with its own
// stock counter.
type Variant struct {
	ID                uuid.UUID        `json:"id"`
	ProductID         string           `json:"product_id"`
	Color             string           `json:"color"`
	Size              string           `json:"size"`
	VariantKey        string           `json:"variant_key"`
	SKU               string           `json:"sku"`
	InventoryCount    int              `json:"inventory_count"`
	InitialCount      int              `json:"initial_count"`
	LowStockThreshold int              `json:"low_stock_threshold"`
	PriceAdjustment   *decimal.Decimal `json:"price_adjustment,omitempty"`
	IsActive          bool             `json:"is_active"`
	Version           int64            `json:"version"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	// Populated only when the caller asks for stock flags.
	IsLowStock *bool `json:"is_low_stock,omitempty"`
}

// NormalizeOption trims and upper-cases a color or size so that "Red" and
// "red" resolve to the same variant.
func NormalizeOption(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

func validateIdentity(productID, color, size string) error {
	if strings.TrimSpace(productID) == "" {
		return NewInvalidInput("product_id is required")
	}
	if strings.TrimSpace(color) == "" {
		return NewInvalidInput("color is required")
	}
	if strings.TrimSpace(size) == "" {
		return NewInvalidInput("size is required")
	}
	for _, part := range []string{productID, color, size} {
		if strings.Contains(part, keySeparator) {
			return NewInvalidInput("product_id, color and size must not contain %q", keySeparator)
		}
	}
	return nil
}

// VariantKey derives the unique lookup key for (productID, color, size).
func VariantKey(productID, color, size string) (string, error) {
	if err := validateIdentity(productID, color, size); err != nil {
		return "", err
	}
	return strings.TrimSpace(productID) + keySeparator + NormalizeOption(color) + keySeparator + NormalizeOption(size), nil
}

// BuildSKU derives the stock keeping unit: productId-COLOR-SIZE.
func BuildSKU(productID, color, size string) (string, error) {
	if err := validateIdentity(productID, color, size); err != nil {
		return "", err
	}
	return strings.TrimSpace(productID) + "-" + NormalizeOption(color) + "-" + NormalizeOption(size), nil
}

// NewVariant builds an unsaved variant for provisioning.
func NewVariant(productID, color, size string, initialCount, threshold int, priceAdj *decimal.Decimal) (*Variant, error) {
	key, err := VariantKey(productID, color, size)
	if err != nil {
		return nil, err
	}
	sku, _ := BuildSKU(productID, color, size)

	now := time.Now().UTC()
	return &Variant{
		ID:                uuid.New(),
		ProductID:         strings.TrimSpace(productID),
		Color:             strings.TrimSpace(color),
		Size:              strings.TrimSpace(size),
		VariantKey:        key,
		SKU:               sku,
		InventoryCount:    initialCount,
		InitialCount:      initialCount,
		LowStockThreshold: threshold,
		PriceAdjustment:   priceAdj,
		IsActive:          true,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// LowStockAt reports whether the variant is active and at or below threshold.
func (v *Variant) LowStockAt(threshold int) bool {
	return v.IsActive && v.InventoryCount <= threshold
}

// IsLow reports low stock against the variant's own threshold.
func (v *Variant) IsLow() bool {
	return v.LowStockAt(v.LowStockThreshold)
}

// WithStockFlag sets IsLowStock from the current counter.
func (v *Variant) WithStockFlag() *Variant {
	low := v.IsLow()
	v.IsLowStock = &low
	return v
}

// CreateVariantsCommand provisions the color × size matrix of a product.
type CreateVariantsCommand struct {
	ProductID         string           `json:"product_id"`
	Colors            []string         `json:"colors"`
	Sizes             []string         `json:"sizes"`
	InitialCount      int              `json:"initial_count"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
	PriceAdjustment   *decimal.Decimal `json:"price_adjustment,omitempty"`
}

// Validate checks the command shape.
func (c *CreateVariantsCommand) Validate() error {
	if strings.TrimSpace(c.ProductID) == "" {
		return NewInvalidInput("product_id is required")
	}
	if len(c.Colors) == 0 {
		return NewInvalidInput("at least one color is required")
	}
	if len(c.Sizes) == 0 {
		return NewInvalidInput("at least one size is required")
	}
	if c.InitialCount < 0 {
		return NewInvalidInput("initial_count cannot be negative")
	}
	if c.LowStockThreshold != nil && *c.LowStockThreshold < 0 {
		return NewInvalidInput("low_stock_threshold cannot be negative")
	}
	return nil
}

// Combinations returns the de-duplicated color × size pairs in request order.
// Duplicates are detected case-insensitively; the first spelling wins.
func (c *CreateVariantsCommand) Combinations() ([][2]string, error) {
	colors, err := uniqueOptions(c.Colors, "color")
	if err != nil {
		return nil, err
	}
	sizes, err := uniqueOptions(c.Sizes, "size")
	if err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0, len(colors)*len(sizes))
	for _, color := range colors {
		for _, size := range sizes {
			pairs = append(pairs, [2]string{color, size})
		}
	}
	return pairs, nil
}

func uniqueOptions(values []string, field string) ([]string, error) {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, NewInvalidInput("%s values must not be empty", field)
		}
		norm := NormalizeOption(trimmed)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, trimmed)
	}
	return out, nil
}

// VariantSettings changes non-stock attributes of a variant. Nil fields are
// left untouched.
type VariantSettings struct {
	LowStockThreshold    *int             `json:"low_stock_threshold,omitempty"`
	PriceAdjustment      *decimal.Decimal `json:"price_adjustment,omitempty"`
	ClearPriceAdjustment bool             `json:"clear_price_adjustment,omitempty"`
	IsActive             *bool            `json:"is_active,omitempty"`
}

// Validate checks the settings patch.
func (s *VariantSettings) Validate() error {
	if s.LowStockThreshold == nil && s.PriceAdjustment == nil && !s.ClearPriceAdjustment && s.IsActive == nil {
		return NewInvalidInput("no settings to update")
	}
	if s.LowStockThreshold != nil && *s.LowStockThreshold < 0 {
		return NewInvalidInput("low_stock_threshold cannot be negative")
	}
	if s.PriceAdjustment != nil && s.ClearPriceAdjustment {
		return NewInvalidInput("price_adjustment and clear_price_adjustment are mutually exclusive")
	}
	return nil
}

// Apply copies the patch onto v.
func (s *VariantSettings) Apply(v *Variant) {
	if s.LowStockThreshold != nil {
		v.LowStockThreshold = *s.LowStockThreshold
	}
	if s.PriceAdjustment != nil {
		p := *s.PriceAdjustment
		v.PriceAdjustment = &p
	}
	if s.ClearPriceAdjustment {
		v.PriceAdjustment = nil
	}
	if s.IsActive != nil {
		v.IsActive = *s.IsActive
	}
}

// StockCheckItem is one line of an availability request.
type StockCheckItem struct {
	ProductID         string `json:"product_id"`
	Color             string `json:"color"`
	Size              string `json:"size"`
	RequestedQuantity int    `json:"requested_quantity"`
}

// StockCheckResult is the point-in-time answer for one StockCheckItem.
// It is not a reservation.
type StockCheckResult struct {
	ProductID         string `json:"product_id"`
	Color             string `json:"color"`
	Size              string `json:"size"`
	SKU               string `json:"sku,omitempty"`
	RequestedQuantity int    `json:"requested_quantity"`
	Available         bool   `json:"available"`
	CurrentStock      int    `json:"current_stock"`
}

// LowStockQuery filters the low-stock projection.
type LowStockQuery struct {
	ThresholdOverride *int
	ProductID         string
	Limit             int
}

// LedgerCheck compares a variant's counter against its ledger.
type LedgerCheck struct {
	VariantID      uuid.UUID `json:"variant_id"`
	SKU            string    `json:"sku"`
	InitialCount   int       `json:"initial_count"`
	LedgerSum      int       `json:"ledger_sum"`
	InventoryCount int       `json:"inventory_count"`
	Entries        int       `json:"entries"`
	Consistent     bool      `json:"consistent"`
}

// InventorySummary is the dashboard projection across all variants.
type InventorySummary struct {
	TotalVariants    int64            `json:"total_variants"`
	ActiveVariants   int64            `json:"active_variants"`
	TotalUnits       int64            `json:"total_units"`
	LowStockVariants int64            `json:"low_stock_variants"`
	OutOfStock       int64            `json:"out_of_stock_variants"`
	Activity24h      map[string]int64 `json:"activity_24h"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

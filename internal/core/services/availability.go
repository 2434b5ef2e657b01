// internal/core/services/availability.go
package services

import (
	"context"
	"log/slog"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

// CheckStock answers availability for a batch of items from one read. It
// never mutates or reserves anything.
func (s *InventoryService) CheckStock(ctx context.Context, items []domain.StockCheckItem) ([]domain.StockCheckResult, error) {
	if len(items) == 0 {
		return nil, domain.NewInvalidInput("at least one item is required")
	}
	if len(items) > s.opts.CheckStockMaxBatch {
		return nil, domain.NewInvalidInput("too many items: %d (max %d)", len(items), s.opts.CheckStockMaxBatch)
	}

	keys := make([]string, len(items))
	for i, item := range items {
		key, err := domain.VariantKey(item.ProductID, item.Color, item.Size)
		if err != nil {
			return nil, err
		}
		if item.RequestedQuantity <= 0 {
			return nil, domain.NewInvalidInput("requested_quantity must be positive for %s", key)
		}
		keys[i] = key
	}

	found, err := s.variants.FindByKeys(ctx, keys)
	if err != nil {
		return nil, asStorage("failed to check stock", err)
	}

	results := make([]domain.StockCheckResult, len(items))
	unavailable := 0
	for i, item := range items {
		r := domain.StockCheckResult{
			ProductID:         item.ProductID,
			Color:             item.Color,
			Size:              item.Size,
			RequestedQuantity: item.RequestedQuantity,
		}
		if v, ok := found[keys[i]]; ok && v.IsActive {
			r.SKU = v.SKU
			r.CurrentStock = v.InventoryCount
			r.Available = v.InventoryCount >= item.RequestedQuantity
		}
		if !r.Available {
			unavailable++
		}
		results[i] = r
	}

	s.logger.DebugContext(ctx, "stock checked",
		slog.Int("items", len(items)),
		slog.Int("unavailable", unavailable))

	return results, nil
}

// LowStockVariants lists active variants at or below their own threshold,
// or at or below q.ThresholdOverride when set, lowest stock first.
func (s *InventoryService) LowStockVariants(ctx context.Context, q domain.LowStockQuery) ([]*domain.Variant, error) {
	if q.ThresholdOverride != nil && *q.ThresholdOverride < 0 {
		return nil, domain.NewInvalidInput("threshold cannot be negative")
	}
	if q.Limit < 0 {
		return nil, domain.NewInvalidInput("limit cannot be negative")
	}
	if q.Limit > 0 {
		q.Limit = s.pageSize(q.Limit)
	}

	variants, err := s.variants.ListLowStock(ctx, q)
	if err != nil {
		return nil, asStorage("failed to list low stock variants", err)
	}

	for _, v := range variants {
		low := true
		v.IsLowStock = &low
	}
	return variants, nil
}

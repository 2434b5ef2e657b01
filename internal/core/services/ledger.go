// internal/core/services/ledger.go
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

// ListTransactions returns a variant's ledger, newest first.
func (s *InventoryService) ListTransactions(ctx context.Context, productID, color, size string, limit, offset int) ([]*domain.InventoryTransaction, error) {
	key, err := domain.VariantKey(productID, color, size)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, domain.NewInvalidInput("offset cannot be negative")
	}

	v, err := s.variants.FindByKey(ctx, key)
	if err != nil {
		return nil, asStorage("failed to get variant", err)
	}
	if v == nil {
		return nil, domain.NewVariantNotFound(key)
	}

	entries, err := s.ledger.ListByVariant(ctx, v.ID, s.pageSize(limit), offset)
	if err != nil {
		return nil, asStorage("failed to list transactions", err)
	}
	return entries, nil
}

// VerifyLedger checks initial_count + sum(ledger) == inventory_count for
// every variant of a product.
func (s *InventoryService) VerifyLedger(ctx context.Context, productID string) ([]domain.LedgerCheck, error) {
	if productID == "" {
		return nil, domain.NewInvalidInput("product_id is required")
	}

	checks, err := s.ledger.Reconcile(ctx, productID)
	if err != nil {
		return nil, asStorage("failed to verify ledger", err)
	}

	for _, c := range checks {
		if !c.Consistent {
			s.logger.ErrorContext(ctx, "ledger does not match inventory count",
				slog.String("sku", c.SKU),
				slog.Int("initial_count", c.InitialCount),
				slog.Int("ledger_sum", c.LedgerSum),
				slog.Int("inventory_count", c.InventoryCount))
		}
	}
	return checks, nil
}

// Summary builds the dashboard projection.
func (s *InventoryService) Summary(ctx context.Context) (*domain.InventorySummary, error) {
	summary, err := s.variants.Summary(ctx)
	if err != nil {
		return nil, asStorage("failed to summarize inventory", err)
	}

	activity, err := s.ledger.CountByTypeSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return nil, asStorage("failed to summarize ledger activity", err)
	}
	summary.Activity24h = activity
	return summary, nil
}

// internal/core/services/reconciliation.go
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

// BulkSetCounts sets absolute counts for a product's variants. Each target
// is applied on its own: the delta is computed from the value read inside
// the same transaction that writes it, so a concurrent sale is never lost.
// Unknown variants are skipped and a failure on one target does not stop
// the others.
func (s *InventoryService) BulkSetCounts(ctx context.Context, cmd domain.BulkSetCountsCommand) ([]domain.BulkTargetResult, error) {
	if err := cmd.Validate(s.opts.MaxBulkTargets); err != nil {
		return nil, err
	}

	results := make([]domain.BulkTargetResult, 0, len(cmd.Targets))
	changed := 0

	for _, target := range cmd.Targets {
		if err := ctx.Err(); err != nil {
			return results, domain.NewStorageError("bulk update cancelled", err)
		}

		r := s.setCount(ctx, cmd.ProductID, cmd.ActingUserID, target)
		if r.Status == domain.BulkUpdated {
			changed++
		}
		results = append(results, r)
	}

	if changed > 0 {
		s.invalidateProduct(ctx, cmd.ProductID)
	}

	s.logger.InfoContext(ctx, "bulk inventory update finished",
		slog.String("product_id", cmd.ProductID),
		slog.Int("targets", len(cmd.Targets)),
		slog.Int("updated", changed),
		slog.Int("failed", domain.BulkFailures(results)),
		slog.String("created_by", cmd.ActingUserID))

	return results, nil
}

func (s *InventoryService) setCount(ctx context.Context, productID, actor string, target domain.BulkTarget) domain.BulkTargetResult {
	r := domain.BulkTargetResult{
		Color:          target.Color,
		Size:           target.Size,
		InventoryCount: target.InventoryCount,
	}

	fail := func(err error) domain.BulkTargetResult {
		r.Status = domain.BulkFailed
		r.Error = err.Error()
		r.ErrorCode = domain.KindOf(err)
		return r
	}

	if target.InventoryCount < 0 {
		return fail(domain.NewInvalidInput("inventory_count cannot be negative"))
	}
	key, err := domain.VariantKey(productID, target.Color, target.Size)
	if err != nil {
		return fail(err)
	}

	res, err := s.adjust(ctx, key, domain.TransactionAdjustment, domain.BulkUpdateNote, actor, "",
		func(v *domain.Variant) (int, error) { return target.InventoryCount - v.InventoryCount, nil })
	if err != nil {
		if errors.Is(err, domain.ErrVariantNotFound) {
			r.Status = domain.BulkSkipped
			r.Error = err.Error()
			r.ErrorCode = domain.KindVariantNotFound
			return r
		}
		s.logger.WarnContext(ctx, "bulk target failed",
			slog.String("variant_key", key),
			slog.String("error", err.Error()))
		return fail(err)
	}

	r.PreviousCount = res.before
	r.InventoryCount = res.variant.InventoryCount
	r.Delta = res.variant.InventoryCount - res.before
	r.Variant = res.variant.WithStockFlag()
	if res.entry == nil {
		r.Status = domain.BulkUnchanged
	} else {
		r.Status = domain.BulkUpdated
	}
	return r
}

// internal/core/services/adjustment.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

// errVersionConflict means another writer changed the row between our read
// and our conditional write.
var errVersionConflict = errors.New("variant version conflict")

// applied is the outcome of one successful pass through adjust.
type applied struct {
	variant *domain.Variant
	entry   *domain.InventoryTransaction
	before  int
}

// decideFunc computes the delta to apply against the freshly read variant.
type decideFunc func(v *domain.Variant) (int, error)

// adjust is the single write path for inventory_count. Each attempt reads the
// variant, computes the delta, swaps the counter conditioned on the version
// it read, and appends the ledger entry, all inside one transaction. A lost
// race rolls the attempt back and starts over from a fresh read.
func (s *InventoryService) adjust(
	ctx context.Context,
	key string,
	t domain.TransactionType,
	notes, actor, idemKey string,
	decide decideFunc,
) (*applied, error) {
	for attempt := 1; ; attempt++ {
		var res *applied

		err := s.tx.Transaction(ctx, func(tx pgx.Tx) error {
			variants := s.variants.WithTx(tx)

			v, err := variants.FindByKey(ctx, key)
			if err != nil {
				return err
			}
			if v == nil {
				return domain.NewVariantNotFound(key)
			}

			delta, err := decide(v)
			if err != nil {
				return err
			}

			before := v.InventoryCount
			if delta == 0 {
				res = &applied{variant: v, before: before}
				return nil
			}

			next, err := domain.NextCount(v, delta, t)
			if err != nil {
				return err
			}

			ok, err := variants.CompareAndSwapCount(ctx, v.ID, v.Version, next)
			if err != nil {
				return err
			}
			if !ok {
				return errVersionConflict
			}

			entry := domain.NewLedgerEntry(v, before, delta, t, notes, actor, idemKey)
			if err := s.ledger.WithTx(tx).Append(ctx, entry); err != nil {
				return err
			}

			v.InventoryCount = next
			v.Version++
			v.UpdatedAt = entry.CreatedAt
			res = &applied{variant: v, entry: entry, before: before}
			return nil
		})

		switch {
		case err == nil:
			return res, nil
		case errors.Is(err, ports.ErrDuplicateIdempotencyKey):
			return nil, err
		case !errors.Is(err, errVersionConflict):
			return nil, asStorage("failed to apply inventory change", err)
		}

		if attempt >= s.opts.MaxCASRetries {
			s.logger.WarnContext(ctx, "inventory change abandoned after repeated conflicts",
				slog.String("variant_key", key),
				slog.Int("attempts", attempt))
			return nil, domain.NewStorageError(fmt.Sprintf("too many concurrent updates to %s", key), errVersionConflict)
		}

		s.logger.DebugContext(ctx, "retrying inventory change after version conflict",
			slog.String("variant_key", key),
			slog.Int("attempt", attempt))

		if err := s.backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}
}

// backoff sleeps a jittered, linearly growing interval or returns when ctx ends.
func (s *InventoryService) backoff(ctx context.Context, attempt int) error {
	if s.opts.CASBackoff <= 0 {
		return ctx.Err()
	}
	d := s.opts.CASBackoff * time.Duration(attempt)
	d += time.Duration(rand.Int63n(int64(s.opts.CASBackoff)))

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.NewStorageError("inventory change cancelled", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// ApplyAdjustment applies one signed delta to one variant and records it in
// the ledger. With an idempotency key, a repeated request returns the
// original outcome instead of applying twice.
func (s *InventoryService) ApplyAdjustment(ctx context.Context, cmd domain.AdjustmentCommand) (*domain.AdjustmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	key, err := domain.VariantKey(cmd.ProductID, cmd.Color, cmd.Size)
	if err != nil {
		return nil, err
	}

	fingerprint := cmd.Fingerprint()
	claimed := false
	if cmd.IdempotencyKey != "" && s.idem != nil {
		cached, started, err := s.idem.Begin(ctx, cmd.IdempotencyKey, fingerprint)
		switch {
		case errors.Is(err, ports.ErrIdempotencyKeyReused):
			return nil, domain.NewInvalidInput("idempotency key %q was already used for a different request", cmd.IdempotencyKey)
		case err != nil:
			s.logger.WarnContext(ctx, "idempotency store unavailable, relying on ledger",
				slog.String("idempotency_key", cmd.IdempotencyKey),
				slog.String("error", err.Error()))
		case cached != nil:
			cached.Replayed = true
			return cached, nil
		case !started:
			return nil, domain.NewDuplicateRequest(cmd.IdempotencyKey)
		default:
			claimed = true
		}
	}

	res, err := s.adjust(ctx, key, cmd.Type, cmd.Notes, cmd.ActingUserID, cmd.IdempotencyKey,
		func(*domain.Variant) (int, error) { return cmd.QuantityChange, nil })

	var result *domain.AdjustmentResult
	if errors.Is(err, ports.ErrDuplicateIdempotencyKey) {
		result, err = s.replayFromLedger(ctx, key, cmd)
	} else if err == nil {
		result = &domain.AdjustmentResult{Variant: res.variant.WithStockFlag(), TransactionID: res.entry.ID}
	}

	if err != nil {
		if claimed {
			if rerr := s.idem.Release(ctx, cmd.IdempotencyKey); rerr != nil {
				s.logger.WarnContext(ctx, "failed to release idempotency key",
					slog.String("idempotency_key", cmd.IdempotencyKey),
					slog.String("error", rerr.Error()))
			}
		}
		s.logger.InfoContext(ctx, "inventory adjustment rejected",
			slog.String("variant_key", key),
			slog.String("type", string(cmd.Type)),
			slog.Int("quantity_change", cmd.QuantityChange),
			slog.String("reason", string(domain.KindOf(err))))
		return nil, err
	}

	if claimed {
		if cerr := s.idem.Complete(ctx, cmd.IdempotencyKey, fingerprint, result); cerr != nil {
			s.logger.WarnContext(ctx, "failed to store idempotent result",
				slog.String("idempotency_key", cmd.IdempotencyKey),
				slog.String("error", cerr.Error()))
		}
	}

	if !result.Replayed {
		s.invalidateProduct(ctx, cmd.ProductID)
		s.logger.InfoContext(ctx, "inventory adjusted",
			slog.String("sku", result.Variant.SKU),
			slog.String("type", string(cmd.Type)),
			slog.Int("quantity_change", cmd.QuantityChange),
			slog.Int("quantity_before", res.before),
			slog.Int("quantity_after", result.Variant.InventoryCount),
			slog.String("transaction_id", result.TransactionID.String()),
			slog.String("created_by", cmd.ActingUserID))
	}

	return result, nil
}

// replayFromLedger answers a request whose idempotency key already has a
// durable ledger entry. The entry must record the same change.
func (s *InventoryService) replayFromLedger(ctx context.Context, key string, cmd domain.AdjustmentCommand) (*domain.AdjustmentResult, error) {
	idemKey := cmd.IdempotencyKey
	entry, err := s.ledger.FindByIdempotencyKey(ctx, idemKey)
	if err != nil {
		return nil, asStorage("failed to load idempotent result", err)
	}
	if entry == nil {
		return nil, domain.NewDuplicateRequest(idemKey)
	}

	v, err := s.variants.FindByKey(ctx, key)
	if err != nil {
		return nil, asStorage("failed to load idempotent result", err)
	}
	if v == nil || v.ID != entry.VariantID ||
		entry.TransactionType != cmd.Type || entry.QuantityChange != cmd.QuantityChange {
		return nil, domain.NewInvalidInput("idempotency key %q was already used for a different request", idemKey)
	}

	return &domain.AdjustmentResult{
		Variant:       v.WithStockFlag(),
		TransactionID: entry.ID,
		Replayed:      true,
	}, nil
}

// internal/core/services/inventory.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

const (
	variantsCacheKeyPrefix = "inv:variants:"
	// Bumped on every write to a product; cached variant lists are keyed by
	// it so a fill that raced a write lands on a dead key.
	variantsGenerationPrefix = "inv:variants-gen:"
	// SummaryCacheKey holds the cached dashboard summary.
	SummaryCacheKey = "dash:inventory"
)

// Options tunes the inventory service.
type Options struct {
	CheckStockMaxBatch       int
	MaxBulkTargets           int
	MaxVariantsPerProduct    int
	DefaultLowStockThreshold int
	MaxCASRetries            int
	CASBackoff               time.Duration
	VariantCacheTTL          time.Duration
	MaxPageSize              int
}

// DefaultOptions returns production defaults
func DefaultOptions() Options {
	return Options{
		CheckStockMaxBatch:       100,
		MaxBulkTargets:           500,
		MaxVariantsPerProduct:    400,
		DefaultLowStockThreshold: domain.DefaultLowStockThreshold,
		MaxCASRetries:            5,
		CASBackoff:               10 * time.Millisecond,
		VariantCacheTTL:          5 * time.Minute,
		MaxPageSize:              500,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CheckStockMaxBatch <= 0 {
		o.CheckStockMaxBatch = d.CheckStockMaxBatch
	}
	if o.MaxBulkTargets <= 0 {
		o.MaxBulkTargets = d.MaxBulkTargets
	}
	if o.MaxVariantsPerProduct <= 0 {
		o.MaxVariantsPerProduct = d.MaxVariantsPerProduct
	}
	if o.DefaultLowStockThreshold < 0 {
		o.DefaultLowStockThreshold = d.DefaultLowStockThreshold
	}
	if o.MaxCASRetries <= 0 {
		o.MaxCASRetries = d.MaxCASRetries
	}
	if o.CASBackoff < 0 {
		o.CASBackoff = 0
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = d.MaxPageSize
	}
	return o
}

// InventoryService handles variant inventory business logic
type InventoryService struct {
	variants ports.VariantRepository
	ledger   ports.LedgerRepository
	tx       ports.Transactor
	cache    ports.CacheRepository
	idem     ports.IdempotencyStore
	opts     Options
	sf       singleflight.Group
	logger   *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service. cache and idem may be
// nil, in which case reads go straight to the database and adjustments are
// deduplicated only by the ledger's unique idempotency key.
func NewInventoryService(
	variants ports.VariantRepository,
	ledger ports.LedgerRepository,
	tx ports.Transactor,
	cache ports.CacheRepository,
	idem ports.IdempotencyStore,
	opts Options,
	logger *slog.Logger,
) *InventoryService {
	return &InventoryService{
		variants: variants,
		ledger:   ledger,
		tx:       tx,
		cache:    cache,
		idem:     idem,
		opts:     opts.withDefaults(),
		logger:   logger.With(slog.String("service", "inventory")),
	}
}

func variantsCacheKey(productID string, generation int64) string {
	return fmt.Sprintf("%s%s:%d", variantsCacheKeyPrefix, productID, generation)
}

// generationTTL outlives any variant list cached under an older generation.
func (s *InventoryService) generationTTL() time.Duration {
	ttl := 24 * time.Hour
	if 2*s.opts.VariantCacheTTL > ttl {
		ttl = 2 * s.opts.VariantCacheTTL
	}
	return ttl
}

// invalidateProduct drops cached reads for a product after any write.
func (s *InventoryService) invalidateProduct(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Increment(ctx, variantsGenerationPrefix+productID, s.generationTTL()); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate variant cache",
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
	}
	if err := s.cache.Delete(ctx, SummaryCacheKey); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate summary cache",
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
	}
}

// asStorage passes domain errors through and wraps anything else as a
// retryable storage failure.
func asStorage(msg string, err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, ports.ErrCheckViolation) {
		return &domain.Error{Kind: domain.KindInvalidInput, Message: msg, Err: err}
	}
	return domain.NewStorageError(msg, err)
}

func (s *InventoryService) pageSize(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > s.opts.MaxPageSize {
		return s.opts.MaxPageSize
	}
	return limit
}

// internal/core/services/variants.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

// CreateVariants provisions one variant per color × size pair that does not
// exist yet. Calling it again with the same options creates nothing.
func (s *InventoryService) CreateVariants(ctx context.Context, cmd domain.CreateVariantsCommand) ([]*domain.Variant, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	pairs, err := cmd.Combinations()
	if err != nil {
		return nil, err
	}
	if len(pairs) > s.opts.MaxVariantsPerProduct {
		return nil, domain.NewInvalidInput("too many combinations: %d (max %d)", len(pairs), s.opts.MaxVariantsPerProduct)
	}

	threshold := s.opts.DefaultLowStockThreshold
	if cmd.LowStockThreshold != nil {
		threshold = *cmd.LowStockThreshold
	}

	candidates := make([]*domain.Variant, 0, len(pairs))
	for _, p := range pairs {
		v, err := domain.NewVariant(cmd.ProductID, p[0], p[1], cmd.InitialCount, threshold, cmd.PriceAdjustment)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, v)
	}

	var created []*domain.Variant
	err = s.tx.Transaction(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.variants.WithTx(tx).InsertMissing(ctx, candidates)
		return err
	})
	if err != nil {
		return nil, asStorage("failed to create variants", err)
	}

	if len(created) > 0 {
		s.invalidateProduct(ctx, cmd.ProductID)
	}

	s.logger.InfoContext(ctx, "provisioned variants",
		slog.String("product_id", cmd.ProductID),
		slog.Int("requested", len(candidates)),
		slog.Int("created", len(created)),
		slog.Int("skipped", len(candidates)-len(created)))

	if created == nil {
		created = []*domain.Variant{}
	}
	return created, nil
}

// GetProductVariants returns every variant of a product, active or not.
func (s *InventoryService) GetProductVariants(ctx context.Context, productID string) ([]*domain.Variant, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.NewInvalidInput("product_id is required")
	}

	key, cacheable := s.variantsKey(ctx, productID)
	if cacheable {
		var cached []*domain.Variant
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "variant cache read failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()))
		}
	}

	// The load is shared by every caller waiting on key, so it must not die
	// with the first caller's request.
	loadCtx := context.WithoutCancel(ctx)
	val, err, _ := s.sf.Do(key, func() (interface{}, error) {
		variants, err := s.variants.FindByProduct(loadCtx, productID)
		if err != nil {
			return nil, err
		}
		if cacheable {
			if err := s.cache.SetWithTTL(loadCtx, key, variants, s.opts.VariantCacheTTL); err != nil {
				s.logger.WarnContext(ctx, "variant cache write failed",
					slog.String("product_id", productID),
					slog.String("error", err.Error()))
			}
		}
		return variants, nil
	})
	if err != nil {
		return nil, asStorage("failed to load variants", err)
	}

	return val.([]*domain.Variant), nil
}

// variantsKey returns the cache key for the product's current generation.
// When the generation cannot be read the list is not cached at all.
func (s *InventoryService) variantsKey(ctx context.Context, productID string) (string, bool) {
	if s.cache == nil {
		return variantsCacheKeyPrefix + productID, false
	}
	var generation int64
	err := s.cache.Get(ctx, variantsGenerationPrefix+productID, &generation)
	if err != nil && !errors.Is(err, ports.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "variant cache generation read failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
		return variantsCacheKeyPrefix + productID, false
	}
	return variantsCacheKey(productID, generation), true
}

// GetProductVariantsWithStock is GetProductVariants with the low-stock flag
// populated on each variant.
func (s *InventoryService) GetProductVariantsWithStock(ctx context.Context, productID string) ([]*domain.Variant, error) {
	variants, err := s.GetProductVariants(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Copies, since the slice may be shared with concurrent singleflight callers.
	out := make([]*domain.Variant, len(variants))
	for i, v := range variants {
		c := *v
		out[i] = c.WithStockFlag()
	}
	return out, nil
}

// GetVariant looks up a single variant by (product, color, size).
func (s *InventoryService) GetVariant(ctx context.Context, productID, color, size string) (*domain.Variant, error) {
	key, err := domain.VariantKey(productID, color, size)
	if err != nil {
		return nil, err
	}

	v, err := s.variants.FindByKey(ctx, key)
	if err != nil {
		return nil, asStorage("failed to get variant", err)
	}
	if v == nil {
		return nil, domain.NewVariantNotFound(key)
	}
	return v.WithStockFlag(), nil
}

// UpdateVariantSettings changes threshold, price adjustment or the active
// flag. The counter is never touched here.
func (s *InventoryService) UpdateVariantSettings(ctx context.Context, productID, color, size string, settings domain.VariantSettings) (*domain.Variant, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	key, err := domain.VariantKey(productID, color, size)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.opts.MaxCASRetries; attempt++ {
		v, err := s.variants.FindByKey(ctx, key)
		if err != nil {
			return nil, asStorage("failed to get variant", err)
		}
		if v == nil {
			return nil, domain.NewVariantNotFound(key)
		}

		expected := v.Version
		settings.Apply(v)

		ok, err := s.variants.UpdateSettings(ctx, v, expected)
		if err != nil {
			return nil, asStorage("failed to update variant settings", err)
		}
		if ok {
			v.Version = expected + 1
			s.invalidateProduct(ctx, v.ProductID)
			s.logger.InfoContext(ctx, "variant settings updated",
				slog.String("sku", v.SKU),
				slog.Int("low_stock_threshold", v.LowStockThreshold),
				slog.Bool("is_active", v.IsActive))
			return v.WithStockFlag(), nil
		}

		if attempt >= s.opts.MaxCASRetries {
			break
		}
		if err := s.backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}

	s.logger.WarnContext(ctx, "settings update abandoned after repeated conflicts",
		slog.String("variant_key", key),
		slog.Int("attempts", s.opts.MaxCASRetries))
	return nil, domain.NewStorageError(fmt.Sprintf("too many concurrent updates to %s", key), errVersionConflict)
}

// ListVariants returns variants for exports and reports.
func (s *InventoryService) ListVariants(ctx context.Context, filter ports.VariantFilter) ([]*domain.Variant, error) {
	if filter.Limit > 0 {
		filter.Limit = s.pageSize(filter.Limit)
	}
	variants, err := s.variants.List(ctx, filter)
	if err != nil {
		return nil, asStorage("failed to list variants", err)
	}
	for _, v := range variants {
		v.WithStockFlag()
	}
	return variants, nil
}

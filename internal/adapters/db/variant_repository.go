// internal/adapters/db/variant_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

var variantColumns = []string{
	"id", "product_id", "color", "size", "variant_key", "sku",
	"inventory_count", "initial_count", "low_stock_threshold",
	"price_adjustment", "is_active", "version", "created_at", "updated_at",
}

// variantRepository implements ports.VariantRepository
type variantRepository struct {
	q      ports.DBTX
	logger *slog.Logger
}

// NewVariantRepository creates a new variant repository
func NewVariantRepository(db ports.DBTX, logger *slog.Logger) ports.VariantRepository {
	return &variantRepository{
		q:      db,
		logger: logger.With(slog.String("repository", "variant")),
	}
}

func (r *variantRepository) WithTx(tx pgx.Tx) ports.VariantRepository {
	return &variantRepository{q: tx, logger: r.logger}
}

// InsertMissing inserts every variant whose key is not taken yet and returns
// only the rows that were actually created.
func (r *variantRepository) InsertMissing(ctx context.Context, variants []*domain.Variant) ([]*domain.Variant, error) {
	if len(variants) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO product_variants (
			id, product_id, color, size, variant_key, sku,
			inventory_count, initial_count, low_stock_threshold,
			price_adjustment, is_active, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		ON CONFLICT (variant_key) DO NOTHING
		RETURNING id`

	batch := &pgx.Batch{}
	for _, v := range variants {
		batch.Queue(query,
			v.ID, v.ProductID, v.Color, v.Size, v.VariantKey, v.SKU,
			v.InventoryCount, v.InitialCount, v.LowStockThreshold,
			nullDecimal(v.PriceAdjustment), v.IsActive, v.Version, v.CreatedAt, v.UpdatedAt,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()

	created := make([]*domain.Variant, 0, len(variants))
	for _, v := range variants {
		var id uuid.UUID
		err := br.QueryRow().Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert variant %s: %w", v.VariantKey, err)
		}
		created = append(created, v)
	}

	r.logger.DebugContext(ctx, "variants provisioned",
		slog.Int("requested", len(variants)),
		slog.Int("created", len(created)))

	return created, nil
}

// FindByKey retrieves one variant by its normalized key
func (r *variantRepository) FindByKey(ctx context.Context, variantKey string) (*domain.Variant, error) {
	query, args, err := selectVariants().Where(squirrel.Eq{"variant_key": variantKey}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	v, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanVariant)
	if err != nil {
		return nil, fmt.Errorf("failed to find variant: %w", err)
	}
	return v, nil
}

// FindByKeys retrieves every variant among keys in one round trip
func (r *variantRepository) FindByKeys(ctx context.Context, variantKeys []string) (map[string]*domain.Variant, error) {
	out := make(map[string]*domain.Variant, len(variantKeys))
	if len(variantKeys) == 0 {
		return out, nil
	}

	query, args, err := selectVariants().Where("variant_key = ANY(?)", variantKeys).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}

	variants, err := ScanMany(rows, scanVariant)
	if err != nil {
		return nil, fmt.Errorf("failed to scan variants: %w", err)
	}
	for _, v := range variants {
		out[v.VariantKey] = v
	}
	return out, nil
}

// FindByProduct retrieves all variants of a product regardless of state
func (r *variantRepository) FindByProduct(ctx context.Context, productID string) ([]*domain.Variant, error) {
	return r.List(ctx, ports.VariantFilter{ProductID: productID})
}

// List retrieves variants matching filter, ordered by product, color, size
func (r *variantRepository) List(ctx context.Context, filter ports.VariantFilter) ([]*domain.Variant, error) {
	qb := selectVariants()
	if filter.ProductID != "" {
		qb = qb.Where(squirrel.Eq{"product_id": filter.ProductID})
	}
	if filter.ActiveOnly {
		qb = qb.Where(squirrel.Eq{"is_active": true})
	}
	if filter.LowStockOnly {
		qb = qb.Where("is_active AND inventory_count <= low_stock_threshold")
	}
	qb = qb.OrderBy("product_id", "color", "size")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}

	variants, err := ScanMany(rows, scanVariant)
	if err != nil {
		return nil, fmt.Errorf("failed to scan variants: %w", err)
	}
	if variants == nil {
		variants = []*domain.Variant{}
	}
	return variants, nil
}

// CompareAndSwapCount is the only statement that writes inventory_count.
func (r *variantRepository) CompareAndSwapCount(ctx context.Context, id uuid.UUID, expectedVersion int64, newCount int) (bool, error) {
	query := `
		UPDATE product_variants
		SET inventory_count = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`

	result, err := r.q.Exec(ctx, query, newCount, time.Now().UTC(), id, expectedVersion)
	if err != nil {
		if isCheckViolation(err) {
			return false, fmt.Errorf("inventory count %d rejected: %w", newCount, ports.ErrCheckViolation)
		}
		return false, fmt.Errorf("failed to update inventory count: %w", err)
	}

	if result.RowsAffected() == 0 {
		r.logger.DebugContext(ctx, "version conflict on inventory count",
			slog.String("variant_id", id.String()),
			slog.Int64("expected_version", expectedVersion))
		return false, nil
	}
	return true, nil
}

// UpdateSettings writes threshold, price adjustment and active flag under a
// version check. It never touches inventory_count.
func (r *variantRepository) UpdateSettings(ctx context.Context, v *domain.Variant, expectedVersion int64) (bool, error) {
	query := `
		UPDATE product_variants
		SET low_stock_threshold = $1, price_adjustment = $2, is_active = $3,
			version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6`

	result, err := r.q.Exec(ctx, query,
		v.LowStockThreshold, nullDecimal(v.PriceAdjustment), v.IsActive,
		time.Now().UTC(), v.ID, expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update variant settings: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListLowStock returns active variants at or below their threshold, or at or
// below the override when one is given.
func (r *variantRepository) ListLowStock(ctx context.Context, q domain.LowStockQuery) ([]*domain.Variant, error) {
	qb := selectVariants().Where(squirrel.Eq{"is_active": true})
	if q.ThresholdOverride != nil {
		qb = qb.Where(squirrel.LtOrEq{"inventory_count": *q.ThresholdOverride})
	} else {
		qb = qb.Where("inventory_count <= low_stock_threshold")
	}
	if q.ProductID != "" {
		qb = qb.Where(squirrel.Eq{"product_id": q.ProductID})
	}
	qb = qb.OrderBy("inventory_count ASC", "product_id", "color", "size")
	if q.Limit > 0 {
		qb = qb.Limit(uint64(q.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock variants: %w", err)
	}

	variants, err := ScanMany(rows, scanVariant)
	if err != nil {
		return nil, fmt.Errorf("failed to scan low stock variants: %w", err)
	}
	if variants == nil {
		variants = []*domain.Variant{}
	}
	return variants, nil
}

// Summary aggregates counters across all variants
func (r *variantRepository) Summary(ctx context.Context) (*domain.InventorySummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COALESCE(SUM(inventory_count) FILTER (WHERE is_active), 0),
			COUNT(*) FILTER (WHERE is_active AND inventory_count <= low_stock_threshold),
			COUNT(*) FILTER (WHERE is_active AND inventory_count = 0)
		FROM product_variants`

	s := &domain.InventorySummary{}
	err := r.q.QueryRow(ctx, query).Scan(
		&s.TotalVariants, &s.ActiveVariants, &s.TotalUnits,
		&s.LowStockVariants, &s.OutOfStock,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize variants: %w", err)
	}
	s.GeneratedAt = time.Now().UTC()
	return s, nil
}

func selectVariants() squirrel.SelectBuilder {
	return squirrel.Select(variantColumns...).
		From("product_variants").
		PlaceholderFormat(squirrel.Dollar)
}

func scanVariant(row pgx.Row) (*domain.Variant, error) {
	v := &domain.Variant{}
	var priceAdj decimal.NullDecimal

	err := row.Scan(
		&v.ID, &v.ProductID, &v.Color, &v.Size, &v.VariantKey, &v.SKU,
		&v.InventoryCount, &v.InitialCount, &v.LowStockThreshold,
		&priceAdj, &v.IsActive, &v.Version, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if priceAdj.Valid {
		d := priceAdj.Decimal
		v.PriceAdjustment = &d
	}
	return v, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

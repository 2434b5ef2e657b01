// internal/core/ports/variant_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

// VariantRepository defines the persistence port for variants.
// Lookups return (nil, nil) when nothing matches.
type VariantRepository interface {
	// WithTx returns a repository bound to tx.
	WithTx(tx pgx.Tx) VariantRepository

	InsertMissing(ctx context.Context, variants []*domain.Variant) ([]*domain.Variant, error)
	FindByKey(ctx context.Context, variantKey string) (*domain.Variant, error)
	FindByKeys(ctx context.Context, variantKeys []string) (map[string]*domain.Variant, error)
	FindByProduct(ctx context.Context, productID string) ([]*domain.Variant, error)
	List(ctx context.Context, filter VariantFilter) ([]*domain.Variant, error)

	// CompareAndSwapCount writes newCount only if the row is still at
	// expectedVersion. It reports false when another writer got there first.
	CompareAndSwapCount(ctx context.Context, id uuid.UUID, expectedVersion int64, newCount int) (bool, error)
	UpdateSettings(ctx context.Context, v *domain.Variant, expectedVersion int64) (bool, error)

	ListLowStock(ctx context.Context, q domain.LowStockQuery) ([]*domain.Variant, error)
	Summary(ctx context.Context) (*domain.InventorySummary, error)
}

// VariantFilter narrows exports and listings.
type VariantFilter struct {
	ProductID    string
	ActiveOnly   bool
	LowStockOnly bool
	Limit        int
	Offset       int
}

// LedgerRepository is the append-only store of inventory transactions.
// There is deliberately no update or delete.
type LedgerRepository interface {
	WithTx(tx pgx.Tx) LedgerRepository

	Append(ctx context.Context, entry *domain.InventoryTransaction) error
	ListByVariant(ctx context.Context, variantID uuid.UUID, limit, offset int) ([]*domain.InventoryTransaction, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.InventoryTransaction, error)
	Reconcile(ctx context.Context, productID string) ([]domain.LedgerCheck, error)
	CountByTypeSince(ctx context.Context, since time.Time) (map[string]int64, error)
}

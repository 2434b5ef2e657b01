// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

// InventoryService defines the application service port for variant
// inventory. It is implemented by services.InventoryService.
type InventoryService interface {
	// Variant record store
	CreateVariants(ctx context.Context, cmd domain.CreateVariantsCommand) ([]*domain.Variant, error)
	GetProductVariants(ctx context.Context, productID string) ([]*domain.Variant, error)
	GetProductVariantsWithStock(ctx context.Context, productID string) ([]*domain.Variant, error)
	GetVariant(ctx context.Context, productID, color, size string) (*domain.Variant, error)
	UpdateVariantSettings(ctx context.Context, productID, color, size string, settings domain.VariantSettings) (*domain.Variant, error)

	// Stock adjustment engine
	ApplyAdjustment(ctx context.Context, cmd domain.AdjustmentCommand) (*domain.AdjustmentResult, error)

	// Read-only projections
	CheckStock(ctx context.Context, items []domain.StockCheckItem) ([]domain.StockCheckResult, error)
	LowStockVariants(ctx context.Context, q domain.LowStockQuery) ([]*domain.Variant, error)

	// Bulk reconciliation
	BulkSetCounts(ctx context.Context, cmd domain.BulkSetCountsCommand) ([]domain.BulkTargetResult, error)

	// Ledger
	ListTransactions(ctx context.Context, productID, color, size string, limit, offset int) ([]*domain.InventoryTransaction, error)
	VerifyLedger(ctx context.Context, productID string) ([]domain.LedgerCheck, error)

	// Reporting
	ListVariants(ctx context.Context, filter VariantFilter) ([]*domain.Variant, error)
	Summary(ctx context.Context) (*domain.InventorySummary, error)
}

// IdempotencyStore deduplicates retried adjustment requests.
type IdempotencyStore interface {
	// Begin claims key for the request identified by fingerprint. It returns
	// the stored result when the key already completed, or started=false when
	// another request holds it. A key held by a different fingerprint yields
	// ErrIdempotencyKeyReused.
	Begin(ctx context.Context, key, fingerprint string) (cached *domain.AdjustmentResult, started bool, err error)
	Complete(ctx context.Context, key, fingerprint string, result *domain.AdjustmentResult) error
	Release(ctx context.Context, key string) error
}

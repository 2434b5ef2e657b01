// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	idempotencyIndex  = "idx_inventory_transactions_idempotency_key"
)

var ledgerColumns = []string{
	"id", "variant_id", "product_id", "color", "size",
	"quantity_change", "quantity_before", "quantity_after", "transaction_type",
	"notes", "created_by", "idempotency_key", "created_at",
}

// ledgerRepository implements ports.LedgerRepository
type ledgerRepository struct {
	q      ports.DBTX
	logger *slog.Logger
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db ports.DBTX, logger *slog.Logger) ports.LedgerRepository {
	return &ledgerRepository{
		q:      db,
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

func (r *ledgerRepository) WithTx(tx pgx.Tx) ports.LedgerRepository {
	return &ledgerRepository{q: tx, logger: r.logger}
}

// Append inserts one ledger entry
func (r *ledgerRepository) Append(ctx context.Context, e *domain.InventoryTransaction) error {
	query := `
		INSERT INTO inventory_transactions (
			id, variant_id, product_id, color, size,
			quantity_change, quantity_before, quantity_after, transaction_type,
			notes, created_by, idempotency_key, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := r.q.Exec(ctx, query,
		e.ID, e.VariantID, e.ProductID, e.Color, e.Size,
		e.QuantityChange, e.QuantityBefore, e.QuantityAfter, string(e.TransactionType),
		nullString(e.Notes), nullString(e.CreatedBy), nullString(e.IdempotencyKey), e.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == idempotencyIndex {
			return ports.ErrDuplicateIdempotencyKey
		}
		if isCheckViolation(err) {
			return fmt.Errorf("ledger entry rejected: %w", ports.ErrCheckViolation)
		}
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// ListByVariant returns a variant's history, newest first
func (r *ledgerRepository) ListByVariant(ctx context.Context, variantID uuid.UUID, limit, offset int) ([]*domain.InventoryTransaction, error) {
	qb := squirrel.Select(ledgerColumns...).
		From("inventory_transactions").
		Where(squirrel.Eq{"variant_id": variantID}).
		OrderBy("created_at DESC", "id").
		PlaceholderFormat(squirrel.Dollar)
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	if offset > 0 {
		qb = qb.Offset(uint64(offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}

	entries, err := ScanMany(rows, scanLedgerEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger: %w", err)
	}
	if entries == nil {
		entries = []*domain.InventoryTransaction{}
	}
	return entries, nil
}

// FindByIdempotencyKey returns the entry written under key, if any
func (r *ledgerRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.InventoryTransaction, error) {
	query, args, err := squirrel.Select(ledgerColumns...).
		From("inventory_transactions").
		Where(squirrel.Eq{"idempotency_key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	e, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanLedgerEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entry: %w", err)
	}
	return e, nil
}

// Reconcile compares every variant of a product against the sum of its
// ledger. A single statement reads both sides from the same snapshot.
func (r *ledgerRepository) Reconcile(ctx context.Context, productID string) ([]domain.LedgerCheck, error) {
	query := `
		SELECT v.id, v.sku, v.initial_count, v.inventory_count,
			COALESCE(SUM(t.quantity_change), 0), COUNT(t.id)
		FROM product_variants v
		LEFT JOIN inventory_transactions t ON t.variant_id = v.id
		WHERE v.product_id = $1
		GROUP BY v.id, v.sku, v.initial_count, v.inventory_count
		ORDER BY v.sku`

	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile ledger: %w", err)
	}
	defer rows.Close()

	checks := make([]domain.LedgerCheck, 0)
	for rows.Next() {
		var c domain.LedgerCheck
		var sum, entries int64
		if err := rows.Scan(&c.VariantID, &c.SKU, &c.InitialCount, &c.InventoryCount, &sum, &entries); err != nil {
			return nil, fmt.Errorf("failed to scan ledger check: %w", err)
		}
		c.LedgerSum = int(sum)
		c.Entries = int(entries)
		c.Consistent = c.InitialCount+c.LedgerSum == c.InventoryCount
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return checks, nil
}

// CountByTypeSince counts ledger entries per transaction type
func (r *ledgerRepository) CountByTypeSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	query := `
		SELECT transaction_type, COUNT(*)
		FROM inventory_transactions
		WHERE created_at >= $1
		GROUP BY transaction_type`

	rows, err := r.q.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count ledger activity: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{
		string(domain.TransactionRestock):    0,
		string(domain.TransactionSale):       0,
		string(domain.TransactionReturn):     0,
		string(domain.TransactionAdjustment): 0,
	}
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan ledger activity: %w", err)
		}
		counts[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return counts, nil
}

func scanLedgerEntry(row pgx.Row) (*domain.InventoryTransaction, error) {
	e := &domain.InventoryTransaction{}
	var txType string
	var notes, createdBy, idemKey sql.NullString

	err := row.Scan(
		&e.ID, &e.VariantID, &e.ProductID, &e.Color, &e.Size,
		&e.QuantityChange, &e.QuantityBefore, &e.QuantityAfter, &txType,
		&notes, &createdBy, &idemKey, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.TransactionType = domain.TransactionType(txType)
	e.Notes = notes.String
	e.CreatedBy = createdBy.String
	e.IdempotencyKey = idemKey.String
	return e, nil
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

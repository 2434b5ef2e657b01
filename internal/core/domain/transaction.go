// internal/core/domain/transaction.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionType is the cause of a stock change.
type TransactionType string

const (
	TransactionRestock    TransactionType = "restock"
	TransactionSale       TransactionType = "sale"
	TransactionReturn     TransactionType = "return"
	TransactionAdjustment TransactionType = "adjustment"
)

// BulkUpdateNote is recorded on every ledger entry written by reconciliation.
const BulkUpdateNote = "Bulk inventory update"

// MaxIdempotencyKeyLength bounds caller-supplied idempotency keys.
const MaxIdempotencyKeyLength = 128

// ParseTransactionType validates a raw type.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", NewInvalidInput("unknown transaction_type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionRestock, TransactionSale, TransactionReturn, TransactionAdjustment:
		return true
	}
	return false
}

// InventoryTransaction is one immutable ledger entry.
type InventoryTransaction struct {
	ID              uuid.UUID       `json:"id"`
	VariantID       uuid.UUID       `json:"variant_id"`
	ProductID       string          `json:"product_id"`
	Color           string          `json:"color"`
	Size            string          `json:"size"`
	QuantityChange  int             `json:"quantity_change"`
	QuantityBefore  int             `json:"quantity_before"`
	QuantityAfter   int             `json:"quantity_after"`
	TransactionType TransactionType `json:"transaction_type"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by,omitempty"`
	IdempotencyKey  string          `json:"idempotency_key,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AdjustmentCommand is the only way to request a change to a counter.
type AdjustmentCommand struct {
	ProductID      string          `json:"product_id"`
	Color          string          `json:"color"`
	Size           string          `json:"size"`
	QuantityChange int             `json:"quantity_change"`
	Type           TransactionType `json:"transaction_type"`
	Notes          string          `json:"notes,omitempty"`
	ActingUserID   string          `json:"-"`
	IdempotencyKey string          `json:"-"`
}

// Validate enforces the shape of the command. Sign rules: sales consume
// stock, restocks and returns add it, adjustments go either way.
func (c *AdjustmentCommand) Validate() error {
	if _, err := VariantKey(c.ProductID, c.Color, c.Size); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return NewInvalidInput("unknown transaction_type %q", c.Type)
	}
	if c.QuantityChange == 0 {
		return NewInvalidInput("quantity_change must not be zero")
	}
	switch c.Type {
	case TransactionSale:
		if c.QuantityChange > 0 {
			return NewInvalidInput("sale quantity_change must be negative")
		}
	case TransactionRestock, TransactionReturn:
		if c.QuantityChange < 0 {
			return NewInvalidInput("%s quantity_change must be positive", c.Type)
		}
	}
	if len(c.IdempotencyKey) > MaxIdempotencyKeyLength {
		return NewInvalidInput("idempotency key exceeds %d characters", MaxIdempotencyKeyLength)
	}
	return nil
}

// Fingerprint identifies the change the command asks for: the variant, the
// type and the delta. Notes and the acting user are not part of it.
func (c *AdjustmentCommand) Fingerprint() string {
	key, _ := VariantKey(c.ProductID, c.Color, c.Size)
	return fmt.Sprintf("%s|%s|%d", key, c.Type, c.QuantityChange)
}

// NextCount applies delta to current under the non-negativity rules: a sale
// that would go below zero is InsufficientStock, any other type is rejected
// as invalid input. A negative count is never returned.
func NextCount(v *Variant, delta int, t TransactionType) (int, error) {
	next := v.InventoryCount + delta
	if next >= 0 {
		return next, nil
	}
	if t == TransactionSale {
		return 0, NewInsufficientStock(v.SKU, v.InventoryCount, -delta)
	}
	return 0, NewInvalidInput("%s of %d would drive stock of %s negative (current %d)", t, delta, v.SKU, v.InventoryCount)
}

// NewLedgerEntry builds the ledger row paired with an applied change.
func NewLedgerEntry(v *Variant, before, delta int, t TransactionType, notes, actor, idemKey string) *InventoryTransaction {
	return &InventoryTransaction{
		ID:              uuid.New(),
		VariantID:       v.ID,
		ProductID:       v.ProductID,
		Color:           v.Color,
		Size:            v.Size,
		QuantityChange:  delta,
		QuantityBefore:  before,
		QuantityAfter:   before + delta,
		TransactionType: t,
		Notes:           notes,
		CreatedBy:       actor,
		IdempotencyKey:  idemKey,
		CreatedAt:       time.Now().UTC(),
	}
}

// AdjustmentResult is returned by the adjustment engine.
type AdjustmentResult struct {
	Variant       *Variant  `json:"variant"`
	TransactionID uuid.UUID `json:"transaction_id,omitempty"`
	Replayed      bool      `json:"replayed"`
}

// BulkTarget is one desired absolute count.
type BulkTarget struct {
	Color          string `json:"color"`
	Size           string `json:"size"`
	InventoryCount int    `json:"inventory_count"`
}

// BulkSetCountsCommand reconciles a product's variants to absolute counts.
type BulkSetCountsCommand struct {
	ProductID    string       `json:"product_id"`
	Targets      []BulkTarget `json:"targets"`
	ActingUserID string       `json:"-"`
}

// Validate checks the batch shape. Per-target problems are reported per
// target, not here.
func (c *BulkSetCountsCommand) Validate(maxTargets int) error {
	if strings.TrimSpace(c.ProductID) == "" {
		return NewInvalidInput("product_id is required")
	}
	if len(c.Targets) == 0 {
		return NewInvalidInput("at least one target is required")
	}
	if maxTargets > 0 && len(c.Targets) > maxTargets {
		return NewInvalidInput("too many targets: %d (max %d)", len(c.Targets), maxTargets)
	}
	return nil
}

// BulkStatus is the outcome of one reconciliation target.
type BulkStatus string

const (
	BulkUpdated   BulkStatus = "updated"
	BulkUnchanged BulkStatus = "unchanged"
	BulkSkipped   BulkStatus = "skipped"
	BulkFailed    BulkStatus = "failed"
)

// BulkTargetResult reports what happened to one target.
type BulkTargetResult struct {
	Color          string     `json:"color"`
	Size           string     `json:"size"`
	Status         BulkStatus `json:"status"`
	PreviousCount  int        `json:"previous_count"`
	InventoryCount int        `json:"inventory_count"`
	Delta          int        `json:"delta"`
	Variant        *Variant   `json:"variant,omitempty"`
	Error          string     `json:"error,omitempty"`
	ErrorCode      ErrorKind  `json:"error_code,omitempty"`
}

// BulkFailures counts failed targets.
func BulkFailures(results []BulkTargetResult) int {
	n := 0
	for _, r := range results {
		if r.Status == BulkFailed {
			n++
		}
	}
	return n
}

// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

const (
	TypeReconcileSheet   = "inventory:reconcile_sheet"
	TypeLowStockScan     = "inventory:low_stock_scan"
	TypeRefreshSummary   = "inventory:refresh_summary"
	TypeLowStockAlert    = "email:low_stock_alert"
	TypeCleanupSheets    = "maintenance:cleanup_sheets"
	TypeCleanupTempFiles = "maintenance:cleanup_temp_files"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ReconcileSheetPayload points the worker at an uploaded count sheet.
type ReconcileSheetPayload struct {
	JobID      string             `json:"job_id"`
	StorageKey string             `json:"storage_key"`
	Filename   string             `json:"filename"`
	Format     domain.SheetFormat `json:"format"`
	UserID     string             `json:"user_id"`
}

// LowStockScanPayload narrows a scan. The zero value scans everything.
type LowStockScanPayload struct {
	ProductID         string `json:"product_id,omitempty"`
	ThresholdOverride *int   `json:"threshold_override,omitempty"`
}

// LowStockLine is one variant listed in an alert.
type LowStockLine struct {
	SKU            string `json:"sku"`
	ProductID      string `json:"product_id"`
	Color          string `json:"color"`
	Size           string `json:"size"`
	InventoryCount int    `json:"inventory_count"`
	Threshold      int    `json:"threshold"`
}

// LowStockAlertPayload is the email job produced by a scan.
type LowStockAlertPayload struct {
	Recipients  []string       `json:"recipients"`
	Lines       []LowStockLine `json:"lines"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// NewReconcileSheetTask builds the import task. The job id doubles as the
// asynq task id so a double submit is rejected by the queue.
func NewReconcileSheetTask(p ReconcileSheetPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reconcile payload: %w", err)
	}
	return asynq.NewTask(TypeReconcileSheet, b,
		asynq.TaskID(p.JobID),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

// NewLowStockScanTask builds a scan task.
func NewLowStockScanTask(p LowStockScanPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scan payload: %w", err)
	}
	return asynq.NewTask(TypeLowStockScan, b, asynq.Queue(QueueDefault), asynq.MaxRetry(2)), nil
}

// NewLowStockAlertTask builds the alert email task.
func NewLowStockAlertTask(p LowStockAlertPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert payload: %w", err)
	}
	return asynq.NewTask(TypeLowStockAlert, b, asynq.Queue(QueueCritical), asynq.MaxRetry(5)), nil
}

// NewRefreshSummaryTask builds the dashboard refresh task.
func NewRefreshSummaryTask() *asynq.Task {
	return asynq.NewTask(TypeRefreshSummary, nil, asynq.Queue(QueueLow), asynq.MaxRetry(1))
}

// NewCleanupSheetsTask builds the stored sheet cleanup task.
func NewCleanupSheetsTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupSheets, nil, asynq.Queue(QueueLow), asynq.MaxRetry(1))
}

// NewCleanupTempFilesTask builds the temp directory cleanup task.
func NewCleanupTempFilesTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupTempFiles, nil, asynq.Queue(QueueLow), asynq.MaxRetry(1))
}

func lowStockLines(variants []*domain.Variant) []LowStockLine {
	lines := make([]LowStockLine, 0, len(variants))
	for _, v := range variants {
		lines = append(lines, LowStockLine{
			SKU:            v.SKU,
			ProductID:      v.ProductID,
			Color:          v.Color,
			Size:           v.Size,
			InventoryCount: v.InventoryCount,
			Threshold:      v.LowStockThreshold,
		})
	}
	return lines
}

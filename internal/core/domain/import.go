// internal/core/domain/import.go
package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ImportStatus is the lifecycle state of a reconciliation import job.
type ImportStatus string

const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// SheetFormat is the file type of an uploaded count sheet.
type SheetFormat string

const (
	SheetXLSX SheetFormat = "xlsx"
	SheetPDF  SheetFormat = "pdf"
)

// SheetFormatFromFilename picks the parser for an uploaded file.
func SheetFormatFromFilename(name string) (SheetFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return SheetXLSX, nil
	case ".pdf":
		return SheetPDF, nil
	}
	return "", NewInvalidInput("unsupported sheet type %q: expected .xlsx or .pdf", filepath.Ext(name))
}

// SheetRow is one counted line of a reconciliation sheet.
type SheetRow struct {
	Line           int    `json:"line"`
	ProductID      string `json:"product_id"`
	Color          string `json:"color"`
	Size           string `json:"size"`
	InventoryCount int    `json:"inventory_count"`
}

// GroupByProduct turns sheet rows into one bulk command per product, in
// first-seen order. A later row for the same variant replaces an earlier one.
func GroupByProduct(rows []SheetRow, actor string) []BulkSetCountsCommand {
	var order []string
	byProduct := make(map[string]*BulkSetCountsCommand)
	index := make(map[string]int)

	for _, r := range rows {
		cmd, ok := byProduct[r.ProductID]
		if !ok {
			cmd = &BulkSetCountsCommand{ProductID: r.ProductID, ActingUserID: actor}
			byProduct[r.ProductID] = cmd
			order = append(order, r.ProductID)
		}

		target := BulkTarget{Color: r.Color, Size: r.Size, InventoryCount: r.InventoryCount}
		key := r.ProductID + keySeparator + NormalizeOption(r.Color) + keySeparator + NormalizeOption(r.Size)
		if i, dup := index[key]; dup {
			cmd.Targets[i] = target
			continue
		}
		index[key] = len(cmd.Targets)
		cmd.Targets = append(cmd.Targets, target)
	}

	out := make([]BulkSetCountsCommand, 0, len(order))
	for _, pid := range order {
		out = append(out, *byProduct[pid])
	}
	return out
}

// ProductReport is the reconciliation outcome for one product of a sheet.
type ProductReport struct {
	ProductID string             `json:"product_id"`
	Results   []BulkTargetResult `json:"results,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// ImportJob tracks an uploaded reconciliation sheet through the worker.
type ImportJob struct {
	ID          string          `json:"id"`
	Filename    string          `json:"filename"`
	StorageKey  string          `json:"storage_key"`
	Format      SheetFormat     `json:"format"`
	Status      ImportStatus    `json:"status"`
	CreatedBy   string          `json:"created_by"`
	Rows        int             `json:"rows"`
	Updated     int             `json:"updated"`
	Unchanged   int             `json:"unchanged"`
	Skipped     int             `json:"skipped"`
	Failed      int             `json:"failed"`
	ParseErrors []string        `json:"parse_errors,omitempty"`
	Products    []ProductReport `json:"products,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Tally adds per-target outcomes to the job counters.
func (j *ImportJob) Tally(results []BulkTargetResult) {
	for _, r := range results {
		switch r.Status {
		case BulkUpdated:
			j.Updated++
		case BulkUnchanged:
			j.Unchanged++
		case BulkSkipped:
			j.Skipped++
		case BulkFailed:
			j.Failed++
		}
	}
}

// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/ammerola/storefront-inventory/internal/adapters/redis_adapter"
	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

var exportHeaders = []string{
	"SKU", "Product ID", "Color", "Size", "Inventory Count",
	"Low Stock Threshold", "Low Stock", "Price Adjustment", "Active",
}

// StockExportRow is one variant line of a stock export.
type StockExportRow struct {
	SKU               string `json:"sku"`
	ProductID         string `json:"product_id"`
	Color             string `json:"color"`
	Size              string `json:"size"`
	InventoryCount    int    `json:"inventory_count"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	IsLowStock        bool   `json:"is_low_stock"`
	PriceAdjustment   string `json:"price_adjustment,omitempty"`
	IsActive          bool   `json:"is_active"`
}

// StockExport is the JSON export document.
type StockExport struct {
	ProductID   string           `json:"product_id,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
	TotalRows   int              `json:"total_rows"`
	Rows        []StockExportRow `json:"rows"`
}

// ExportHandler handles export operations
type ExportHandler struct {
	service ports.InventoryService
	cache   ports.CacheRepository
	ttl     time.Duration
	logger  *slog.Logger
}

// NewExportHandler creates a new export handler. JSON exports are cached for
// ttl.
func NewExportHandler(service ports.InventoryService, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		cache:   cache,
		ttl:     ttl,
		logger:  logger.With(slog.String("handler", "export")),
	}
}

// ExportXLSX handles GET /api/v1/export/stock.xlsx
func (h *ExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.URL.Query().Get("product_id")

	rows, err := h.loadRows(r)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "export stock")
		return
	}

	data, err := buildStockWorkbook(rows)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate workbook", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to generate workbook")
		return
	}

	filename := fmt.Sprintf("stock_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write workbook", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "stock workbook exported",
		slog.String("product_id", productID),
		slog.Int("rows", len(rows)))
}

// ExportJSON handles GET /api/v1/export/stock.json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.URL.Query().Get("product_id")

	scope := productID
	if scope == "" {
		scope = "all"
	}
	key := redis_a.BuildKey(redis_a.PrefixInventory, "export", scope)

	cacheStatus := "HIT"
	var doc StockExport
	err := h.cache.GetOrSet(ctx, key, &doc, func() (interface{}, error) {
		cacheStatus = "MISS"
		rows, err := h.loadRows(r)
		if err != nil {
			return nil, err
		}
		return StockExport{
			ProductID:   productID,
			GeneratedAt: time.Now().UTC(),
			TotalRows:   len(rows),
			Rows:        rows,
		}, nil
	}, h.ttl)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "export stock")
		return
	}

	w.Header().Set("X-Cache", cacheStatus)
	respondJSON(w, http.StatusOK, doc)
}

func (h *ExportHandler) loadRows(r *http.Request) ([]StockExportRow, error) {
	variants, err := h.service.ListVariants(r.Context(), ports.VariantFilter{
		ProductID: r.URL.Query().Get("product_id"),
	})
	if err != nil {
		return nil, err
	}

	rows := make([]StockExportRow, 0, len(variants))
	for _, v := range variants {
		rows = append(rows, toExportRow(v))
	}
	return rows, nil
}

func toExportRow(v *domain.Variant) StockExportRow {
	row := StockExportRow{
		SKU:               v.SKU,
		ProductID:         v.ProductID,
		Color:             v.Color,
		Size:              v.Size,
		InventoryCount:    v.InventoryCount,
		LowStockThreshold: v.LowStockThreshold,
		IsLowStock:        v.IsLow(),
		IsActive:          v.IsActive,
	}
	if v.PriceAdjustment != nil {
		row.PriceAdjustment = v.PriceAdjustment.StringFixed(2)
	}
	return row
}

// buildStockWorkbook renders rows into an in-memory xlsx file.
func buildStockWorkbook(rows []StockExportRow) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Stock")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range exportHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, row := range rows {
		r := sheet.AddRow()
		r.AddCell().SetString(row.SKU)
		r.AddCell().SetString(row.ProductID)
		r.AddCell().SetString(row.Color)
		r.AddCell().SetString(row.Size)
		r.AddCell().SetInt(row.InventoryCount)
		r.AddCell().SetInt(row.LowStockThreshold)
		r.AddCell().SetBool(row.IsLowStock)
		r.AddCell().SetString(row.PriceAdjustment)
		r.AddCell().SetBool(row.IsActive)
	}

	for i := range exportHeaders {
		sheet.SetColWidth(i+1, i+1, 18)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

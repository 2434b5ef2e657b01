// internal/handlers/inventory.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/internal/handlers/middleware"
)

// IdempotencyKeyHeader carries the caller's retry key for adjustments.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayedHeader is set on responses served from a stored adjustment result.
const ReplayedHeader = "Idempotent-Replayed"

// InventoryHandler handles variant and stock requests
type InventoryHandler struct {
	service ports.InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "inventory")),
	}
}

// CreateVariantsRequest is the body of POST /products/{productId}/variants.
type CreateVariantsRequest struct {
	Colors            []string         `json:"colors"`
	Sizes             []string         `json:"sizes"`
	InitialCount      int              `json:"initial_count"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
	PriceAdjustment   *decimal.Decimal `json:"price_adjustment,omitempty"`
}

// VariantsResponse wraps a product's variant list.
type VariantsResponse struct {
	ProductID string            `json:"product_id"`
	Variants  []*domain.Variant `json:"variants"`
	Count     int               `json:"count"`
}

// CreateVariants handles POST /api/v1/products/{productId}/variants
func (h *InventoryHandler) CreateVariants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.PathValue("productId")

	var req CreateVariantsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "create variants")
		return
	}

	variants, err := h.service.CreateVariants(ctx, domain.CreateVariantsCommand{
		ProductID:         productID,
		Colors:            req.Colors,
		Sizes:             req.Sizes,
		InitialCount:      req.InitialCount,
		LowStockThreshold: req.LowStockThreshold,
		PriceAdjustment:   req.PriceAdjustment,
	})
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "create variants")
		return
	}

	respondJSON(w, http.StatusCreated, VariantsResponse{ProductID: productID, Variants: variants, Count: len(variants)})
}

// GetProductVariants handles GET /api/v1/products/{productId}/variants
func (h *InventoryHandler) GetProductVariants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.PathValue("productId")

	withStock, err := parseBoolParam(r, "include_stock")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get variants")
		return
	}

	var variants []*domain.Variant
	if withStock {
		variants, err = h.service.GetProductVariantsWithStock(ctx, productID)
	} else {
		variants, err = h.service.GetProductVariants(ctx, productID)
	}
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get variants")
		return
	}
	if variants == nil {
		variants = []*domain.Variant{}
	}

	respondJSON(w, http.StatusOK, VariantsResponse{ProductID: productID, Variants: variants, Count: len(variants)})
}

// GetVariant handles GET /api/v1/products/{productId}/variants/{color}/{size}
func (h *InventoryHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	v, err := h.service.GetVariant(ctx, r.PathValue("productId"), r.PathValue("color"), r.PathValue("size"))
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get variant")
		return
	}

	respondJSON(w, http.StatusOK, v)
}

// UpdateVariantSettings handles PATCH /api/v1/products/{productId}/variants/{color}/{size}
func (h *InventoryHandler) UpdateVariantSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var settings domain.VariantSettings
	if err := decodeJSON(w, r, &settings); err != nil {
		respondServiceError(ctx, w, h.logger, err, "update variant")
		return
	}

	v, err := h.service.UpdateVariantSettings(ctx, r.PathValue("productId"), r.PathValue("color"), r.PathValue("size"), settings)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "update variant")
		return
	}

	respondJSON(w, http.StatusOK, v)
}

// ListTransactions handles GET /api/v1/products/{productId}/variants/{color}/{size}/transactions
func (h *InventoryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := parseIntParam(r, "limit", 50)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list transactions")
		return
	}
	offset, err := parseIntParam(r, "offset", 0)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list transactions")
		return
	}

	txs, err := h.service.ListTransactions(ctx, r.PathValue("productId"), r.PathValue("color"), r.PathValue("size"), limit, offset)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list transactions")
		return
	}
	if txs == nil {
		txs = []*domain.InventoryTransaction{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"limit":        limit,
		"offset":       offset,
	})
}

// VerifyLedger handles GET /api/v1/products/{productId}/ledger/verify
func (h *InventoryHandler) VerifyLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.PathValue("productId")

	checks, err := h.service.VerifyLedger(ctx, productID)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "verify ledger")
		return
	}

	consistent := true
	for _, c := range checks {
		if !c.Consistent {
			consistent = false
			h.logger.WarnContext(ctx, "ledger drift detected",
				slog.String("sku", c.SKU),
				slog.Int("ledger_sum", c.LedgerSum),
				slog.Int("inventory_count", c.InventoryCount))
		}
	}
	if checks == nil {
		checks = []domain.LedgerCheck{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"consistent": consistent,
		"variants":   checks,
	})
}

// CheckStockRequest is the body of POST /inventory/check.
type CheckStockRequest struct {
	Items []domain.StockCheckItem `json:"items"`
}

// CheckStock handles POST /api/v1/inventory/check
func (h *InventoryHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckStockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "check stock")
		return
	}

	results, err := h.service.CheckStock(ctx, req.Items)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "check stock")
		return
	}

	allAvailable := true
	for _, res := range results {
		if !res.Available {
			allAvailable = false
			break
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":         results,
		"all_available": allAvailable,
	})
}

// ApplyAdjustment handles POST /api/v1/inventory/adjustments
func (h *InventoryHandler) ApplyAdjustment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cmd domain.AdjustmentCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		respondServiceError(ctx, w, h.logger, err, "adjust inventory")
		return
	}
	cmd.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)
	if claims, ok := middleware.UserClaimsFromContext(ctx); ok {
		cmd.ActingUserID = claims.UserID
	}

	result, err := h.service.ApplyAdjustment(ctx, cmd)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "adjust inventory")
		return
	}

	if result.Replayed {
		w.Header().Set(ReplayedHeader, "true")
	}
	respondJSON(w, http.StatusOK, result)
}

// BulkSetCountsRequest is the body of PUT /products/{productId}/inventory.
type BulkSetCountsRequest struct {
	Targets []domain.BulkTarget `json:"targets"`
}

// BulkSetCountsResponse reports every target of a reconciliation.
type BulkSetCountsResponse struct {
	ProductID string                    `json:"product_id"`
	Results   []domain.BulkTargetResult `json:"results"`
	Failed    int                       `json:"failed"`
}

// BulkSetCounts handles PUT /api/v1/products/{productId}/inventory
func (h *InventoryHandler) BulkSetCounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.PathValue("productId")

	var req BulkSetCountsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "update inventory")
		return
	}

	cmd := domain.BulkSetCountsCommand{ProductID: productID, Targets: req.Targets}
	if claims, ok := middleware.UserClaimsFromContext(ctx); ok {
		cmd.ActingUserID = claims.UserID
	}

	results, err := h.service.BulkSetCounts(ctx, cmd)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "update inventory")
		return
	}

	failed := domain.BulkFailures(results)
	status := http.StatusOK
	if failed > 0 {
		status = http.StatusMultiStatus
	}

	respondJSON(w, status, BulkSetCountsResponse{ProductID: productID, Results: results, Failed: failed})
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := domain.LowStockQuery{ProductID: r.URL.Query().Get("product_id")}
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil {
			respondServiceError(ctx, w, h.logger, domain.NewInvalidInput("threshold must be an integer"), "list low stock")
			return
		}
		q.ThresholdOverride = &threshold
	}
	limit, err := parseIntParam(r, "limit", 0)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list low stock")
		return
	}
	q.Limit = limit

	variants, err := h.service.LowStockVariants(ctx, q)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list low stock")
		return
	}
	if variants == nil {
		variants = []*domain.Variant{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"variants": variants,
		"count":    len(variants),
	})
}

func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domain.NewInvalidInput("%s must be a non-negative integer", name)
	}
	return v, nil
}

func parseBoolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.NewInvalidInput("%s must be true or false", name)
	}
	return v, nil
}

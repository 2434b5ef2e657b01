package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/internal/core/services"
)

// DashboardHandler handles dashboard operations
type DashboardHandler struct {
	service ports.InventoryService
	cache   ports.CacheRepository
	ttl     time.Duration
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service ports.InventoryService, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		cache:   cache,
		ttl:     ttl,
		logger:  logger.With(slog.String("handler", "dashboard")),
	}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var summary domain.InventorySummary
	err := h.cache.GetOrSet(ctx, services.SummaryCacheKey, &summary, func() (interface{}, error) {
		return h.service.Summary(ctx)
	}, h.ttl)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

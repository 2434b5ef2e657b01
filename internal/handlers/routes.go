// internal/handlers/routes.go
package handlers

import (
	"net/http"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/handlers/middleware"
)

const apiV1 = "/api/v1"

// Handlers groups the HTTP handlers served by the API. Health may be nil.
type Handlers struct {
	Inventory *InventoryHandler
	Import    *ImportHandler
	Export    *ExportHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
}

// RegisterRoutes mounts every route on mux. Mutating and staff-only routes
// require a bearer token with an elevated role.
func RegisterRoutes(mux *http.ServeMux, h Handlers, tokens middleware.TokenValidator) {
	elevated := func(fn http.HandlerFunc) http.Handler {
		return middleware.Chain(fn,
			middleware.Authenticate(tokens),
			middleware.RequireRoles(domain.ElevatedRoles...))
	}

	if h.Health != nil {
		mux.HandleFunc("GET /health", h.Health.Health)
		mux.HandleFunc("GET /ready", h.Health.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", h.Health.Health)
	}

	// Variants
	mux.Handle("POST "+apiV1+"/products/{productId}/variants", elevated(h.Inventory.CreateVariants))
	mux.HandleFunc("GET "+apiV1+"/products/{productId}/variants", h.Inventory.GetProductVariants)
	mux.HandleFunc("GET "+apiV1+"/products/{productId}/variants/{color}/{size}", h.Inventory.GetVariant)
	mux.Handle("PATCH "+apiV1+"/products/{productId}/variants/{color}/{size}", elevated(h.Inventory.UpdateVariantSettings))
	mux.Handle("GET "+apiV1+"/products/{productId}/variants/{color}/{size}/transactions", elevated(h.Inventory.ListTransactions))
	mux.Handle("GET "+apiV1+"/products/{productId}/ledger/verify", elevated(h.Inventory.VerifyLedger))
	mux.Handle("PUT "+apiV1+"/products/{productId}/inventory", elevated(h.Inventory.BulkSetCounts))

	// Stock
	mux.HandleFunc("POST "+apiV1+"/inventory/check", h.Inventory.CheckStock)
	mux.Handle("POST "+apiV1+"/inventory/adjustments", elevated(h.Inventory.ApplyAdjustment))
	mux.HandleFunc("GET "+apiV1+"/inventory/low-stock", h.Inventory.LowStock)

	// Import
	mux.Handle("POST "+apiV1+"/import/reconciliation", elevated(h.Import.ImportReconciliation))
	mux.Handle("GET "+apiV1+"/import/status/{jobId}", elevated(h.Import.ImportStatus))

	// Export
	mux.Handle("GET "+apiV1+"/export/stock.xlsx", elevated(h.Export.ExportXLSX))
	mux.Handle("GET "+apiV1+"/export/stock.json", elevated(h.Export.ExportJSON))

	// Dashboard
	mux.HandleFunc("GET "+apiV1+"/dashboard", h.Dashboard.GetDashboard)
}

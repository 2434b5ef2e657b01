package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/handlers"
	"github.com/ammerola/storefront-inventory/test/helpers"
)

func TestRoutes_Authorization(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		token          func(*apiFixture) string
		expectedStatus int
	}{
		{name: "adjust_without_token", method: http.MethodPost, path: "/api/v1/inventory/adjustments", expectedStatus: http.StatusUnauthorized},
		{name: "adjust_as_customer", method: http.MethodPost, path: "/api/v1/inventory/adjustments", token: func(f *apiFixture) string { return f.customer }, expectedStatus: http.StatusForbidden},
		{name: "provision_as_customer", method: http.MethodPost, path: "/api/v1/products/P1/variants", token: func(f *apiFixture) string { return f.customer }, expectedStatus: http.StatusForbidden},
		{name: "bulk_without_token", method: http.MethodPut, path: "/api/v1/products/P1/inventory", expectedStatus: http.StatusUnauthorized},
		{name: "import_status_without_token", method: http.MethodGet, path: "/api/v1/import/status/j1", expectedStatus: http.StatusUnauthorized},
		{name: "export_as_customer", method: http.MethodGet, path: "/api/v1/export/stock.json", token: func(f *apiFixture) string { return f.customer }, expectedStatus: http.StatusForbidden},
		{name: "unknown_route", method: http.MethodGet, path: "/api/v1/nope", expectedStatus: http.StatusNotFound},
		{name: "wrong_method", method: http.MethodDelete, path: "/api/v1/inventory/check", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			var opts []requestOption
			if tt.token != nil {
				opts = append(opts, withToken(tt.token(f)))
			}

			w := f.do(t, tt.method, tt.path, nil, opts...)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInventoryHandler_ApplyAdjustment(t *testing.T) {
	variant := helpers.CreateTestVariant(func(v *domain.Variant) { v.InventoryCount = 7 })
	body := map[string]interface{}{
		"product_id":       "P1",
		"color":            "red",
		"size":             "m",
		"quantity_change":  -3,
		"transaction_type": "sale",
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMocks     func(*apiFixture)
		expectedStatus int
		expectedCode   string
		retryable      bool
		validate       func(*testing.T, []byte, http.Header)
	}{
		{
			name: "applies_sale",
			body: body,
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().ApplyAdjustment(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, cmd domain.AdjustmentCommand) (*domain.AdjustmentResult, error) {
						assert.Equal(t, "staff-1", cmd.ActingUserID)
						assert.Equal(t, "order-42", cmd.IdempotencyKey)
						assert.Equal(t, domain.TransactionSale, cmd.Type)
						assert.Equal(t, -3, cmd.QuantityChange)
						return &domain.AdjustmentResult{Variant: variant, TransactionID: uuid.New()}, nil
					})
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, b []byte, h http.Header) {
				var res domain.AdjustmentResult
				require.NoError(t, json.Unmarshal(b, &res))
				assert.Equal(t, 7, res.Variant.InventoryCount)
				assert.False(t, res.Replayed)
				assert.Empty(t, h.Get(handlers.ReplayedHeader))
			},
		},
		{
			name: "replayed_result",
			body: body,
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().ApplyAdjustment(gomock.Any(), gomock.Any()).
					Return(&domain.AdjustmentResult{Variant: variant, Replayed: true}, nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, _ []byte, h http.Header) {
				assert.Equal(t, "true", h.Get(handlers.ReplayedHeader))
			},
		},
		{
			name: "insufficient_stock",
			body: body,
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().ApplyAdjustment(gomock.Any(), gomock.Any()).
					Return(nil, domain.NewInsufficientStock("P1-RED-M", 2, 3))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INSUFFICIENT_STOCK",
		},
		{
			name: "unknown_variant",
			body: body,
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().ApplyAdjustment(gomock.Any(), gomock.Any()).
					Return(nil, domain.NewVariantNotFound("P1|RED|M"))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "VARIANT_NOT_FOUND",
		},
		{
			name: "in_flight_duplicate",
			body: body,
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().ApplyAdjustment(gomock.Any(), gomock.Any()).
					Return(nil, domain.NewDuplicateRequest("order-42"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_REQUEST",
			retryable:      true,
		},
		{
			name: "storage_error_hides_cause",
			body: body,
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().ApplyAdjustment(gomock.Any(), gomock.Any()).
					Return(nil, domain.NewStorageError("failed to apply adjustment", errors.New("pq: password authentication failed")))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "STORAGE_ERROR",
			retryable:      true,
			validate: func(t *testing.T, b []byte, _ http.Header) {
				assert.NotContains(t, string(b), "password")
			},
		},
		{
			name: "unexpected_error",
			body: body,
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().ApplyAdjustment(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL",
		},
		{
			name:           "malformed_body",
			body:           `{"product_id":`,
			setupMocks:     func(*apiFixture) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_INPUT",
		},
		{
			name:           "unknown_field",
			body:           `{"product_id":"P1","acting_user_id":"someone-else"}`,
			setupMocks:     func(*apiFixture) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			tt.setupMocks(f)

			w := f.do(t, http.MethodPost, "/api/v1/inventory/adjustments", tt.body,
				withToken(f.staff), withHeader(handlers.IdempotencyKeyHeader, "order-42"))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				resp := decodeError(t, w)
				assert.Equal(t, tt.expectedCode, resp.Code)
				assert.Equal(t, tt.retryable, resp.Retryable)
				assert.NotEmpty(t, resp.Error)
			}
			if tt.validate != nil {
				tt.validate(t, w.Body.Bytes(), w.Header())
			}
		})
	}
}

func TestInventoryHandler_CreateVariants(t *testing.T) {
	f := newAPIFixture(t)
	matrix := helpers.CreateTestMatrix(t, "P1", []string{"Red", "Blue"}, []string{"S", "M"}, 4)

	f.service.EXPECT().CreateVariants(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.CreateVariantsCommand) ([]*domain.Variant, error) {
			assert.Equal(t, "P1", cmd.ProductID)
			assert.Equal(t, []string{"Red", "Blue"}, cmd.Colors)
			assert.Equal(t, 4, cmd.InitialCount)
			require.NotNil(t, cmd.LowStockThreshold)
			assert.Equal(t, 2, *cmd.LowStockThreshold)
			assert.Equal(t, "1.5", cmd.PriceAdjustment.String())
			return matrix, nil
		})

	w := f.do(t, http.MethodPost, "/api/v1/products/P1/variants",
		`{"colors":["Red","Blue"],"sizes":["S","M"],"initial_count":4,"low_stock_threshold":2,"price_adjustment":"1.50"}`,
		withToken(f.staff))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp handlers.VariantsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Count)
	assert.Len(t, resp.Variants, 4)
}

func TestInventoryHandler_GetProductVariants(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMocks     func(*apiFixture)
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "plain",
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().GetProductVariants(gomock.Any(), "P1").
					Return([]*domain.Variant{helpers.CreateTestVariant()}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:  "with_stock_flags",
			query: "?include_stock=true",
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().GetProductVariantsWithStock(gomock.Any(), "P1").
					Return([]*domain.Variant{helpers.CreateTestVariant().WithStockFlag()}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name: "unknown_product_is_empty",
			setupMocks: func(f *apiFixture) {
				f.service.EXPECT().GetProductVariants(gomock.Any(), "P1").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad_flag",
			query:          "?include_stock=maybe",
			setupMocks:     func(*apiFixture) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			tt.setupMocks(f)

			w := f.do(t, http.MethodGet, "/api/v1/products/P1/variants"+tt.query, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp handlers.VariantsResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedCount, resp.Count)
				assert.NotNil(t, resp.Variants)
			}
		})
	}
}

func TestInventoryHandler_GetAndUpdateVariant(t *testing.T) {
	f := newAPIFixture(t)
	v := helpers.CreateTestVariant()

	f.service.EXPECT().GetVariant(gomock.Any(), "P1", "red", "m").Return(v, nil)
	f.service.EXPECT().GetVariant(gomock.Any(), "P1", "red", "xl").Return(nil, domain.NewVariantNotFound("P1|RED|XL"))

	w := f.do(t, http.MethodGet, "/api/v1/products/P1/variants/red/m", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sku":"P1-RED-M"`)

	w = f.do(t, http.MethodGet, "/api/v1/products/P1/variants/red/xl", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.service.EXPECT().UpdateVariantSettings(gomock.Any(), "P1", "red", "m", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _ string, s domain.VariantSettings) (*domain.Variant, error) {
			require.NotNil(t, s.LowStockThreshold)
			assert.Equal(t, 3, *s.LowStockThreshold)
			require.NotNil(t, s.IsActive)
			assert.False(t, *s.IsActive)
			return v, nil
		})

	w = f.do(t, http.MethodPatch, "/api/v1/products/P1/variants/red/m",
		`{"low_stock_threshold":3,"is_active":false}`, withToken(f.staff))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInventoryHandler_CheckStock(t *testing.T) {
	f := newAPIFixture(t)

	items := []domain.StockCheckItem{
		{ProductID: "P1", Color: "red", Size: "m", RequestedQuantity: 2},
		{ProductID: "P1", Color: "red", Size: "l", RequestedQuantity: 9},
	}
	f.service.EXPECT().CheckStock(gomock.Any(), items).Return([]domain.StockCheckResult{
		{ProductID: "P1", Color: "red", Size: "m", RequestedQuantity: 2, Available: true, CurrentStock: 5},
		{ProductID: "P1", Color: "red", Size: "l", RequestedQuantity: 9, Available: false, CurrentStock: 1},
	}, nil)

	w := f.do(t, http.MethodPost, "/api/v1/inventory/check", map[string]interface{}{"items": items})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items        []domain.StockCheckResult `json:"items"`
		AllAvailable bool                      `json:"all_available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.False(t, resp.AllAvailable)

	f.service.EXPECT().CheckStock(gomock.Any(), gomock.Any()).
		Return(nil, domain.NewInvalidInput("requested_quantity must be positive"))
	w = f.do(t, http.MethodPost, "/api/v1/inventory/check", map[string]interface{}{"items": items})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryHandler_BulkSetCounts(t *testing.T) {
	tests := []struct {
		name           string
		results        []domain.BulkTargetResult
		expectedStatus int
	}{
		{
			name: "all_applied",
			results: []domain.BulkTargetResult{
				{Color: "red", Size: "m", Status: domain.BulkUpdated, PreviousCount: 10, InventoryCount: 7, Delta: -3},
				{Color: "red", Size: "l", Status: domain.BulkUnchanged, PreviousCount: 4, InventoryCount: 4},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "partial_failure",
			results: []domain.BulkTargetResult{
				{Color: "red", Size: "m", Status: domain.BulkUpdated},
				{Color: "red", Size: "l", Status: domain.BulkFailed, Error: "inventory_count cannot be negative", ErrorCode: domain.KindInvalidInput},
			},
			expectedStatus: http.StatusMultiStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			f.service.EXPECT().BulkSetCounts(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, cmd domain.BulkSetCountsCommand) ([]domain.BulkTargetResult, error) {
					assert.Equal(t, "P1", cmd.ProductID)
					assert.Equal(t, "staff-1", cmd.ActingUserID)
					assert.Len(t, cmd.Targets, 2)
					return tt.results, nil
				})

			w := f.do(t, http.MethodPut, "/api/v1/products/P1/inventory",
				`{"targets":[{"color":"red","size":"m","inventory_count":7},{"color":"red","size":"l","inventory_count":-1}]}`,
				withToken(f.staff))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp handlers.BulkSetCountsResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, domain.BulkFailures(tt.results), resp.Failed)
			assert.Len(t, resp.Results, 2)
		})
	}
}

func TestInventoryHandler_LowStock(t *testing.T) {
	f := newAPIFixture(t)

	f.service.EXPECT().LowStockVariants(gomock.Any(), domain.LowStockQuery{
		ProductID:         "P1",
		ThresholdOverride: helpers.IntPtr(5),
		Limit:             10,
	}).Return([]*domain.Variant{helpers.CreateTestVariant(func(v *domain.Variant) { v.InventoryCount = 5 })}, nil)

	w := f.do(t, http.MethodGet, "/api/v1/inventory/low-stock?product_id=P1&threshold=5&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = f.do(t, http.MethodGet, "/api/v1/inventory/low-stock?threshold=five", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/inventory/low-stock?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryHandler_LedgerRoutes(t *testing.T) {
	f := newAPIFixture(t)

	f.service.EXPECT().ListTransactions(gomock.Any(), "P1", "red", "m", 20, 40).
		Return([]*domain.InventoryTransaction{{ID: uuid.New(), QuantityChange: -1, TransactionType: domain.TransactionSale}}, nil)

	w := f.do(t, http.MethodGet, "/api/v1/products/P1/variants/red/m/transactions?limit=20&offset=40", nil, withToken(f.staff))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transaction_type":"sale"`)

	f.service.EXPECT().VerifyLedger(gomock.Any(), "P1").Return([]domain.LedgerCheck{
		{SKU: "P1-RED-M", InitialCount: 10, LedgerSum: -3, InventoryCount: 7, Consistent: true},
		{SKU: "P1-RED-L", InitialCount: 4, LedgerSum: 0, InventoryCount: 5, Consistent: false},
	}, nil)

	w = f.do(t, http.MethodGet, "/api/v1/products/P1/ledger/verify", nil, withToken(f.staff))
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Consistent bool                 `json:"consistent"`
		Variants   []domain.LedgerCheck `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Consistent)
	assert.Len(t, resp.Variants, 2)
}

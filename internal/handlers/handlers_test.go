package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/storefront-inventory/internal/adapters/redis_adapter"
	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/handlers"
	"github.com/ammerola/storefront-inventory/internal/pkg/token"
	"github.com/ammerola/storefront-inventory/test/helpers"
	"github.com/ammerola/storefront-inventory/test/mocks"
)

// apiFixture serves the full route table over mocked collaborators and a
// miniredis-backed cache.
type apiFixture struct {
	service  *mocks.MockInventoryService
	storage  *mocks.MockFileStorage
	jobs     *mocks.MockImportJobStore
	queue    *mocks.MockTaskEnqueuer
	redis    *helpers.TestRedis
	mux      *http.ServeMux
	staff    string
	customer string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	logger := helpers.TestLogger()
	rdb := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(rdb.Client, time.Minute, logger)

	f := &apiFixture{
		service: mocks.NewMockInventoryService(ctrl),
		storage: mocks.NewMockFileStorage(ctrl),
		jobs:    mocks.NewMockImportJobStore(ctrl),
		queue:   mocks.NewMockTaskEnqueuer(ctrl),
		redis:   rdb,
		mux:     http.NewServeMux(),
	}

	tokens := token.NewService("handler-test-secret", time.Hour)
	var err error
	f.staff, err = tokens.GenerateToken("staff-1", string(domain.RoleStaff))
	require.NoError(t, err)
	f.customer, err = tokens.GenerateToken("cust-1", string(domain.RoleCustomer))
	require.NoError(t, err)

	handlers.RegisterRoutes(f.mux, handlers.Handlers{
		Inventory: handlers.NewInventoryHandler(f.service, logger),
		Import:    handlers.NewImportHandler(f.storage, f.jobs, f.queue, 1<<20, logger),
		Export:    handlers.NewExportHandler(f.service, cache, time.Minute, logger),
		Dashboard: handlers.NewDashboardHandler(f.service, cache, time.Minute, logger),
	}, tokens)

	return f
}

type requestOption func(*http.Request)

func withToken(tok string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withHeader(k, v string) requestOption {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

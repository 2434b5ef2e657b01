//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/suite"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/storefront-inventory/internal/adapters/db"
	redis_a "github.com/ammerola/storefront-inventory/internal/adapters/redis_adapter"
	"github.com/ammerola/storefront-inventory/internal/adapters/storage"
	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/services"
	"github.com/ammerola/storefront-inventory/internal/handlers"
	"github.com/ammerola/storefront-inventory/internal/handlers/middleware"
	"github.com/ammerola/storefront-inventory/internal/pkg/token"
	"github.com/ammerola/storefront-inventory/internal/workers"
	"github.com/ammerola/storefront-inventory/test/helpers"
)

// taskRecorder stands in for the asynq client and keeps enqueued tasks so
// the suite can run them through the real processor.
type taskRecorder struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (r *taskRecorder) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: uuid.NewString(), Type: task.Type()}, nil
}

func (r *taskRecorder) drain() []*asynq.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.tasks
	r.tasks = nil
	return out
}

type InventoryE2ESuite struct {
	suite.Suite
	server     *httptest.Server
	client     *http.Client
	baseURL    string
	testDB     *helpers.TestDB
	testRedis  *helpers.TestRedis
	queue      *taskRecorder
	reconcile  *workers.ReconcileProcessor
	staffToken string
	custToken  string
}

func (s *InventoryE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())
	s.queue = &taskRecorder{}

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *InventoryE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *InventoryE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
	s.queue.drain()
}

func (s *InventoryE2ESuite) TestVariantLifecycle() {
	// 1. Provision a 2×2 matrix
	resp := s.makeRequest(http.MethodPost, "/products/TEE/variants", s.staffToken, map[string]interface{}{
		"colors":        []string{"Black", "White"},
		"sizes":         []string{"M", "L"},
		"initial_count": 6,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created handlers.VariantsResponse
	s.decodeResponse(resp, &created)
	s.Equal(4, created.Count)

	// 2. Customers can read counts but not adjust them
	resp = s.makeRequest(http.MethodGet, "/products/TEE/variants/black/m", s.custToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var variant domain.Variant
	s.decodeResponse(resp, &variant)
	s.Equal("TEE-BLACK-M", variant.SKU)
	s.Equal(6, variant.InventoryCount)

	resp = s.makeRequest(http.MethodPost, "/inventory/adjustments", s.custToken, map[string]interface{}{
		"product_id": "TEE", "color": "Black", "size": "M",
		"quantity_change": -1, "transaction_type": "sale",
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// 3. Sell two, replaying the first request
	sale := map[string]interface{}{
		"product_id": "TEE", "color": "Black", "size": "M",
		"quantity_change": -2, "transaction_type": "sale",
	}
	for i := 0; i < 2; i++ {
		resp = s.makeRequest(http.MethodPost, "/inventory/adjustments", s.staffToken, sale,
			handlers.IdempotencyKeyHeader, "order-1001")
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var result domain.AdjustmentResult
		s.decodeResponse(resp, &result)
		s.Equal(4, result.Variant.InventoryCount)
		s.Equal(i == 1, result.Replayed)
	}

	// 4. Overselling is refused
	resp = s.makeRequest(http.MethodPost, "/inventory/adjustments", s.staffToken, map[string]interface{}{
		"product_id": "TEE", "color": "Black", "size": "M",
		"quantity_change": -5, "transaction_type": "sale",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	var apiErr handlers.ErrorResponse
	s.decodeResponse(resp, &apiErr)
	s.Equal(string(domain.KindInsufficientStock), apiErr.Code)

	// 5. Availability check reflects the sale
	resp = s.makeRequest(http.MethodPost, "/inventory/check", "", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "TEE", "color": "Black", "size": "M", "requested_quantity": 5},
			{"product_id": "TEE", "color": "White", "size": "L", "requested_quantity": 5},
		},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var check struct {
		Items        []domain.StockCheckResult `json:"items"`
		AllAvailable bool                      `json:"all_available"`
	}
	s.decodeResponse(resp, &check)
	s.False(check.AllAvailable)
	s.Len(check.Items, 2)

	// 6. Ledger agrees with the counters
	resp = s.makeRequest(http.MethodGet, "/products/TEE/ledger/verify", s.staffToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var verify struct {
		Consistent bool                 `json:"consistent"`
		Variants   []domain.LedgerCheck `json:"variants"`
	}
	s.decodeResponse(resp, &verify)
	s.True(verify.Consistent)
	s.Len(verify.Variants, 4)

	resp = s.makeRequest(http.MethodGet, "/products/TEE/variants/Black/M/transactions", s.staffToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var history struct {
		Transactions []domain.InventoryTransaction `json:"transactions"`
	}
	s.decodeResponse(resp, &history)
	s.Require().Len(history.Transactions, 1)
	s.Equal(-2, history.Transactions[0].QuantityChange)
	s.Equal("staff-e2e", history.Transactions[0].CreatedBy)
}

func (s *InventoryE2ESuite) TestReconciliationImport() {
	resp := s.makeRequest(http.MethodPost, "/products/HOODIE/variants", s.staffToken, map[string]interface{}{
		"colors":        []string{"Grey"},
		"sizes":         []string{"S", "M"},
		"initial_count": 3,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	sheet := s.countSheet([][]string{
		{"HOODIE", "Grey", "S", "12"},
		{"HOODIE", "Grey", "M", "3"},
		{"HOODIE", "Grey", "XL", "1"},
	})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "count.xlsx")
	s.Require().NoError(err)
	_, err = part.Write(sheet)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/import/reconciliation", body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.staffToken)

	resp, err = s.client.Do(req)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)

	var accepted handlers.ImportAccepted
	s.decodeResponse(resp, &accepted)
	s.Equal(domain.ImportPending, accepted.Status)

	tasks := s.queue.drain()
	s.Require().Len(tasks, 1)
	s.Require().NoError(s.reconcile.ProcessReconcileSheet(context.Background(), tasks[0]))

	resp = s.makeRequest(http.MethodGet, "/import/status/"+accepted.JobID, s.staffToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var job domain.ImportJob
	s.decodeResponse(resp, &job)
	s.Equal(domain.ImportCompleted, job.Status)
	s.Equal(3, job.Rows)
	s.Equal(1, job.Updated)
	s.Equal(1, job.Unchanged)
	s.Equal(1, job.Skipped)

	resp = s.makeRequest(http.MethodGet, "/products/HOODIE/variants/Grey/S", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var variant domain.Variant
	s.decodeResponse(resp, &variant)
	s.Equal(12, variant.InventoryCount)
}

func (s *InventoryE2ESuite) TestConcurrentSales() {
	resp := s.makeRequest(http.MethodPost, "/products/CAP/variants", s.staffToken, map[string]interface{}{
		"colors": []string{"Red"}, "sizes": []string{"OS"}, "initial_count": 5,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := s.makeRequest(http.MethodPost, "/inventory/adjustments", s.staffToken, map[string]interface{}{
				"product_id": "CAP", "color": "Red", "size": "OS",
				"quantity_change": -1, "transaction_type": "sale",
			}, handlers.IdempotencyKeyHeader, fmt.Sprintf("cap-%d", i))
			resp.Body.Close()
			mu.Lock()
			statuses[resp.StatusCode]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	s.Equal(5, statuses[http.StatusOK])
	s.Equal(7, statuses[http.StatusConflict])

	resp = s.makeRequest(http.MethodGet, "/products/CAP/variants/Red/OS", "", nil)
	var variant domain.Variant
	s.decodeResponse(resp, &variant)
	s.Equal(0, variant.InventoryCount)
}

func (s *InventoryE2ESuite) TestHealthCheck() {
	resp := s.makeRequest(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var health handlers.HealthStatus
	s.decodeResponse(resp, &health)
	s.Equal("healthy", health.Status)
	s.Contains(health.Services, "database")
	s.Contains(health.Services, "redis")
}

// Helper methods

type noQueues struct{}

func (noQueues) Queues() ([]string, error) { return nil, nil }

func (noQueues) GetQueueInfo(string) (*asynq.QueueInfo, error) { return &asynq.QueueInfo{}, nil }

func (s *InventoryE2ESuite) startTestServer() *httptest.Server {
	cfg := helpers.LoadTestConfig()
	logger := helpers.TestLogger()
	rdb := s.testRedis.Client

	cache := redis_a.NewCache(rdb, cfg.Redis.TTL, logger)
	jobs := redis_a.NewImportJobStore(rdb, cfg.Inventory.ImportStatusTTL)
	service := services.NewInventoryService(
		db.NewVariantRepository(s.testDB.Database, logger),
		db.NewLedgerRepository(s.testDB.Database, logger),
		s.testDB.Database,
		cache,
		redis_a.NewIdempotencyStore(rdb, cfg.Inventory.IdempotencyTTL, logger),
		services.Options{MaxCASRetries: 50},
		logger,
	)

	sheets, err := storage.NewLocalStorage(s.T().TempDir(), logger)
	s.Require().NoError(err)
	s.reconcile = workers.NewReconcileProcessor(service, sheets, jobs, cfg.FileProcessing.MaxUploadBytes(), logger)

	tokens := token.NewService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)
	s.staffToken, err = tokens.GenerateToken("staff-e2e", string(domain.RoleStaff))
	s.Require().NoError(err)
	s.custToken, err = tokens.GenerateToken("customer-e2e", string(domain.RoleCustomer))
	s.Require().NoError(err)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Handlers{
		Inventory: handlers.NewInventoryHandler(service, logger),
		Import:    handlers.NewImportHandler(sheets, jobs, s.queue, cfg.FileProcessing.MaxUploadBytes(), logger),
		Export:    handlers.NewExportHandler(service, cache, time.Minute, logger),
		Dashboard: handlers.NewDashboardHandler(service, cache, time.Minute, logger),
		Health:    handlers.NewHealthHandler(s.testDB.Database, rdb, noQueues{}, "e2e", "test", logger),
	}, tokens)

	handler := middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.ContextLogger(helpers.AppLogger()),
		middleware.Recovery(helpers.AppLogger()),
	)
	return httptest.NewServer(handler)
}

// makeRequest sends body as JSON. headers are key, value pairs.
func (s *InventoryE2ESuite) makeRequest(method, path, bearer string, body interface{}, headers ...string) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	url := s.baseURL + path
	if path == "/health" {
		url = s.server.URL + path
	}
	req, err := http.NewRequest(method, url, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *InventoryE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func (s *InventoryE2ESuite) countSheet(rows [][]string) []byte {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Counts")
	s.Require().NoError(err)

	header := sheet.AddRow()
	for _, h := range []string{"product_id", "color", "size", "inventory_count"} {
		header.AddCell().SetString(h)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}

	var buf bytes.Buffer
	s.Require().NoError(file.Write(&buf))
	return buf.Bytes()
}

func TestInventoryE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(InventoryE2ESuite))
}

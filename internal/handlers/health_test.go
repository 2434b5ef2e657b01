package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-inventory/internal/handlers"
	"github.com/ammerola/storefront-inventory/test/helpers"
	"github.com/ammerola/storefront-inventory/test/mocks"
)

type stubInspector struct{}

func (stubInspector) Queues() ([]string, error) { return []string{"critical", "default"}, nil }

func (stubInspector) GetQueueInfo(q string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: q, Size: 3, Pending: 2, Active: 1}, nil
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name            string
		dbErr           error
		stopRedis       bool
		expectedStatus  int
		expectedHealth  string
		expectedReady   bool
		expectedDBState string
	}{
		{
			name:            "all_healthy",
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedReady:   true,
			expectedDBState: "healthy",
		},
		{
			name:            "database_down",
			dbErr:           errors.New("connection refused"),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedDBState: "unhealthy",
		},
		{
			name:            "redis_down",
			stopRedis:       true,
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedDBState: "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			db := mocks.NewMockDatabase(ctrl)
			db.EXPECT().Ping(gomock.Any()).Return(tt.dbErr).AnyTimes()
			db.EXPECT().Health(gomock.Any()).Return(map[string]interface{}{"total_conns": 4}).AnyTimes()

			rdb := helpers.SetupTestRedis(t)
			if tt.stopRedis {
				rdb.Server.Close()
			}

			h := handlers.NewHealthHandler(db, rdb.Client, stubInspector{}, "1.2.3", "test", helpers.TestLogger())
			mux := http.NewServeMux()
			mux.HandleFunc("GET /health", h.Health)
			mux.HandleFunc("GET /ready", h.Readiness)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var health handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
			assert.Equal(t, tt.expectedHealth, health.Status)
			assert.Equal(t, "1.2.3", health.Version)
			assert.Equal(t, tt.expectedDBState, health.Services["database"].Status)
			assert.Equal(t, "healthy", health.Services["asynq"].Status)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			var ready struct {
				Ready bool `json:"ready"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ready))
			assert.Equal(t, tt.expectedReady, ready.Ready)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

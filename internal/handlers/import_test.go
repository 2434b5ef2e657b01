package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/handlers"
	"github.com/ammerola/storefront-inventory/internal/workers"
)

func uploadRequest(t *testing.T, filename string, content []byte, tok string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/reconciliation", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func TestImportHandler_ImportReconciliation(t *testing.T) {
	f := newAPIFixture(t)

	var storedKey string
	f.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, r io.Reader, _ string) (string, error) {
			storedKey = key
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "sheet-bytes", string(data))
			return "s3://bucket/" + key, nil
		})

	var saved domain.ImportJob
	f.jobs.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *domain.ImportJob) error {
			saved = *job
			return nil
		})

	f.queue.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
			assert.Equal(t, workers.TypeReconcileSheet, task.Type())
			var p workers.ReconcileSheetPayload
			require.NoError(t, json.Unmarshal(task.Payload(), &p))
			assert.Equal(t, saved.ID, p.JobID)
			assert.Equal(t, "staff-1", p.UserID)
			assert.Equal(t, domain.SheetXLSX, p.Format)
			return &asynq.TaskInfo{ID: p.JobID}, nil
		})

	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, uploadRequest(t, "weekly count.xlsx", []byte("sheet-bytes"), f.staff))

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp handlers.ImportAccepted
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, saved.ID, resp.JobID)
	assert.Equal(t, domain.ImportPending, resp.Status)
	assert.Equal(t, "/api/v1/import/status/"+resp.JobID, resp.StatusURL)

	assert.Equal(t, "reconciliation/"+resp.JobID+"/weekly count.xlsx", storedKey)
	assert.Equal(t, storedKey, saved.StorageKey)
	assert.Equal(t, "staff-1", saved.CreatedBy)
}

func TestImportHandler_Rejections(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		content        []byte
		setupMocks     func(*apiFixture)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "unsupported_type",
			filename:       "count.csv",
			content:        []byte("a,b"),
			setupMocks:     func(*apiFixture) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_INPUT",
		},
		{
			name:           "too_large",
			filename:       "count.pdf",
			content:        bytes.Repeat([]byte("x"), 2<<20),
			setupMocks:     func(*apiFixture) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_INPUT",
		},
		{
			name:     "storage_down",
			filename: "count.pdf",
			content:  []byte("%PDF"),
			setupMocks: func(f *apiFixture) {
				f.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", errors.New("s3 unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "STORAGE_ERROR",
		},
		{
			name:     "queue_down",
			filename: "count.pdf",
			content:  []byte("%PDF"),
			setupMocks: func(f *apiFixture) {
				f.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil)
				gomock.InOrder(
					f.jobs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
					f.jobs.EXPECT().Save(gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, job *domain.ImportJob) error {
							assert.Equal(t, domain.ImportFailed, job.Status)
							return nil
						}),
				)
				f.queue.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
				f.storage.EXPECT().Delete(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, key string) error {
						assert.True(t, strings.HasPrefix(key, workers.SheetPrefix))
						return nil
					})
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "STORAGE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			tt.setupMocks(f)

			w := httptest.NewRecorder()
			f.mux.ServeHTTP(w, uploadRequest(t, tt.filename, tt.content, f.staff))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
		})
	}
}

func TestImportHandler_ImportStatus(t *testing.T) {
	f := newAPIFixture(t)

	f.jobs.EXPECT().Get(gomock.Any(), "job-1").Return(&domain.ImportJob{
		ID: "job-1", Status: domain.ImportCompleted, Rows: 4, Updated: 3, Unchanged: 1,
	}, nil)
	f.jobs.EXPECT().Get(gomock.Any(), "job-2").Return(nil, nil)
	f.jobs.EXPECT().Get(gomock.Any(), "job-3").Return(nil, errors.New("redis down"))

	w := f.do(t, http.MethodGet, "/api/v1/import/status/job-1", nil, withToken(f.staff))
	require.Equal(t, http.StatusOK, w.Code)
	var job domain.ImportJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, domain.ImportCompleted, job.Status)
	assert.Equal(t, 3, job.Updated)

	w = f.do(t, http.MethodGet, "/api/v1/import/status/job-2", nil, withToken(f.staff))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/import/status/job-3", nil, withToken(f.staff))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// internal/handlers/import.go
package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/internal/handlers/middleware"
	"github.com/ammerola/storefront-inventory/internal/workers"
)

// ImportHandler accepts reconciliation sheets and reports their progress.
type ImportHandler struct {
	storage     ports.FileStorage
	jobs        ports.ImportJobStore
	enqueuer    ports.TaskEnqueuer
	maxFileSize int64
	logger      *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(storage ports.FileStorage, jobs ports.ImportJobStore, enqueuer ports.TaskEnqueuer, maxFileSize int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		storage:     storage,
		jobs:        jobs,
		enqueuer:    enqueuer,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("handler", "import")),
	}
}

// ImportAccepted is returned once a sheet is queued.
type ImportAccepted struct {
	JobID     string              `json:"job_id"`
	Status    domain.ImportStatus `json:"status"`
	Format    domain.SheetFormat  `json:"format"`
	StatusURL string              `json:"status_url"`
}

// ImportReconciliation handles POST /api/v1/import/reconciliation
func (h *ImportHandler) ImportReconciliation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, string(domain.KindInvalidInput), "failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, string(domain.KindInvalidInput), "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		respondError(w, http.StatusRequestEntityTooLarge, string(domain.KindInvalidInput), "file is too large")
		return
	}

	format, err := domain.SheetFormatFromFilename(header.Filename)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "import sheet")
		return
	}

	var userID string
	if claims, ok := middleware.UserClaimsFromContext(ctx); ok {
		userID = claims.UserID
	}

	jobID := uuid.NewString()
	filename := filepath.Base(header.Filename)
	key := workers.SheetPrefix + jobID + "/" + filename

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := h.storage.Upload(ctx, key, file, contentType); err != nil {
		h.logger.ErrorContext(ctx, "failed to store sheet",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, http.StatusServiceUnavailable, string(domain.KindStorage), "failed to store sheet")
		return
	}

	now := time.Now().UTC()
	job := &domain.ImportJob{
		ID:         jobID,
		Filename:   filename,
		StorageKey: key,
		Format:     format,
		Status:     domain.ImportPending,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.jobs.Save(ctx, job); err != nil {
		h.logger.ErrorContext(ctx, "failed to record import job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		h.discard(r, key)
		respondError(w, http.StatusServiceUnavailable, string(domain.KindStorage), "failed to create import job")
		return
	}

	task, err := workers.NewReconcileSheetTask(workers.ReconcileSheetPayload{
		JobID:      jobID,
		StorageKey: key,
		Filename:   filename,
		Format:     format,
		UserID:     userID,
	})
	if err == nil {
		_, err = h.enqueuer.EnqueueContext(ctx, task)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to queue import job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		job.Status = domain.ImportFailed
		job.Error = "failed to queue import job"
		if serr := h.jobs.Save(ctx, job); serr != nil {
			h.logger.WarnContext(ctx, "failed to mark import job failed",
				slog.String("job_id", jobID),
				slog.String("error", serr.Error()))
		}
		h.discard(r, key)
		respondError(w, http.StatusServiceUnavailable, string(domain.KindStorage), "failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "reconciliation sheet queued",
		slog.String("job_id", jobID),
		slog.String("filename", filename),
		slog.String("format", string(format)),
		slog.Int64("size", header.Size))

	respondJSON(w, http.StatusAccepted, ImportAccepted{
		JobID:     jobID,
		Status:    domain.ImportPending,
		Format:    format,
		StatusURL: "/api/v1/import/status/" + jobID,
	})
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("jobId")

	job, err := h.jobs.Get(ctx, jobID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, http.StatusServiceUnavailable, string(domain.KindStorage), "failed to get job status")
		return
	}
	if job == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "import job not found")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// discard removes an uploaded sheet whose job never got queued.
func (h *ImportHandler) discard(r *http.Request, key string) {
	if err := h.storage.Delete(r.Context(), key); err != nil {
		h.logger.WarnContext(r.Context(), "failed to remove orphaned sheet",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

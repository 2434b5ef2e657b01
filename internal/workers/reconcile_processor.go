// internal/workers/reconcile_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

// ReconcileProcessor applies uploaded count sheets through BulkSetCounts.
type ReconcileProcessor struct {
	service  ports.InventoryService
	storage  ports.FileStorage
	jobs     ports.ImportJobStore
	maxBytes int64
	logger   *slog.Logger
}

// NewReconcileProcessor creates a reconciliation processor. Sheets larger
// than maxBytes are rejected.
func NewReconcileProcessor(service ports.InventoryService, storage ports.FileStorage, jobs ports.ImportJobStore, maxBytes int64, logger *slog.Logger) *ReconcileProcessor {
	return &ReconcileProcessor{
		service:  service,
		storage:  storage,
		jobs:     jobs,
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("processor", "reconcile")),
	}
}

// ProcessReconcileSheet handles TypeReconcileSheet.
func (p *ReconcileProcessor) ProcessReconcileSheet(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ReconcileSheetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log := p.logger.With(slog.String("job_id", payload.JobID))
	log.InfoContext(ctx, "processing reconciliation sheet",
		slog.String("filename", payload.Filename),
		slog.String("format", string(payload.Format)))

	job, err := p.jobs.Get(ctx, payload.JobID)
	if err != nil {
		return fmt.Errorf("failed to load import job: %w", err)
	}
	if job == nil {
		job = &domain.ImportJob{
			ID:         payload.JobID,
			Filename:   payload.Filename,
			StorageKey: payload.StorageKey,
			Format:     payload.Format,
			CreatedBy:  payload.UserID,
			CreatedAt:  time.Now().UTC(),
		}
	}
	if job.Status == domain.ImportCompleted || job.Status == domain.ImportFailed {
		log.InfoContext(ctx, "import job already finished", slog.String("status", string(job.Status)))
		return nil
	}

	job.Status = domain.ImportProcessing
	job.Error = ""
	if err := p.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to mark import job processing: %w", err)
	}

	data, err := p.download(ctx, payload.StorageKey)
	if err != nil {
		return p.fail(ctx, job, err, !isLastAttempt(ctx))
	}

	parsed, err := ParseSheet(payload.Format, data)
	if err != nil {
		return p.fail(ctx, job, err, false)
	}

	job.Rows = len(parsed.Rows)
	job.ParseErrors = parsed.Errors
	job.Products = nil
	job.Updated, job.Unchanged, job.Skipped, job.Failed = 0, 0, 0, 0

	retryable := 0
	for _, cmd := range domain.GroupByProduct(parsed.Rows, payload.UserID) {
		report := domain.ProductReport{ProductID: cmd.ProductID}

		results, err := p.service.BulkSetCounts(ctx, cmd)
		if err != nil {
			report.Error = err.Error()
			job.Failed += len(cmd.Targets)
			if domain.IsRetryable(err) {
				retryable++
			}
			log.WarnContext(ctx, "product reconciliation failed",
				slog.String("product_id", cmd.ProductID),
				slog.String("error", err.Error()))
		} else {
			report.Results = results
			job.Tally(results)
		}
		job.Products = append(job.Products, report)
	}

	// Retryable product failures requeue the whole sheet until the last
	// attempt. Targets are absolute counts, so a rerun converges.
	if retryable > 0 && !isLastAttempt(ctx) {
		job.Error = fmt.Sprintf("%d product(s) hit a transient failure; retrying", retryable)
		if err := p.jobs.Save(ctx, job); err != nil {
			log.WarnContext(ctx, "failed to save import progress", slog.String("error", err.Error()))
		}
		return fmt.Errorf("reconciliation of job %s incomplete: %d retryable product failures", job.ID, retryable)
	}

	job.Status = domain.ImportCompleted
	job.Error = ""
	if err := p.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to save import report: %w", err)
	}

	log.InfoContext(ctx, "reconciliation sheet processed",
		slog.Int("rows", job.Rows),
		slog.Int("updated", job.Updated),
		slog.Int("unchanged", job.Unchanged),
		slog.Int("skipped", job.Skipped),
		slog.Int("failed", job.Failed),
		slog.Int("parse_errors", len(job.ParseErrors)),
		slog.Duration("duration", time.Since(start)))

	return nil
}

func (p *ReconcileProcessor) download(ctx context.Context, key string) ([]byte, error) {
	rc, err := p.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download sheet: %w", err)
	}
	defer rc.Close()

	limit := p.maxBytes
	if limit <= 0 {
		limit = 50 << 20
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("sheet exceeds %d bytes", limit)
	}
	return data, nil
}

// fail records err on the job. When retry is set the job stays in
// processing and the error goes back to asynq.
func (p *ReconcileProcessor) fail(ctx context.Context, job *domain.ImportJob, err error, retry bool) error {
	job.Error = err.Error()
	if !retry {
		job.Status = domain.ImportFailed
	}
	if serr := p.jobs.Save(ctx, job); serr != nil {
		p.logger.WarnContext(ctx, "failed to save import job failure",
			slog.String("job_id", job.ID),
			slog.String("error", serr.Error()))
	}

	p.logger.ErrorContext(ctx, "reconciliation sheet failed",
		slog.String("job_id", job.ID),
		slog.Bool("will_retry", retry),
		slog.String("error", err.Error()))

	if retry {
		return err
	}
	return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
}

// isLastAttempt reports whether asynq will not retry this task again. Outside
// a worker (no retry metadata) every attempt is the last.
func isLastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}

// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

// SheetPrefix is the storage prefix of uploaded reconciliation sheets.
const SheetPrefix = "reconciliation/"

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	storage        ports.FileStorage
	sheetRetention time.Duration
	tempDir        string
	tempMaxAge     time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(storage ports.FileStorage, sheetRetention time.Duration, tempDir string, tempMaxAge time.Duration, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		storage:        storage,
		sheetRetention: sheetRetention,
		tempDir:        tempDir,
		tempMaxAge:     tempMaxAge,
		now:            time.Now,
		logger:         logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupSheets removes stored reconciliation sheets older than retention.
func (p *CleanupProcessor) CleanupSheets(ctx context.Context, _ *asynq.Task) error {
	objects, err := p.storage.List(ctx, SheetPrefix)
	if err != nil {
		return fmt.Errorf("failed to list stored sheets: %w", err)
	}

	cutoff := p.now().Add(-p.sheetRetention)
	var deleted, failed int
	for _, obj := range objects {
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := p.storage.Delete(ctx, obj.Key); err != nil {
			failed++
			p.logger.WarnContext(ctx, "failed to delete stored sheet",
				slog.String("key", obj.Key),
				slog.String("error", err.Error()))
			continue
		}
		deleted++
	}

	p.logger.InfoContext(ctx, "stored sheets cleaned up",
		slog.Int("scanned", len(objects)),
		slog.Int("deleted", deleted),
		slog.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("failed to delete %d stored sheet(s)", failed)
	}
	return nil
}

// CleanupTempFiles removes old temporary files
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, _ *asynq.Task) error {
	if p.tempDir == "" {
		return nil
	}

	cutoff := p.now().Add(-p.tempMaxAge)
	var deleted int
	err := filepath.WalkDir(p.tempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
				return nil
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deleted))

	return nil
}

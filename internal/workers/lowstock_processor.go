// internal/workers/lowstock_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

// LowStockProcessor scans for variants at or below threshold and queues an
// alert for the configured recipients.
type LowStockProcessor struct {
	service    ports.InventoryService
	enqueuer   ports.TaskEnqueuer
	recipients []string
	logger     *slog.Logger
}

// NewLowStockProcessor creates a low-stock scan processor
func NewLowStockProcessor(service ports.InventoryService, enqueuer ports.TaskEnqueuer, recipients []string, logger *slog.Logger) *LowStockProcessor {
	return &LowStockProcessor{
		service:    service,
		enqueuer:   enqueuer,
		recipients: recipients,
		logger:     logger.With(slog.String("processor", "low_stock")),
	}
}

// ScanLowStock handles TypeLowStockScan.
func (p *LowStockProcessor) ScanLowStock(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	variants, err := p.service.LowStockVariants(ctx, domain.LowStockQuery{
		ThresholdOverride: payload.ThresholdOverride,
		ProductID:         payload.ProductID,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindInvalidInput {
			return fmt.Errorf("low-stock scan rejected: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to scan low stock: %w", err)
	}

	p.logger.InfoContext(ctx, "low-stock scan finished",
		slog.Int("variants", len(variants)),
		slog.String("product_id", payload.ProductID))

	if len(variants) == 0 {
		return nil
	}
	if len(p.recipients) == 0 {
		p.logger.WarnContext(ctx, "low stock found but no alert recipients configured",
			slog.Int("variants", len(variants)))
		return nil
	}

	task, err := NewLowStockAlertTask(LowStockAlertPayload{
		Recipients:  p.recipients,
		Lines:       lowStockLines(variants),
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	info, err := p.enqueuer.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue low-stock alert: %w", err)
	}

	p.logger.InfoContext(ctx, "low-stock alert queued",
		slog.String("task_id", info.ID),
		slog.Int("recipients", len(p.recipients)))

	return nil
}

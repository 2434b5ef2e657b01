// internal/workers/summary_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/internal/core/services"
)

// SummaryProcessor rebuilds the cached dashboard summary
type SummaryProcessor struct {
	service ports.InventoryService
	cache   ports.CacheRepository
	ttl     time.Duration
	logger  *slog.Logger
}

// NewSummaryProcessor creates a summary processor
func NewSummaryProcessor(service ports.InventoryService, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *SummaryProcessor {
	return &SummaryProcessor{
		service: service,
		cache:   cache,
		ttl:     ttl,
		logger:  logger.With(slog.String("processor", "summary")),
	}
}

// RefreshSummary handles TypeRefreshSummary.
func (p *SummaryProcessor) RefreshSummary(ctx context.Context, _ *asynq.Task) error {
	summary, err := p.service.Summary(ctx)
	if err != nil {
		return fmt.Errorf("failed to build inventory summary: %w", err)
	}

	if err := p.cache.SetWithTTL(ctx, services.SummaryCacheKey, summary, p.ttl); err != nil {
		return fmt.Errorf("failed to cache inventory summary: %w", err)
	}

	p.logger.InfoContext(ctx, "inventory summary refreshed",
		slog.Int64("variants", summary.TotalVariants),
		slog.Int64("low_stock", summary.LowStockVariants))
	return nil
}

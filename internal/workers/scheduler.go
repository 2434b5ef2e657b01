// internal/workers/scheduler.go
package workers

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-inventory/internal/pkg/config"
)

// PeriodicTask is one cron entry registered with the asynq scheduler.
type PeriodicTask struct {
	Name string
	Cron string
	Task *asynq.Task
}

// Registrar is satisfied by *asynq.Scheduler.
type Registrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// PeriodicTasks lists the scheduled jobs for cfg. Entries with an empty cron
// spec are disabled.
func PeriodicTasks(cfg config.InventoryConfig) ([]PeriodicTask, error) {
	scan, err := NewLowStockScanTask(LowStockScanPayload{})
	if err != nil {
		return nil, err
	}

	all := []PeriodicTask{
		{Name: "low_stock_scan", Cron: cfg.LowStockScanCron, Task: scan},
		{Name: "refresh_summary", Cron: cfg.SummaryRefreshCron, Task: NewRefreshSummaryTask()},
		{Name: "cleanup_sheets", Cron: cfg.CleanupCron, Task: NewCleanupSheetsTask()},
		{Name: "cleanup_temp_files", Cron: cfg.CleanupCron, Task: NewCleanupTempFilesTask()},
	}

	out := all[:0]
	for _, pt := range all {
		if pt.Cron != "" {
			out = append(out, pt)
		}
	}
	return out, nil
}

// RegisterPeriodicTasks adds every enabled periodic task to r.
func RegisterPeriodicTasks(r Registrar, cfg config.InventoryConfig, logger *slog.Logger) error {
	tasks, err := PeriodicTasks(cfg)
	if err != nil {
		return err
	}

	for _, pt := range tasks {
		id, err := r.Register(pt.Cron, pt.Task)
		if err != nil {
			return fmt.Errorf("failed to register %s (%q): %w", pt.Name, pt.Cron, err)
		}
		logger.Info("periodic task registered",
			slog.String("task", pt.Name),
			slog.String("cron", pt.Cron),
			slog.String("entry_id", id))
	}
	return nil
}

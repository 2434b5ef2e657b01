// internal/core/ports/tasks.go
package ports

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer schedules background work. *asynq.Client satisfies it.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

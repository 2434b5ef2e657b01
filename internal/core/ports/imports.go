// internal/core/ports/imports.go
package ports

import (
	"context"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

// ImportJobStore keeps reconciliation job reports for status polling.
// Get returns (nil, nil) for an unknown or expired job.
type ImportJobStore interface {
	Save(ctx context.Context, job *domain.ImportJob) error
	Get(ctx context.Context, id string) (*domain.ImportJob, error)
}

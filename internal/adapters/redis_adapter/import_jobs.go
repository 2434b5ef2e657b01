// internal/adapters/redis_adapter/import_jobs.go
package redis_a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

// ImportJobStore keeps reconciliation job reports in Redis.
type ImportJobStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.ImportJobStore = (*ImportJobStore)(nil)

// NewImportJobStore creates a store whose reports expire after ttl.
func NewImportJobStore(client redis.UniversalClient, ttl time.Duration) *ImportJobStore {
	return &ImportJobStore{client: client, ttl: ttl}
}

func importKey(id string) string {
	return BuildKey(PrefixImport, id)
}

// Save writes the job, stamping UpdatedAt.
func (s *ImportJobStore) Save(ctx context.Context, job *domain.ImportJob) error {
	job.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode import job: %w", err)
	}
	if err := s.client.Set(ctx, importKey(job.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save import job %s: %w", job.ID, err)
	}
	return nil
}

// Get loads a job, or nil when unknown.
func (s *ImportJobStore) Get(ctx context.Context, id string) (*domain.ImportJob, error) {
	data, err := s.client.Get(ctx, importKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import job %s: %w", id, err)
	}

	var job domain.ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode import job %s: %w", id, err)
	}
	return &job, nil
}

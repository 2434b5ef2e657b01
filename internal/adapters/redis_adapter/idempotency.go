// internal/adapters/redis_adapter/idempotency.go
package redis_a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
)

const (
	idemPending = "pending"
	idemDone    = "done"

	// pendingTTL bounds how long a crashed request can block its key.
	pendingTTL = 30 * time.Second
)

// State stays the first field; releaseScript matches on its encoding.
type idemRecord struct {
	State       string                   `json:"state"`
	Fingerprint string                   `json:"fingerprint,omitempty"`
	Result      *domain.AdjustmentResult `json:"result,omitempty"`
}

// releaseScript deletes the key only while it is still a pending marker.
var releaseScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v and string.find(v, '"state":"pending"', 1, true) then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyStore deduplicates adjustment requests in Redis.
type IdempotencyStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates a store that keeps completed results for ttl.
func NewIdempotencyStore(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "idempotency")),
	}
}

func idemKey(key string) string {
	return BuildKey(PrefixIdempotency, key)
}

// Begin claims key with a pending marker. If the key already completed the
// stored result is returned; if it is pending elsewhere started is false.
// Either way the holder must have asked for the same change.
func (s *IdempotencyStore) Begin(ctx context.Context, key, fingerprint string) (*domain.AdjustmentResult, bool, error) {
	marker, _ := json.Marshal(idemRecord{State: idemPending, Fingerprint: fingerprint})

	for i := 0; i < 2; i++ {
		ok, err := s.client.SetNX(ctx, idemKey(key), marker, pendingTTL).Result()
		if err != nil {
			return nil, false, fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		if ok {
			return nil, true, nil
		}

		data, err := s.client.Get(ctx, idemKey(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			// Expired between SETNX and GET; claim again.
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
		}

		var rec idemRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, false, fmt.Errorf("failed to decode idempotency record: %w", err)
		}
		if rec.Fingerprint != "" && rec.Fingerprint != fingerprint {
			return nil, false, fmt.Errorf("%w: %s", ports.ErrIdempotencyKeyReused, key)
		}
		if rec.State == idemDone && rec.Result != nil {
			s.logger.DebugContext(ctx, "replaying idempotent result", slog.String("idempotency_key", key))
			return rec.Result, false, nil
		}
		return nil, false, nil
	}

	return nil, false, nil
}

// Complete stores the result of a claimed key.
func (s *IdempotencyStore) Complete(ctx context.Context, key, fingerprint string, result *domain.AdjustmentResult) error {
	data, err := json.Marshal(idemRecord{State: idemDone, Fingerprint: fingerprint, Result: result})
	if err != nil {
		return fmt.Errorf("failed to encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, idemKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

// Release drops a pending claim so the caller may retry.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, s.client, []string{idemKey(key)}).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

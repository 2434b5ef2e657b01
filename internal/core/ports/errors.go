// internal/core/ports/errors.go
package ports

import "errors"

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ErrDuplicateIdempotencyKey is returned by LedgerRepository.Append when an
// entry with the same idempotency key already exists.
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

// ErrIdempotencyKeyReused is returned by IdempotencyStore.Begin when the key
// belongs to a request for a different change.
var ErrIdempotencyKeyReused = errors.New("idempotency key reused for a different request")

// ErrCheckViolation is returned when a write trips a table CHECK constraint.
var ErrCheckViolation = errors.New("check constraint violation")

// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can tell "fix your input" from
// "try again" from "business rule violation".
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "INVALID_INPUT"
	KindVariantNotFound   ErrorKind = "VARIANT_NOT_FOUND"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindStorage           ErrorKind = "STORAGE_ERROR"
	KindDuplicateRequest  ErrorKind = "DUPLICATE_REQUEST"
)

// Sentinels for errors.Is matching. Any *Error with the same kind matches.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrVariantNotFound   = &Error{Kind: KindVariantNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrStorage           = &Error{Kind: KindStorage}
	ErrDuplicateRequest  = &Error{Kind: KindDuplicateRequest}
)

// Error is the typed error returned across the service boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so wrapped instances compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable reports whether the same request may succeed if sent again.
func (e *Error) Retryable() bool {
	return e.Kind == KindStorage || e.Kind == KindDuplicateRequest
}

// NewInvalidInput builds an InvalidInput error.
func NewInvalidInput(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NewVariantNotFound builds a VariantNotFound error for the given key.
func NewVariantNotFound(key string) error {
	return &Error{Kind: KindVariantNotFound, Message: fmt.Sprintf("variant %s not found", key)}
}

// NewInsufficientStock reports a sale that would drive stock below zero.
func NewInsufficientStock(sku string, available, requested int) error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for %s: available %d, requested %d", sku, available, requested),
	}
}

// NewStorageError wraps an infrastructure failure.
func NewStorageError(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// NewDuplicateRequest reports an idempotency key that is already in flight.
func NewDuplicateRequest(key string) error {
	return &Error{Kind: KindDuplicateRequest, Message: fmt.Sprintf("request with idempotency key %q is already in progress", key)}
}

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsRetryable reports whether err is a transient failure.
func IsRetryable(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Retryable()
	}
	return false
}

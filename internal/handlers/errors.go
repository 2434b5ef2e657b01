// internal/handlers/errors.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

// errorStatus maps a service error onto an HTTP status.
func errorStatus(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindVariantNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientStock, domain.KindDuplicateRequest:
		return http.StatusConflict
	case domain.KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:     message,
		Code:      code,
		Retryable: status == http.StatusServiceUnavailable || status == http.StatusTooManyRequests,
	})
}

// respondServiceError writes err using the domain taxonomy. Errors outside
// the taxonomy are logged and hidden behind a generic message.
func respondServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error, action string) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		logger.ErrorContext(ctx, "failed to "+action, slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to "+action)
		return
	}

	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "failed to "+action,
			slog.String("kind", string(derr.Kind)),
			slog.String("error", err.Error()))
	} else {
		logger.DebugContext(ctx, "request rejected",
			slog.String("kind", string(derr.Kind)),
			slog.String("error", err.Error()))
	}

	msg := derr.Error()
	if derr.Kind == domain.KindStorage {
		// Driver details stay in the log.
		msg = derr.Message
		if msg == "" {
			msg = "storage unavailable"
		}
	}

	respondJSON(w, status, ErrorResponse{
		Error:     msg,
		Code:      string(derr.Kind),
		Retryable: derr.Retryable(),
	})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewInvalidInput("request body is required")
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return domain.NewInvalidInput("request body exceeds %d bytes", tooBig.Limit)
		}
		return domain.NewInvalidInput("invalid request body: %v", err)
	}
	return nil
}

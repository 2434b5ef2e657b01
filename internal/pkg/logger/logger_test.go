// internal/pkg/logger/logger_test.go
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestNewLogger_JSONWithServiceFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{
		Level:       "info",
		Format:      "json",
		Writer:      &buf,
		ServiceName: "storefront-inventory",
		Environment: "test",
	})

	l.Info("variant created", slog.String("sku", "P1-RED-M"))
	l.Debug("dropped")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "variant created", lines[0]["msg"])
	assert.Equal(t, "INFO", lines[0]["severity"])
	assert.Equal(t, "storefront-inventory", lines[0]["service_name"])
	assert.Equal(t, "test", lines[0]["env"])
	assert.Equal(t, "P1-RED-M", lines[0]["sku"])
}

func TestContextHandler_AddsRequestValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{Level: "debug", Format: "json", Writer: &buf})

	ctx := context.WithValue(context.Background(), ContextKeyRequestID, "req-123")
	ctx = context.WithValue(ctx, ContextKeyUserID, "staff-1")

	l.InfoContext(ctx, "inventory adjusted")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-123", lines[0]["request_id"])
	assert.Equal(t, "staff-1", lines[0]["user_id"])
}

func TestSanitizationHandler(t *testing.T) {
	tests := []struct {
		name     string
		log      func(l *slog.Logger)
		key      string
		expected string
	}{
		{
			name:     "sensitive_key_is_redacted",
			log:      func(l *slog.Logger) { l.Info("login", slog.String("jwt_secret", "abc")) },
			key:      "jwt_secret",
			expected: redacted,
		},
		{
			name:     "authorization_header_is_redacted",
			log:      func(l *slog.Logger) { l.Info("request", slog.String("Authorization", "Bearer x.y.z")) },
			key:      "Authorization",
			expected: redacted,
		},
		{
			name:     "bearer_in_value_is_redacted",
			log:      func(l *slog.Logger) { l.Info("request", slog.String("header", "Bearer abc.def")) },
			key:      "header",
			expected: "Bearer " + redacted,
		},
		{
			name:     "dsn_password_is_redacted",
			log:      func(l *slog.Logger) { l.Info("connect", slog.String("dsn", "postgres://inventory:hunter2@db:5432/inv")) },
			key:      "dsn",
			expected: "postgres://inventory:" + redacted + "@db:5432/inv",
		},
		{
			name:     "business_values_untouched",
			log:      func(l *slog.Logger) { l.Info("adjusted", slog.String("variant_key", "P1|RED|M")) },
			key:      "variant_key",
			expected: "P1|RED|M",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(&LogConfig{Level: "info", Format: "json", Writer: &buf})

			tt.log(l.Logger)

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.expected, lines[0][tt.key])
		})
	}
}

func TestSamplingHandler_AlwaysKeepsWarnings(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := slog.New(NewSamplingHandler(base, 0))

	for i := 0; i < 10; i++ {
		l.Info("noise")
	}
	l.Warn("low stock")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "low stock", lines[0]["msg"])
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	l := slog.New(h)

	l.Info("one")
	l.Error("two")

	assert.Len(t, decodeLines(t, &a), 2)
	assert.Len(t, decodeLines(t, &b), 1)
}

func TestPrettyTextHandler(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With(slog.String("handler", "inventory"))

	l.Info("ready", slog.Int("variants", 3))
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "handler")
	assert.Contains(t, out, "variants")
	assert.NotContains(t, out, "hidden")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{Level: "info", Format: "json", Writer: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = context.WithValue(ctx, ContextKeyTaskType, "inventory:low_stock_scan")

	FromContext(ctx).Info("scan started")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "inventory:low_stock_scan", lines[0]["task_type"])
}

// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey represents keys for context values
type ContextKey string

const (
	// Context keys for logging
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyUserID    ContextKey = "user_id"
	ContextKeyUserRole  ContextKey = "user_role"
	ContextKeyTraceID   ContextKey = "trace_id"
	ContextKeyClientIP  ContextKey = "client_ip"
	ContextKeyMethod    ContextKey = "method"
	ContextKeyPath      ContextKey = "path"
	ContextKeyTaskID    ContextKey = "task_id"
	ContextKeyTaskType  ContextKey = "task_type"
)

type loggerCtxKey struct{}

// OutputConfig defines an additional logging destination
type OutputConfig struct {
	Type    string         `json:"type"` // file, stderr
	Level   string         `json:"level"`
	Options map[string]any `json:"options"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level          string         `json:"level"`
	Format         string         `json:"format"` // json, text, pretty
	Output         string         `json:"output"` // stdout, stderr, file:<path>
	AddSource      bool           `json:"add_source"`
	SampleRate     float64        `json:"sample_rate"`
	Environment    string         `json:"environment"`
	ServiceName    string         `json:"service_name"`
	ServiceVersion string         `json:"service_version"`
	EnableSampling bool           `json:"enable_sampling"`
	Outputs        []OutputConfig `json:"outputs"`

	// Writer overrides Output, mainly for tests.
	Writer io.Writer `json:"-"`
}

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
	config      *LogConfig
	contextKeys []ContextKey
}

// Global logger instance
var (
	defaultLogger *Logger
)

// SetupLogger builds the process logger from level and format and installs
// it as the slog default.
func SetupLogger(level string, format string) *Logger {
	config := &LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      level == "debug",
		ServiceName:    envOr("SERVICE_NAME", "storefront-inventory"),
		ServiceVersion: os.Getenv("APP_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
	}

	logger := NewLogger(config)
	defaultLogger = logger
	slog.SetDefault(logger.Logger)

	return logger
}

// NewLogger creates a new enhanced logger
func NewLogger(config *LogConfig) *Logger {
	if config == nil {
		config = &LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		}
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(config.Level),
		AddSource: config.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return replaceAttr(config, groups, a)
		},
	}

	writer := config.Writer
	if writer == nil {
		writer = getWriter(config.Output)
	}

	var primary slog.Handler
	switch config.Format {
	case "text":
		primary = slog.NewTextHandler(writer, opts)
	case "pretty":
		primary = NewPrettyTextHandler(writer, opts)
	default:
		primary = slog.NewJSONHandler(writer, opts)
	}

	handlers := []slog.Handler{primary}
	for _, output := range config.Outputs {
		if h := createOutputHandler(output); h != nil {
			handlers = append(handlers, h)
		}
	}

	var handler slog.Handler = primary
	if len(handlers) > 1 {
		handler = NewMultiHandler(handlers...)
	}

	// Wrap order, innermost first: context enrichment, sampling, sanitization.
	keys := defaultContextKeys()
	handler = NewContextHandler(handler, keys)
	if config.EnableSampling && config.SampleRate > 0 && config.SampleRate < 1.0 {
		handler = NewSamplingHandler(handler, config.SampleRate)
	}
	handler = NewSanitizationHandler(handler)

	attrs := []slog.Attr{}
	if config.ServiceName != "" {
		attrs = append(attrs, slog.String("service_name", config.ServiceName))
	}
	if config.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", config.ServiceVersion))
	}
	if config.Environment != "" {
		attrs = append(attrs, slog.String("env", config.Environment))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return &Logger{
		Logger:      slog.New(handler),
		config:      config,
		contextKeys: keys,
	}
}

// WithContext returns a *slog.Logger carrying the request values in ctx
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := contextAttrs(ctx, l.contextKeys)
	if len(attrs) == 0 {
		return l.Logger
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return l.Logger.With(args...)
}

// ErrorWithStack logs at error level with the caller and the current
// goroutine's stack.
func (l *Logger) ErrorWithStack(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	if pc, file, line, ok := runtime.Caller(1); ok {
		args = append(args, slog.String("caller", fmt.Sprintf("%s:%d", file, line)))
		if fn := runtime.FuncForPC(pc); fn != nil {
			args = append(args, slog.String("function", fn.Name()))
		}
	}
	args = append(args, slog.String("stack", string(getStackTrace())))
	l.Logger.ErrorContext(ctx, msg, args...)
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getWriter(output string) io.Writer {
	switch output {
	case "stdout", "":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		if strings.HasPrefix(output, "file:") {
			filename := strings.TrimPrefix(output, "file:")
			file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return os.Stdout
			}
			return file
		}
		return os.Stdout
	}
}

func defaultContextKeys() []ContextKey {
	return []ContextKey{
		ContextKeyRequestID,
		ContextKeyUserID,
		ContextKeyUserRole,
		ContextKeyTraceID,
		ContextKeyClientIP,
		ContextKeyMethod,
		ContextKeyPath,
		ContextKeyTaskID,
		ContextKeyTaskType,
	}
}

func contextAttrs(ctx context.Context, keys []ContextKey) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	for _, key := range keys {
		val := ctx.Value(key)
		if val == nil {
			continue
		}
		keyStr := string(key)
		switch v := val.(type) {
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(keyStr, v))
			}
		case int:
			attrs = append(attrs, slog.Int(keyStr, v))
		case int64:
			attrs = append(attrs, slog.Int64(keyStr, v))
		case bool:
			attrs = append(attrs, slog.Bool(keyStr, v))
		case time.Duration:
			attrs = append(attrs, slog.Duration(keyStr, v))
		case uuid.UUID:
			attrs = append(attrs, slog.String(keyStr, v.String()))
		case fmt.Stringer:
			attrs = append(attrs, slog.String(keyStr, v.String()))
		default:
			attrs = append(attrs, slog.Any(keyStr, v))
		}
	}
	return attrs
}

func getStackTrace() []byte {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return buf[:n]
}

func replaceAttr(config *LogConfig, _ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
		}
	}

	// Rename level key for log aggregators
	if a.Key == slog.LevelKey && config.Format == "json" {
		a.Key = "severity"
	}

	if strings.HasSuffix(a.Key, "_ms") {
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Microseconds()) / 1000)
		}
	}

	return a
}

func createOutputHandler(output OutputConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(output.Level)}

	switch output.Type {
	case "file":
		if filename, ok := output.Options["filename"].(string); ok {
			if file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				return slog.NewJSONHandler(file, opts)
			}
		}
	case "stderr":
		return slog.NewTextHandler(os.Stderr, opts)
	}

	return nil
}

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// FromContext extracts logger from context or returns default
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l.WithContext(ctx)
	}
	return GetDefault().WithContext(ctx)
}

// WithLogger adds logger to context
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

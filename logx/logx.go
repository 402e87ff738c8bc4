// Package logx provides a structured logging implementation based on slog.
//
// Overview:
//   - Responsibility: Console logging with logfmt/JSON output, field sorting, and level colorization
//   - Key Types: Logger implementation, Options for configuration, process-wide default
//   - Concurrency Model: All loggers are safe for concurrent use; one write per record
//   - Error Semantics: No errors returned; write failures are counted and dropped
//   - Performance Notes: Level check happens before any attribute conversion
//
// Usage:
//
//	logger := logx.New(logx.WithFormat(logx.FormatJSON), logx.WithColor(false))
//	logger.Info("user created", log.Str("user_id", "u-123"))
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"

	"go.eggybyte.com/easylog/core/log"
	"go.eggybyte.com/easylog/logx/internal"
)

// Format specifies the output format for logs.
type Format string

const (
	// FormatLogfmt outputs logs in logfmt format (key=value pairs).
	FormatLogfmt Format = internal.FormatLogfmt
	// FormatJSON outputs logs in JSON format, one object per line.
	FormatJSON Format = internal.FormatJSON
)

// Options configures the logger behavior.
type Options struct {
	Format           Format               // Output format: logfmt or json
	Level            slog.Level           // Minimum log level
	Color            bool                 // Enable colorization for level field only
	Writer           io.Writer            // Output writer (default: os.Stderr)
	PayloadMaxBytes  int                  // Maximum bytes to log for string payloads (0 = unlimited)
	SensitiveFields  []string             // Field names to mask (e.g., "password", "token")
	DisableTimestamp bool                 // Disable timestamp in output
	MeterProvider    metric.MeterProvider // Meter provider for record counters (nil = otel global)
}

// Logger implements the core/log.Logger interface using slog.
type Logger struct {
	handler *internal.Handler
	attrs   []slog.Attr
}

var _ log.Logger = (*Logger)(nil)

// New creates a new Logger with the given options.
func New(opts ...Option) *Logger {
	options := Options{
		Format:           FormatLogfmt,
		Level:            slog.LevelInfo,
		Color:            false,
		Writer:           os.Stderr,
		DisableTimestamp: true, // Container already adds timestamp
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Writer == nil {
		options.Writer = os.Stderr
	}

	handler := internal.NewHandler(internal.Options{
		Format:           string(options.Format),
		Level:            options.Level,
		Color:            options.Color && options.Format != FormatJSON,
		PayloadMaxBytes:  options.PayloadMaxBytes,
		SensitiveFields:  options.SensitiveFields,
		DisableTimestamp: options.DisableTimestamp,
		MeterProvider:    options.MeterProvider,
	}, options.Writer)

	return &Logger{
		handler: handler,
	}
}

// Option configures logger behavior.
type Option func(*Options)

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Level = level
	}
}

// WithColor enables colorization for the level field only.
// Ignored for JSON output.
func WithColor(enabled bool) Option {
	return func(o *Options) {
		o.Color = enabled
	}
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.Writer = w
	}
}

// WithPayloadLimit sets the maximum bytes to log for large payloads.
func WithPayloadLimit(maxBytes int) Option {
	return func(o *Options) {
		o.PayloadMaxBytes = maxBytes
	}
}

// WithSensitiveFields sets field names to mask in logs.
func WithSensitiveFields(fields ...string) Option {
	return func(o *Options) {
		o.SensitiveFields = fields
	}
}

// WithTimestamp toggles the leading RFC3339 time field.
func WithTimestamp(enabled bool) Option {
	return func(o *Options) {
		o.DisableTimestamp = !enabled
	}
}

// WithMeterProvider sets the meter provider used for record counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) {
		o.MeterProvider = mp
	}
}

// With returns a new Logger with the given key-value pairs attached.
func (l *Logger) With(kv ...any) log.Logger {
	attrs := internal.KVToAttrs(kv)
	newAttrs := append([]slog.Attr{}, l.attrs...)
	newAttrs = append(newAttrs, attrs...)

	return &Logger{
		handler: l.handler,
		attrs:   newAttrs,
	}
}

// Enabled reports whether records at level would be written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.handler.Enabled(context.Background(), level)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, kv ...any) {
	l.Log(slog.LevelDebug, msg, kv...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, kv ...any) {
	l.Log(slog.LevelInfo, msg, kv...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, kv ...any) {
	l.Log(slog.LevelWarn, msg, kv...)
}

// Error logs an error message.
func (l *Logger) Error(err error, msg string, kv ...any) {
	if !l.Enabled(slog.LevelError) {
		return
	}
	attrs := internal.KVToAttrs(kv)
	if err != nil {
		attrs = append([]slog.Attr{slog.Any("error", err)}, attrs...)
	}
	l.logWithAttrs(slog.LevelError, msg, attrs)
}

// Log logs msg at an arbitrary level with key-value pairs.
func (l *Logger) Log(level slog.Level, msg string, kv ...any) {
	if !l.Enabled(level) {
		return
	}
	l.logWithAttrs(level, msg, internal.KVToAttrs(kv))
}

// LogFields logs msg at level with a field map attached as top-level attributes.
func (l *Logger) LogFields(level slog.Level, msg string, fields map[string]any) {
	if !l.Enabled(level) {
		return
	}
	l.logWithAttrs(level, msg, internal.MapToAttrs(fields))
}

// logWithAttrs logs with pre-converted attributes.
func (l *Logger) logWithAttrs(level slog.Level, msg string, attrs []slog.Attr) {
	allAttrs := append([]slog.Attr{}, l.attrs...)
	allAttrs = append(allAttrs, attrs...)

	l.handler.LogRecord(level, msg, allAttrs)
}

// Slog returns a *slog.Logger that writes through the same handler.
func (l *Logger) Slog() *slog.Logger {
	var h slog.Handler = l.handler
	if len(l.attrs) > 0 {
		h = h.WithAttrs(l.attrs)
	}
	return slog.New(h)
}

var defaultLogger atomic.Pointer[Logger]

// stdSlogHandler is log/slog's handler as found at package init.
var stdSlogHandler = slog.Default().Handler()

// SetDefault installs l as the process-wide logger if none is installed yet.
// It also routes log/slog's default logger through l, unless the program
// already replaced that logger with its own. Returns false when another
// logger was installed first; that logger stays in place.
func SetDefault(l *Logger) bool {
	if l == nil {
		return false
	}
	external := ExternalSlog()
	if !defaultLogger.CompareAndSwap(nil, l) {
		return false
	}
	if external == nil {
		slog.SetDefault(l.Slog())
	}
	return true
}

// ExternalSlog returns log/slog's default logger when the program replaced it
// before any logx default was installed. It returns nil otherwise.
func ExternalSlog() *slog.Logger {
	if defaultLogger.Load() != nil {
		return nil
	}
	l := slog.Default()
	if l.Handler() == stdSlogHandler {
		return nil
	}
	return l
}

// Default returns the process-wide logger, or nil if none was installed.
func Default() *Logger {
	return defaultLogger.Load()
}

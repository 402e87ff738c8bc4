// Package internal provides internal implementation details for logx.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Output formats understood by the handler.
const (
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

// Options configures the handler behavior.
type Options struct {
	Format           string               // Output format: logfmt or json
	Level            slog.Leveler         // Minimum log level
	Color            bool                 // Enable colorization for level field only (logfmt only)
	PayloadMaxBytes  int                  // Maximum bytes to log for string values (0 = unlimited)
	SensitiveFields  []string             // Field names to mask (e.g., "password", "token")
	DisableTimestamp bool                 // Disable timestamp in output
	MeterProvider    metric.MeterProvider // Meter provider for record counters (nil = global)
}

// sink is the writer shared by a handler and every handler derived from it.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// instruments holds the counters shared by derived handlers.
type instruments struct {
	records     metric.Int64Counter
	writeErrors metric.Int64Counter
}

// Handler is a slog.Handler that writes one sorted logfmt or JSON line per record.
type Handler struct {
	opts  Options
	out   *sink
	inst  *instruments
	attrs []slog.Attr
	group string
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts Options, writer io.Writer) *Handler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	if opts.Format == "" {
		opts.Format = FormatLogfmt
	}
	return &Handler{
		opts: opts,
		out:  &sink{w: writer},
		inst: newInstruments(opts.MeterProvider),
	}
}

func newInstruments(mp metric.MeterProvider) *instruments {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("go.eggybyte.com/easylog/logx")

	inst := &instruments{}
	inst.records, _ = meter.Int64Counter("logx.records",
		metric.WithDescription("Number of log records written"),
		metric.WithUnit("{record}"))
	inst.writeErrors, _ = meter.Int64Counter("logx.write.errors",
		metric.WithDescription("Number of log records lost to writer failures"),
		metric.WithUnit("{record}"))
	return inst
}

// handle writes the log record. Write failures are counted, never returned to loggers.
func (h *Handler) handle(t time.Time, level slog.Level, msg string, attrs []slog.Attr) error {
	if !h.Enabled(context.Background(), level) {
		return nil
	}

	// Combine handler attrs with record attrs, flattening groups
	all := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	all = append(all, h.attrs...)
	all = append(all, Flatten(h.group, attrs)...)
	sorted := SortAttrs(all)

	var line []byte
	if h.opts.Format == FormatJSON {
		line = h.encodeJSON(t, level, msg, sorted)
	} else {
		line = h.encodeLogfmt(t, level, msg, sorted)
	}

	h.out.mu.Lock()
	_, err := h.out.w.Write(line)
	h.out.mu.Unlock()

	ctx := context.Background()
	levelAttr := metric.WithAttributes(attribute.String("level", LevelString(level)))
	if err != nil {
		h.inst.writeErrors.Add(ctx, 1, levelAttr)
		return err
	}
	h.inst.records.Add(ctx, 1, levelAttr)
	return nil
}

func (h *Handler) encodeLogfmt(t time.Time, level slog.Level, msg string, attrs []slog.Attr) []byte {
	var buf strings.Builder

	if !h.opts.DisableTimestamp {
		buf.WriteString("time=")
		buf.WriteString(t.Format(time.RFC3339))
		buf.WriteString(" ")
	}

	// Level is the only colored field
	levelStr := LevelString(level)
	buf.WriteString("level=")
	if h.opts.Color {
		buf.WriteString(ColorizeLevel(levelStr))
	} else {
		buf.WriteString(levelStr)
	}

	buf.WriteString(" msg=")
	buf.WriteString(strconv.Quote(msg))

	for _, attr := range attrs {
		buf.WriteString(" ")
		buf.WriteString(FieldKey(attr.Key))
		buf.WriteString("=")
		buf.WriteString(FormatValue(attr.Key, attr.Value, h.opts))
	}

	buf.WriteString("\n")
	return []byte(buf.String())
}

func (h *Handler) encodeJSON(t time.Time, level slog.Level, msg string, attrs []slog.Attr) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, '{')

	if !h.opts.DisableTimestamp {
		buf = append(buf, `"time":`...)
		buf = strconv.AppendQuote(buf, t.Format(time.RFC3339))
		buf = append(buf, ',')
	}
	buf = append(buf, `"level":`...)
	buf = strconv.AppendQuote(buf, LevelString(level))
	buf = append(buf, `,"msg":`...)
	buf = appendJSON(buf, msg)

	for _, attr := range attrs {
		buf = append(buf, ',')
		buf = appendJSON(buf, FieldKey(attr.Key))
		buf = append(buf, ':')
		buf = appendJSON(buf, JSONValue(attr.Key, attr.Value, h.opts))
	}

	buf = append(buf, '}', '\n')
	return buf
}

func appendJSON(buf []byte, v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return strconv.AppendQuote(buf, fmt.Sprintf("!ERROR:%v", err))
	}
	return append(buf, data...)
}

// LogRecord writes a log record (public method for logx package).
func (h *Handler) LogRecord(level slog.Level, msg string, attrs []slog.Attr) {
	_ = h.handle(time.Now(), level, msg, attrs)
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	return h.handle(t, r.Level, r.Message, attrs)
}

// WithAttrs returns a new Handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	newAttrs = append(newAttrs, Flatten(h.group, attrs)...)

	return &Handler{
		opts:  h.opts,
		out:   h.out,
		inst:  h.inst,
		attrs: newAttrs,
		group: h.group,
	}
}

// WithGroup returns a new Handler that qualifies later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &Handler{
		opts:  h.opts,
		out:   h.out,
		inst:  h.inst,
		attrs: h.attrs,
		group: group,
	}
}

// KVToAttrs converts key-value pairs to slog.Attr slice.
func KVToAttrs(kv []any) []slog.Attr {
	// First, expand any nested []any pairs to a flat key, value sequence.
	flat := make([]any, 0, len(kv))
	for _, item := range kv {
		switch v := item.(type) {
		case []any:
			if len(v) == 2 {
				flat = append(flat, v[0], v[1])
			} else {
				flat = append(flat, v)
			}
		case slog.Attr:
			flat = append(flat, v.Key, v.Value)
		default:
			flat = append(flat, v)
		}
	}

	attrs := make([]slog.Attr, 0, len(flat)/2)
	for i := 0; i < len(flat)-1; i += 2 {
		key := fmt.Sprintf("%v", flat[i])
		if v, ok := flat[i+1].(slog.Value); ok {
			attrs = append(attrs, slog.Attr{Key: key, Value: v})
			continue
		}
		attrs = append(attrs, slog.Any(key, flat[i+1]))
	}
	if len(flat)%2 == 1 {
		attrs = append(attrs, slog.Any("!BADKEY", flat[len(flat)-1]))
	}
	return attrs
}

// MapToAttrs converts a field map to attributes. Order is fixed later by SortAttrs.
func MapToAttrs(fields map[string]any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// Flatten resolves values and expands group attributes into dotted keys.
func Flatten(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}
		key := a.Key
		if prefix != "" && key != "" {
			key = prefix + "." + key
		} else if prefix != "" {
			key = prefix
		}
		if a.Value.Kind() == slog.KindGroup {
			out = append(out, Flatten(key, a.Value.Group())...)
			continue
		}
		out = append(out, slog.Attr{Key: key, Value: a.Value})
	}
	return out
}

// SortAttrs sorts attributes by key.
func SortAttrs(attrs []slog.Attr) []slog.Attr {
	sorted := make([]slog.Attr, len(attrs))
	copy(sorted, attrs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

// FieldKey renames keys that would collide with the fixed record fields.
func FieldKey(key string) string {
	switch key {
	case "time", "level", "msg":
		return "fields." + key
	}
	return key
}

func isSensitive(key string, opts Options) bool {
	for _, field := range opts.SensitiveFields {
		if strings.EqualFold(key, field) {
			return true
		}
	}
	return false
}

func truncate(s string, opts Options) string {
	if opts.PayloadMaxBytes > 0 && len(s) > opts.PayloadMaxBytes {
		return fmt.Sprintf("%s...(truncated, %d bytes)", s[:opts.PayloadMaxBytes], len(s))
	}
	return s
}

// FormatValue formats a slog.Value for logfmt output.
func FormatValue(key string, v slog.Value, opts Options) string {
	if isSensitive(key, opts) {
		return `"***REDACTED***"`
	}

	switch v.Kind() {
	case slog.KindString:
		// Always quote strings for logfmt consistency
		return strconv.Quote(truncate(v.String(), opts))
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return strconv.FormatInt(v.Duration().Milliseconds(), 10)
	case slog.KindTime:
		return strconv.Quote(v.Time().Format(time.RFC3339))
	case slog.KindAny:
		val := v.Any()
		if n, ok := val.(json.Number); ok {
			return n.String()
		}
		if err, ok := val.(error); ok {
			return strconv.Quote(truncate(err.Error(), opts))
		}
		if val == nil {
			return "null"
		}
		data, err := json.Marshal(val)
		if err != nil {
			return strconv.Quote(truncate(v.String(), opts))
		}
		return strconv.Quote(truncate(string(data), opts))
	default:
		return strconv.Quote(truncate(v.String(), opts))
	}
}

// JSONValue converts a slog.Value into a value suitable for JSON encoding.
func JSONValue(key string, v slog.Value, opts Options) any {
	if isSensitive(key, opts) {
		return "***REDACTED***"
	}

	switch v.Kind() {
	case slog.KindString:
		return truncate(v.String(), opts)
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().Milliseconds()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return truncate(err.Error(), opts)
		}
		return v.Any()
	default:
		return truncate(v.String(), opts)
	}
}

// LevelString returns the string representation of a log level.
func LevelString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return level.String()
	}
}

// ColorizeLevel adds ANSI color codes ONLY to the level value.
func ColorizeLevel(level string) string {
	const (
		reset  = "\033[0m"
		red    = "\033[31m"
		green  = "\033[32m"
		yellow = "\033[33m"
		blue   = "\033[34m"
	)

	switch level {
	case "DEBUG":
		return blue + level + reset
	case "INFO":
		return green + level + reset
	case "WARN":
		return yellow + level + reset
	case "ERROR":
		return red + level + reset
	default:
		return level
	}
}

package logger

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"go.eggybyte.com/easylog/configx"
	"go.eggybyte.com/easylog/core/errors"
	"go.eggybyte.com/easylog/core/log"
	"go.eggybyte.com/easylog/logx"
)

// Config holds the environment-driven settings of the default backend.
type Config struct {
	Level           string   `env:"LOG_LEVEL" default:"info" validate:"loglevel"`
	Format          string   `env:"LOG_FORMAT" default:"logfmt" validate:"oneof=logfmt json"`
	Output          string   `env:"LOG_OUTPUT" default:"stdout" validate:"oneof=stdout stderr"`
	Color           bool     `env:"LOG_COLOR" default:"true"`
	NoColor         string   `env:"NO_COLOR"`
	Timestamp       bool     `env:"LOG_TIMESTAMP" default:"true"`
	PayloadMaxBytes int      `env:"LOG_PAYLOAD_MAX_BYTES" default:"0" validate:"gte=0"`
	SensitiveFields []string `env:"LOG_SENSITIVE_FIELDS"`
}

// DefaultConfig returns the configuration used when no variable is set.
func DefaultConfig() Config {
	var cfg Config
	// Binding an empty snapshot only applies default tags, which are constant.
	_ = configx.Bind(context.Background(), &cfg, configx.NewMapSource(nil))
	return cfg
}

// LoadConfig binds and validates Config from sources. On any failure it
// returns DefaultConfig together with the error, so callers can always
// proceed with a usable configuration.
func LoadConfig(ctx context.Context, sources ...configx.Source) (Config, error) {
	var cfg Config
	if err := configx.Bind(ctx, &cfg, sources...); err != nil {
		return DefaultConfig(), err
	}

	v := configx.NewValidator(configx.WithRule("loglevel", func(s string) bool {
		_, err := log.ParseLevel(s)
		return err == nil
	}))
	if err := configx.ValidateStruct(v, cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// SlogLevel returns the minimum level, info when Level does not parse.
func (c Config) SlogLevel() slog.Level {
	level, _ := log.ParseLevel(c.Level)
	return level
}

// Writer returns the stream named by Output.
func (c Config) Writer() io.Writer {
	if c.Output == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

// LogxOptions translates the configuration into logx options.
// A non-empty NO_COLOR wins over LOG_COLOR.
func (c Config) LogxOptions() []logx.Option {
	return []logx.Option{
		logx.WithFormat(logx.Format(c.Format)),
		logx.WithLevel(c.SlogLevel()),
		logx.WithColor(c.Color && c.NoColor == ""),
		logx.WithTimestamp(c.Timestamp),
		logx.WithPayloadLimit(c.PayloadMaxBytes),
		logx.WithSensitiveFields(c.SensitiveFields...),
		logx.WithWriter(c.Writer()),
	}
}

// SlogBackend is the default Backend. It builds a logx.Logger from the
// environment and installs it as the process-wide logger.
type SlogBackend struct {
	source configx.Source
	writer io.Writer
	global bool

	logger *logx.Logger
	// external is the program's own log/slog default, when adopted.
	external *slog.Logger
}

// BackendOption customizes a SlogBackend.
type BackendOption func(*SlogBackend)

// WithSource reads configuration from src instead of the process environment.
func WithSource(src configx.Source) BackendOption {
	return func(b *SlogBackend) { b.source = src }
}

// WithWriter sends output to w regardless of LOG_OUTPUT.
func WithWriter(w io.Writer) BackendOption {
	return func(b *SlogBackend) { b.writer = w }
}

// WithoutGlobal keeps the backend's logger private: it is neither installed
// as nor replaced by the process-wide logx default.
func WithoutGlobal() BackendOption {
	return func(b *SlogBackend) { b.global = false }
}

// NewSlogBackend creates the default backend. Nothing is read until Configure.
func NewSlogBackend(opts ...BackendOption) *SlogBackend {
	b := &SlogBackend{
		source: configx.NewEnvSource(configx.EnvOptions{}),
		global: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Configure loads the configuration and builds the logger.
//
// If a process-wide logger was installed earlier, it is adopted and an error
// coded errors.CodeAlreadyExists is returned. That is either a logx default
// or a log/slog default the program replaced; the latter is left untouched
// and receives the records. An invalid configuration is not an error:
// defaults are used and a warning is logged.
func (b *SlogBackend) Configure() error {
	cfg, cfgErr := LoadConfig(context.Background(), b.source)

	opts := cfg.LogxOptions()
	if b.writer != nil {
		opts = append(opts, logx.WithWriter(b.writer))
	}
	b.logger = logx.New(opts...)

	var err error
	if b.global {
		if program := logx.ExternalSlog(); program != nil {
			b.external = program
			err = errors.New(errors.CodeAlreadyExists, "log/slog default logger already installed")
		} else if !logx.SetDefault(b.logger) {
			b.logger = logx.Default()
			err = errors.New(errors.CodeAlreadyExists, "process-wide logger already installed")
		}
	}

	if cfgErr != nil {
		b.Emit(slog.LevelWarn, "invalid logging configuration, using defaults", map[string]any{"error": cfgErr.Error()})
	}
	return err
}

// Enabled reports whether records at level would be written.
func (b *SlogBackend) Enabled(level slog.Level) bool {
	if b.external != nil {
		return b.external.Enabled(context.Background(), level)
	}
	return b.logger != nil && b.logger.Enabled(level)
}

// Emit writes one record. It is a no-op before Configure.
func (b *SlogBackend) Emit(level slog.Level, msg string, fields map[string]any) {
	if b.external != nil {
		b.external.LogAttrs(context.Background(), level, msg, fieldAttrs(fields)...)
		return
	}
	if b.logger == nil {
		return
	}
	b.logger.LogFields(level, msg, fields)
}

// fieldAttrs converts fields to attributes in key order.
func fieldAttrs(fields map[string]any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	return attrs
}

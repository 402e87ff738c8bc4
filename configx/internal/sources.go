// Package internal provides internal implementation details for configx.
//
// Overview:
//   - Responsibility: Implement configuration sources and struct binding
//   - Key Types: EnvSource, MapSource
//   - Concurrency Model: All sources are safe for concurrent use
//   - Error Semantics: Sources honor context cancellation on Load
//   - Performance Notes: Env snapshots are taken once per Load
package internal

import (
	"context"
	"os"
	"strings"
)

// Source describes a configuration source that loads a key/value snapshot.
type Source interface {
	Load(ctx context.Context) (map[string]string, error)
}

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix    string // Prefix for environment variables (e.g., "APP_")
	Lowercase bool   // Convert keys to lowercase
	Uppercase bool   // Convert keys to uppercase
}

// EnvSource loads configuration from environment variables.
type EnvSource struct {
	prefix    string
	lowercase bool
	uppercase bool
	environ   func() []string
}

// NewEnvSource creates a new environment variable source.
func NewEnvSource(opts EnvOptions) *EnvSource {
	return &EnvSource{
		prefix:    opts.Prefix,
		lowercase: opts.Lowercase,
		uppercase: opts.Uppercase,
		environ:   os.Environ,
	}
}

// Load reads configuration from environment variables.
func (s *EnvSource) Load(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	config := make(map[string]string)
	for _, env := range s.environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		if s.prefix != "" {
			if !strings.HasPrefix(key, s.prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.prefix)
		}

		if s.lowercase {
			key = strings.ToLower(key)
		} else if s.uppercase {
			key = strings.ToUpper(key)
		}

		config[key] = value
	}

	return config, nil
}

// MapSource serves a fixed snapshot. Useful for tests and programmatic overrides.
type MapSource struct {
	values map[string]string
}

// NewMapSource creates a source backed by a copy of values.
func NewMapSource(values map[string]string) *MapSource {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return &MapSource{values: cp}
}

// Load returns a copy of the fixed snapshot.
func (s *MapSource) Load(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp := make(map[string]string, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp, nil
}

// Merge loads every source in order; later sources override earlier ones.
func Merge(ctx context.Context, sources []Source) (map[string]string, error) {
	merged := make(map[string]string)
	for _, source := range sources {
		snapshot, err := source.Load(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range snapshot {
			merged[k] = v
		}
	}
	return merged, nil
}

// Package configx provides environment-driven configuration binding.
//
// Overview:
//   - Responsibility: Load key/value snapshots from sources and bind them into structs
//   - Key Types: Source interface, EnvOptions for environment filtering
//   - Concurrency Model: Sources are safe for concurrent use; Bind has no shared state
//   - Error Semantics: Binding failures carry errors.CodeInvalidArgument
//   - Performance Notes: Intended for one-shot startup loading, not hot paths
//
// Usage:
//
//	var cfg LogConfig
//	err := configx.Bind(ctx, &cfg, configx.NewEnvSource(configx.EnvOptions{}))
package configx

import (
	"context"

	"go.eggybyte.com/easylog/configx/internal"
	"go.eggybyte.com/easylog/core/errors"
)

// Source describes a configuration source that loads a key/value snapshot.
// Implementations must be thread-safe and honor context cancellation.
type Source interface {
	// Load reads the current configuration snapshot.
	Load(ctx context.Context) (map[string]string, error)
}

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix    string // Only keys with this prefix are kept; the prefix is stripped
	Lowercase bool   // Convert keys to lowercase
	Uppercase bool   // Convert keys to uppercase
}

// NewEnvSource creates an environment variable configuration source.
func NewEnvSource(opts EnvOptions) Source {
	return internal.NewEnvSource(internal.EnvOptions{
		Prefix:    opts.Prefix,
		Lowercase: opts.Lowercase,
		Uppercase: opts.Uppercase,
	})
}

// NewMapSource creates a source that always returns a copy of values.
func NewMapSource(values map[string]string) Source {
	return internal.NewMapSource(values)
}

// Bind merges sources (later sources take precedence) and decodes the result
// into target, a pointer to a struct with env and default tags.
//
// Supported field kinds: string, signed and unsigned integers, bool, floats,
// time.Duration and []string (comma separated). Nested structs are walked.
func Bind(ctx context.Context, target any, sources ...Source) error {
	if target == nil {
		return errors.New(errors.CodeInvalidArgument, "target cannot be nil")
	}
	if len(sources) == 0 {
		return errors.New(errors.CodeInvalidArgument, "at least one source is required")
	}

	internalSources := make([]internal.Source, len(sources))
	for i, src := range sources {
		internalSources[i] = src
	}

	snapshot, err := internal.Merge(ctx, internalSources)
	if err != nil {
		return errors.Wrap(errors.CodeUnavailable, "configx.load", err)
	}

	if err := internal.BindToStruct(snapshot, target); err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, "configx.bind", err)
	}
	return nil
}

// Package configx provides environment-driven configuration binding with validation.
//
// # Overview
//
// configx reads key/value snapshots from one or more sources, merges them
// with last-wins semantics, and binds the result into structs using env and
// default tags. Validation is delegated to go-playground/validator.
//
// # Features
//
//   - Multiple sources with last-wins merge semantics
//   - Type-safe struct binding via env/default tags, including comma-separated slices
//   - Struct validation with custom rules
//   - Coded errors from core/errors for every failure
//
// # Usage
//
//	var cfg LogConfig
//	err := configx.Bind(ctx, &cfg, configx.NewEnvSource(configx.EnvOptions{}))
//	if err == nil {
//		err = configx.ValidateStruct(configx.NewValidator(), cfg)
//	}
//
// # Stability
//
// Stable since v0.1.0. Backward-compatible API changes may occur with minor versions.
package configx

// Package logger provides zero-setup logging through package-level functions.
//
// # Overview
//
// The first call to any logging function configures the backend exactly
// once, so programs can log without any setup code:
//
//	logger.Info("server started")
//	logger.WarnWith("disk low", map[string]any{"free_mb": 120})
//
// The default backend reads its settings from the environment when that
// first call happens:
//
//	LOG_LEVEL              debug, info (default), warn, error
//	LOG_FORMAT             logfmt (default) or json
//	LOG_OUTPUT             stdout (default) or stderr
//	LOG_COLOR              colorize the level field (default true)
//	NO_COLOR               any non-empty value disables color
//	LOG_TIMESTAMP          prefix records with an RFC3339 time (default true)
//	LOG_PAYLOAD_MAX_BYTES  truncate long string values (0 = unlimited)
//	LOG_SENSITIVE_FIELDS   comma separated field names to redact
//
// An invalid value makes the backend fall back to the defaults and log a
// warning saying so.
//
// # Failure behavior
//
// Logging functions never return errors and never panic. If another part of
// the program installed a process-wide logx logger first, the backend adopts
// it. A log/slog default set by the program with slog.SetDefault is adopted
// the same way and is never replaced. Any other configuration failure turns
// logging into a no-op; InitErr reports the cause.
//
// # Concurrency
//
// All functions are safe for concurrent use. Only callers racing on the very
// first call wait, for the duration of one Configure.
package logger

package logger

import "log/slog"

// std is the process-wide gate behind the package-level functions.
var std = newGate(NewSlogBackend())

// Init configures the backend if no logging call has done so yet.
// Calling it is optional; every logging function does the same on first use.
func Init() {
	std.open()
}

// Initialized reports whether the backend has been configured.
func Initialized() bool {
	return std.ready.Load()
}

// InitErr returns the error that made initialization fall back to discarding
// records. It is nil before initialization, on success, and when the backend
// adopted an already installed process-wide logger.
func InitErr() error {
	return std.initErr()
}

// SetBackend replaces the backend used by the package-level functions. It
// must be called before the first logging call; afterwards it returns an
// error coded errors.CodeFailedPrecondition and leaves the backend in place.
func SetBackend(b Backend) error {
	return std.replace(b)
}

// Log logs msg at info level.
func Log(msg string) {
	std.emit(slog.LevelInfo, msg, nil)
}

// Info logs msg at info level.
func Info(msg string) {
	std.emit(slog.LevelInfo, msg, nil)
}

// Warn logs msg at warn level.
func Warn(msg string) {
	std.emit(slog.LevelWarn, msg, nil)
}

// Error logs msg at error level.
func Error(msg string) {
	std.emit(slog.LevelError, msg, nil)
}

// Debug logs msg at debug level.
func Debug(msg string) {
	std.emit(slog.LevelDebug, msg, nil)
}

// InfoWith logs msg at info level with metadata attached as fields.
// metadata may be nil, a map[string]any, or any value encoding/json accepts.
func InfoWith(msg string, metadata any) {
	std.emit(slog.LevelInfo, msg, metadata)
}

// WarnWith logs msg at warn level with metadata attached as fields.
func WarnWith(msg string, metadata any) {
	std.emit(slog.LevelWarn, msg, metadata)
}

// ErrorWith logs msg at error level with metadata attached as fields.
func ErrorWith(msg string, metadata any) {
	std.emit(slog.LevelError, msg, metadata)
}

// DebugWith logs msg at debug level with metadata attached as fields.
func DebugWith(msg string, metadata any) {
	std.emit(slog.LevelDebug, msg, metadata)
}

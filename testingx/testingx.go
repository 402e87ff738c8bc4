// Package testingx provides testing utilities for easylog packages.
//
// Overview:
//   - Responsibility: Backend doubles and error assertions for tests
//   - Key Types: RecordingBackend, Entry, TB
//   - Concurrency Model: RecordingBackend is safe for concurrent use
//   - Error Semantics: Test failures via TB
//   - Performance Notes: Optimized for test execution
//
// Usage:
//
//	backend := testingx.NewRecordingBackend()
//	logger.SetBackend(backend)
//	logger.Info("hello")
//	backend.AssertLogged(t, slog.LevelInfo, "hello")
package testingx

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"go.eggybyte.com/easylog/core/errors"
)

// TB is the subset of testing.TB used by the assertion helpers.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// Entry is a single record captured by RecordingBackend.
type Entry struct {
	Level   slog.Level
	Message string
	Fields  map[string]any
}

// RecordingBackend is an in-memory logging backend. It counts Configure
// calls and keeps every emitted record, and can be told to fail or panic.
type RecordingBackend struct {
	configureErr   error
	configurePanic any
	configureDelay time.Duration
	emitPanic      any

	mu         sync.Mutex
	configured int
	entries    []Entry
}

// RecordingOption customizes a RecordingBackend.
type RecordingOption func(*RecordingBackend)

// WithConfigureError makes Configure return err.
func WithConfigureError(err error) RecordingOption {
	return func(b *RecordingBackend) { b.configureErr = err }
}

// WithConfigurePanic makes Configure panic with v.
func WithConfigurePanic(v any) RecordingOption {
	return func(b *RecordingBackend) { b.configurePanic = v }
}

// WithConfigureDelay makes Configure sleep for d before returning, widening
// the window in which concurrent callers race for initialization.
func WithConfigureDelay(d time.Duration) RecordingOption {
	return func(b *RecordingBackend) { b.configureDelay = d }
}

// WithEmitPanic makes every Emit panic with v instead of recording.
func WithEmitPanic(v any) RecordingOption {
	return func(b *RecordingBackend) { b.emitPanic = v }
}

// NewRecordingBackend creates a backend that records in memory.
func NewRecordingBackend(opts ...RecordingOption) *RecordingBackend {
	b := &RecordingBackend{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Configure counts the call, then fails or panics if so configured.
func (b *RecordingBackend) Configure() error {
	b.mu.Lock()
	b.configured++
	b.mu.Unlock()

	if b.configureDelay > 0 {
		time.Sleep(b.configureDelay)
	}
	if b.configurePanic != nil {
		panic(b.configurePanic)
	}
	return b.configureErr
}

// Emit records the entry. Fields are copied.
func (b *RecordingBackend) Emit(level slog.Level, msg string, fields map[string]any) {
	if b.emitPanic != nil {
		panic(b.emitPanic)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, Entry{
		Level:   level,
		Message: msg,
		Fields:  maps.Clone(fields),
	})
}

// ConfigureCount returns how many times Configure ran.
func (b *RecordingBackend) ConfigureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.configured
}

// Entries returns a copy of all recorded entries.
func (b *RecordingBackend) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	return entries
}

// AssertLogged reports an error on t unless an entry with level and msg exists.
func (b *RecordingBackend) AssertLogged(t TB, level slog.Level, msg string) {
	t.Helper()
	for _, entry := range b.Entries() {
		if entry.Level == level && entry.Message == msg {
			return
		}
	}
	t.Errorf("Expected log message not found: level=%s msg=%q", level, msg)
}

// Reset drops recorded entries. The Configure count is kept.
func (b *RecordingBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}

// AssertError asserts that an error has the expected code.
func AssertError(t TB, err error, expectedCode errors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", expectedCode)
		return
	}

	code := errors.CodeOf(err)
	if code != expectedCode {
		t.Errorf("Expected error code %s, got %s", expectedCode, code)
	}
}

// AssertNoError asserts that no error occurred.
func AssertNoError(t TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

package logger

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"go.eggybyte.com/easylog/core/errors"
)

// Backend is the structured-logging implementation behind the facade.
//
// Configure is called at most once per process, by whichever entry point
// runs first. Emit may be called concurrently from any goroutine.
type Backend interface {
	Configure() error
	Emit(level slog.Level, msg string, fields map[string]any)
}

// leveler is implemented by backends that can report whether a level is
// enabled, letting the facade skip metadata normalization for dropped records.
type leveler interface {
	Enabled(level slog.Level) bool
}

// gate runs the backend's Configure exactly once and then stays open.
//
// backend is written only under mu while ready is false. It is read only
// after ready is observed true or once.Do has returned.
type gate struct {
	once  sync.Once
	ready atomic.Bool

	mu      sync.Mutex
	backend Backend
	err     error
}

func newGate(backend Backend) *gate {
	return &gate{backend: backend}
}

// open configures the backend on first use and returns the backend that
// records must go to. Concurrent first callers block until Configure returns.
func (g *gate) open() Backend {
	if !g.ready.Load() {
		g.once.Do(g.configure)
	}
	return g.backend
}

func (g *gate) configure() {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := safeConfigure(g.backend)
	switch {
	case err == nil:
	case errors.IsCode(err, errors.CodeAlreadyExists):
		// The backend adopted a logger someone else installed; keep it.
	default:
		g.backend = discardBackend{}
		g.err = err
	}
	g.ready.Store(true)
}

func safeConfigure(b Backend) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic("logger.configure", r)
		}
	}()
	return b.Configure()
}

// replace swaps the backend while the gate is still closed.
func (g *gate) replace(b Backend) error {
	if b == nil {
		return errors.New(errors.CodeInvalidArgument, "backend cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ready.Load() {
		return errors.New(errors.CodeFailedPrecondition, "logger already initialized")
	}
	g.backend = b
	return nil
}

// initErr returns the configuration failure, if the gate degraded.
func (g *gate) initErr() error {
	if !g.ready.Load() {
		return nil
	}
	return g.err
}

// emit opens the gate and forwards one record. Panics from metadata
// normalization or the backend are swallowed.
func (g *gate) emit(level slog.Level, msg string, metadata any) {
	b := g.open()

	defer func() { _ = recover() }()

	if lv, ok := b.(leveler); ok && !lv.Enabled(level) {
		return
	}

	b.Emit(level, msg, normalizeMetadata(metadata))
}

type discardBackend struct{}

func (discardBackend) Configure() error { return nil }
func (discardBackend) Emit(slog.Level, string, map[string]any) {}
func (discardBackend) Enabled(slog.Level) bool { return false }

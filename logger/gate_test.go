package logger

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sourcegraph/conc"

	"go.eggybyte.com/easylog/core/errors"
	"go.eggybyte.com/easylog/testingx"
)

// useBackend points the package-level functions at a fresh gate for the
// duration of the test.
func useBackend(t *testing.T, b Backend) *gate {
	t.Helper()
	prev := std
	std = newGate(b)
	t.Cleanup(func() { std = prev })
	return std
}

func TestGate_ConfiguresOnce(t *testing.T) {
	backend := testingx.NewRecordingBackend()
	g := newGate(backend)

	if g.ready.Load() {
		t.Fatal("gate should start closed")
	}
	for i := 0; i < 3; i++ {
		g.open()
	}

	if got := backend.ConfigureCount(); got != 1 {
		t.Errorf("ConfigureCount() = %d, want 1", got)
	}
	if !g.ready.Load() {
		t.Error("gate should be open after first use")
	}
	if err := g.initErr(); err != nil {
		t.Errorf("initErr() = %v, want nil", err)
	}
}

func TestGate_ConcurrentFirstCalls(t *testing.T) {
	backend := testingx.NewRecordingBackend(testingx.WithConfigureDelay(20 * time.Millisecond))
	useBackend(t, backend)

	const callers = 64
	var wg conc.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Go(func() {
			Info("racing")
		})
	}
	wg.Wait()

	if got := backend.ConfigureCount(); got != 1 {
		t.Errorf("ConfigureCount() = %d, want 1", got)
	}
	if got := len(backend.Entries()); got != callers {
		t.Errorf("len(Entries()) = %d, want %d", got, callers)
	}
}

func TestGate_ConfigureFailureDegrades(t *testing.T) {
	tests := []struct {
		name    string
		opt     testingx.RecordingOption
		code    errors.Code
		message string
	}{
		{
			name:    "error",
			opt:     testingx.WithConfigureError(errors.New(errors.CodeUnavailable, "sink down")),
			code:    errors.CodeUnavailable,
			message: "sink down",
		},
		{
			name:    "panic",
			opt:     testingx.WithConfigurePanic("boom"),
			code:    errors.CodeInternal,
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testingx.NewRecordingBackend(tt.opt)
			useBackend(t, backend)

			Info("dropped")
			Error("also dropped")

			if !Initialized() {
				t.Error("gate should be open even after a failed configure")
			}
			err := InitErr()
			testingx.AssertError(t, err, tt.code)
			if err != nil && !strings.Contains(err.Error(), tt.message) {
				t.Errorf("InitErr() = %v, want mention of %q", err, tt.message)
			}
			if got := len(backend.Entries()); got != 0 {
				t.Errorf("degraded gate forwarded %d records", got)
			}
			if backend.ConfigureCount() != 1 {
				t.Error("failed configure must not be retried")
			}
		})
	}
}

func TestGate_AlreadyConfiguredAdopts(t *testing.T) {
	backend := testingx.NewRecordingBackend(
		testingx.WithConfigureError(errors.New(errors.CodeAlreadyExists, "logger already installed")),
	)
	useBackend(t, backend)

	Warn("still delivered")

	if err := InitErr(); err != nil {
		t.Errorf("InitErr() = %v, want nil on adoption", err)
	}
	backend.AssertLogged(t, slog.LevelWarn, "still delivered")
}

func TestGate_EmitPanicIsContained(t *testing.T) {
	useBackend(t, testingx.NewRecordingBackend(testingx.WithEmitPanic("emit exploded")))

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("logging call panicked: %v", r)
		}
	}()

	Log("a")
	InfoWith("b", map[string]any{"k": "v"})
	ErrorWith("c", make(chan int))
	Debug("d")
}

func TestSetBackend(t *testing.T) {
	useBackend(t, testingx.NewRecordingBackend())

	testingx.AssertError(t, SetBackend(nil), errors.CodeInvalidArgument)

	replacement := testingx.NewRecordingBackend()
	testingx.AssertNoError(t, SetBackend(replacement))

	Info("goes to replacement")
	replacement.AssertLogged(t, slog.LevelInfo, "goes to replacement")

	late := testingx.NewRecordingBackend()
	testingx.AssertError(t, SetBackend(late), errors.CodeFailedPrecondition)

	Info("still replacement")
	if late.ConfigureCount() != 0 || len(late.Entries()) != 0 {
		t.Error("backend set after initialization must not be used")
	}
	replacement.AssertLogged(t, slog.LevelInfo, "still replacement")
}

// quietBackend reports every level as disabled.
type quietBackend struct {
	*testingx.RecordingBackend
}

func (quietBackend) Enabled(slog.Level) bool { return false }

func TestGate_SkipsDisabledLevels(t *testing.T) {
	recorder := testingx.NewRecordingBackend()
	useBackend(t, quietBackend{recorder})

	InfoWith("filtered", map[string]any{"k": "v"})

	if recorder.ConfigureCount() != 1 {
		t.Error("disabled levels must still open the gate")
	}
	if len(recorder.Entries()) != 0 {
		t.Error("disabled levels must not reach Emit")
	}
}

func TestInit(t *testing.T) {
	backend := testingx.NewRecordingBackend()
	useBackend(t, backend)

	if Initialized() {
		t.Fatal("Initialized() should be false before any call")
	}
	Init()
	Init()

	if !Initialized() {
		t.Error("Initialized() should be true after Init")
	}
	if backend.ConfigureCount() != 1 {
		t.Errorf("ConfigureCount() = %d, want 1", backend.ConfigureCount())
	}
	if len(backend.Entries()) != 0 {
		t.Error("Init should not emit records")
	}
}

package logger

import (
	"bufio"
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"go.eggybyte.com/easylog/configx"
	"go.eggybyte.com/easylog/testingx"
)

func TestEntryPoints_FirstCallInitializes(t *testing.T) {
	meta := map[string]any{"request_id": "r-1"}

	tests := []struct {
		name   string
		call   func()
		level  slog.Level
		msg    string
		fields map[string]any
	}{
		{"Log", func() { Log("log") }, slog.LevelInfo, "log", nil},
		{"Info", func() { Info("info") }, slog.LevelInfo, "info", nil},
		{"Warn", func() { Warn("warn") }, slog.LevelWarn, "warn", nil},
		{"Error", func() { Error("error") }, slog.LevelError, "error", nil},
		{"Debug", func() { Debug("debug") }, slog.LevelDebug, "debug", nil},
		{"InfoWith", func() { InfoWith("info", meta) }, slog.LevelInfo, "info", meta},
		{"WarnWith", func() { WarnWith("warn", meta) }, slog.LevelWarn, "warn", meta},
		{"ErrorWith", func() { ErrorWith("error", meta) }, slog.LevelError, "error", meta},
		{"DebugWith", func() { DebugWith("debug", meta) }, slog.LevelDebug, "debug", meta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testingx.NewRecordingBackend()
			useBackend(t, backend)

			tt.call()

			if !Initialized() {
				t.Error("first call should initialize")
			}
			if backend.ConfigureCount() != 1 {
				t.Errorf("ConfigureCount() = %d, want 1", backend.ConfigureCount())
			}

			entries := backend.Entries()
			if len(entries) != 1 {
				t.Fatalf("len(Entries()) = %d, want 1", len(entries))
			}
			got := entries[0]
			if got.Level != tt.level || got.Message != tt.msg {
				t.Errorf("entry = %v %q, want %v %q", got.Level, got.Message, tt.level, tt.msg)
			}
			if len(got.Fields) != len(tt.fields) || got.Fields["request_id"] != tt.fields["request_id"] {
				t.Errorf("fields = %v, want %v", got.Fields, tt.fields)
			}
		})
	}
}

func TestWithMetadata_NilAddsNoFields(t *testing.T) {
	backend := testingx.NewRecordingBackend()
	useBackend(t, backend)

	WarnWith("no metadata", nil)

	entries := backend.Entries()
	if len(entries) != 1 || entries[0].Fields != nil {
		t.Errorf("entries = %+v, want one entry without fields", entries)
	}
}

// newBufferedBackend builds a private SlogBackend writing to buf.
func newBufferedBackend(buf *bytes.Buffer, env map[string]string) *SlogBackend {
	return NewSlogBackend(
		WithSource(configx.NewMapSource(env)),
		WithWriter(buf),
		WithoutGlobal(),
	)
}

func TestWarn_SingleLine(t *testing.T) {
	var buf bytes.Buffer
	useBackend(t, newBufferedBackend(&buf, map[string]string{"LOG_COLOR": "false"}))

	Warn("Configuration file not found, using defaults.")

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", out)
	}
	if !strings.Contains(out, "WARN") {
		t.Errorf("line should carry the level: %q", out)
	}
	if !strings.Contains(out, "Configuration file not found, using defaults.") {
		t.Errorf("line should carry the message: %q", out)
	}
}

func TestWithMetadata_JSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	useBackend(t, newBufferedBackend(&buf, map[string]string{"LOG_FORMAT": "json"}))

	InfoWith("user action", map[string]any{
		"user":  "alice",
		"count": 3,
		"tags":  []string{"a", "b"},
	})
	WarnWith("struct metadata", userAction{User: "bob", Action: "logout", Hidden: "x"})
	ErrorWith("scalar metadata", 7)

	lines := decodeLines(t, &buf)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	want := []struct {
		level  string
		msg    string
		fields map[string]any
	}{
		{"INFO", "user action", map[string]any{"user": "alice", "count": float64(3), "tags": []any{"a", "b"}}},
		{"WARN", "struct metadata", map[string]any{"user": "bob", "action": "logout"}},
		{"ERROR", "scalar metadata", map[string]any{"metadata": float64(7)}},
	}

	for i, line := range lines {
		if line["level"] != want[i].level || line["msg"] != want[i].msg {
			t.Errorf("line %d header = %v %v, want %s %q", i, line["level"], line["msg"], want[i].level, want[i].msg)
		}
		if _, ok := line["time"]; !ok {
			t.Errorf("line %d: time should be present by default", i)
		}
		delete(line, "time")
		delete(line, "level")
		delete(line, "msg")
		if !reflect.DeepEqual(line, want[i].fields) {
			t.Errorf("line %d fields = %#v, want %#v", i, line, want[i].fields)
		}
	}
}

func TestWithMetadata_PreservesLargeIntegers(t *testing.T) {
	meta := struct {
		ID int64 `json:"id"`
	}{ID: 9007199254740993}

	tests := []struct {
		format string
		want   string
	}{
		{"logfmt", "id=9007199254740993"},
		{"json", `"id":9007199254740993`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			useBackend(t, newBufferedBackend(&buf, map[string]string{
				"LOG_FORMAT": tt.format,
				"LOG_COLOR":  "false",
			}))

			WarnWith("large id", meta)

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("line %q is not JSON: %v", scanner.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestLevelFiltering_InProcess(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantDebug bool
	}{
		{"default", map[string]string{}, false},
		{"debug", map[string]string{"LOG_LEVEL": "debug"}, true},
		{"upper case", map[string]string{"LOG_LEVEL": "DEBUG"}, true},
		{"error only", map[string]string{"LOG_LEVEL": "error"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			useBackend(t, newBufferedBackend(&buf, tt.env))

			Debug("this is a debug message")
			Error("this is an error")

			out := buf.String()
			if got := strings.Contains(out, "this is a debug message"); got != tt.wantDebug {
				t.Errorf("debug present = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "this is an error") {
				t.Errorf("error record missing:\n%s", out)
			}
		})
	}
}

func TestInvalidConfig_FallsBackWithWarning(t *testing.T) {
	var buf bytes.Buffer
	useBackend(t, newBufferedBackend(&buf, map[string]string{
		"LOG_LEVEL":  "verbose",
		"LOG_FORMAT": "json",
	}))

	Info("after fallback")
	Debug("hidden")

	if err := InitErr(); err != nil {
		t.Errorf("invalid config should not degrade the gate: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want warning + info:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[0], "invalid logging configuration") {
		t.Errorf("first line should be the fallback warning: %q", lines[0])
	}
	if strings.HasPrefix(lines[1], "{") {
		t.Errorf("format should fall back to logfmt: %q", lines[1])
	}
	if !strings.Contains(lines[1], "after fallback") {
		t.Errorf("second line should be the info record: %q", lines[1])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, bytes.ErrTooLarge
}

func TestFailingWriter_NeverPanics(t *testing.T) {
	useBackend(t, NewSlogBackend(
		WithSource(configx.NewMapSource(nil)),
		WithWriter(failingWriter{}),
		WithoutGlobal(),
	))

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("logging call panicked: %v", r)
		}
	}()

	Log("hello")
	WarnWith("meta", map[string]any{"a": 1})
	Error("boom")

	if err := InitErr(); err != nil {
		t.Errorf("InitErr() = %v, want nil", err)
	}
}

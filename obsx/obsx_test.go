// Package obsx provides tests for observability provider.
package obsx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.eggybyte.com/easylog/logx"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name: "valid options",
			opts: Options{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				SkipGlobal:     true,
			},
			wantErr: false,
		},
		{
			name: "missing service name",
			opts: Options{
				ServiceVersion: "1.0.0",
			},
			wantErr: true,
		},
		{
			name: "with resource attributes",
			opts: Options{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				ResourceAttrs: map[string]string{
					"environment": "test",
					"region":      "us-west-2",
				},
				SkipGlobal: true,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(context.Background(), tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if provider == nil {
					t.Fatal("NewProvider() returned nil provider")
				}
				if provider.MeterProvider() == nil {
					t.Error("MeterProvider is nil")
				}

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := provider.Shutdown(ctx); err != nil {
					t.Errorf("Shutdown() error = %v", err)
				}
			}
		})
	}
}

func TestProviderShutdown(t *testing.T) {
	provider, err := NewProvider(context.Background(), Options{
		ServiceName: "test-service",
		SkipGlobal:  true,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	// A second shutdown may report the provider as already stopped.
	if err := provider.Shutdown(ctx); err != nil {
		t.Logf("Second Shutdown() error (expected): %v", err)
	}
}

func TestProvider_CountsLogRecords(t *testing.T) {
	provider, err := NewProvider(context.Background(), Options{
		ServiceName: "test-service",
		SkipGlobal:  true,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(context.Background())

	logger := logx.New(
		logx.WithWriter(io.Discard),
		logx.WithMeterProvider(provider.MeterProvider()),
	)
	logger.Info("one")
	logger.Info("two")
	logger.Warn("three")

	var buf bytes.Buffer
	if err := provider.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	out := buf.String()
	for _, level := range []string{"INFO", "WARN"} {
		if !hasSeries(out, "logx_records", `level="`+level+`"`) {
			t.Errorf("expected %s series in:\n%s", level, out)
		}
	}
}

func TestProvider_PrometheusHandler(t *testing.T) {
	provider, err := NewProvider(context.Background(), Options{
		ServiceName: "test-service",
		SkipGlobal:  true,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(context.Background())

	counter, err := provider.Meter("test").Int64Counter("handler.hits")
	if err != nil {
		t.Fatalf("Int64Counter() error = %v", err)
	}
	counter.Add(context.Background(), 1)

	w := httptest.NewRecorder()
	provider.PrometheusHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "handler_hits") {
		t.Errorf("body should expose handler_hits:\n%s", w.Body.String())
	}
}

// hasSeries reports whether a sample line of family carries label.
func hasSeries(text, family, label string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, family) && strings.Contains(line, label) {
			return true
		}
	}
	return false
}

// Package obsx provides Prometheus-based metrics collection for the logging stack.
//
// Overview:
//   - Responsibility: Bootstrap OpenTelemetry metrics provider with Prometheus export
//   - Key Types: Options for configuration, Provider for managing lifecycle
//   - Concurrency Model: Provider is safe for concurrent use
//   - Error Semantics: NewProvider returns errors.CodeInvalidArgument for bad options
//   - Performance Notes: Pull-based; metrics are collected only when scraped or dumped
//
// Usage:
//
//	provider, err := obsx.NewProvider(ctx, obsx.Options{
//	  ServiceName: "logdemo",
//	  ServiceVersion: "1.0.0",
//	})
//	defer provider.Shutdown(ctx)
//	_ = provider.WriteText(os.Stderr)
package obsx

import (
	"context"
	"io"
	"net/http"

	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"go.eggybyte.com/easylog/obsx/internal"
)

// Options holds configuration for the metrics provider.
type Options struct {
	ServiceName    string            // Service name for metrics
	ServiceVersion string            // Service version
	ResourceAttrs  map[string]string // Additional resource attributes
	SkipGlobal     bool              // Do not install as the otel global meter provider
}

// Provider manages OpenTelemetry metrics provider with Prometheus export.
// The provider must be shut down when no longer needed.
type Provider struct {
	impl *internal.Provider
}

// NewProvider creates a new metrics provider with Prometheus export.
// Unless Options.SkipGlobal is set, the provider becomes the otel global so
// logx handlers built afterwards report their record counters to it.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	impl, err := internal.NewProvider(ctx, internal.ProviderOptions{
		ServiceName:    opts.ServiceName,
		ServiceVersion: opts.ServiceVersion,
		ResourceAttrs:  opts.ResourceAttrs,
		SkipGlobal:     opts.SkipGlobal,
	})
	if err != nil {
		return nil, err
	}

	return &Provider{impl: impl}, nil
}

// MeterProvider returns the OpenTelemetry meter provider.
func (p *Provider) MeterProvider() *metric.MeterProvider {
	return p.impl.MeterProvider
}

// Meter returns an OpenTelemetry Meter for creating custom metrics.
//
// Example:
//
//	meter := provider.Meter("logdemo")
//	counter, _ := meter.Int64Counter("burst.messages")
//	counter.Add(ctx, 1)
func (p *Provider) Meter(name string) api.Meter {
	return p.impl.MeterProvider.Meter(name)
}

// PrometheusHandler returns an HTTP handler serving the Prometheus endpoint.
//
// Example:
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", provider.PrometheusHandler())
func (p *Provider) PrometheusHandler() http.Handler {
	return p.impl.GetPrometheusHandler()
}

// WriteText writes a one-shot snapshot of all metrics in the Prometheus text
// exposition format. Useful for short-lived commands that never get scraped.
func (p *Provider) WriteText(w io.Writer) error {
	return p.impl.WriteText(w)
}

// Shutdown flushes and stops the provider.
// Blocks until shutdown completes or ctx (capped at five seconds) expires.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.impl.Shutdown(ctx)
}

// Package obsx provides Prometheus-based metrics for the easylog stack.
//
// # Overview
//
// obsx constructs an OpenTelemetry meter provider with Prometheus export.
// Once installed as the otel global, every logx handler counts the records
// it writes (logx.records) and the writes that failed (logx.write.errors),
// both labelled by level.
//
// # Features
//
//   - Meter provider with Prometheus export only (no remote push)
//   - HTTP handler for scraping long-running processes
//   - WriteText for one-shot dumps from short-lived commands
//   - Graceful shutdown with bounded timeouts
//
// # Usage
//
//	provider, err := obsx.NewProvider(ctx, obsx.Options{ServiceName: "logdemo"})
//	if err != nil { return err }
//	defer provider.Shutdown(ctx)
//
//	logger.Info("hello")
//	_ = provider.WriteText(os.Stderr)
//
// # Layer
//
// obsx depends on core only.
package obsx

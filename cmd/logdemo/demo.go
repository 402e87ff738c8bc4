package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"gopkg.in/yaml.v3"

	"go.eggybyte.com/easylog/core/errors"
	"go.eggybyte.com/easylog/logger"
	"go.eggybyte.com/easylog/obsx"
)

const meterName = "go.eggybyte.com/easylog/cmd/logdemo"

type demoOptions struct {
	meta    string
	burst   int
	workers int
	metrics bool
}

func (o *demoOptions) validate() error {
	if o.burst < 0 {
		return errors.New(errors.CodeInvalidArgument, "--burst must not be negative")
	}
	if o.workers < 1 {
		return errors.New(errors.CodeInvalidArgument, "--workers must be at least 1")
	}
	return nil
}

// parseMeta decodes --meta. JSON input works too since it is valid YAML.
func parseMeta(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	var meta any
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, "logdemo.meta", err)
	}
	return meta, nil
}

func runDemo(cmd *cobra.Command, opts *demoOptions) (err error) {
	if err := opts.validate(); err != nil {
		return err
	}
	meta, err := parseMeta(opts.meta)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The provider must be global before the first record so the backend's
	// counters bind to it.
	var provider *obsx.Provider
	if opts.metrics {
		provider, err = obsx.NewProvider(ctx, obsx.Options{ServiceName: "logdemo"})
		if err != nil {
			return err
		}
		defer shutdownOnExit(ctx, provider, &err)
	}

	if w := cmd.OutOrStdout(); w != os.Stdout {
		// Redirected output needs an explicit backend; ignored once initialized.
		_ = logger.SetBackend(logger.NewSlogBackend(logger.WithWriter(w)))
	}

	logger.Log("hello from the example")
	logger.Warn("this is a warning")
	logger.Error("this is an error")
	logger.Debug("this is a debug message")

	if meta != nil {
		logger.InfoWith("metadata from --meta", meta)
	}

	if opts.burst > 0 {
		emitBurst(ctx, opts.burst, opts.workers)
	}

	if provider != nil {
		if err := provider.WriteText(cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownOnExit stops s and stores its failure in errp unless an earlier
// error is already there.
func shutdownOnExit(ctx context.Context, s shutdowner, errp *error) {
	if err := s.Shutdown(ctx); err != nil && *errp == nil {
		*errp = fmt.Errorf("failed to shutdown metrics provider: %w", err)
	}
}

// emitBurst logs n records from at most workers goroutines.
func emitBurst(ctx context.Context, n, workers int) {
	counter, _ := otel.Meter(meterName).Int64Counter("logdemo.burst.records")

	p := pool.New().WithMaxGoroutines(min(workers, n))
	for i := 0; i < n; i++ {
		seq := i
		p.Go(func() {
			logger.InfoWith("burst record", map[string]any{"seq": seq})
			if counter != nil {
				counter.Add(ctx, 1)
			}
		})
	}
	p.Wait()
}

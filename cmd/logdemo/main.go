// Package main provides the logdemo command, a tour of the logger package.
//
// Overview:
//   - Responsibility: Emit a fixed set of records through the zero-setup logger
//   - Key Types: Cobra root command
//   - Concurrency Model: Optional burst of concurrent records via a bounded pool
//   - Error Semantics: Flag errors exit 1; logging itself never fails
//   - Performance Notes: Short-lived; metrics are dumped once at exit
//
// Usage:
//
//	LOG_LEVEL=debug logdemo --meta '{user: alice}' --burst 10 --metrics
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the logdemo command tree.
func newRootCmd() *cobra.Command {
	opts := &demoOptions{}

	cmd := &cobra.Command{
		Use:   "logdemo",
		Short: "Emit sample records through the zero-setup logger",
		Long: `logdemo writes one record per level without any logging setup.

Output is controlled by environment variables read on the first record:
  LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_COLOR, NO_COLOR, LOG_TIMESTAMP,
  LOG_PAYLOAD_MAX_BYTES and LOG_SENSITIVE_FIELDS.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.meta, "meta", "", "YAML or JSON metadata attached to an extra info record")
	cmd.Flags().IntVar(&opts.burst, "burst", 0, "Number of concurrent info records to emit")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "Maximum goroutines used by --burst")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print Prometheus metrics to stderr on exit")

	return cmd
}

package cmd

import (
	"os/signal"
	"syscall"

	"github.com/huangsam/livemeasure/core"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/spf13/cobra"
)

// computeCmd computes measures for every component of the input file.
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute issue measures and ratings for every component",
	Long: `Read the issues of each component and compute the full set of measures:
issue counts by type, severity and status, remediation efforts, technical debt
ratios and the maintainability, reliability and security ratings.

Measures on new code use the issues created since --leak-period.

When a store backend is configured, every run and its measures are recorded
so they can be exported later with 'livemeasure store export'.

Examples:
  # Compute everything for the default issues.json
  livemeasure compute

  # Only print ratings, with the last 30 days as new code
  livemeasure compute --leak-period "30 days" --metrics sqale_rating,reliability_rating,security_rating

  # Export measures for Prometheus' textfile collector
  livemeasure compute --output prom --output-file /var/lib/node_exporter/livemeasure.prom

  # Recompute on every change of the input file
  livemeasure compute --watch`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := core.ExecuteCompute(ctx, cfg, storeManager); err != nil {
			contract.LogFatal("Compute failed", err)
		}
	},
}

// metricsCmd displays the formula catalog.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display every computed metric and the formulas it depends on",
	Long: `Show the registered formulas in the order they are evaluated, the metrics
each one depends on, the external inputs and the debt rating grid.

The input file is not read - this is purely informational.

Examples:
  # Show the formula catalog
  livemeasure metrics

  # Check how a custom rating grid is applied
  livemeasure metrics --rating-grid 0.1,0.2,0.5,1`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}

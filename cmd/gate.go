package cmd

import (
	"errors"
	"os"

	"github.com/huangsam/livemeasure/core"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/internal/persist"
	"github.com/spf13/cobra"
)

// gateCmd groups the quality gate commands.
var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "List and enforce quality gates",
	Long: `Quality gates are named sets of conditions on metrics, such as
"new_reliability_rating is worse than A" or "blocker_violations greater than 0".

A built-in gate is always available. More gates can be declared under
quality-gates in .livemeasure.yaml.

Subcommands:
  list  - Show the available quality gates and their conditions
  check - Compute measures and fail when a component breaches the gate`,
}

// gateListCmd lists the quality gates.
var gateListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the built-in and configured quality gates",
	Long: `List every quality gate with its id, its conditions and the actions
available to the caller. Pass --gate-admin to see the actions of a quality
gate administrator.

Examples:
  livemeasure gate list
  livemeasure gate list --gate-admin --output json`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGateList(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list quality gates", err)
		}
	},
}

// gateCheckCmd enforces a quality gate for CI/CD pipelines.
var gateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Enforce a quality gate for CI/CD pipelines (fails build on violations)",
	Long: `Compute measures for every component and evaluate them against a quality gate.

Exits with a non-zero code when any component breaches the gate. Conditions on
metrics that were not computed are reported as NO_VALUE and do not fail the gate.

Examples:
  # Check against the default gate
  livemeasure gate check

  # Check new code of the last sprint against a custom gate
  livemeasure gate check --gate Strict --leak-period "14 days"`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		err := core.ExecuteGateCheck(rootCtx, cfg, storeManager)
		if errors.Is(err, core.ErrGateFailed) {
			persist.CloseStore()
			os.Exit(1)
		}
		if err != nil {
			contract.LogFatal("Quality gate check failed", err)
		}
	},
}

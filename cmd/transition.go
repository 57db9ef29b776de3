package cmd

import (
	"github.com/huangsam/livemeasure/core"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/spf13/cobra"
)

// transitionCmd applies a workflow transition to one issue.
var transitionCmd = &cobra.Command{
	Use:   "transition <issue-key> <transition>",
	Short: "Apply a workflow transition to an issue",
	Long: `Change the status of one issue in the input file and adjust the stored
measures of its component.

Transitions: confirm, unconfirm, reopen, resolve, falsepositive, wontfix.
falsepositive and wontfix require --issue-admin. close and automaticreopen
are reserved for the system.

When the issue moves between resolved and unresolved, the latest stored
count for its type (bugs, code_smells or vulnerabilities) is adjusted by one.

Examples:
  livemeasure transition PAY-3 confirm --actor alice
  livemeasure transition PAY-3 resolve --actor alice
  livemeasure transition PAY-1 wontfix --issue-admin`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteTransition(cfg, storeManager, args[0], args[1]); err != nil {
			contract.LogFatal("Transition failed", err)
		}
	},
}

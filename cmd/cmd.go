// Package cmd defines the command-line interface for livemeasure.
package cmd

import (
	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(transitionCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the gate subcommands to the parent gate command
	gateCmd.AddCommand(gateListCmd)
	gateCmd.AddCommand(gateCheckCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("input", "i", contract.DefaultInputFile, "Path to the issues JSON file")
	rootCmd.PersistentFlags().Bool("detail", false, "Print metric domain and type columns")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of component key prefixes or patterns to ignore")
	rootCmd.PersistentFlags().String("metrics", "", "Comma-separated list of metric keys to print (default all)")
	rootCmd.PersistentFlags().String("leak-period", "", "Start of the leak period in ISO8601, time ago or a duration like '30 days'")
	rootCmd.PersistentFlags().Float64("dev-cost-per-line", contract.DefaultDevCostPerLine, "Minutes needed to write one line of code")
	rootCmd.PersistentFlags().String("rating-grid", formula.DefaultRatingGrid, "Debt density thresholds between ratings A|B, B|C, C|D and D|E")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or prom")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Measure store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of computeCmd to Viper
	computeCmd.Flags().Bool("watch", false, "Recompute every time the input file changes")
	if err := viper.BindPFlags(computeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compute flags", err)
	}

	// Bind all persistent flags of gateCmd to Viper
	gateCmd.PersistentFlags().String("gate", "", "Quality gate name (default gate when empty)")
	gateCmd.PersistentFlags().Bool("gate-admin", false, "List the actions of a quality gate administrator")
	if err := viper.BindPFlags(gateCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding gate flags", err)
	}

	// Bind all flags of transitionCmd to Viper
	transitionCmd.Flags().String("actor", "", "Login recorded as the author of the transition")
	transitionCmd.Flags().Bool("issue-admin", false, "Allow transitions that require issue administration")
	if err := viper.BindPFlags(transitionCmd.Flags()); err != nil {
		contract.LogFatal("Error binding transition flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}

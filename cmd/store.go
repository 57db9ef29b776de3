package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/internal/persist"
	"github.com/huangsam/livemeasure/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadStoreConfig reads the store backend settings without the full shared setup.
func loadStoreConfig() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid store backend '%s'", backend)
	}
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without reading the input file.
func storeSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := loadStoreConfig()
	if err != nil {
		return err
	}
	if err := persist.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeMigrateSetup loads the store config without opening the store, so that
// migrations can run on a fresh database.
func storeMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := loadStoreConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// storeCmd focused on measure history management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup. This avoids reading and validating the input file
// for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the history of compute runs and measures",
	Long: `Manage the measures recorded by every compute run.

Each run stores its metadata (timestamp, configuration, component count) and
every measure of every component. Issue transitions adjust the latest stored
measures so the history stays live between runs.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  export  - Export runs and measures to Parquet
  clear   - Remove all stored data
  migrate - Run database schema migrations

Examples:
  # Check store status
  livemeasure store status

  # Export for analysis in pandas/DuckDB
  livemeasure store export --output-file measures`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, the number of stored runs, the first and last run
timestamps and the size of each table.

Examples:
  livemeasure store status
  LIVEMEASURE_STORE_BACKEND=postgresql LIVEMEASURE_STORE_DB_CONNECT="host=... dbname=..." livemeasure store status`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := persist.Manager.GetMeasureStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		persist.PrintStoreStatus(os.Stdout, status)
	},
}

// storeExportCmd exports stored data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs and measures to Parquet for BI tools and analytics",
	Long: `Export all stored data to two Parquet files:
<output-file>.runs.parquet and <output-file>.measures.parquet.

Requires: --output-file parameter

Examples:
  livemeasure store export --output-file measures
  duckdb -c "SELECT metric, avg(value) FROM read_parquet('measures.measures.parquet') GROUP BY metric"`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := persist.ExecuteStoreExport(persist.Manager.GetMeasureStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export store data", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored runs and measures",
	Long: `Delete every stored compute run and measure.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  livemeasure store export --output-file backup
  livemeasure store clear`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := persist.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the measure store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the measure store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  livemeasure store migrate

  # Rollback everything
  livemeasure store migrate --target-version 0`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := persist.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

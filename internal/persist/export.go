package persist

import (
	"errors"
	"fmt"

	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/internal/parquet"
)

// ExecuteStoreExport exports every stored run and measure to two Parquet files
// named after outputFile.
func ExecuteStoreExport(store contract.MeasureStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no compute runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total compute runs: %d\n", status.TotalRuns)
	fmt.Printf("Total measure records: %d\n", status.TableSizes[measuresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve compute runs: %w", err)
	}
	measures, err := store.GetAllMeasures()
	if err != nil {
		return fmt.Errorf("failed to retrieve measures: %w", err)
	}

	runRows := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write compute runs: %w", err)
	}
	fmt.Printf("Exported %d compute runs to: %s\n", len(runRows), runsFile)

	measureRows := parquet.ConvertMeasureRecords(measures)
	measuresFile := outputFile + ".measures.parquet"
	if err := parquet.WriteMeasuresParquet(measureRows, measuresFile); err != nil {
		return fmt.Errorf("failed to write measures: %w", err)
	}
	fmt.Printf("Exported %d measures to: %s\n", len(measureRows), measuresFile)
	return nil
}

// Package parquet provides data structures and functions for exporting livemeasure
// runs and measures to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/livemeasure/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single compute run with metadata.
// This struct maps to the livemeasure_runs database table.
type Run struct {
	// RunID is the unique identifier for this compute run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalComponents is the number of components measured in this run
	TotalComponents int32 `parquet:"total_components,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Measure is one metric value of one component.
// This struct maps to the livemeasure_measures database table. RunID is
// zero for measures written straight from a compute without a store.
type Measure struct {
	RunID        int64     `parquet:"run_id,snappy"`
	ComponentKey string    `parquet:"component_key,dict,snappy"`
	MetricKey    string    `parquet:"metric_key,dict,snappy"`
	ValueType    string    `parquet:"value_type,dict,snappy"`
	NumValue     *float64  `parquet:"num_value,optional,snappy"`
	TextValue    *string   `parquet:"text_value,optional,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
}

// WriteRows writes rows to w using the schema inferred from T.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows into it.
func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteMeasuresParquet writes a slice of Measure structs to a Parquet file.
func WriteMeasuresParquet(data []Measure, outputPath string) error {
	return writeFile(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:           record.RunID,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			TotalComponents: record.TotalComponents,
			ConfigParams:    record.ConfigParams,
		}
	}
	return result
}

// ConvertMeasureRecords converts schema.MeasureRecord to Measure for Parquet export.
func ConvertMeasureRecords(records []schema.MeasureRecord) []Measure {
	result := make([]Measure, len(records))
	for i, record := range records {
		result[i] = Measure{
			RunID:        record.RunID,
			ComponentKey: record.ComponentKey,
			MetricKey:    record.MetricKey,
			ValueType:    string(record.ValueType),
			NumValue:     record.NumValue,
			TextValue:    record.TextValue,
			RecordedAt:   record.RecordedAt,
		}
	}
	return result
}

// ConvertComputeResult flattens freshly computed measures into rows.
func ConvertComputeResult(result *schema.ComputeResult, at time.Time) []Measure {
	var records []schema.MeasureRecord
	for _, cm := range result.Components {
		for _, m := range cm.Measures {
			records = append(records, schema.NewMeasureRecord(result.RunID, cm.Component, m, at))
		}
	}
	return ConvertMeasureRecords(records)
}

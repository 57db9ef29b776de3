package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/internal/parquet"
	"github.com/huangsam/livemeasure/schema"
)

// PrintMeasures outputs the compute results, dispatching based on the output format configured.
func PrintMeasures(result *schema.ComputeResult, catalog []schema.Metric, cfg *contract.Config) error {
	byKey := indexMetrics(catalog)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMeasuresCSV(w, result, byKey, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertComputeResult(result, time.Now().UTC()))
		}, "Wrote Parquet")
	case schema.PromOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMeasuresProm(w, result, catalog)
		}, "Wrote Prometheus metrics")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMeasuresTable(w, result, byKey, cfg)
		}, "Wrote table")
	}
}

func indexMetrics(catalog []schema.Metric) map[string]schema.Metric {
	out := make(map[string]schema.Metric, len(catalog))
	for _, m := range catalog {
		out[m.Key] = m
	}
	return out
}

// valueType falls back to the value's own kind for metrics missing from the catalog.
func valueType(byKey map[string]schema.Metric, m schema.Measure) schema.ValueType {
	if meta, ok := byKey[m.Metric]; ok {
		return meta.Type
	}
	return m.Value.Type
}

// writeMeasuresTable generates and writes the human-readable table.
func writeMeasuresTable(w io.Writer, result *schema.ComputeResult, byKey map[string]schema.Metric, cfg *contract.Config) error {
	headers := []string{"Component", "Metric", "Value"}
	if cfg.Detail {
		headers = append(headers, "Domain", "Type")
	}

	keyWidth := GetMaxTableKeyWidth(cfg)
	var data [][]string
	totalMeasures, totalFailures := 0, 0
	for _, cm := range result.Components {
		for _, m := range cm.Measures {
			value := m.Value.Format(cfg.Precision)
			if m.Value.Type == schema.RatingType && cfg.UseColors {
				value = contract.GetColorRating(m.Value.Rating)
			}
			row := []string{
				contract.TruncateKey(cm.Component, keyWidth),
				m.Metric,
				value,
			}
			if cfg.Detail {
				meta := byKey[m.Metric]
				row = append(row, meta.Domain, string(valueType(byKey, m)))
			}
			data = append(data, row)
		}
		totalMeasures += len(cm.Measures)
		totalFailures += len(cm.Failures)
	}

	if err := writeTable(w, headers, data); err != nil {
		return err
	}
	if err := writeFailures(w, result); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Measured %d components (measures: %d, failures: %d)\n", len(result.Components), totalMeasures, totalFailures); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Compute completed in %v with %d workers. Store backend: %s\n", result.Duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	if result.RunID > 0 {
		if _, err := fmt.Fprintf(w, "Recorded as run %d\n", result.RunID); err != nil {
			return err
		}
	}
	return nil
}

// writeFailures lists formula failures below the table, sorted by metric.
func writeFailures(w io.Writer, result *schema.ComputeResult) error {
	for _, cm := range result.Components {
		for _, metric := range slices.Sorted(maps.Keys(cm.Failures)) {
			if _, err := fmt.Fprintf(w, "⚠️  %s: %s not computed: %s\n", cm.Component, metric, cm.Failures[metric]); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeMeasuresCSV writes one row per measure in long format.
func writeMeasuresCSV(w io.Writer, result *schema.ComputeResult, byKey map[string]schema.Metric, precision int) error {
	header := []string{"component", "metric", "type", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, cm := range result.Components {
			for _, m := range cm.Measures {
				rec := []string{
					cm.Component,
					m.Metric,
					string(valueType(byKey, m)),
					m.Value.Format(precision),
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
)

// PrintMetricsDefinitions displays every registered formula in evaluation order.
// This is a static display that does not require an input file.
func PrintMetricsDefinitions(model *schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, model)
		}, "Wrote CSV")
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, model, cfg)
		}, "Wrote text")
	default:
		return errUnsupportedOutput(cfg.Output, "metrics")
	}
}

// writeMetricsText displays metrics in human-readable text format.
func writeMetricsText(w io.Writer, model *schema.MetricsRenderModel, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "📐 %s\n%s\n\n%s\n\n", model.Title, strings.Repeat("=", len(model.Title)+3), model.Description); err != nil {
		return err
	}

	headers := []string{"Order", "Metric", "Type", "Domain", "Depends On"}
	if cfg.Detail {
		headers = append(headers, "Name")
	}
	var data [][]string
	for _, f := range model.Formulas {
		row := []string{
			strconv.Itoa(f.Order),
			f.Metric.Key,
			string(f.Metric.Type),
			f.Metric.Domain,
			strings.Join(f.Dependencies, ", "),
		}
		if cfg.Detail {
			row = append(row, f.Metric.Name)
		}
		data = append(data, row)
	}
	if err := writeTable(w, headers, data); err != nil {
		return err
	}

	inputs := make([]string, 0, len(model.Inputs))
	for _, m := range model.Inputs {
		inputs = append(inputs, m.Key)
	}
	if _, err := fmt.Fprintf(w, "\n📥 External inputs: %s\n", strings.Join(inputs, ", ")); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "📊 Rating grid: %s\n", formatRatingGrid(model.RatingGrid))
	return err
}

// formatRatingGrid renders thresholds as the density band of each rating.
func formatRatingGrid(thresholds []float64) string {
	if len(thresholds) != len(schema.AllRatings)-1 {
		return "n/a"
	}
	var b strings.Builder
	for i, r := range schema.AllRatings {
		if i > 0 {
			fmt.Fprintf(&b, " <= ")
		}
		b.WriteString(r.String())
		if i < len(thresholds) {
			fmt.Fprintf(&b, " < %s", strconv.FormatFloat(thresholds[i], 'f', -1, 64))
		}
	}
	return b.String()
}

// writeMetricsCSV writes the formula catalog in CSV format.
func writeMetricsCSV(w io.Writer, model *schema.MetricsRenderModel) error {
	header := []string{"order", "metric", "name", "type", "domain", "dependencies"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range model.Formulas {
			rec := []string{
				strconv.Itoa(f.Order),
				f.Metric.Key,
				f.Metric.Name,
				string(f.Metric.Type),
				f.Metric.Domain,
				strings.Join(f.Dependencies, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

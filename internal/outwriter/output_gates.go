package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// errUnsupportedOutput is returned for formats that only make sense for measures.
func errUnsupportedOutput(mode schema.OutputMode, what string) error {
	return fmt.Errorf("output format '%s' is not supported for %s", mode, what)
}

// formatConditions renders gate conditions as "metric OP error" pairs.
func formatConditions(conditions []schema.GateCondition) string {
	parts := make([]string, 0, len(conditions))
	for _, c := range conditions {
		parts = append(parts, fmt.Sprintf("%s %s %s", c.Metric, c.Op, c.Error))
	}
	return strings.Join(parts, "; ")
}

// formatActions lists the enabled gate actions by name.
func formatActions(a schema.GateActions) string {
	var parts []string
	for _, act := range []struct {
		name string
		on   bool
	}{
		{"rename", a.Rename},
		{"setAsDefault", a.SetAsDefault},
		{"copy", a.Copy},
		{"associateProjects", a.AssociateProjects},
		{"delete", a.Delete},
		{"manageConditions", a.ManageConditions},
	} {
		if act.on {
			parts = append(parts, act.name)
		}
	}
	return strings.Join(parts, ", ")
}

// PrintGateList outputs the quality gate listing.
func PrintGateList(result schema.GateListResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGateListCSV(w, result)
		}, "Wrote CSV")
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGateListText(w, result, cfg)
		}, "Wrote table")
	default:
		return errUnsupportedOutput(cfg.Output, "gate list")
	}
}

func writeGateListText(w io.Writer, result schema.GateListResult, cfg *contract.Config) error {
	headers := []string{"ID", "Name", "Default", "Built-in", "Conditions"}
	if cfg.Detail {
		headers = append(headers, "Actions")
	}
	var data [][]string
	for _, g := range result.QualityGates {
		row := []string{
			strconv.FormatInt(g.ID, 10),
			g.Name,
			strconv.FormatBool(g.IsDefault),
			strconv.FormatBool(g.IsBuiltIn),
			formatConditions(g.Conditions),
		}
		if cfg.Detail {
			row = append(row, formatActions(g.Actions))
		}
		data = append(data, row)
	}
	if err := writeTable(w, headers, data); err != nil {
		return err
	}
	if result.Default == nil {
		_, err := fmt.Fprintf(w, "No default quality gate\n")
		return err
	}
	_, err := fmt.Fprintf(w, "Default quality gate: %d (can create: %t)\n", *result.Default, result.Actions.Create)
	return err
}

func writeGateListCSV(w io.Writer, result schema.GateListResult) error {
	header := []string{"id", "name", "is_default", "is_built_in", "conditions"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, g := range result.QualityGates {
			rec := []string{
				strconv.FormatInt(g.ID, 10),
				g.Name,
				strconv.FormatBool(g.IsDefault),
				strconv.FormatBool(g.IsBuiltIn),
				formatConditions(g.Conditions),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// PrintGateCheck outputs quality gate outcomes for every component.
func PrintGateCheck(result *schema.GateCheckResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGateCheckCSV(w, result)
		}, "Wrote CSV")
	case schema.PromOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			mf := gateFamily(result)
			if len(mf.Metric) == 0 {
				return nil
			}
			_, err := expfmt.MetricFamilyToText(w, mf)
			return err
		}, "Wrote Prometheus metrics")
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGateCheckText(w, result, cfg, duration)
		}, "Wrote table")
	default:
		return errUnsupportedOutput(cfg.Output, "gate check")
	}
}

// failedComponents counts the components whose gate status is ERROR.
func failedComponents(result *schema.GateCheckResult) int {
	n := 0
	for _, s := range result.Statuses {
		if s.Level == schema.GateError {
			n++
		}
	}
	return n
}

func writeGateCheckText(w io.Writer, result *schema.GateCheckResult, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "Quality Gate: %s\nChecked %d components in %v\n\n", result.Gate, len(result.Statuses), duration); err != nil {
		return err
	}

	level := func(l schema.GateLevel) string { return string(l) }
	if cfg.UseColors {
		level = contract.GetColorLevel
	}
	keyWidth := GetMaxTableKeyWidth(cfg)

	headers := []string{"Component", "Metric", "Op", "Error", "Actual", "Level"}
	var data [][]string
	for _, s := range result.Statuses {
		for _, c := range s.Conditions {
			if !cfg.Detail && c.Level == schema.GateOK {
				continue
			}
			data = append(data, []string{
				contract.TruncateKey(s.Component, keyWidth),
				c.Metric,
				string(c.Op),
				c.Error,
				c.Actual,
				level(c.Level),
			})
		}
	}
	if len(data) > 0 {
		if err := writeTable(w, headers, data); err != nil {
			return err
		}
	}

	if result.Passed {
		_, err := fmt.Fprintf(w, "✅ All components passed quality gate %s\n", result.Gate)
		return err
	}
	_, err := fmt.Fprintf(w, "❌ Quality gate %s failed: %d of %d components\n", result.Gate, failedComponents(result), len(result.Statuses))
	return err
}

func writeGateCheckCSV(w io.Writer, result *schema.GateCheckResult) error {
	header := []string{"gate", "component", "metric", "op", "error", "actual", "level"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range result.Statuses {
			for _, c := range s.Conditions {
				rec := []string{s.Gate, s.Component, c.Metric, string(c.Op), c.Error, c.Actual, string(c.Level)}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// gateFamily exports 1 for each component that passed the gate and 0 otherwise.
func gateFamily(result *schema.GateCheckResult) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: proto.String(promPrefix + "quality_gate_passed"),
		Help: proto.String("Whether the component passed the quality gate"),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for _, s := range result.Statuses {
		v := 1.0
		if s.Level == schema.GateError {
			v = 0
		}
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: proto.String("component"), Value: proto.String(s.Component)},
				{Name: proto.String("gate"), Value: proto.String(s.Gate)},
			},
			Gauge: &dto.Gauge{Value: proto.Float64(v)},
		})
	}
	return mf
}

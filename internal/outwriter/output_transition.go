package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/livemeasure/core/workflow"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
)

// PrintTransition outputs the outcome of an issue transition.
func PrintTransition(result *workflow.Result, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTransitionCSV(w, result)
		}, "Wrote CSV")
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTransitionText(w, result)
		}, "Wrote text")
	default:
		return errUnsupportedOutput(cfg.Output, "transition")
	}
}

func writeTransitionText(w io.Writer, result *workflow.Result) error {
	actor := result.Actor
	if actor == "" {
		actor = "anonymous"
	}
	if _, err := fmt.Fprintf(w, "🔁 Issue %s: %s -> %s (%s by %s)\n", result.Issue.Key, result.From, result.To, result.Transition, actor); err != nil {
		return err
	}
	if result.Issue.Resolution != schema.NoResolution {
		if _, err := fmt.Fprintf(w, "   Resolution: %s\n", result.Issue.Resolution); err != nil {
			return err
		}
	}
	if result.Diff == nil {
		_, err := fmt.Fprintf(w, "   No measure change\n")
		return err
	}
	_, err := fmt.Fprintf(w, "   Measure change: %s %+g\n", result.Diff.Metric, result.Diff.Delta)
	return err
}

func writeTransitionCSV(w io.Writer, result *workflow.Result) error {
	header := []string{"issue", "transition", "from", "to", "resolution", "actor", "diff_metric", "diff_delta"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		metric, delta := "", ""
		if result.Diff != nil {
			metric = result.Diff.Metric
			delta = strconv.FormatFloat(result.Diff.Delta, 'f', -1, 64)
		}
		rec := []string{
			result.Issue.Key,
			string(result.Transition),
			string(result.From),
			string(result.To),
			string(result.Issue.Resolution),
			result.Actor,
			metric,
			delta,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
		return nil
	})
}

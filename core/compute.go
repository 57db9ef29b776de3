package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/livemeasure/core/agg"
	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
)

// ErrNoComponents is returned when every component was excluded or the input is empty.
var ErrNoComponents = errors.New("no components found")

// logComputeHeader prints a concise, 2-line header for a compute pass.
func logComputeHeader(cfg *contract.Config, components int) {
	fmt.Fprintf(os.Stderr, "🔎 Input: %s (components: %d)\n", cfg.InputPath, components)
	if cfg.LeakStart.IsZero() {
		fmt.Fprintf(os.Stderr, "📅 Leak period: none\n")
		return
	}
	fmt.Fprintf(os.Stderr, "📅 Leak period: since %s\n", cfg.LeakStart.Format(contract.DateTimeFormat))
}

// filterComponents drops components whose key matches an exclude pattern.
func filterComponents(components []schema.Component, excludes []string) []schema.Component {
	out := make([]schema.Component, 0, len(components))
	for _, c := range components {
		if !contract.ShouldIgnore(c.Key, excludes) {
			out = append(out, c)
		}
	}
	return out
}

// RunCompute loads the input file and evaluates every component.
// Measures are recorded to the store when one is available.
func RunCompute(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.ComputeResult, error) {
	input, err := agg.LoadInput(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	return ComputeInput(ctx, cfg, mgr, input)
}

// ComputeInput evaluates every component of an already loaded input.
func ComputeInput(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.Input) (*schema.ComputeResult, error) {
	start := time.Now()

	components := filterComponents(input.Components, cfg.Excludes)
	if len(components) == 0 {
		return nil, ErrNoComponents
	}
	if !shouldSuppressHeader(ctx) {
		logComputeHeader(cfg, len(components))
	}

	engine := formula.NewDefaultEngine(cfg.RatingGrid)
	// A cyclic registry aborts before anything is recorded
	if _, err := engine.Plan(); err != nil {
		return nil, err
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var store contract.MeasureStore
	if mgr != nil {
		store = mgr.GetMeasureStore()
	}
	var runID int64
	if store != nil {
		id, err := store.BeginRun(start, cfg.ConfigParams())
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if id > 0 {
			runID = id
			ctx = withRunID(ctx, id)
		}
	}

	// --- 1. Evaluate all components ---
	results, err := computeComponents(ctx, cfg, engine, store, components)
	if err != nil {
		return nil, err
	}

	// --- 2. End Run Tracking ---
	if store != nil && runID > 0 {
		if err := store.EndRun(runID, time.Now(), len(results)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return &schema.ComputeResult{
		RunID:      runID,
		Components: results,
		Duration:   time.Since(start),
	}, nil
}

// computeComponents evaluates components in parallel using a worker pool.
// Results keep the input order.
func computeComponents(ctx context.Context, cfg *contract.Config, engine *formula.Engine, store contract.MeasureStore, components []schema.Component) ([]schema.ComponentMeasures, error) {
	indexCh := make(chan int, len(components))
	results := make([]schema.ComponentMeasures, len(components))
	errs := make([]error, len(components))
	var wg sync.WaitGroup

	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for i := range indexCh {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				// Each worker writes to a unique index
				results[i], errs[i] = evaluateComponent(ctx, cfg, engine, store, components[i])
			}
		})
	}

	for i := range components {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// seedInputs writes the external inputs the formulas read: development costs
// derived from the lines of code.
func seedInputs(mc *formula.MeasureContext, c schema.Component, devCostPerLine float64) error {
	if err := mc.Set(formula.DevelopmentCost.Key, schema.FloatValue(float64(c.Ncloc)*devCostPerLine)); err != nil {
		return err
	}
	return mc.Set(formula.NewDevelopmentCost.Key, schema.FloatValue(float64(c.NewNcloc)*devCostPerLine))
}

// evaluateComponent computes all measures for a single component.
func evaluateComponent(ctx context.Context, cfg *contract.Config, engine *formula.Engine, store contract.MeasureStore, c schema.Component) (schema.ComponentMeasures, error) {
	groups := agg.GroupIssues(c.Issues, cfg.LeakStart)
	mc := formula.NewMeasureContext(c.Key)
	if err := seedInputs(mc, c, cfg.DevCostPerLine); err != nil {
		return schema.ComponentMeasures{}, err
	}

	report, err := engine.Evaluate(groups, mc)
	if err != nil {
		return schema.ComponentMeasures{}, fmt.Errorf("failed to evaluate %s: %w", c.Key, err)
	}
	if ferr := report.Err(); ferr != nil {
		contract.LogWarn(fmt.Sprintf("Some measures of %s were not computed", c.Key), ferr)
	}

	result := schema.ComponentMeasures{
		Component: c.Key,
		Name:      c.Name,
		Measures:  mc.Measures(),
		Failures:  report.FailureMessages(),
	}

	// Record measures to the store (if run tracking is enabled)
	if runID, ok := getRunID(ctx); ok && store != nil {
		if err := store.RecordMeasures(runID, c.Key, result.Measures, time.Now()); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to record measures for %s", c.Key), err)
		}
	}
	return result, nil
}

// FilterMetrics keeps only the requested metrics in the result. An empty
// list keeps everything. Failures of dropped metrics are dropped too.
func FilterMetrics(result *schema.ComputeResult, metrics []string) *schema.ComputeResult {
	if len(metrics) == 0 {
		return result
	}
	filtered := &schema.ComputeResult{
		RunID:      result.RunID,
		Duration:   result.Duration,
		Components: make([]schema.ComponentMeasures, 0, len(result.Components)),
	}
	for _, cm := range result.Components {
		out := schema.ComponentMeasures{Component: cm.Component, Name: cm.Name}
		for _, m := range cm.Measures {
			if slices.Contains(metrics, m.Metric) {
				out.Measures = append(out.Measures, m)
			}
		}
		for metric, msg := range cm.Failures {
			if !slices.Contains(metrics, metric) {
				continue
			}
			if out.Failures == nil {
				out.Failures = make(map[string]string)
			}
			out.Failures[metric] = msg
		}
		filtered.Components = append(filtered.Components, out)
	}
	return filtered
}

package core

import (
	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/schema"
)

// BuildMetricsRenderModel describes every formula of the engine in evaluation order.
func BuildMetricsRenderModel(engine *formula.Engine, grid *formula.ThresholdGrid) (*schema.MetricsRenderModel, error) {
	plan, err := engine.Plan()
	if err != nil {
		return nil, err
	}

	defs := make([]schema.FormulaDefinition, 0, len(plan))
	for i, f := range plan {
		var deps []string
		for _, d := range f.Dependents() {
			deps = append(deps, d.Key)
		}
		defs = append(defs, schema.FormulaDefinition{
			Metric:       f.Metric(),
			Dependencies: deps,
			Order:        i + 1,
		})
	}

	model := &schema.MetricsRenderModel{
		Title:       "Issue Metric Formulas",
		Description: "Each formula reads issue counts and the metrics it depends on, in the order below",
		Formulas:    defs,
		Inputs:      engine.ExternalInputs(),
	}
	if grid != nil {
		model.RatingGrid = grid.Thresholds()
	}
	return model, nil
}

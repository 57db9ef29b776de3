// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/livemeasure/core/workflow"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMeasures prints computed measures using the configured output format.
// The catalog supplies metric names and domains for display.
func (ow *OutWriter) WriteMeasures(result *schema.ComputeResult, catalog []schema.Metric, cfg *contract.Config) error {
	return PrintMeasures(result, catalog, cfg)
}

// WriteMetrics prints the formula catalog using the configured output format.
func (ow *OutWriter) WriteMetrics(model *schema.MetricsRenderModel, cfg *contract.Config) error {
	return PrintMetricsDefinitions(model, cfg)
}

// WriteGateList prints the quality gate listing using the configured output format.
func (ow *OutWriter) WriteGateList(result schema.GateListResult, cfg *contract.Config) error {
	return PrintGateList(result, cfg)
}

// WriteGateCheck prints quality gate outcomes using the configured output format.
func (ow *OutWriter) WriteGateCheck(result *schema.GateCheckResult, cfg *contract.Config, duration time.Duration) error {
	return PrintGateCheck(result, cfg, duration)
}

// WriteTransition prints the outcome of an issue transition.
func (ow *OutWriter) WriteTransition(result *workflow.Result, cfg *contract.Config) error {
	return PrintTransition(result, cfg)
}

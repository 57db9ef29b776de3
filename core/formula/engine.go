// Package formula evaluates metric formulas over aggregated issue counts.
package formula

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/huangsam/livemeasure/schema"
)

// Computer produces the value of one metric.
type Computer interface {
	Compute(ctx *FormulaContext, counter *IssueCounter) error
}

// ComputeFunc adapts a plain function to the Computer interface.
type ComputeFunc func(ctx *FormulaContext, counter *IssueCounter) error

// Compute implements Computer.
func (f ComputeFunc) Compute(ctx *FormulaContext, counter *IssueCounter) error {
	return f(ctx, counter)
}

// Formula binds a metric to the metrics it reads and the computation that writes it.
type Formula struct {
	metric     schema.Metric
	dependents []schema.Metric
	computer   Computer
}

// NewFormula creates a formula writing metric and reading dependents.
func NewFormula(metric schema.Metric, computer Computer, dependents ...schema.Metric) *Formula {
	return &Formula{
		metric:     metric,
		dependents: slices.Clone(dependents),
		computer:   computer,
	}
}

// Metric returns the metric the formula writes.
func (f *Formula) Metric() schema.Metric {
	return f.metric
}

// Dependents returns the metrics the formula reads.
func (f *Formula) Dependents() []schema.Metric {
	return slices.Clone(f.dependents)
}

func (f *Formula) dependsOn(key string) bool {
	for _, d := range f.dependents {
		if d.Key == key {
			return true
		}
	}
	return false
}

// Report summarizes one evaluation pass.
type Report struct {
	Component string
	Computed  []string
	Failures  []*FormulaError
	errs      *multierror.Error
}

func (r *Report) fail(metric string, err error) {
	fe := &FormulaError{Metric: metric, Err: err}
	r.Failures = append(r.Failures, fe)
	r.errs = multierror.Append(r.errs, fe)
}

// Err returns the combined formula failures, or nil when every formula succeeded.
func (r *Report) Err() error {
	return r.errs.ErrorOrNil()
}

// FailureMessages maps each failed metric to its error text.
func (r *Report) FailureMessages() map[string]string {
	if len(r.Failures) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Failures))
	for _, f := range r.Failures {
		out[f.Metric] = f.Err.Error()
	}
	return out
}

// Engine is a registry of formulas evaluated in dependency order.
type Engine struct {
	formulas []*Formula
	byMetric map[string]*Formula
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{byMetric: make(map[string]*Formula)}
}

// Register adds a formula. A metric can be produced by only one formula.
func (e *Engine) Register(f *Formula) error {
	key := f.metric.Key
	if _, ok := e.byMetric[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMetric, key)
	}
	e.formulas = append(e.formulas, f)
	e.byMetric[key] = f
	return nil
}

// MustRegister is like Register but panics on error. It is meant for static setup.
func (e *Engine) MustRegister(formulas ...*Formula) *Engine {
	for _, f := range formulas {
		if err := e.Register(f); err != nil {
			panic(err)
		}
	}
	return e
}

// Formulas returns the registered formulas in registration order.
func (e *Engine) Formulas() []*Formula {
	return slices.Clone(e.formulas)
}

// Formula returns the formula producing the given metric.
func (e *Engine) Formula(key string) (*Formula, bool) {
	f, ok := e.byMetric[key]
	return f, ok
}

// RequiredMetrics returns every metric produced or read by a registered formula,
// deduplicated by key, in order of first appearance.
func (e *Engine) RequiredMetrics() []schema.Metric {
	seen := make(map[string]struct{})
	var out []schema.Metric
	add := func(m schema.Metric) {
		if _, ok := seen[m.Key]; ok {
			return
		}
		seen[m.Key] = struct{}{}
		out = append(out, m)
	}
	for _, f := range e.formulas {
		add(f.metric)
		for _, d := range f.dependents {
			add(d)
		}
	}
	return out
}

// ExternalInputs returns the dependencies that no registered formula produces.
// Callers seed these into the MeasureContext before evaluation.
func (e *Engine) ExternalInputs() []schema.Metric {
	var out []schema.Metric
	for _, m := range e.RequiredMetrics() {
		if _, ok := e.byMetric[m.Key]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// Plan returns the formulas ordered so that every formula runs after the
// formulas producing its dependencies. Ties keep registration order.
func (e *Engine) Plan() ([]*Formula, error) {
	indegree := make(map[string]int, len(e.formulas))
	consumers := make(map[string][]string, len(e.formulas))
	for _, f := range e.formulas {
		for _, d := range f.dependents {
			if _, produced := e.byMetric[d.Key]; !produced {
				continue
			}
			indegree[f.metric.Key]++
			consumers[d.Key] = append(consumers[d.Key], f.metric.Key)
		}
	}

	plan := make([]*Formula, 0, len(e.formulas))
	done := make(map[string]bool, len(e.formulas))
	for len(plan) < len(e.formulas) {
		progressed := false
		for _, f := range e.formulas {
			key := f.metric.Key
			if done[key] || indegree[key] > 0 {
				continue
			}
			done[key] = true
			plan = append(plan, f)
			for _, c := range consumers[key] {
				indegree[c]--
			}
			progressed = true
			break
		}
		if !progressed {
			var stuck []string
			for _, f := range e.formulas {
				if !done[f.metric.Key] {
					stuck = append(stuck, f.metric.Key)
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(stuck, ", "))
		}
	}
	return plan, nil
}

// Evaluate runs every formula over the issue groups and writes results into mc.
// A cyclic registry aborts the pass before any value is written. A failing
// formula leaves its metric absent and is recorded in the returned report;
// the other formulas still run.
func (e *Engine) Evaluate(groups []schema.IssueGroup, mc *MeasureContext) (*Report, error) {
	plan, err := e.Plan()
	if err != nil {
		return nil, err
	}

	counter := NewIssueCounter(groups)
	report := &Report{Component: mc.Component()}
	for _, f := range plan {
		fc := newFormulaContext(mc, f)
		if err := f.computer.Compute(fc, counter); err != nil {
			report.fail(f.metric.Key, err)
			continue
		}
		if fc.staged == nil {
			continue
		}
		if err := mc.Set(f.metric.Key, *fc.staged); err != nil {
			report.fail(f.metric.Key, err)
			continue
		}
		report.Computed = append(report.Computed, f.metric.Key)
	}
	return report, nil
}

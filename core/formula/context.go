package formula

import (
	"fmt"

	"github.com/huangsam/livemeasure/schema"
)

// MeasureContext is the per-component sink of computed values.
// Each metric can be written once; later writes are rejected and the first value is kept.
// A MeasureContext is not safe for concurrent use.
type MeasureContext struct {
	component string
	values    map[string]schema.Value
	order     []string
}

// NewMeasureContext creates an empty context for the given component.
func NewMeasureContext(component string) *MeasureContext {
	return &MeasureContext{
		component: component,
		values:    make(map[string]schema.Value),
	}
}

// Component returns the key of the component the context belongs to.
func (mc *MeasureContext) Component() string {
	return mc.component
}

// Set stores a value for a metric unless one is already present.
// It is also how callers seed external inputs such as development cost.
func (mc *MeasureContext) Set(metric string, v schema.Value) error {
	if _, ok := mc.values[metric]; ok {
		return fmt.Errorf("%w: %s on %s", ErrMeasureAlreadySet, metric, mc.component)
	}
	mc.values[metric] = v
	mc.order = append(mc.order, metric)
	return nil
}

// Get returns the value of a metric and whether it is present.
func (mc *MeasureContext) Get(metric string) (schema.Value, bool) {
	v, ok := mc.values[metric]
	return v, ok
}

// Len returns the number of values stored.
func (mc *MeasureContext) Len() int {
	return len(mc.values)
}

// Measures returns all stored values in write order.
func (mc *MeasureContext) Measures() []schema.Measure {
	out := make([]schema.Measure, 0, len(mc.order))
	for _, key := range mc.order {
		out = append(out, schema.Measure{Metric: key, Value: mc.values[key]})
	}
	return out
}

// FormulaContext is the view of a MeasureContext handed to a single formula.
// Reads are limited to declared dependencies and the single write is staged
// until the formula returns without error.
type FormulaContext struct {
	parent  *MeasureContext
	formula *Formula
	staged  *schema.Value
}

func newFormulaContext(parent *MeasureContext, f *Formula) *FormulaContext {
	return &FormulaContext{parent: parent, formula: f}
}

// Metric returns the metric the formula writes.
func (fc *FormulaContext) Metric() schema.Metric {
	return fc.formula.metric
}

// Component returns the key of the component being evaluated.
func (fc *FormulaContext) Component() string {
	return fc.parent.component
}

// Value reads a declared dependency. ErrMetricAbsent is returned when it has no value.
func (fc *FormulaContext) Value(key string) (schema.Value, error) {
	if !fc.formula.dependsOn(key) {
		return schema.Value{}, fmt.Errorf("%w: %s reads %s", ErrUndeclaredDependency, fc.formula.metric.Key, key)
	}
	v, ok := fc.parent.Get(key)
	if !ok {
		return schema.Value{}, fmt.Errorf("%w: %s", ErrMetricAbsent, key)
	}
	return v, nil
}

// Float reads a declared dependency as a number. Ratings read as their index.
func (fc *FormulaContext) Float(key string) (float64, error) {
	v, err := fc.Value(key)
	if err != nil {
		return 0, err
	}
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("%w: %s holds %s", ErrValueKindMismatch, key, v.Type)
	}
	return f, nil
}

// FloatOr reads a declared dependency as a number, falling back when it is absent.
func (fc *FormulaContext) FloatOr(key string, fallback float64) (float64, error) {
	f, err := fc.Float(key)
	if err != nil {
		if isAbsent(err) {
			return fallback, nil
		}
		return 0, err
	}
	return f, nil
}

// SetValue stages the output of the formula.
func (fc *FormulaContext) SetValue(v schema.Value) error {
	if v.Type != fc.formula.metric.Type {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrValueKindMismatch, fc.formula.metric.Key, fc.formula.metric.Type, v.Type)
	}
	if fc.staged != nil {
		return fmt.Errorf("%w: %s on %s", ErrMeasureAlreadySet, fc.formula.metric.Key, fc.parent.component)
	}
	fc.staged = &v
	return nil
}

// SetFloat stages a numeric output.
func (fc *FormulaContext) SetFloat(f float64) error {
	return fc.SetValue(schema.FloatValue(f))
}

// SetRating stages a rating output.
func (fc *FormulaContext) SetRating(r schema.Rating) error {
	return fc.SetValue(schema.RatingValue(r))
}

// SetString stages a string output.
func (fc *FormulaContext) SetString(s string) error {
	return fc.SetValue(schema.StringValue(s))
}

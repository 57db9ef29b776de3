// Package gate lists and evaluates quality gates over computed measures.
package gate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/schema"
)

// ErrGateNotFound is returned when no gate matches a requested name.
var ErrGateNotFound = errors.New("quality gate not found")

// BuiltInGates returns the gates that exist when no gate is configured.
func BuiltInGates() []schema.QualityGate {
	return []schema.QualityGate{
		{
			Name:    "Livemeasure way",
			BuiltIn: true,
			Conditions: []schema.GateCondition{
				{Metric: formula.NewReliabilityRating.Key, Op: schema.GreaterThan, Error: "A"},
				{Metric: formula.NewSecurityRating.Key, Op: schema.GreaterThan, Error: "A"},
				{Metric: formula.NewMaintainabilityRating.Key, Op: schema.GreaterThan, Error: "A"},
				{Metric: formula.BlockerViolations.Key, Op: schema.GreaterThan, Error: "0"},
			},
		},
	}
}

// Normalize assigns ids by position to gates that have none and returns a copy.
func Normalize(gates []schema.QualityGate) []schema.QualityGate {
	out := make([]schema.QualityGate, len(gates))
	for i, g := range gates {
		if g.ID == 0 {
			g.ID = int64(i + 1)
		}
		out[i] = g
	}
	return out
}

// Validate checks gate names, the default flag and every condition.
// metricTypes maps known metric keys to their value type.
func Validate(gates []schema.QualityGate, metricTypes map[string]schema.ValueType) error {
	var result *multierror.Error
	names := make(map[string]struct{}, len(gates))
	defaults := 0

	for _, g := range gates {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("quality gate %d has no name", g.ID))
			continue
		}
		if _, dup := names[strings.ToLower(name)]; dup {
			result = multierror.Append(result, fmt.Errorf("duplicate quality gate name '%s'", name))
		}
		names[strings.ToLower(name)] = struct{}{}
		if g.Default {
			defaults++
		}
		for _, c := range g.Conditions {
			if _, err := parseThreshold(c, metricTypes); err != nil {
				result = multierror.Append(result, fmt.Errorf("quality gate '%s': %w", name, err))
			}
		}
	}
	if defaults > 1 {
		result = multierror.Append(result, fmt.Errorf("%d quality gates are marked default, at most one is allowed", defaults))
	}
	return result.ErrorOrNil()
}

// DefaultGate returns the gate flagged default, else the first built-in gate.
func DefaultGate(gates []schema.QualityGate) (schema.QualityGate, bool) {
	for _, g := range gates {
		if g.Default {
			return g, true
		}
	}
	for _, g := range gates {
		if g.BuiltIn {
			return g, true
		}
	}
	return schema.QualityGate{}, false
}

// Find returns the gate with the given name, or the default gate when name is empty.
func Find(gates []schema.QualityGate, name string) (schema.QualityGate, error) {
	if strings.TrimSpace(name) == "" {
		if g, ok := DefaultGate(gates); ok {
			return g, nil
		}
		return schema.QualityGate{}, fmt.Errorf("%w: no default gate is configured", ErrGateNotFound)
	}
	for _, g := range gates {
		if strings.EqualFold(g.Name, strings.TrimSpace(name)) {
			return g, nil
		}
	}
	return schema.QualityGate{}, fmt.Errorf("%w: '%s'", ErrGateNotFound, name)
}

// List builds the gate listing with the actions available to the caller.
func List(gates []schema.QualityGate, isAdmin bool) schema.GateListResult {
	result := schema.GateListResult{
		QualityGates: make([]schema.GateListItem, 0, len(gates)),
		Actions:      schema.GateRootActions{Create: isAdmin},
	}

	def, hasDefault := DefaultGate(gates)
	if hasDefault {
		id := def.ID
		result.Default = &id
	}

	for _, g := range gates {
		isDefault := hasDefault && g.ID == def.ID
		result.QualityGates = append(result.QualityGates, schema.GateListItem{
			ID:         g.ID,
			Name:       g.Name,
			IsDefault:  isDefault,
			IsBuiltIn:  g.BuiltIn,
			Conditions: g.Conditions,
			Actions: schema.GateActions{
				Rename:            isAdmin && !g.BuiltIn,
				SetAsDefault:      isAdmin && !isDefault,
				Copy:              isAdmin,
				AssociateProjects: isAdmin && !isDefault,
				Delete:            isAdmin && !isDefault && !g.BuiltIn,
				ManageConditions:  isAdmin && !g.BuiltIn,
			},
		})
	}
	return result
}

// parseThreshold validates a condition and returns its threshold as a number.
// Rating thresholds accept a letter or an index.
func parseThreshold(c schema.GateCondition, metricTypes map[string]schema.ValueType) (float64, error) {
	vt, ok := metricTypes[c.Metric]
	if !ok {
		return 0, fmt.Errorf("%w '%s'", formula.ErrUnknownMetric, c.Metric)
	}
	if _, ok := schema.ValidGateOperators[c.Op]; !ok {
		return 0, fmt.Errorf("invalid operator '%s' on %s. must be GT or LT", c.Op, c.Metric)
	}
	switch vt {
	case schema.RatingType:
		if r, err := schema.ParseRating(c.Error); err == nil {
			return float64(r.Index()), nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(c.Error))
		if err != nil {
			return 0, fmt.Errorf("invalid rating threshold '%s' on %s", c.Error, c.Metric)
		}
		r, err := schema.RatingByIndex(i)
		if err != nil {
			return 0, err
		}
		return float64(r.Index()), nil
	case schema.FloatType:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Error), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid threshold '%s' on %s", c.Error, c.Metric)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("metric %s of type %s cannot be used in a condition", c.Metric, vt)
	}
}

// Evaluate checks every condition of the gate against one component's measures.
// A condition whose metric was not computed is reported as NO_VALUE and does not fail the gate.
func Evaluate(g schema.QualityGate, cm schema.ComponentMeasures, metricTypes map[string]schema.ValueType) (schema.GateStatus, error) {
	status := schema.GateStatus{
		Gate:       g.Name,
		Component:  cm.Component,
		Level:      schema.GateOK,
		Conditions: make([]schema.ConditionStatus, 0, len(g.Conditions)),
	}
	for _, c := range g.Conditions {
		threshold, err := parseThreshold(c, metricTypes)
		if err != nil {
			return schema.GateStatus{}, err
		}
		cs := schema.ConditionStatus{GateCondition: c, Level: schema.GateNoValue}
		if v, ok := cm.Lookup(c.Metric); ok {
			if actual, ok := v.Float(); ok {
				cs.Actual = v.String()
				cs.Level = schema.GateOK
				if breaches(c.Op, actual, threshold) {
					cs.Level = schema.GateError
					status.Level = schema.GateError
				}
			}
		}
		status.Conditions = append(status.Conditions, cs)
	}
	return status, nil
}

func breaches(op schema.GateOperator, actual, threshold float64) bool {
	switch op {
	case schema.GreaterThan:
		return actual > threshold
	case schema.LessThan:
		return actual < threshold
	default:
		return false
	}
}

// Check evaluates the gate for every component.
func Check(g schema.QualityGate, components []schema.ComponentMeasures, metricTypes map[string]schema.ValueType) (*schema.GateCheckResult, error) {
	result := &schema.GateCheckResult{Gate: g.Name, Passed: true}
	for _, cm := range components {
		status, err := Evaluate(g, cm, metricTypes)
		if err != nil {
			return nil, err
		}
		if status.Level == schema.GateError {
			result.Passed = false
		}
		result.Statuses = append(result.Statuses, status)
	}
	return result, nil
}

// MetricTypes indexes the metrics known to an engine by key.
func MetricTypes(e *formula.Engine) map[string]schema.ValueType {
	out := make(map[string]schema.ValueType)
	for _, m := range e.RequiredMetrics() {
		out[m.Key] = m.Type
	}
	return out
}

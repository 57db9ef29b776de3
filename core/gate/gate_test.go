package gate

import (
	"testing"

	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var metricTypes = MetricTypes(formula.NewDefaultEngine(formula.MustDefaultGrid()))

func sampleGates() []schema.QualityGate {
	return Normalize([]schema.QualityGate{
		{Name: "Livemeasure way", BuiltIn: true},
		{Name: "Strict", Conditions: []schema.GateCondition{{Metric: "bugs", Op: schema.GreaterThan, Error: "0"}}},
		{Name: "Team default", Default: true},
	})
}

func TestNormalize(t *testing.T) {
	gates := Normalize([]schema.QualityGate{{Name: "a"}, {Name: "b", ID: 42}, {Name: "c"}})
	assert.Equal(t, int64(1), gates[0].ID)
	assert.Equal(t, int64(42), gates[1].ID)
	assert.Equal(t, int64(3), gates[2].ID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		gates    []schema.QualityGate
		contains []string
	}{
		{"built-in gates are valid", BuiltInGates(), nil},
		{"sample gates are valid", sampleGates(), nil},
		{
			"duplicate names ignore case",
			[]schema.QualityGate{{Name: "Strict"}, {Name: "strict"}},
			[]string{"duplicate quality gate name 'strict'"},
		},
		{
			"two defaults",
			[]schema.QualityGate{{Name: "a", Default: true}, {Name: "b", Default: true}},
			[]string{"2 quality gates are marked default"},
		},
		{
			"missing name",
			[]schema.QualityGate{{ID: 3}},
			[]string{"quality gate 3 has no name"},
		},
		{
			"bad conditions",
			[]schema.QualityGate{{Name: "g", Conditions: []schema.GateCondition{
				{Metric: "nope", Op: schema.GreaterThan, Error: "1"},
				{Metric: "bugs", Op: "EQ", Error: "1"},
				{Metric: "bugs", Op: schema.GreaterThan, Error: "many"},
				{Metric: "sqale_rating", Op: schema.GreaterThan, Error: "F"},
				{Metric: "violations_severity_distribution", Op: schema.GreaterThan, Error: "1"},
			}}},
			[]string{
				"unknown metric 'nope'",
				"invalid operator 'EQ'",
				"invalid threshold 'many'",
				"invalid rating threshold 'F'",
				"cannot be used in a condition",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.gates, metricTypes)
			if len(tt.contains) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, msg := range tt.contains {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestDefaultGate(t *testing.T) {
	g, ok := DefaultGate(sampleGates())
	require.True(t, ok)
	assert.Equal(t, "Team default", g.Name)

	g, ok = DefaultGate(sampleGates()[:2])
	require.True(t, ok)
	assert.Equal(t, "Livemeasure way", g.Name)

	_, ok = DefaultGate([]schema.QualityGate{{Name: "custom"}})
	assert.False(t, ok)
}

func TestFind(t *testing.T) {
	g, err := Find(sampleGates(), "strict")
	require.NoError(t, err)
	assert.Equal(t, "Strict", g.Name)

	g, err = Find(sampleGates(), "")
	require.NoError(t, err)
	assert.Equal(t, "Team default", g.Name)

	_, err = Find(sampleGates(), "missing")
	assert.ErrorIs(t, err, ErrGateNotFound)

	_, err = Find(nil, "")
	assert.ErrorIs(t, err, ErrGateNotFound)
}

func TestListAsAdmin(t *testing.T) {
	result := List(sampleGates(), true)

	require.NotNil(t, result.Default)
	assert.Equal(t, int64(3), *result.Default)
	assert.True(t, result.Actions.Create)
	require.Len(t, result.QualityGates, 3)

	builtIn := result.QualityGates[0]
	assert.True(t, builtIn.IsBuiltIn)
	assert.False(t, builtIn.IsDefault)
	assert.Equal(t, schema.GateActions{
		Rename:            false,
		SetAsDefault:      true,
		Copy:              true,
		AssociateProjects: true,
		Delete:            false,
		ManageConditions:  false,
	}, builtIn.Actions)

	custom := result.QualityGates[1]
	assert.Equal(t, schema.GateActions{
		Rename:            true,
		SetAsDefault:      true,
		Copy:              true,
		AssociateProjects: true,
		Delete:            true,
		ManageConditions:  true,
	}, custom.Actions)

	def := result.QualityGates[2]
	assert.True(t, def.IsDefault)
	assert.Equal(t, schema.GateActions{
		Rename:            true,
		SetAsDefault:      false,
		Copy:              true,
		AssociateProjects: false,
		Delete:            false,
		ManageConditions:  true,
	}, def.Actions)
}

func TestListAsUser(t *testing.T) {
	result := List(sampleGates(), false)
	assert.False(t, result.Actions.Create)
	for _, item := range result.QualityGates {
		assert.Equal(t, schema.GateActions{}, item.Actions)
	}
}

func TestListBuiltInIsDefaultWhenNoneFlagged(t *testing.T) {
	result := List(Normalize(BuiltInGates()), true)
	require.NotNil(t, result.Default)
	assert.Equal(t, int64(1), *result.Default)
	assert.True(t, result.QualityGates[0].IsDefault)
	assert.False(t, result.QualityGates[0].Actions.Delete)
}

func TestListWithoutDefault(t *testing.T) {
	result := List(Normalize([]schema.QualityGate{{Name: "custom"}}), true)
	assert.Nil(t, result.Default)
	assert.False(t, result.QualityGates[0].IsDefault)
}

func TestEvaluate(t *testing.T) {
	g := schema.QualityGate{Name: "g", Conditions: []schema.GateCondition{
		{Metric: "bugs", Op: schema.GreaterThan, Error: "0"},
		{Metric: "sqale_rating", Op: schema.GreaterThan, Error: "B"},
		{Metric: "sqale_debt_ratio", Op: schema.LessThan, Error: "1"},
		{Metric: "new_security_rating", Op: schema.GreaterThan, Error: "1"},
	}}

	tests := []struct {
		name     string
		measures []schema.Measure
		level    schema.GateLevel
		levels   []schema.GateLevel
	}{
		{
			name: "passing",
			measures: []schema.Measure{
				{Metric: "bugs", Value: schema.FloatValue(0)},
				{Metric: "sqale_rating", Value: schema.RatingValue(schema.RatingB)},
				{Metric: "sqale_debt_ratio", Value: schema.FloatValue(2.5)},
				{Metric: "new_security_rating", Value: schema.RatingValue(schema.RatingA)},
			},
			level:  schema.GateOK,
			levels: []schema.GateLevel{schema.GateOK, schema.GateOK, schema.GateOK, schema.GateOK},
		},
		{
			name: "failing",
			measures: []schema.Measure{
				{Metric: "bugs", Value: schema.FloatValue(2)},
				{Metric: "sqale_rating", Value: schema.RatingValue(schema.RatingC)},
				{Metric: "sqale_debt_ratio", Value: schema.FloatValue(0.5)},
				{Metric: "new_security_rating", Value: schema.RatingValue(schema.RatingA)},
			},
			level:  schema.GateError,
			levels: []schema.GateLevel{schema.GateError, schema.GateError, schema.GateError, schema.GateOK},
		},
		{
			name: "absent metrics are skipped",
			measures: []schema.Measure{
				{Metric: "bugs", Value: schema.FloatValue(0)},
			},
			level:  schema.GateOK,
			levels: []schema.GateLevel{schema.GateOK, schema.GateNoValue, schema.GateNoValue, schema.GateNoValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := Evaluate(g, schema.ComponentMeasures{Component: "proj", Measures: tt.measures}, metricTypes)
			require.NoError(t, err)
			assert.Equal(t, tt.level, status.Level)
			assert.Equal(t, "proj", status.Component)
			var levels []schema.GateLevel
			for _, c := range status.Conditions {
				levels = append(levels, c.Level)
			}
			assert.Equal(t, tt.levels, levels)
		})
	}
}

func TestEvaluateReportsActual(t *testing.T) {
	g := schema.QualityGate{Name: "g", Conditions: []schema.GateCondition{{Metric: "sqale_rating", Op: schema.GreaterThan, Error: "A"}}}
	cm := schema.ComponentMeasures{Component: "proj", Measures: []schema.Measure{{Metric: "sqale_rating", Value: schema.RatingValue(schema.RatingD)}}}
	status, err := Evaluate(g, cm, metricTypes)
	require.NoError(t, err)
	assert.Equal(t, "D", status.Conditions[0].Actual)
}

func TestEvaluateInvalidCondition(t *testing.T) {
	g := schema.QualityGate{Name: "g", Conditions: []schema.GateCondition{{Metric: "nope", Op: schema.GreaterThan, Error: "0"}}}
	_, err := Evaluate(g, schema.ComponentMeasures{}, metricTypes)
	assert.ErrorIs(t, err, formula.ErrUnknownMetric)
}

func TestCheck(t *testing.T) {
	g := schema.QualityGate{Name: "g", Conditions: []schema.GateCondition{{Metric: "bugs", Op: schema.GreaterThan, Error: "0"}}}
	components := []schema.ComponentMeasures{
		{Component: "a", Measures: []schema.Measure{{Metric: "bugs", Value: schema.FloatValue(0)}}},
		{Component: "b", Measures: []schema.Measure{{Metric: "bugs", Value: schema.FloatValue(3)}}},
	}

	result, err := Check(g, components, metricTypes)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Statuses, 2)
	assert.Equal(t, schema.GateOK, result.Statuses[0].Level)
	assert.Equal(t, schema.GateError, result.Statuses[1].Level)

	result, err = Check(g, components[:1], metricTypes)
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

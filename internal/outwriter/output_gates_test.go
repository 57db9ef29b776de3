package outwriter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/livemeasure/schema"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateList() schema.GateListResult {
	def := int64(1)
	return schema.GateListResult{
		QualityGates: []schema.GateListItem{
			{
				ID:        1,
				Name:      "Sonar way",
				IsDefault: true,
				IsBuiltIn: true,
				Actions:   schema.GateActions{Copy: true},
				Conditions: []schema.GateCondition{
					{Metric: "new_bugs", Op: schema.GreaterThan, Error: "0"},
				},
			},
			{
				ID:      2,
				Name:    "Strict",
				Actions: schema.GateActions{Rename: true, Delete: true},
			},
		},
		Default: &def,
		Actions: schema.GateRootActions{Create: true},
	}
}

func testGateCheck(passed bool) *schema.GateCheckResult {
	level := schema.GateOK
	actual := "0"
	if !passed {
		level = schema.GateError
		actual = "2"
	}
	return &schema.GateCheckResult{
		Gate:   "Sonar way",
		Passed: passed,
		Statuses: []schema.GateStatus{
			{
				Gate:      "Sonar way",
				Component: "app:core",
				Level:     level,
				Conditions: []schema.ConditionStatus{
					{GateCondition: schema.GateCondition{Metric: "new_bugs", Op: schema.GreaterThan, Error: "0"}, Level: level, Actual: actual},
					{GateCondition: schema.GateCondition{Metric: "new_sqale_debt_ratio", Op: schema.GreaterThan, Error: "5"}, Level: schema.GateNoValue},
				},
			},
			{
				Gate:      "Sonar way",
				Component: "app:web",
				Level:     schema.GateOK,
				Conditions: []schema.ConditionStatus{
					{GateCondition: schema.GateCondition{Metric: "new_bugs", Op: schema.GreaterThan, Error: "0"}, Level: schema.GateOK, Actual: "0"},
				},
			},
		},
	}
}

func TestFormatConditions(t *testing.T) {
	assert.Equal(t, "", formatConditions(nil))
	assert.Equal(t, "bugs GT 0; sqale_rating GT B", formatConditions([]schema.GateCondition{
		{Metric: "bugs", Op: schema.GreaterThan, Error: "0"},
		{Metric: "sqale_rating", Op: schema.GreaterThan, Error: "B"},
	}))
}

func TestFormatActions(t *testing.T) {
	assert.Equal(t, "", formatActions(schema.GateActions{}))
	assert.Equal(t, "rename, delete", formatActions(schema.GateActions{Rename: true, Delete: true}))
}

func TestWriteGateListText(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	var buf bytes.Buffer
	require.NoError(t, writeGateListText(&buf, testGateList(), cfg))
	out := buf.String()
	assert.Contains(t, out, "Sonar way")
	assert.Contains(t, out, "new_bugs GT 0")
	assert.Contains(t, out, "Default quality gate: 1 (can create: true)")
	assert.NotContains(t, out, "rename")

	cfg.Detail = true
	buf.Reset()
	require.NoError(t, writeGateListText(&buf, testGateList(), cfg))
	assert.Contains(t, buf.String(), "rename, delete")

	noDefault := testGateList()
	noDefault.Default = nil
	buf.Reset()
	require.NoError(t, writeGateListText(&buf, noDefault, cfg))
	assert.Contains(t, buf.String(), "No default quality gate")
}

func TestWriteGateListCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGateListCSV(&buf, testGateList()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,is_default,is_built_in,conditions", lines[0])
	assert.Equal(t, "1,Sonar way,true,true,new_bugs GT 0", lines[1])
	assert.Equal(t, "2,Strict,false,false,", lines[2])
}

func TestWriteGateCheckText(t *testing.T) {
	tests := []struct {
		name     string
		passed   bool
		detail   bool
		contains []string
		excludes []string
	}{
		{
			name:     "passed hides OK conditions",
			passed:   true,
			contains: []string{"Quality Gate: Sonar way", "Checked 2 components", "NO_VALUE", "✅ All components passed"},
			excludes: []string{"app:web"},
		},
		{
			name:     "passed with detail",
			passed:   true,
			detail:   true,
			contains: []string{"app:web", "OK"},
		},
		{
			name:     "failed",
			passed:   false,
			contains: []string{"ERROR", "❌ Quality gate Sonar way failed: 1 of 2 components"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(schema.TextOut)
			cfg.Detail = tt.detail
			var buf bytes.Buffer
			require.NoError(t, writeGateCheckText(&buf, testGateCheck(tt.passed), cfg, time.Second))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestWriteGateCheckCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGateCheckCSV(&buf, testGateCheck(false)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Sonar way,app:core,new_bugs,GT,0,2,ERROR", lines[1])
	assert.Equal(t, "Sonar way,app:core,new_sqale_debt_ratio,GT,5,,NO_VALUE", lines[2])
}

func TestGateFamily(t *testing.T) {
	var buf bytes.Buffer
	_, err := expfmt.MetricFamilyToText(&buf, gateFamily(testGateCheck(false)))
	require.NoError(t, err)

	parser := expfmt.NewTextParser(model.LegacyValidation)
	families, err := parser.TextToMetricFamilies(strings.NewReader(buf.String()))
	require.NoError(t, err)
	mf := families["livemeasure_quality_gate_passed"]
	require.NotNil(t, mf)
	require.Len(t, mf.GetMetric(), 2)
	assert.InDelta(t, 0.0, mf.GetMetric()[0].GetGauge().GetValue(), 1e-9)
	assert.InDelta(t, 1.0, mf.GetMetric()[1].GetGauge().GetValue(), 1e-9)
}

func TestPrintGatesUnsupportedOutput(t *testing.T) {
	cfg := testConfig(schema.ParquetOut)
	err := PrintGateList(testGateList(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported for gate list")

	err = PrintGateCheck(testGateCheck(true), cfg, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported for gate check")
}

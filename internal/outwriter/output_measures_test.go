package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/livemeasure/internal/parquet"
	"github.com/huangsam/livemeasure/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMeasuresTable(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	var buf bytes.Buffer
	require.NoError(t, writeMeasuresTable(&buf, testResult(), indexMetrics(testCatalog()), cfg))

	out := buf.String()
	assert.Contains(t, out, "app:core")
	assert.Contains(t, out, "sqale_rating")
	assert.Contains(t, out, "3.0")
	assert.Contains(t, out, "0.2") // 0.25 at precision 1
	assert.Contains(t, out, "app:web: sqale_rating not computed: negative density")
	assert.Contains(t, out, "Measured 2 components (measures: 4, failures: 1)")
	assert.Contains(t, out, "Store backend: none")
	assert.Contains(t, out, "Recorded as run 7")
	assert.NotContains(t, out, "Reliability")

	cfg.Detail = true
	buf.Reset()
	require.NoError(t, writeMeasuresTable(&buf, testResult(), indexMetrics(testCatalog()), cfg))
	assert.Contains(t, buf.String(), "Reliability")
	assert.Contains(t, buf.String(), "RATING")
}

func TestWriteMeasuresCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMeasuresCSV(&buf, testResult(), indexMetrics(testCatalog()), 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "component,metric,type,value", lines[0])
	assert.Equal(t, "app:core,bugs,FLOAT,3.00", lines[1])
	assert.Equal(t, "app:core,sqale_rating,RATING,B", lines[2])
	assert.Equal(t, "app:web,bugs,FLOAT,0.25", lines[4])
}

func TestValueTypeFallsBackToValue(t *testing.T) {
	m := schema.Measure{Metric: "custom", Value: schema.StringValue("x")}
	assert.Equal(t, schema.StringType, valueType(map[string]schema.Metric{}, m))
}

func TestWriteMeasuresProm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMeasuresProm(&buf, testResult(), testCatalog()))

	parser := expfmt.NewTextParser(model.LegacyValidation)
	families, err := parser.TextToMetricFamilies(strings.NewReader(buf.String()))
	require.NoError(t, err)

	require.Contains(t, families, "livemeasure_bugs")
	bugs := families["livemeasure_bugs"]
	assert.Equal(t, "Bugs", bugs.GetHelp())
	require.Len(t, bugs.GetMetric(), 2)
	assert.Equal(t, "app:core", bugs.GetMetric()[0].GetLabel()[0].GetValue())
	assert.InDelta(t, 3.0, bugs.GetMetric()[0].GetGauge().GetValue(), 1e-9)

	require.Contains(t, families, "livemeasure_sqale_rating")
	assert.InDelta(t, 2.0, families["livemeasure_sqale_rating"].GetMetric()[0].GetGauge().GetValue(), 1e-9)

	assert.NotContains(t, families, "livemeasure_violations_severity_distribution")
}

func TestBuildMetricFamiliesEmpty(t *testing.T) {
	assert.Empty(t, buildMetricFamilies(&schema.ComputeResult{}, nil))
}

func TestPrintMeasuresJSON(t *testing.T) {
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "measures.json")
	require.NoError(t, PrintMeasures(testResult(), testCatalog(), cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(7), decoded["run_id"])
	components := decoded["components"].([]any)
	require.Len(t, components, 2)
	first := components[0].(map[string]any)
	measures := first["measures"].([]any)
	assert.Equal(t, "B", measures[1].(map[string]any)["value"])
}

func TestPrintMeasuresParquet(t *testing.T) {
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "measures.parquet")
	require.NoError(t, PrintMeasures(testResult(), testCatalog(), cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	reader := pq.NewGenericReader[parquet.Measure](bytes.NewReader(data))
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(4), reader.NumRows())
}

func TestPrintMeasuresAllModes(t *testing.T) {
	for _, mode := range []schema.OutputMode{schema.TextOut, schema.CSVOut, schema.PromOut} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := testConfig(mode)
			cfg.OutputFile = filepath.Join(t.TempDir(), "out")
			require.NoError(t, NewOutWriter().WriteMeasures(testResult(), testCatalog(), cfg))
			info, err := os.Stat(cfg.OutputFile)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/livemeasure/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []Run {
	start := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"input":"issues.json","workers":4}`
	return []Run{
		{RunID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalComponents: 2, ConfigParams: &params},
		{RunID: 2, StartTime: start.Add(time.Hour)}, // Still running
	}
}

func readAll[T any](t *testing.T, r io.ReaderAt) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](r)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	for _, col := range []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_components", "config_params"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestMeasureStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Measure))
	for _, col := range []string{"run_id", "component_key", "metric_key", "value_type", "num_value", "text_value", "recorded_at"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()
	require.NoError(t, WriteRunsParquet(data, outputPath))

	f, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got := readAll[Run](t, f)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, int32(2), got[0].TotalComponents)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, int32(1500), *got[0].RunDurationMs)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, *data[0].ConfigParams, *got[0].ConfigParams)
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteRowsMeasures(t *testing.T) {
	at := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	result := &schema.ComputeResult{
		RunID: 7,
		Components: []schema.ComponentMeasures{
			{Component: "payments", Measures: []schema.Measure{
				{Metric: "bugs", Value: schema.FloatValue(2)},
				{Metric: "sqale_rating", Value: schema.RatingValue(schema.RatingC)},
				{Metric: "violations_severity_distribution", Value: schema.StringValue("BLOCKER=1")},
			}},
		},
	}
	rows := ConvertComputeResult(result, at)
	require.Len(t, rows, 3)

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))

	got := readAll[Measure](t, bytes.NewReader(buf.Bytes()))
	require.Len(t, got, 3)
	assert.Equal(t, int64(7), got[0].RunID)
	assert.Equal(t, "payments", got[0].ComponentKey)
	require.NotNil(t, got[0].NumValue)
	assert.InDelta(t, 2.0, *got[0].NumValue, 1e-9)
	assert.Equal(t, string(schema.RatingType), got[1].ValueType)
	require.NotNil(t, got[1].NumValue)
	assert.InDelta(t, 3.0, *got[1].NumValue, 1e-9)
	assert.Nil(t, got[2].NumValue)
	require.NotNil(t, got[2].TextValue)
	assert.Equal(t, "BLOCKER=1", *got[2].TextValue)
}

func TestWriteRunsParquetEmpty(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunsParquet([]Run{}, outputPath))
	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteRunsParquetBadPath(t *testing.T) {
	err := WriteRunsParquet(sampleRuns(), filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.ErrorContains(t, err, "failed to create output file")
}

func TestConvertRecords(t *testing.T) {
	num := 4.5
	records := []schema.MeasureRecord{{RunID: 1, ComponentKey: "c", MetricKey: "sqale_index", ValueType: schema.FloatType, NumValue: &num}}
	rows := ConvertMeasureRecords(records)
	require.Len(t, rows, 1)
	assert.Equal(t, "FLOAT", rows[0].ValueType)
	assert.Equal(t, &num, rows[0].NumValue)

	runs := ConvertRunRecords([]schema.RunRecord{{RunID: 3, TotalComponents: 9}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(3), runs[0].RunID)
	assert.Equal(t, int32(9), runs[0].TotalComponents)
}

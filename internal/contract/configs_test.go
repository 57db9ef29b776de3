package contract

import (
	"testing"
	"time"

	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Input:          "issues.json",
		Workers:        4,
		Precision:      1,
		Output:         "text",
		Color:          "yes",
		DevCostPerLine: DefaultDevCostPerLine,
		StoreBackend:   "sqlite",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", modify: func(*ConfigRawInput) {}},
		{
			name:   "all output modes",
			modify: func(in *ConfigRawInput) { in.Output = "PROM" },
		},
		{
			name:        "invalid output",
			modify:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: "invalid output format 'xml'",
		},
		{
			name:        "parquet without file",
			modify:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: "parquet output requires --output-file",
		},
		{
			name: "parquet with file",
			modify: func(in *ConfigRawInput) {
				in.Output = "parquet"
				in.OutputFile = "out.parquet"
			},
		},
		{
			name:        "zero workers",
			modify:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: "workers must be greater than 0",
		},
		{
			name:        "precision too large",
			modify:      func(in *ConfigRawInput) { in.Precision = MaxPrecision + 1 },
			expectError: "precision must be between 0 and 4",
		},
		{
			name:        "negative width",
			modify:      func(in *ConfigRawInput) { in.Width = -1 },
			expectError: "width cannot be negative",
		},
		{
			name:        "bad color",
			modify:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: "invalid --color value",
		},
		{
			name:        "zero development cost",
			modify:      func(in *ConfigRawInput) { in.DevCostPerLine = 0 },
			expectError: "dev-cost-per-line must be greater than 0",
		},
		{
			name:        "bad rating grid",
			modify:      func(in *ConfigRawInput) { in.RatingGrid = "0.1,0.05,0.2,0.5" },
			expectError: "invalid --rating-grid value",
		},
		{
			name:        "unknown metric",
			modify:      func(in *ConfigRawInput) { in.Metrics = "bugs,nope" },
			expectError: "unknown metric 'nope'",
		},
		{
			name:   "known metrics",
			modify: func(in *ConfigRawInput) { in.Metrics = "bugs, sqale_rating ,development_cost" },
		},
		{
			name:        "bad leak period",
			modify:      func(in *ConfigRawInput) { in.LeakPeriod = "soon" },
			expectError: "invalid leak period 'soon'",
		},
		{
			name:        "invalid backend",
			modify:      func(in *ConfigRawInput) { in.StoreBackend = "redis" },
			expectError: "invalid store backend 'redis'",
		},
		{
			name:        "mysql without connection string",
			modify:      func(in *ConfigRawInput) { in.StoreBackend = "mysql" },
			expectError: "store-db-connect is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.modify(input)
			cfg := &Config{}
			err := ProcessAndValidateAt(cfg, input, fixedNow)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cfg.RatingGrid)
		})
	}
}

func TestProcessAndValidateUnknownMetricIsTyped(t *testing.T) {
	input := validRawInput()
	input.Metrics = "nope"
	err := ProcessAndValidateAt(&Config{}, input, fixedNow)
	assert.ErrorIs(t, err, formula.ErrUnknownMetric)
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := validRawInput()
	input.Input = "  "
	input.StoreBackend = ""
	cfg := &Config{}
	require.NoError(t, ProcessAndValidateAt(cfg, input, fixedNow))

	assert.Equal(t, DefaultInputFile, cfg.InputPath)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, []float64{0.05, 0.1, 0.2, 0.5}, cfg.RatingGrid.Thresholds())
	assert.True(t, cfg.LeakStart.IsZero())
	assert.True(t, cfg.UseColors)
	assert.Empty(t, cfg.Metrics)
	assert.Empty(t, cfg.QualityGates)
}

func TestProcessAndValidateLeakPeriod(t *testing.T) {
	input := validRawInput()
	input.LeakPeriod = "30 days"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidateAt(cfg, input, fixedNow))
	assert.Equal(t, fixedNow.Add(-30*24*time.Hour), cfg.LeakStart)
	assert.Equal(t, "30 days", cfg.LeakPeriod)
}

func TestProcessAndValidateQualityGates(t *testing.T) {
	input := validRawInput()
	input.QualityGates = []QualityGateRaw{
		{
			Name:    " Strict ",
			Default: true,
			Conditions: []GateConditionRaw{
				{Metric: "bugs", Op: "gt", Error: "0"},
				{Metric: "sqale_rating", Op: "GT", Error: "B"},
			},
		},
		{Name: "Relaxed"},
	}
	cfg := &Config{}
	require.NoError(t, ProcessAndValidateAt(cfg, input, fixedNow))

	require.Len(t, cfg.QualityGates, 2)
	strict := cfg.QualityGates[0]
	assert.Equal(t, int64(1), strict.ID)
	assert.Equal(t, "Strict", strict.Name)
	assert.True(t, strict.Default)
	assert.Equal(t, []schema.GateCondition{
		{Metric: "bugs", Op: schema.GreaterThan, Error: "0"},
		{Metric: "sqale_rating", Op: schema.GreaterThan, Error: "B"},
	}, strict.Conditions)
	assert.Equal(t, int64(2), cfg.QualityGates[1].ID)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		conn        string
		expectError string
	}{
		{"sqlite ignores connection", schema.SQLiteBackend, "", ""},
		{"none ignores connection", schema.NoneBackend, "", ""},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/livemeasure", ""},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/livemeasure", "@tcp("},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", "database name"},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=livemeasure", ""},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=livemeasure", "host="},
		{"postgres missing db", schema.PostgreSQLBackend, "host=localhost", "dbname="},
		{"postgres empty", schema.PostgreSQLBackend, "", "store-db-connect is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigParams(t *testing.T) {
	input := validRawInput()
	input.LeakPeriod = "2025-10-01T00:00:00Z"
	input.Exclude = "vendor/,*_test"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidateAt(cfg, input, fixedNow))

	params := cfg.ConfigParams()
	assert.Equal(t, "issues.json", params["input"])
	assert.Equal(t, "2025-10-01T00:00:00Z", params["leak_start"])
	assert.Equal(t, []string{"vendor/", "*_test"}, params["exclude"])
	assert.Equal(t, DefaultDevCostPerLine, params["dev_cost_per_line"])
}

func TestConfigClone(t *testing.T) {
	original := &Config{
		Workers:  2,
		Excludes: []string{"vendor/"},
		Metrics:  []string{"bugs"},
		QualityGates: []schema.QualityGate{
			{Name: "g", Conditions: []schema.GateCondition{{Metric: "bugs", Op: schema.GreaterThan, Error: "0"}}},
		},
	}
	clone := original.Clone()
	clone.Excludes[0] = "changed"
	clone.Metrics[0] = "changed"
	clone.QualityGates[0].Conditions[0].Error = "5"
	clone.Workers = 8

	assert.Equal(t, "vendor/", original.Excludes[0])
	assert.Equal(t, "bugs", original.Metrics[0])
	assert.Equal(t, "0", original.QualityGates[0].Conditions[0].Error)
	assert.Equal(t, 2, original.Workers)
}

func TestRevalidateOverrides(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	cfg := &Config{RatingGrid: formula.MustDefaultGrid(), Metrics: []string{"bugs"}}

	require.NoError(t, RevalidateOverrides(cfg, "", "", now))
	assert.True(t, cfg.LeakStart.IsZero())
	assert.Equal(t, []string{"bugs"}, cfg.Metrics)

	require.NoError(t, RevalidateOverrides(cfg, "30 days", "violations,sqale_rating", now))
	assert.Equal(t, now.AddDate(0, 0, -30), cfg.LeakStart)
	assert.Equal(t, []string{"violations", "sqale_rating"}, cfg.Metrics)

	err := RevalidateOverrides(cfg, "", "nope", now)
	assert.ErrorIs(t, err, formula.ErrUnknownMetric)

	err = RevalidateOverrides(cfg, "sometime", "", now)
	assert.ErrorContains(t, err, "invalid leak period")
}

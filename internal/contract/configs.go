package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/schema"
)

// Default values for configuration.
const (
	DefaultPrecision      = 1
	MaxPrecision          = 4
	DefaultDevCostPerLine = 30.0 // Minutes to write one line of code
	DefaultInputFile      = "issues.json"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// GateConditionRaw is one quality gate condition from the YAML config file.
type GateConditionRaw struct {
	Metric string `mapstructure:"metric"`
	Op     string `mapstructure:"op"`
	Error  string `mapstructure:"error"`
}

// QualityGateRaw is one quality gate definition from the YAML config file.
type QualityGateRaw struct {
	Name       string             `mapstructure:"name"`
	BuiltIn    bool               `mapstructure:"built-in"`
	Default    bool               `mapstructure:"default"`
	Conditions []GateConditionRaw `mapstructure:"conditions"`
}

// Config holds the runtime configuration for the pipeline.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath  string
	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Detail     bool
	UseColors  bool
	Excludes   []string // Component key patterns to skip
	Metrics    []string // Metric keys to output (empty = all)
	Watch      bool

	LeakPeriod     string
	LeakStart      time.Time // Zero when no leak period is configured
	DevCostPerLine float64
	RatingGrid     *formula.ThresholdGrid

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	QualityGates []schema.QualityGate
	GateName     string
	GateAdmin    bool
	IssueAdmin   bool
	Actor        string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Input          string  `mapstructure:"input"`
	Workers        int     `mapstructure:"workers"`
	Precision      int     `mapstructure:"precision"`
	Output         string  `mapstructure:"output"`
	OutputFile     string  `mapstructure:"output-file"`
	Width          int     `mapstructure:"width"`
	Color          string  `mapstructure:"color"`
	Detail         bool    `mapstructure:"detail"`
	Exclude        string  `mapstructure:"exclude"`
	Metrics        string  `mapstructure:"metrics"`
	LeakPeriod     string  `mapstructure:"leak-period"`
	DevCostPerLine float64 `mapstructure:"dev-cost-per-line"`
	RatingGrid     string  `mapstructure:"rating-grid"`
	StoreBackend   string  `mapstructure:"store-backend"`
	StoreDBConnect string  `mapstructure:"store-db-connect"`

	// --- Fields from computeCmd.Flags() ---
	Watch bool `mapstructure:"watch"`

	// --- Fields from gateCmd.PersistentFlags() ---
	Gate      string `mapstructure:"gate"`
	GateAdmin bool   `mapstructure:"gate-admin"`

	// --- Fields from transitionCmd.Flags() ---
	IssueAdmin bool   `mapstructure:"issue-admin"`
	Actor      string `mapstructure:"actor"`

	// --- Quality gates from config file ---
	QualityGates []QualityGateRaw `mapstructure:"quality-gates"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	return ProcessAndValidateAt(cfg, input, time.Now())
}

// ProcessAndValidateAt is ProcessAndValidate with a fixed clock for the leak period.
func ProcessAndValidateAt(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processLeakPeriod(cfg, input, now); err != nil {
		return err
	}
	if err := processRatingModel(cfg, input); err != nil {
		return err
	}
	if err := processMetrics(cfg, input); err != nil {
		return err
	}
	return processQualityGates(cfg, input)
}

// RevalidateOverrides applies a per-request leak period and metric list to an
// already validated config. Empty values keep the current settings.
func RevalidateOverrides(cfg *Config, leakPeriod, metrics string, now time.Time) error {
	input := &ConfigRawInput{LeakPeriod: leakPeriod, Metrics: metrics}
	if strings.TrimSpace(leakPeriod) != "" {
		if err := processLeakPeriod(cfg, input, now); err != nil {
			return err
		}
	}
	if strings.TrimSpace(metrics) != "" {
		return processMetrics(cfg, input)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the measure store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.Input)
	if cfg.InputPath == "" {
		cfg.InputPath = DefaultInputFile
	}
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Watch = input.Watch
	cfg.GateName = strings.TrimSpace(input.Gate)
	cfg.GateAdmin = input.GateAdmin
	cfg.IssueAdmin = input.IssueAdmin
	cfg.Actor = strings.TrimSpace(input.Actor)
	cfg.Excludes = SplitList(input.Exclude)

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, prom", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// processLeakPeriod resolves the leak period into its start instant.
func processLeakPeriod(cfg *Config, input *ConfigRawInput, now time.Time) error {
	start, err := ResolveLeakStart(input.LeakPeriod, now)
	if err != nil {
		return err
	}
	cfg.LeakPeriod = strings.TrimSpace(input.LeakPeriod)
	cfg.LeakStart = start
	return nil
}

// processRatingModel validates the development cost and the debt rating grid.
func processRatingModel(cfg *Config, input *ConfigRawInput) error {
	if input.DevCostPerLine <= 0 {
		return fmt.Errorf("dev-cost-per-line must be greater than 0 (received %v)", input.DevCostPerLine)
	}
	cfg.DevCostPerLine = input.DevCostPerLine

	gridStr := input.RatingGrid
	if strings.TrimSpace(gridStr) == "" {
		gridStr = formula.DefaultRatingGrid
	}
	grid, err := formula.ParseThresholdGrid(gridStr)
	if err != nil {
		return fmt.Errorf("invalid --rating-grid value: %w", err)
	}
	cfg.RatingGrid = grid
	return nil
}

// processMetrics validates the requested metric keys against the built-in formulas.
func processMetrics(cfg *Config, input *ConfigRawInput) error {
	cfg.Metrics = SplitList(input.Metrics)
	if len(cfg.Metrics) == 0 {
		return nil
	}
	known := make([]string, 0)
	for _, m := range formula.NewDefaultEngine(cfg.RatingGrid).RequiredMetrics() {
		known = append(known, m.Key)
	}
	for _, key := range cfg.Metrics {
		if !slices.Contains(known, key) {
			return fmt.Errorf("%w '%s'. run the metrics command to list valid keys", formula.ErrUnknownMetric, key)
		}
	}
	return nil
}

// processQualityGates converts the raw gate definitions. Validation against
// metric types happens in the gate package.
func processQualityGates(cfg *Config, input *ConfigRawInput) error {
	cfg.QualityGates = nil
	for i, raw := range input.QualityGates {
		g := schema.QualityGate{
			ID:      int64(i + 1),
			Name:    strings.TrimSpace(raw.Name),
			BuiltIn: raw.BuiltIn,
			Default: raw.Default,
		}
		for _, c := range raw.Conditions {
			g.Conditions = append(g.Conditions, schema.GateCondition{
				Metric: strings.TrimSpace(c.Metric),
				Op:     schema.GateOperator(strings.ToUpper(strings.TrimSpace(c.Op))),
				Error:  strings.TrimSpace(c.Error),
			})
		}
		cfg.QualityGates = append(cfg.QualityGates, g)
	}
	return nil
}

// ConfigParams summarizes the config for storage alongside a compute run.
func (c *Config) ConfigParams() map[string]any {
	params := map[string]any{
		"input":             c.InputPath,
		"workers":           c.Workers,
		"dev_cost_per_line": c.DevCostPerLine,
		"rating_grid":       c.RatingGrid.Thresholds(),
		"leak_period":       c.LeakPeriod,
	}
	if !c.LeakStart.IsZero() {
		params["leak_start"] = c.LeakStart.Format(DateTimeFormat)
	}
	if len(c.Excludes) > 0 {
		params["exclude"] = c.Excludes
	}
	return params
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Excludes = slices.Clone(c.Excludes)
	clone.Metrics = slices.Clone(c.Metrics)
	if c.QualityGates != nil {
		clone.QualityGates = make([]schema.QualityGate, len(c.QualityGates))
		for i, g := range c.QualityGates {
			g.Conditions = slices.Clone(g.Conditions)
			clone.QualityGates[i] = g
		}
	}
	return &clone
}

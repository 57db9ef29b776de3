package schema

// FormulaDefinition describes a registered formula for display.
type FormulaDefinition struct {
	Metric       Metric   `json:"metric"`
	Dependencies []string `json:"dependencies,omitempty"`
	Order        int      `json:"order"` // Position in the evaluation plan
}

// MetricsRenderModel is the complete model rendered by the metrics command.
type MetricsRenderModel struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Formulas    []FormulaDefinition `json:"formulas"`
	Inputs      []Metric            `json:"inputs"` // Metrics not produced by any formula
	RatingGrid  []float64           `json:"rating_grid"`
}

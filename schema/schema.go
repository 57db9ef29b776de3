// Package schema has models and typed constants for all parts of livemeasure.
package schema

import "time"

// Issue is a single code-quality finding attached to a component.
type Issue struct {
	Key        string      `json:"key"`
	RuleType   RuleType    `json:"rule_type"`
	Severity   Severity    `json:"severity"`
	Status     IssueStatus `json:"status"`
	Resolution Resolution  `json:"resolution,omitempty"`
	Effort     float64     `json:"effort"` // Remediation effort in minutes
	CreatedAt  time.Time   `json:"created_at"`
}

// Component is a unit of code (project, module, file) that issues belong to.
type Component struct {
	Key      string  `json:"key"`
	Name     string  `json:"name,omitempty"`
	Ncloc    int     `json:"ncloc"`     // Non-comment lines of code
	NewNcloc int     `json:"new_ncloc"` // Lines of code added in the leak period
	Issues   []Issue `json:"issues"`
}

// Input is the document read by the compute pipeline.
type Input struct {
	Components []Component `json:"components"`
}

// IssueGroup is an aggregated count row for issues sharing the same
// rule type, severity, status, resolution and leak flag.
type IssueGroup struct {
	RuleType   RuleType
	Severity   Severity
	Status     IssueStatus
	Resolution Resolution
	Count      int
	Effort     float64 // Summed remediation effort in minutes
	InLeak     bool
}

// IsResolved reports whether the group holds resolved issues.
func (g IssueGroup) IsResolved() bool {
	return g.Status.IsResolved()
}

// ComponentMeasures holds the outcome of evaluating all formulas for one component.
type ComponentMeasures struct {
	Component string            `json:"component"`
	Name      string            `json:"name,omitempty"`
	Measures  []Measure         `json:"measures"`
	Failures  map[string]string `json:"failures,omitempty"` // Metric key to error message
}

// Lookup returns the value of a metric if it was computed.
func (cm ComponentMeasures) Lookup(key string) (Value, bool) {
	for _, m := range cm.Measures {
		if m.Metric == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// ComputeResult is the outcome of one compute run across all components.
type ComputeResult struct {
	RunID      int64               `json:"run_id,omitempty"`
	Components []ComponentMeasures `json:"components"`
	Duration   time.Duration       `json:"-"`
}

package schema

// GateCondition is a single threshold on a metric within a quality gate.
// Error holds a number, or a rating letter for rating metrics.
type GateCondition struct {
	Metric string       `json:"metric" mapstructure:"metric"`
	Op     GateOperator `json:"op" mapstructure:"op"`
	Error  string       `json:"error" mapstructure:"error"`
}

// QualityGate is a named set of conditions that measures must satisfy.
type QualityGate struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	BuiltIn    bool            `json:"isBuiltIn"`
	Default    bool            `json:"-"`
	Conditions []GateCondition `json:"conditions,omitempty"`
}

// GateActions lists the operations a caller may perform on a quality gate.
type GateActions struct {
	Rename            bool `json:"rename"`
	SetAsDefault      bool `json:"setAsDefault"`
	Copy              bool `json:"copy"`
	AssociateProjects bool `json:"associateProjects"`
	Delete            bool `json:"delete"`
	ManageConditions  bool `json:"manageConditions"`
}

// GateListItem is a quality gate as it appears in a listing.
type GateListItem struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	IsDefault  bool            `json:"isDefault"`
	IsBuiltIn  bool            `json:"isBuiltIn"`
	Actions    GateActions     `json:"actions"`
	Conditions []GateCondition `json:"conditions,omitempty"`
}

// GateRootActions lists the operations available at the listing level.
type GateRootActions struct {
	Create bool `json:"create"`
}

// GateListResult is the full quality gate listing.
type GateListResult struct {
	QualityGates []GateListItem  `json:"qualitygates"`
	Default      *int64          `json:"default,omitempty"`
	Actions      GateRootActions `json:"actions"`
}

// ConditionStatus is the outcome of evaluating one gate condition.
type ConditionStatus struct {
	GateCondition
	Level  GateLevel `json:"level"`
	Actual string    `json:"actual,omitempty"`
}

// GateStatus is the outcome of evaluating a quality gate for one component.
type GateStatus struct {
	Gate       string            `json:"gate"`
	Component  string            `json:"component"`
	Level      GateLevel         `json:"level"`
	Conditions []ConditionStatus `json:"conditions"`
}

// GateCheckResult holds gate outcomes for every component in a run.
type GateCheckResult struct {
	Gate     string       `json:"gate"`
	Passed   bool         `json:"passed"`
	Statuses []GateStatus `json:"statuses"`
}

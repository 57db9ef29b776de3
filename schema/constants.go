package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for measure storage.
	DatabaseBackend string

	// RuleType represents the kind of rule that raised an issue.
	RuleType string

	// Severity represents the severity of an issue.
	Severity string

	// IssueStatus represents the workflow status of an issue.
	IssueStatus string

	// Resolution represents how a resolved issue was resolved.
	Resolution string

	// ValueType represents the kind of value a metric holds.
	ValueType string

	// GateOperator represents the comparison used by a quality gate condition.
	GateOperator string

	// GateLevel represents the outcome of a quality gate evaluation.
	GateLevel string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	PromOut    OutputMode = "prom"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All rule types supported.
const (
	CodeSmell     RuleType = "CODE_SMELL"
	Bug           RuleType = "BUG"
	Vulnerability RuleType = "VULNERABILITY"
)

// All severities supported, from least to most severe.
const (
	InfoSeverity     Severity = "INFO"
	MinorSeverity    Severity = "MINOR"
	MajorSeverity    Severity = "MAJOR"
	CriticalSeverity Severity = "CRITICAL"
	BlockerSeverity  Severity = "BLOCKER"
)

// All issue statuses supported.
const (
	StatusOpen      IssueStatus = "OPEN"
	StatusConfirmed IssueStatus = "CONFIRMED"
	StatusReopened  IssueStatus = "REOPENED"
	StatusResolved  IssueStatus = "RESOLVED"
	StatusClosed    IssueStatus = "CLOSED"
)

// All resolutions supported. An unresolved issue has no resolution.
const (
	NoResolution            Resolution = ""
	ResolutionFixed         Resolution = "FIXED"
	ResolutionFalsePositive Resolution = "FALSE-POSITIVE"
	ResolutionWontFix       Resolution = "WONTFIX"
	ResolutionRemoved       Resolution = "REMOVED"
)

// All metric value types supported.
const (
	FloatType  ValueType = "FLOAT"
	RatingType ValueType = "RATING"
	StringType ValueType = "STRING"
)

// All gate operators supported.
const (
	GreaterThan GateOperator = "GT"
	LessThan    GateOperator = "LT"
)

// All gate levels supported.
const (
	GateOK      GateLevel = "OK"
	GateError   GateLevel = "ERROR"
	GateNoValue GateLevel = "NO_VALUE"
)

// AllRuleTypes lists every rule type in display order.
var AllRuleTypes = []RuleType{CodeSmell, Bug, Vulnerability}

// AllSeverities lists every severity from most to least severe.
var AllSeverities = []Severity{BlockerSeverity, CriticalSeverity, MajorSeverity, MinorSeverity, InfoSeverity}

// AllStatuses lists every issue status in workflow order.
var AllStatuses = []IssueStatus{StatusOpen, StatusConfirmed, StatusReopened, StatusResolved, StatusClosed}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	PromOut:    {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidRuleTypes lists all valid rule types.
var ValidRuleTypes = map[RuleType]struct{}{
	CodeSmell:     {},
	Bug:           {},
	Vulnerability: {},
}

// ValidSeverities lists all valid severities.
var ValidSeverities = map[Severity]struct{}{
	InfoSeverity:     {},
	MinorSeverity:    {},
	MajorSeverity:    {},
	CriticalSeverity: {},
	BlockerSeverity:  {},
}

// ValidStatuses lists all valid issue statuses.
var ValidStatuses = map[IssueStatus]struct{}{
	StatusOpen:      {},
	StatusConfirmed: {},
	StatusReopened:  {},
	StatusResolved:  {},
	StatusClosed:    {},
}

// ValidResolutions lists all valid resolutions, including the empty one.
var ValidResolutions = map[Resolution]struct{}{
	NoResolution:            {},
	ResolutionFixed:         {},
	ResolutionFalsePositive: {},
	ResolutionWontFix:       {},
	ResolutionRemoved:       {},
}

// ValidGateOperators lists all valid gate operators.
var ValidGateOperators = map[GateOperator]struct{}{
	GreaterThan: {},
	LessThan:    {},
}

// severityRanks orders severities so that higher means more severe.
var severityRanks = map[Severity]int{
	InfoSeverity:     1,
	MinorSeverity:    2,
	MajorSeverity:    3,
	CriticalSeverity: 4,
	BlockerSeverity:  5,
}

// Rank returns the ordinal of the severity, 0 for unknown values.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// IsResolved reports whether the status ends the issue lifecycle.
func (s IssueStatus) IsResolved() bool {
	return s == StatusResolved || s == StatusClosed
}

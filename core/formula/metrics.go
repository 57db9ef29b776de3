package formula

import "github.com/huangsam/livemeasure/schema"

// Metric domains.
const (
	DomainIssues          = "Issues"
	DomainMaintainability = "Maintainability"
	DomainReliability     = "Reliability"
	DomainSecurity        = "Security"
	DomainSize            = "Size"
)

func floatMetric(key, name, domain, desc string) schema.Metric {
	return schema.Metric{Key: key, Name: name, Type: schema.FloatType, Domain: domain, Description: desc}
}

func ratingMetric(key, name, domain, desc string) schema.Metric {
	return schema.Metric{Key: key, Name: name, Type: schema.RatingType, Domain: domain, Description: desc}
}

// External inputs seeded by the caller before evaluation.
var (
	DevelopmentCost    = floatMetric("development_cost", "Development Cost", DomainSize, "Estimated minutes to write the code")
	NewDevelopmentCost = floatMetric("new_development_cost", "Development Cost on New Code", DomainSize, "Estimated minutes to write the new code")
)

// Issue counts.
var (
	Violations         = floatMetric("violations", "Issues", DomainIssues, "Unresolved issues")
	NewViolations      = floatMetric("new_violations", "New Issues", DomainIssues, "Unresolved issues in the leak period")
	CodeSmells         = floatMetric("code_smells", "Code Smells", DomainMaintainability, "Unresolved code smells")
	NewCodeSmells      = floatMetric("new_code_smells", "New Code Smells", DomainMaintainability, "Unresolved code smells in the leak period")
	Bugs               = floatMetric("bugs", "Bugs", DomainReliability, "Unresolved bugs")
	NewBugs            = floatMetric("new_bugs", "New Bugs", DomainReliability, "Unresolved bugs in the leak period")
	Vulnerabilities    = floatMetric("vulnerabilities", "Vulnerabilities", DomainSecurity, "Unresolved vulnerabilities")
	NewVulnerabilities = floatMetric("new_vulnerabilities", "New Vulnerabilities", DomainSecurity, "Unresolved vulnerabilities in the leak period")

	BlockerViolations     = floatMetric("blocker_violations", "Blocker Issues", DomainIssues, "Unresolved blocker issues")
	CriticalViolations    = floatMetric("critical_violations", "Critical Issues", DomainIssues, "Unresolved critical issues")
	MajorViolations       = floatMetric("major_violations", "Major Issues", DomainIssues, "Unresolved major issues")
	MinorViolations       = floatMetric("minor_violations", "Minor Issues", DomainIssues, "Unresolved minor issues")
	InfoViolations        = floatMetric("info_violations", "Info Issues", DomainIssues, "Unresolved info issues")
	NewBlockerViolations  = floatMetric("new_blocker_violations", "New Blocker Issues", DomainIssues, "Unresolved blocker issues in the leak period")
	NewCriticalViolations = floatMetric("new_critical_violations", "New Critical Issues", DomainIssues, "Unresolved critical issues in the leak period")
	NewMajorViolations    = floatMetric("new_major_violations", "New Major Issues", DomainIssues, "Unresolved major issues in the leak period")
	NewMinorViolations    = floatMetric("new_minor_violations", "New Minor Issues", DomainIssues, "Unresolved minor issues in the leak period")
	NewInfoViolations     = floatMetric("new_info_violations", "New Info Issues", DomainIssues, "Unresolved info issues in the leak period")

	OpenIssues          = floatMetric("open_issues", "Open Issues", DomainIssues, "Issues with status OPEN")
	ConfirmedIssues     = floatMetric("confirmed_issues", "Confirmed Issues", DomainIssues, "Issues with status CONFIRMED")
	ReopenedIssues      = floatMetric("reopened_issues", "Reopened Issues", DomainIssues, "Issues with status REOPENED")
	FalsePositiveIssues = floatMetric("false_positive_issues", "False Positive Issues", DomainIssues, "Issues resolved as false positive")
	WontFixIssues       = floatMetric("wont_fix_issues", "Won't Fix Issues", DomainIssues, "Issues resolved as won't fix")

	ViolationsSeverityDistribution = schema.Metric{
		Key:         "violations_severity_distribution",
		Name:        "Issues Severity Distribution",
		Type:        schema.StringType,
		Domain:      DomainIssues,
		Description: "Unresolved issues per severity",
	}
)

// Remediation efforts, in minutes.
var (
	TechnicalDebt                   = floatMetric("sqale_index", "Technical Debt", DomainMaintainability, "Minutes to fix all code smells")
	NewTechnicalDebt                = floatMetric("new_technical_debt", "Technical Debt on New Code", DomainMaintainability, "Minutes to fix code smells in the leak period")
	ReliabilityRemediationEffort    = floatMetric("reliability_remediation_effort", "Reliability Remediation Effort", DomainReliability, "Minutes to fix all bugs")
	NewReliabilityRemediationEffort = floatMetric("new_reliability_remediation_effort", "Reliability Remediation Effort on New Code", DomainReliability, "Minutes to fix bugs in the leak period")
	SecurityRemediationEffort       = floatMetric("security_remediation_effort", "Security Remediation Effort", DomainSecurity, "Minutes to fix all vulnerabilities")
	NewSecurityRemediationEffort    = floatMetric("new_security_remediation_effort", "Security Remediation Effort on New Code", DomainSecurity, "Minutes to fix vulnerabilities in the leak period")
)

// Ratios and ratings.
var (
	DebtRatio                       = floatMetric("sqale_debt_ratio", "Technical Debt Ratio", DomainMaintainability, "Percentage of technical debt over development cost")
	NewDebtRatio                    = floatMetric("new_sqale_debt_ratio", "Technical Debt Ratio on New Code", DomainMaintainability, "Percentage of technical debt over development cost of new code")
	MaintainabilityRating           = ratingMetric("sqale_rating", "Maintainability Rating", DomainMaintainability, "Rating based on technical debt density")
	NewMaintainabilityRating        = ratingMetric("new_maintainability_rating", "Maintainability Rating on New Code", DomainMaintainability, "Rating based on technical debt density of new code")
	EffortToReachMaintainabilityA   = floatMetric("effort_to_reach_maintainability_rating_a", "Effort to Reach Maintainability Rating A", DomainMaintainability, "Minutes of debt to fix before the rating becomes A")
	ReliabilityRating               = ratingMetric("reliability_rating", "Reliability Rating", DomainReliability, "Rating based on the worst unresolved bug")
	NewReliabilityRating            = ratingMetric("new_reliability_rating", "Reliability Rating on New Code", DomainReliability, "Rating based on the worst unresolved bug in the leak period")
	SecurityRating                  = ratingMetric("security_rating", "Security Rating", DomainSecurity, "Rating based on the worst unresolved vulnerability")
	NewSecurityRating               = ratingMetric("new_security_rating", "Security Rating on New Code", DomainSecurity, "Rating based on the worst unresolved vulnerability in the leak period")
)

// MetricsByRuleType maps a rule type to the metric counting its unresolved issues.
var MetricsByRuleType = map[schema.RuleType]schema.Metric{
	schema.CodeSmell:     CodeSmells,
	schema.Bug:           Bugs,
	schema.Vulnerability: Vulnerabilities,
}

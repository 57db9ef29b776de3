package formula

import (
	"fmt"
	"math"

	"github.com/huangsam/livemeasure/schema"
)

// severityRatings maps the worst unresolved severity to a reliability or security rating.
var severityRatings = map[schema.Severity]schema.Rating{
	schema.InfoSeverity:     schema.RatingA,
	schema.MinorSeverity:    schema.RatingB,
	schema.MajorSeverity:    schema.RatingC,
	schema.CriticalSeverity: schema.RatingD,
	schema.BlockerSeverity:  schema.RatingE,
}

// NewDefaultEngine returns an engine with every built-in formula registered.
// Maintainability ratings are derived from grid.
func NewDefaultEngine(grid DebtRatingGrid) *Engine {
	e := NewEngine()
	e.MustRegister(
		countFormula(Violations, func(c *IssueCounter) int { return c.CountUnresolved(false) }),
		countFormula(NewViolations, func(c *IssueCounter) int { return c.CountUnresolved(true) }),
	)
	for _, onLeak := range []bool{false, true} {
		e.MustRegister(
			typeCountFormula(pick(onLeak, CodeSmells, NewCodeSmells), schema.CodeSmell, onLeak),
			typeCountFormula(pick(onLeak, Bugs, NewBugs), schema.Bug, onLeak),
			typeCountFormula(pick(onLeak, Vulnerabilities, NewVulnerabilities), schema.Vulnerability, onLeak),
			severityCountFormula(pick(onLeak, BlockerViolations, NewBlockerViolations), schema.BlockerSeverity, onLeak),
			severityCountFormula(pick(onLeak, CriticalViolations, NewCriticalViolations), schema.CriticalSeverity, onLeak),
			severityCountFormula(pick(onLeak, MajorViolations, NewMajorViolations), schema.MajorSeverity, onLeak),
			severityCountFormula(pick(onLeak, MinorViolations, NewMinorViolations), schema.MinorSeverity, onLeak),
			severityCountFormula(pick(onLeak, InfoViolations, NewInfoViolations), schema.InfoSeverity, onLeak),
		)
	}
	e.MustRegister(
		countFormula(OpenIssues, func(c *IssueCounter) int { return c.CountByStatus(schema.StatusOpen, false) }),
		countFormula(ConfirmedIssues, func(c *IssueCounter) int { return c.CountByStatus(schema.StatusConfirmed, false) }),
		countFormula(ReopenedIssues, func(c *IssueCounter) int { return c.CountByStatus(schema.StatusReopened, false) }),
		countFormula(FalsePositiveIssues, func(c *IssueCounter) int { return c.CountByResolution(schema.ResolutionFalsePositive, false) }),
		countFormula(WontFixIssues, func(c *IssueCounter) int { return c.CountByResolution(schema.ResolutionWontFix, false) }),
		NewFormula(ViolationsSeverityDistribution, ComputeFunc(func(ctx *FormulaContext, c *IssueCounter) error {
			return ctx.SetString(schema.FormatSeverityCounts(c.SeverityDistribution(false)))
		})),
	)
	for _, onLeak := range []bool{false, true} {
		debt := pick(onLeak, TechnicalDebt, NewTechnicalDebt)
		cost := pick(onLeak, DevelopmentCost, NewDevelopmentCost)
		e.MustRegister(
			effortFormula(debt, schema.CodeSmell, onLeak),
			effortFormula(pick(onLeak, ReliabilityRemediationEffort, NewReliabilityRemediationEffort), schema.Bug, onLeak),
			effortFormula(pick(onLeak, SecurityRemediationEffort, NewSecurityRemediationEffort), schema.Vulnerability, onLeak),
			debtRatioFormula(pick(onLeak, DebtRatio, NewDebtRatio), debt, cost),
			maintainabilityRatingFormula(pick(onLeak, MaintainabilityRating, NewMaintainabilityRating), debt, cost, grid),
			severityRatingFormula(pick(onLeak, ReliabilityRating, NewReliabilityRating), schema.Bug, onLeak),
			severityRatingFormula(pick(onLeak, SecurityRating, NewSecurityRating), schema.Vulnerability, onLeak),
		)
	}
	e.MustRegister(effortToRatingAFormula(grid))
	return e
}

func pick(onLeak bool, overall, leak schema.Metric) schema.Metric {
	if onLeak {
		return leak
	}
	return overall
}

func countFormula(m schema.Metric, count func(*IssueCounter) int) *Formula {
	return NewFormula(m, ComputeFunc(func(ctx *FormulaContext, c *IssueCounter) error {
		return ctx.SetFloat(float64(count(c)))
	}))
}

func typeCountFormula(m schema.Metric, t schema.RuleType, onLeak bool) *Formula {
	return countFormula(m, func(c *IssueCounter) int { return c.CountUnresolvedByType(t, onLeak) })
}

func severityCountFormula(m schema.Metric, sev schema.Severity, onLeak bool) *Formula {
	return countFormula(m, func(c *IssueCounter) int { return c.CountUnresolvedBySeverity(sev, onLeak) })
}

func effortFormula(m schema.Metric, t schema.RuleType, onLeak bool) *Formula {
	return NewFormula(m, ComputeFunc(func(ctx *FormulaContext, c *IssueCounter) error {
		return ctx.SetFloat(c.SumEffortOfUnresolved(t, onLeak))
	}))
}

// debtAndCost reads a debt metric and its development cost. A missing cost reads as zero.
func debtAndCost(ctx *FormulaContext, debt, cost schema.Metric) (float64, float64, error) {
	d, err := ctx.Float(debt.Key)
	if err != nil {
		return 0, 0, err
	}
	dc, err := ctx.FloatOr(cost.Key, 0)
	if err != nil {
		return 0, 0, err
	}
	return d, dc, nil
}

func density(debt, cost float64) float64 {
	if cost <= 0 {
		return 0
	}
	return debt / cost
}

func debtRatioFormula(m, debt, cost schema.Metric) *Formula {
	return NewFormula(m, ComputeFunc(func(ctx *FormulaContext, _ *IssueCounter) error {
		d, dc, err := debtAndCost(ctx, debt, cost)
		if err != nil {
			return err
		}
		return ctx.SetFloat(100 * density(d, dc))
	}), debt, cost)
}

func maintainabilityRatingFormula(m, debt, cost schema.Metric, grid DebtRatingGrid) *Formula {
	return NewFormula(m, ComputeFunc(func(ctx *FormulaContext, _ *IssueCounter) error {
		d, dc, err := debtAndCost(ctx, debt, cost)
		if err != nil {
			return err
		}
		r, err := grid.RatingForDensity(density(d, dc))
		if err != nil {
			return err
		}
		return ctx.SetRating(r)
	}), debt, cost)
}

func effortToRatingAFormula(grid DebtRatingGrid) *Formula {
	return NewFormula(EffortToReachMaintainabilityA, ComputeFunc(func(ctx *FormulaContext, _ *IssueCounter) error {
		d, dc, err := debtAndCost(ctx, TechnicalDebt, DevelopmentCost)
		if err != nil {
			return err
		}
		return ctx.SetFloat(math.Max(0, d-dc*grid.MaxDensity(schema.RatingA)))
	}), TechnicalDebt, DevelopmentCost)
}

func severityRatingFormula(m schema.Metric, t schema.RuleType, onLeak bool) *Formula {
	return NewFormula(m, ComputeFunc(func(ctx *FormulaContext, c *IssueCounter) error {
		sev, ok := c.MostSevereUnresolved(t, onLeak)
		if !ok {
			return ctx.SetRating(schema.RatingA)
		}
		r, ok := severityRatings[sev]
		if !ok {
			return fmt.Errorf("unknown severity '%s'", sev)
		}
		return ctx.SetRating(r)
	}))
}

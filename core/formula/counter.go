package formula

import (
	"slices"

	"github.com/huangsam/livemeasure/schema"
)

// IssueCounter answers count and effort queries over a fixed set of issue groups.
// Every query takes onLeak: when true only groups in the leak period are counted.
type IssueCounter struct {
	groups []schema.IssueGroup
}

// NewIssueCounter builds a counter over a copy of groups.
func NewIssueCounter(groups []schema.IssueGroup) *IssueCounter {
	return &IssueCounter{groups: slices.Clone(groups)}
}

func (c *IssueCounter) sum(onLeak bool, match func(schema.IssueGroup) bool) int {
	total := 0
	for _, g := range c.groups {
		if onLeak && !g.InLeak {
			continue
		}
		if match(g) {
			total += g.Count
		}
	}
	return total
}

// CountUnresolved counts issues that are neither resolved nor closed.
func (c *IssueCounter) CountUnresolved(onLeak bool) int {
	return c.sum(onLeak, func(g schema.IssueGroup) bool {
		return !g.IsResolved()
	})
}

// CountUnresolvedBySeverity counts unresolved issues of one severity.
func (c *IssueCounter) CountUnresolvedBySeverity(sev schema.Severity, onLeak bool) int {
	return c.sum(onLeak, func(g schema.IssueGroup) bool {
		return !g.IsResolved() && g.Severity == sev
	})
}

// CountUnresolvedByType counts unresolved issues of one rule type.
func (c *IssueCounter) CountUnresolvedByType(t schema.RuleType, onLeak bool) int {
	return c.sum(onLeak, func(g schema.IssueGroup) bool {
		return !g.IsResolved() && g.RuleType == t
	})
}

// CountByResolution counts issues with the given resolution, regardless of status.
func (c *IssueCounter) CountByResolution(res schema.Resolution, onLeak bool) int {
	return c.sum(onLeak, func(g schema.IssueGroup) bool {
		return g.Resolution == res
	})
}

// CountByStatus counts issues with the given status.
func (c *IssueCounter) CountByStatus(status schema.IssueStatus, onLeak bool) int {
	return c.sum(onLeak, func(g schema.IssueGroup) bool {
		return g.Status == status
	})
}

// CountAll counts every issue regardless of status or resolution.
func (c *IssueCounter) CountAll(onLeak bool) int {
	return c.sum(onLeak, func(schema.IssueGroup) bool { return true })
}

// SumEffortOfUnresolved sums remediation minutes of unresolved issues of one rule type.
func (c *IssueCounter) SumEffortOfUnresolved(t schema.RuleType, onLeak bool) float64 {
	total := 0.0
	for _, g := range c.groups {
		if onLeak && !g.InLeak {
			continue
		}
		if !g.IsResolved() && g.RuleType == t {
			total += g.Effort
		}
	}
	return total
}

// MostSevereUnresolved returns the highest severity among unresolved issues
// of one rule type. The boolean is false when there are none.
func (c *IssueCounter) MostSevereUnresolved(t schema.RuleType, onLeak bool) (schema.Severity, bool) {
	var worst schema.Severity
	found := false
	for _, g := range c.groups {
		if onLeak && !g.InLeak {
			continue
		}
		if g.IsResolved() || g.RuleType != t || g.Count == 0 {
			continue
		}
		if !found || g.Severity.Rank() > worst.Rank() {
			worst = g.Severity
			found = true
		}
	}
	return worst, found
}

// SeverityDistribution counts unresolved issues per severity.
func (c *IssueCounter) SeverityDistribution(onLeak bool) map[schema.Severity]int {
	out := make(map[schema.Severity]int, len(schema.AllSeverities))
	for _, sev := range schema.AllSeverities {
		out[sev] = c.CountUnresolvedBySeverity(sev, onLeak)
	}
	return out
}

// Package agg has aggregation logic for component issue data.
package agg

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/huangsam/livemeasure/schema"
)

// LoadInput reads an input document from path, assigns keys to issues that
// have none and validates the result.
func LoadInput(path string) (*schema.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseInput(data)
}

// ParseInput decodes and validates an input document.
func ParseInput(data []byte) (*schema.Input, error) {
	var input schema.Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	AssignIssueKeys(&input)
	if err := ValidateInput(&input); err != nil {
		return nil, err
	}
	return &input, nil
}

// SaveInput writes the input document back to path as indented JSON.
func SaveInput(path string, input *schema.Input) error {
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode input: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write input: %w", err)
	}
	return nil
}

// AssignIssueKeys gives every issue without a key a random UUID.
func AssignIssueKeys(input *schema.Input) {
	for ci := range input.Components {
		issues := input.Components[ci].Issues
		for ii := range issues {
			if strings.TrimSpace(issues[ii].Key) == "" {
				issues[ii].Key = uuid.NewString()
			}
		}
	}
}

// ValidateInput checks every component and issue and reports all problems at once.
func ValidateInput(input *schema.Input) error {
	var result *multierror.Error
	components := make(map[string]struct{}, len(input.Components))
	issues := make(map[string]struct{})

	for _, c := range input.Components {
		if c.Key == "" {
			result = multierror.Append(result, fmt.Errorf("component without key"))
			continue
		}
		if _, dup := components[c.Key]; dup {
			result = multierror.Append(result, fmt.Errorf("duplicate component '%s'", c.Key))
		}
		components[c.Key] = struct{}{}
		if c.Ncloc < 0 || c.NewNcloc < 0 {
			result = multierror.Append(result, fmt.Errorf("component '%s': lines of code must be non-negative", c.Key))
		}

		for _, issue := range c.Issues {
			if _, dup := issues[issue.Key]; dup {
				result = multierror.Append(result, fmt.Errorf("duplicate issue '%s'", issue.Key))
			}
			issues[issue.Key] = struct{}{}
			if err := validateIssue(issue); err != nil {
				result = multierror.Append(result, fmt.Errorf("component '%s': issue '%s': %w", c.Key, issue.Key, err))
			}
		}
	}
	return result.ErrorOrNil()
}

func validateIssue(issue schema.Issue) error {
	if _, ok := schema.ValidRuleTypes[issue.RuleType]; !ok {
		return fmt.Errorf("invalid rule type '%s'", issue.RuleType)
	}
	if _, ok := schema.ValidSeverities[issue.Severity]; !ok {
		return fmt.Errorf("invalid severity '%s'", issue.Severity)
	}
	if _, ok := schema.ValidStatuses[issue.Status]; !ok {
		return fmt.Errorf("invalid status '%s'", issue.Status)
	}
	if _, ok := schema.ValidResolutions[issue.Resolution]; !ok {
		return fmt.Errorf("invalid resolution '%s'", issue.Resolution)
	}
	if !issue.Status.IsResolved() && issue.Resolution != schema.NoResolution {
		return fmt.Errorf("status %s cannot have resolution %s", issue.Status, issue.Resolution)
	}
	if issue.Status == schema.StatusResolved && issue.Resolution == schema.NoResolution {
		return fmt.Errorf("status %s requires a resolution", issue.Status)
	}
	if issue.Effort < 0 {
		return fmt.Errorf("effort must be non-negative")
	}
	return nil
}

// groupKey identifies issues that aggregate into the same group.
type groupKey struct {
	ruleType   schema.RuleType
	severity   schema.Severity
	status     schema.IssueStatus
	resolution schema.Resolution
	inLeak     bool
}

// GroupIssues aggregates issues into count rows. An issue is in the leak
// period when it was created at or after leakStart; a zero leakStart puts
// nothing in the leak period. The result order is deterministic.
func GroupIssues(issues []schema.Issue, leakStart time.Time) []schema.IssueGroup {
	groups := make(map[groupKey]*schema.IssueGroup)
	for _, issue := range issues {
		key := groupKey{
			ruleType:   issue.RuleType,
			severity:   issue.Severity,
			status:     issue.Status,
			resolution: issue.Resolution,
			inLeak:     InLeak(issue, leakStart),
		}
		g, ok := groups[key]
		if !ok {
			g = &schema.IssueGroup{
				RuleType:   key.ruleType,
				Severity:   key.severity,
				Status:     key.status,
				Resolution: key.resolution,
				InLeak:     key.inLeak,
			}
			groups[key] = g
		}
		g.Count++
		g.Effort += issue.Effort
	}

	out := make([]schema.IssueGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	slices.SortFunc(out, compareGroups)
	return out
}

// InLeak reports whether the issue was created inside the leak period.
func InLeak(issue schema.Issue, leakStart time.Time) bool {
	if leakStart.IsZero() || issue.CreatedAt.IsZero() {
		return false
	}
	return !issue.CreatedAt.Before(leakStart)
}

// compareGroups sorts by rule type, then most severe first, then status,
// resolution and finally overall before leak.
func compareGroups(a, b schema.IssueGroup) int {
	if c := slices.Index(schema.AllRuleTypes, a.RuleType) - slices.Index(schema.AllRuleTypes, b.RuleType); c != 0 {
		return c
	}
	if c := b.Severity.Rank() - a.Severity.Rank(); c != 0 {
		return c
	}
	if c := slices.Index(schema.AllStatuses, a.Status) - slices.Index(schema.AllStatuses, b.Status); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Resolution), string(b.Resolution)); c != 0 {
		return c
	}
	switch {
	case a.InLeak == b.InLeak:
		return 0
	case !a.InLeak:
		return -1
	default:
		return 1
	}
}

// FindIssue locates an issue by key and returns its component and a pointer
// into the input so callers can update it in place.
func FindIssue(input *schema.Input, key string) (*schema.Component, *schema.Issue, error) {
	for ci := range input.Components {
		c := &input.Components[ci]
		for ii := range c.Issues {
			if c.Issues[ii].Key == key {
				return c, &c.Issues[ii], nil
			}
		}
	}
	return nil, nil, fmt.Errorf("issue '%s' not found", key)
}

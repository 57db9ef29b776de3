// Package workflow applies issue workflow transitions and derives the
// measure changes they cause.
package workflow

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/felixgeelhaar/statekit"
	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/schema"
)

// Transition is the name of a workflow action on an issue.
type Transition string

// All transitions supported.
const (
	Confirm         Transition = "confirm"
	Unconfirm       Transition = "unconfirm"
	Reopen          Transition = "reopen"
	Resolve         Transition = "resolve"
	FalsePositive   Transition = "falsepositive"
	WontFix         Transition = "wontfix"
	Close           Transition = "close"
	AutomaticReopen Transition = "automaticreopen"
)

// Workflow errors.
var (
	ErrUnknownTransition    = errors.New("unknown transition")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrTransitionForbidden  = errors.New("transition forbidden")
)

// Guard names registered on the state machine.
const (
	guardIssueAdmin = "issueAdmin"
	guardSystem     = "system"
)

type permission int

const (
	anyone permission = iota
	issueAdmin
	system
)

// rule describes one transition. The same table builds the state machine
// and explains why a transition was refused.
type rule struct {
	name       Transition
	from       []schema.IssueStatus
	to         schema.IssueStatus
	perm       permission
	resolution func(current schema.Resolution) schema.Resolution
}

var unresolved = []schema.IssueStatus{schema.StatusOpen, schema.StatusConfirmed, schema.StatusReopened}

func setResolution(r schema.Resolution) func(schema.Resolution) schema.Resolution {
	return func(schema.Resolution) schema.Resolution { return r }
}

var rules = []rule{
	{Confirm, []schema.IssueStatus{schema.StatusOpen, schema.StatusReopened}, schema.StatusConfirmed, anyone, setResolution(schema.NoResolution)},
	{Unconfirm, []schema.IssueStatus{schema.StatusConfirmed}, schema.StatusReopened, anyone, setResolution(schema.NoResolution)},
	{Reopen, []schema.IssueStatus{schema.StatusResolved}, schema.StatusReopened, anyone, setResolution(schema.NoResolution)},
	{Resolve, unresolved, schema.StatusResolved, anyone, setResolution(schema.ResolutionFixed)},
	{FalsePositive, unresolved, schema.StatusResolved, issueAdmin, setResolution(schema.ResolutionFalsePositive)},
	{WontFix, unresolved, schema.StatusResolved, issueAdmin, setResolution(schema.ResolutionWontFix)},
	{
		Close,
		[]schema.IssueStatus{schema.StatusOpen, schema.StatusConfirmed, schema.StatusReopened, schema.StatusResolved},
		schema.StatusClosed,
		system,
		func(current schema.Resolution) schema.Resolution {
			if current == schema.NoResolution {
				return schema.ResolutionFixed
			}
			return current
		},
	},
	{AutomaticReopen, []schema.IssueStatus{schema.StatusResolved}, schema.StatusReopened, system, setResolution(schema.NoResolution)},
}

// AllTransitions lists every transition name.
func AllTransitions() []Transition {
	out := make([]Transition, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.name)
	}
	return out
}

// ParseTransition validates a transition name.
func ParseTransition(s string) (Transition, error) {
	t := Transition(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := findRule(t); !ok {
		return "", fmt.Errorf("%w '%s'", ErrUnknownTransition, s)
	}
	return t, nil
}

func findRule(t Transition) (rule, bool) {
	for _, r := range rules {
		if r.name == t {
			return r, true
		}
	}
	return rule{}, false
}

// Actor is the user or process requesting a transition.
type Actor struct {
	Login      string
	IssueAdmin bool // Holds the issue administration permission
	System     bool // Automated transitions such as close
}

func (a Actor) permits(p permission) bool {
	switch p {
	case issueAdmin:
		return a.IssueAdmin
	case system:
		return a.System
	default:
		return true
	}
}

// DiffOperation is a change to apply to a stored measure.
type DiffOperation struct {
	Metric string  `json:"metric"`
	Delta  float64 `json:"delta"`
}

// Result is the outcome of a successful transition.
type Result struct {
	Issue      schema.Issue       `json:"issue"`
	Transition Transition         `json:"transition"`
	From       schema.IssueStatus `json:"from"`
	To         schema.IssueStatus `json:"to"`
	Actor      string             `json:"actor,omitempty"`
	Diff       *DiffOperation     `json:"diff,omitempty"`
}

// AvailableTransitions lists the transitions the actor may apply to an issue in the given status.
func AvailableTransitions(status schema.IssueStatus, actor Actor) []Transition {
	var out []Transition
	for _, r := range rules {
		if slices.Contains(r.from, status) && actor.permits(r.perm) {
			out = append(out, r.name)
		}
	}
	return out
}

// DoTransition applies a transition to a copy of issue and returns the updated
// issue together with the measure change it implies.
func DoTransition(issue schema.Issue, t Transition, actor Actor) (*Result, error) {
	r, ok := findRule(t)
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownTransition, t)
	}
	if !slices.Contains(r.from, issue.Status) {
		return nil, fmt.Errorf("%w: '%s' from status %s", ErrTransitionNotAllowed, t, issue.Status)
	}
	if !actor.permits(r.perm) {
		return nil, fmt.Errorf("%w: '%s' requires %s permission", ErrTransitionForbidden, t, r.perm)
	}

	machine, err := newIssueMachine(issue.Status, actor)
	if err != nil {
		return nil, err
	}
	to, err := machine.fire(t)
	if err != nil {
		return nil, err
	}

	from := issue.Status
	updated := issue
	updated.Status = to
	updated.Resolution = r.resolution(issue.Resolution)

	return &Result{
		Issue:      updated,
		Transition: t,
		From:       from,
		To:         to,
		Actor:      actor.Login,
		Diff:       diffFor(issue.RuleType, from, to),
	}, nil
}

// diffFor returns -1 on the rule type metric when an issue becomes resolved
// and +1 when it becomes unresolved again.
func diffFor(t schema.RuleType, from, to schema.IssueStatus) *DiffOperation {
	m, ok := formula.MetricsByRuleType[t]
	if !ok {
		return nil
	}
	switch {
	case !from.IsResolved() && to.IsResolved():
		return &DiffOperation{Metric: m.Key, Delta: -1}
	case from.IsResolved() && !to.IsResolved():
		return &DiffOperation{Metric: m.Key, Delta: 1}
	default:
		return nil
	}
}

func (p permission) String() string {
	switch p {
	case issueAdmin:
		return "issue admin"
	case system:
		return "system"
	default:
		return "no"
	}
}

// issueMachine wraps a statekit interpreter positioned at an issue status.
type issueMachine struct {
	interpreter *statekit.Interpreter[Actor]
}

func newIssueMachine(initial schema.IssueStatus, actor Actor) (*issueMachine, error) {
	builder := statekit.NewMachine[Actor]("issue-workflow").
		WithInitial(statekit.StateID(initial)).
		WithContext(actor).
		WithGuard(guardIssueAdmin, func(a Actor, _ statekit.Event) bool {
			return a.IssueAdmin
		}).
		WithGuard(guardSystem, func(a Actor, _ statekit.Event) bool {
			return a.System
		})

	for _, status := range schema.AllStatuses {
		state := builder.State(statekit.StateID(status))
		for _, r := range rules {
			if !slices.Contains(r.from, status) {
				continue
			}
			tr := state.On(statekit.EventType(r.name)).Target(statekit.StateID(r.to))
			switch r.perm {
			case issueAdmin:
				tr.Guard(guardIssueAdmin)
			case system:
				tr.Guard(guardSystem)
			}
		}
		state.Done()
	}

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build issue workflow: %w", err)
	}
	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &issueMachine{interpreter: interpreter}, nil
}

func (m *issueMachine) current() schema.IssueStatus {
	return schema.IssueStatus(m.interpreter.State().Value)
}

// fire sends the transition event. An unchanged state means no transition matched.
func (m *issueMachine) fire(t Transition) (schema.IssueStatus, error) {
	before := m.current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(t)})
	after := m.current()
	if before == after {
		return before, fmt.Errorf("%w: '%s' from status %s", ErrTransitionNotAllowed, t, before)
	}
	return after, nil
}

package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/livemeasure/core/agg"
	"github.com/huangsam/livemeasure/core/workflow"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/internal/persist"
)

// RunTransition applies a workflow transition to one issue of the input file,
// writes the updated issue back and adjusts the latest stored measure of its component.
func RunTransition(cfg *contract.Config, mgr contract.StoreManager, issueKey, transition string) (*workflow.Result, error) {
	t, err := workflow.ParseTransition(transition)
	if err != nil {
		return nil, err
	}

	input, err := agg.LoadInput(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	component, issue, err := agg.FindIssue(input, issueKey)
	if err != nil {
		return nil, err
	}

	actor := workflow.Actor{Login: cfg.Actor, IssueAdmin: cfg.IssueAdmin}
	result, err := workflow.DoTransition(*issue, t, actor)
	if err != nil {
		return nil, err
	}

	*issue = result.Issue
	if err := agg.SaveInput(cfg.InputPath, input); err != nil {
		return nil, err
	}

	if result.Diff == nil || mgr == nil {
		return result, nil
	}
	store := mgr.GetMeasureStore()
	if store == nil {
		return result, nil
	}
	err = store.ApplyDiff(component.Key, result.Diff.Metric, result.Diff.Delta)
	switch {
	case errors.Is(err, persist.ErrMeasureNotFound):
		contract.LogWarn(fmt.Sprintf("No stored %s measure for %s", result.Diff.Metric, component.Key), err)
	case err != nil:
		return nil, fmt.Errorf("failed to apply measure change: %w", err)
	}
	return result, nil
}

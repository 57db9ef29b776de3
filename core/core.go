// Package core has the orchestration logic for computing measures,
// checking quality gates and applying issue transitions.
package core

import (
	"context"
	"time"

	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/core/gate"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteCompute computes measures for every component and prints them.
// With watch enabled it recomputes on every change of the input file until ctx is done.
func ExecuteCompute(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if err := computeOnce(ctx, cfg, mgr); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}
	return WatchInput(ctx, cfg.InputPath, func(ctx context.Context) error {
		return computeOnce(ctx, cfg, mgr)
	})
}

func computeOnce(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, err := RunCompute(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	catalog := formula.NewDefaultEngine(cfg.RatingGrid).RequiredMetrics()
	return outwriter.NewOutWriter().WriteMeasures(FilterMetrics(result, cfg.Metrics), catalog, cfg)
}

// ExecuteMetrics prints the formula catalog. It does not read the input file.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	model, err := BuildMetricsRenderModel(formula.NewDefaultEngine(cfg.RatingGrid), cfg.RatingGrid)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMetrics(model, cfg)
}

// ExecuteGateList prints the built-in and configured quality gates.
func ExecuteGateList(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	gates, err := ResolveGates(cfg, formula.NewDefaultEngine(cfg.RatingGrid))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteGateList(gate.List(gates, cfg.GateAdmin), cfg)
}

// ExecuteGateCheck computes measures and evaluates them against a quality gate.
// It returns ErrGateFailed when any component breaches the gate so that
// callers can exit with a non-zero status.
func ExecuteGateCheck(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := RunCompute(WithSuppressHeader(ctx), cfg, mgr)
	if err != nil {
		return err
	}
	check, err := CheckGate(cfg, result)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteGateCheck(check, cfg, time.Since(start)); err != nil {
		return err
	}
	if !check.Passed {
		return ErrGateFailed
	}
	return nil
}

// ExecuteTransition applies a transition to an issue and prints the outcome.
func ExecuteTransition(cfg *contract.Config, mgr contract.StoreManager, issueKey, transition string) error {
	result, err := RunTransition(cfg, mgr, issueKey, transition)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteTransition(result, cfg)
}

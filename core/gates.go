package core

import (
	"errors"

	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/core/gate"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
)

// ErrGateFailed is returned by the gate check when at least one component breaches the gate.
var ErrGateFailed = errors.New("quality gate failed")

// ResolveGates returns the built-in gates followed by the configured ones,
// with ids assigned by position, after validating them against the engine's metrics.
func ResolveGates(cfg *contract.Config, engine *formula.Engine) ([]schema.QualityGate, error) {
	gates := gate.BuiltInGates()
	for _, g := range cfg.QualityGates {
		g.ID = 0
		gates = append(gates, g)
	}
	gates = gate.Normalize(gates)
	if err := gate.Validate(gates, gate.MetricTypes(engine)); err != nil {
		return nil, err
	}
	return gates, nil
}

// CheckGate evaluates the configured gate (or the default one) against computed measures.
func CheckGate(cfg *contract.Config, result *schema.ComputeResult) (*schema.GateCheckResult, error) {
	engine := formula.NewDefaultEngine(cfg.RatingGrid)
	gates, err := ResolveGates(cfg, engine)
	if err != nil {
		return nil, err
	}
	g, err := gate.Find(gates, cfg.GateName)
	if err != nil {
		return nil, err
	}
	return gate.Check(g, result.Components, gate.MetricTypes(engine))
}

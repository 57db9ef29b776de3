package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/livemeasure/core"
	"github.com/huangsam/livemeasure/core/formula"
	"github.com/huangsam/livemeasure/core/gate"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// requestConfig clones the base config and applies the common request overrides.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("input_path", ""); p != "" {
		cfg.InputPath = p
	}
	err := contract.RevalidateOverrides(cfg, request.GetString("leak_period", ""), request.GetString("metrics", ""), time.Now())
	return cfg, err
}

func jsonResult(data any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(data, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleComputeMeasures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.RunCompute(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compute failed: %v", err)), nil
	}
	return jsonResult(core.FilterMetrics(result, cfg.Metrics)), nil
}

func (h *toolHandler) handleListMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grid := h.baseCfg.RatingGrid
	model, err := core.BuildMetricsRenderModel(formula.NewDefaultEngine(grid), grid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to plan formulas: %v", err)), nil
	}
	return jsonResult(model), nil
}

func (h *toolHandler) handleListQualityGates(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gates, err := core.ResolveGates(h.baseCfg, formula.NewDefaultEngine(h.baseCfg.RatingGrid))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid quality gates: %v", err)), nil
	}
	return jsonResult(gate.List(gates, h.baseCfg.GateAdmin)), nil
}

func (h *toolHandler) handleCheckQualityGate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if g := request.GetString("gate", ""); g != "" {
		cfg.GateName = g
	}

	result, err := core.RunCompute(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compute failed: %v", err)), nil
	}
	check, err := core.CheckGate(cfg, result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("gate check failed: %v", err)), nil
	}
	return jsonResult(check), nil
}

func (h *toolHandler) handleRatingForIndex(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := request.GetInt("index", 0)
	r, err := schema.RatingByIndex(index)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"index": r.Index(), "rating": r.String()}), nil
}

// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Livemeasure MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Livemeasure Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: compute_measures ---
	s.AddTool(mcp.NewTool("compute_measures",
		mcp.WithDescription("Compute issue measures (counts, efforts, ratios and ratings) for every component of an issues file."),
		mcp.WithString("input_path", mcp.Description("Path to the issues JSON file (defaults to the configured input).")),
		mcp.WithString("leak_period", mcp.Description("Start of the leak period, e.g. '30 days' or '2026-09-01T00:00:00Z'.")),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric keys to return (defaults to all).")),
	), h.handleComputeMeasures)

	// --- 2. Tool: list_metrics ---
	s.AddTool(mcp.NewTool("list_metrics",
		mcp.WithDescription("List every computed metric with its dependencies in evaluation order."),
	), h.handleListMetrics)

	// --- 3. Tool: list_quality_gates ---
	s.AddTool(mcp.NewTool("list_quality_gates",
		mcp.WithDescription("List the built-in and configured quality gates."),
	), h.handleListQualityGates)

	// --- 4. Tool: check_quality_gate ---
	s.AddTool(mcp.NewTool("check_quality_gate",
		mcp.WithDescription("Compute measures and evaluate them against a quality gate."),
		mcp.WithString("gate", mcp.Description("Quality gate name (defaults to the default gate).")),
		mcp.WithString("input_path", mcp.Description("Path to the issues JSON file.")),
		mcp.WithString("leak_period", mcp.Description("Start of the leak period.")),
	), h.handleCheckQualityGate)

	// --- 5. Tool: rating_for_index ---
	s.AddTool(mcp.NewTool("rating_for_index",
		mcp.WithDescription("Convert a rating index (1 to 5) to its letter (A to E)."),
		mcp.WithNumber("index", mcp.Description("Rating index."), mcp.Required()),
	), h.handleRatingForIndex)

	return s
}

// StartMCPServer starts the Livemeasure MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

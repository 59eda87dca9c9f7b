// Package mcpserver exposes planning as MCP tools over stdio, so agent
// clients can classify changes, inspect the catalog, and plan flows.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"fabflow/app"
	"fabflow/internal/classify"
	"fabflow/ports"
)

// New creates the MCP server with the planning tools registered. This is
// the composition root: concrete dependencies come in, tools get wired.
func New(planner *app.Planner, catalog ports.ToolCatalogPort, thresholds classify.Thresholds, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"fabflow",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	planTool := NewPlanTool(planner)
	s.AddTool(planTool.Definition(), planTool.Handle)

	classifyTool := NewClassifyTool(thresholds)
	s.AddTool(classifyTool.Definition(), classifyTool.Handle)

	catalogTool := NewCatalogTool(catalog)
	s.AddTool(catalogTool.Definition(), catalogTool.Handle)

	return s
}

package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"fabflow/ports"
)

// CatalogTool handles the list_tools MCP tool, exposing the fab tool
// catalog for inspection.
type CatalogTool struct {
	catalog ports.ToolCatalogPort
}

// NewCatalogTool creates a CatalogTool around the catalog port.
func NewCatalogTool(catalog ports.ToolCatalogPort) *CatalogTool {
	return &CatalogTool{catalog: catalog}
}

// Definition returns the MCP tool definition for registration.
func (t *CatalogTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tools",
		mcp.WithDescription(
			"List every tool in the fab catalog with status, wafer size, "+
				"capable process categories, and material incompatibilities.",
		),
	)
}

// Handle processes the list_tools tool call.
func (t *CatalogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tools, err := t.catalog.ListTools(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog unavailable: %v", err)), nil
	}
	if len(tools) == 0 {
		return mcp.NewToolResultText("The catalog is empty."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Tool Catalog (%d tools)\n\n", len(tools))
	b.WriteString("| Tool | Status | Wafer | Categories | Incompatible Materials | Surrogate |\n")
	b.WriteString("|------|--------|-------|------------|------------------------|----------|\n")
	for _, tool := range tools {
		categories := make([]string, 0, len(tool.CapableCategories))
		for _, c := range tool.CapableCategories {
			categories = append(categories, string(c))
		}
		incompatible := strings.Join(tool.IncompatibleMaterials, ", ")
		if incompatible == "" {
			incompatible = "-"
		}
		surrogate := tool.SurrogateModelRef.String()
		if surrogate == "" {
			surrogate = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %dmm | %s | %s | %s |\n",
			tool.ToolID, tool.Status, tool.WaferSizeMM,
			strings.Join(categories, ", "), incompatible, surrogate)
	}

	return mcp.NewToolResultText(b.String()), nil
}

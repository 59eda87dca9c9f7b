package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/internal/classify"
)

// ClassifyTool handles the classify_change MCP tool. It runs a single
// descriptor through the classification rule table without planning.
type ClassifyTool struct {
	thresholds classify.Thresholds
}

// NewClassifyTool creates a ClassifyTool with the given rule thresholds.
func NewClassifyTool(thresholds classify.Thresholds) *ClassifyTool {
	return &ClassifyTool{thresholds: thresholds}
}

// Definition returns the MCP tool definition for registration.
func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("classify_change",
		mcp.WithDescription(
			"Classify one structural change descriptor into a process category "+
				"and sub-type using the ordered rule table. No tool selection or "+
				"optimization happens; use plan_flow for full planning.",
		),
		mcp.WithString("polarity",
			mcp.Description("Structural direction: ADDITION, REMOVAL, or omit for patterning changes"),
			mcp.Enum("ADDITION", "REMOVAL", ""),
		),
		mcp.WithString("primary_material",
			mcp.Description("Material the change adds or removes"),
		),
		mcp.WithNumber("aspect_ratio",
			mcp.Description("Feature aspect ratio (depth over width)"),
		),
		mcp.WithBoolean("patterning",
			mcp.Description("True for lithographic patterning changes"),
		),
		mcp.WithString("layout_ref",
			mcp.Description("Layout snapshot reference, required with patterning"),
		),
	)
}

// Handle processes the classify_change tool call.
func (t *ClassifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	polarity := req.GetString("polarity", "")
	switch process.Polarity(polarity) {
	case process.PolarityAddition, process.PolarityRemoval, process.PolarityNone:
	default:
		return mcp.NewToolResultError("'polarity' must be ADDITION, REMOVAL, or omitted"), nil
	}

	d := process.ChangeDescriptor{
		Polarity:        process.Polarity(polarity),
		PrimaryMaterial: req.GetString("primary_material", ""),
		AspectRatio:     floatArg(req, "aspect_ratio", 0),
		Patterning:      boolArg(req, "patterning", false),
		LayoutRef:       core.LayoutRef(req.GetString("layout_ref", "")),
	}

	cls := classify.Classify(d, t.thresholds)

	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", cls.Category)
	if cls.SubType != "" {
		fmt.Fprintf(&b, "Sub-type: %s\n", cls.SubType)
	}
	if cls.IsUnknown() {
		b.WriteString("\nNo rule matched. A planner would skip this descriptor with an unknown_process diagnostic.\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"fabflow/app"
	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/internal/wire"
)

// PlanTool handles the plan_flow MCP tool. It runs the full planning
// pipeline over a descriptor sequence and reports the emitted steps.
type PlanTool struct {
	planner *app.Planner
}

// NewPlanTool creates a PlanTool around the planner.
func NewPlanTool(planner *app.Planner) *PlanTool {
	return &PlanTool{planner: planner}
}

// Definition returns the MCP tool definition for registration.
func (t *PlanTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_flow",
		mcp.WithDescription(
			"Plan a semiconductor process flow from an ordered sequence of "+
				"structural change descriptors. Each descriptor is classified, "+
				"matched to a compatible tool, and its recipe optimized against "+
				"the tool's surrogate model. Returns the ordered process steps.",
		),
		mcp.WithString("descriptors_json",
			mcp.Required(),
			mcp.Description(
				"JSON array of change descriptors. Each element needs order_index, "+
					"wafer_size_mm, and either polarity ADDITION/REMOVAL with "+
					"primary_material, aspect_ratio, and target_metric_nm, or "+
					"patterning=true with a layout_ref.",
			),
		),
		mcp.WithString("flow_id",
			mcp.Description("Optional stable flow identifier; generated when omitted"),
		),
	)
}

// Handle processes the plan_flow tool call.
func (t *PlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	descriptorsJSON := req.GetString("descriptors_json", "")
	if descriptorsJSON == "" {
		return mcp.NewToolResultError("'descriptors_json' is required"), nil
	}

	var descriptors []process.ChangeDescriptor
	if err := json.Unmarshal([]byte(descriptorsJSON), &descriptors); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("descriptors_json is not a valid descriptor array: %v", err)), nil
	}
	if len(descriptors) == 0 {
		return mcp.NewToolResultError("descriptors_json must contain at least one descriptor"), nil
	}

	result, err := t.planner.Plan(ctx, app.PlanRequest{
		FlowID:      core.FlowID(req.GetString("flow_id", "")),
		Descriptors: descriptors,
	})
	if err != nil {
		// Planning failures are domain outcomes the caller should see,
		// not transport errors.
		var detail strings.Builder
		fmt.Fprintf(&detail, "Planning failed: %v", err)
		for _, d := range result.Diagnostics {
			fmt.Fprintf(&detail, "\n- descriptor %d at %s: %s", d.OrderIndex, d.Stage, d.Reason)
			if d.Detail != "" {
				fmt.Fprintf(&detail, " (%s)", d.Detail)
			}
		}
		return mcp.NewToolResultError(detail.String()), nil
	}

	steps, err := wire.MarshalFlowIndent(result.Flow)
	if err != nil {
		return nil, fmt.Errorf("rendering steps: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Process Flow %s\n\n", result.Flow.FlowID)
	fmt.Fprintf(&b, "State: %s\n", result.State)
	fmt.Fprintf(&b, "Steps: %d emitted, %d skipped of %d descriptors\n",
		result.Summary.Emitted, result.Summary.Skipped, result.Summary.Descriptors)
	if result.Manifest != nil {
		fmt.Fprintf(&b, "Fingerprint: %s\n", result.Manifest.Fingerprint)
	}

	b.WriteString("\n## Steps\n\n```json\n")
	b.Write(steps)
	b.WriteString("\n```\n")

	if len(result.Diagnostics) > 0 {
		b.WriteString("\n## Skipped Changes\n\n")
		for _, d := range result.Diagnostics {
			fmt.Fprintf(&b, "- descriptor %d at %s: %s", d.OrderIndex, d.Stage, d.Reason)
			if d.Detail != "" {
				fmt.Fprintf(&b, " (%s)", d.Detail)
			}
			b.WriteByte('\n')
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

package traveler

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"fabflow/domain/flow"
)

// RenderMarkdown produces the review report for a planned flow
func RenderMarkdown(result *flow.PlanResult) ([]byte, error) {
	if result == nil || result.Flow == nil {
		return nil, fmt.Errorf("no flow to report")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Process Traveler %s\n\n", result.Flow.FlowID)
	fmt.Fprintf(&b, "Wafer size: %dmm  \n", result.Flow.WaferSizeMM)
	fmt.Fprintf(&b, "Created: %s  \n", result.Flow.CreatedAt.Time().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Steps: %d emitted, %d skipped of %d descriptors\n\n",
		result.Summary.Emitted, result.Summary.Skipped, result.Summary.Descriptors)

	b.WriteString("## Steps\n\n")
	b.WriteString("| Step | Process Type | Sub-Type | Tool | Recipe |\n")
	b.WriteString("|------|--------------|----------|------|--------|\n")
	for _, step := range result.Flow.Steps {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			step.StepNumber, step.ProcessType.WireName(), step.SubType,
			step.ToolID, recipeLine(step.Recipe))
	}
	b.WriteString("\n")

	if len(result.Diagnostics) > 0 {
		b.WriteString("## Skipped Changes\n\n")
		for _, d := range result.Diagnostics {
			fmt.Fprintf(&b, "- descriptor %d at %s: %s", d.OrderIndex, d.Stage, d.Reason)
			if d.Detail != "" {
				fmt.Fprintf(&b, " (%s)", d.Detail)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if result.Manifest != nil {
		b.WriteString("## Determinism Record\n\n")
		fmt.Fprintf(&b, "- Input hash: `%s`\n", result.Manifest.InputHash)
		fmt.Fprintf(&b, "- Config hash: `%s`\n", result.Manifest.ConfigHash)
		fmt.Fprintf(&b, "- Catalog hash: `%s`\n", result.Manifest.CatalogHash)
		fmt.Fprintf(&b, "- Engine version: `%s`\n", result.Manifest.EngineVersion)
		fmt.Fprintf(&b, "- Fingerprint: `%s`\n", result.Manifest.Fingerprint)
	}

	return []byte(b.String()), nil
}

// RenderHTML converts the markdown report to a standalone HTML fragment
func RenderHTML(result *flow.PlanResult) ([]byte, error) {
	md, err := RenderMarkdown(result)
	if err != nil {
		return nil, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer), nil
}

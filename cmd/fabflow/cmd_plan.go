package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fabflow/adapters/traveler"
	"fabflow/app"
	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/internal/config"
	"fabflow/internal/wire"
)

var planFlags struct {
	input        string
	flowID       string
	output       string
	catalog      string
	travelerPath string
	reportPath   string
	planningFile string
	pretty       bool
}

var planCmd = &cobra.Command{
	Use:   "plan [descriptors.json]",
	Short: "Plan a process flow from a change descriptor sequence",
	Long: `Reads an ordered array of change descriptors (JSON), plans the flow, and
writes the resulting step array to stdout. Skipped descriptors and the
plan summary go to stderr so the step JSON stays pipeable.

The catalog backend, surrogate model registry, and mask collaborator come
from the environment. Pass "-" (or --input -) to read descriptors from
stdin.`,
	Example: `  fabflow plan changes.json
  cat changes.json | fabflow plan - --flow-id metal2-rev3
  fabflow plan changes.json --traveler traveler.xlsx --report flow.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlanCmd,
}

func init() {
	f := planCmd.Flags()
	f.StringVarP(&planFlags.input, "input", "i", "", "Descriptor JSON path, or - for stdin")
	f.StringVar(&planFlags.flowID, "flow-id", "", "Stable flow identity (generated when empty)")
	f.StringVarP(&planFlags.output, "output", "o", "", "Write step JSON to this path instead of stdout")
	f.StringVar(&planFlags.catalog, "catalog", "", "Catalog backend: yaml, sqlite, or postgres (overrides CATALOG_BACKEND)")
	f.StringVar(&planFlags.travelerPath, "traveler", "", "Also write an xlsx traveler to this path")
	f.StringVar(&planFlags.reportPath, "report", "", "Also write an HTML report to this path")
	f.StringVar(&planFlags.planningFile, "planning", "", "Planning YAML overlay (overrides PLANNING_FILE)")
	f.BoolVar(&planFlags.pretty, "pretty", false, "Indent the step JSON")
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
	input := planFlags.input
	if input == "" && len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		return fmt.Errorf("descriptor input is required: fabflow plan <descriptors.json> or --input -")
	}

	if planFlags.catalog != "" {
		os.Setenv("CATALOG_BACKEND", planFlags.catalog)
	}
	if planFlags.planningFile != "" {
		os.Setenv("PLANNING_FILE", planFlags.planningFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	descriptors, err := readDescriptors(input)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	planner, _, closeCatalog, err := buildPlanner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	result, err := planner.Plan(ctx, app.PlanRequest{
		FlowID:      core.FlowID(planFlags.flowID),
		Descriptors: descriptors,
	})
	if err != nil {
		for _, d := range result.Diagnostics {
			fmt.Fprintf(os.Stderr, "descriptor %d at %s: %s\n", d.OrderIndex, d.Stage, d.Reason)
		}
		return fmt.Errorf("planning failed: %w", err)
	}

	steps, err := marshalPlannedSteps(result.Flow, planFlags.pretty)
	if err != nil {
		return err
	}
	if planFlags.output != "" {
		if err := os.WriteFile(planFlags.output, append(steps, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing step JSON: %w", err)
		}
	} else {
		fmt.Println(string(steps))
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "skipped descriptor %d at %s: %s\n", d.OrderIndex, d.Stage, d.Reason)
	}
	fmt.Fprintf(os.Stderr, "Planned flow %s: %d emitted, %d skipped of %d descriptors (fingerprint %s)\n",
		result.Flow.FlowID, result.Summary.Emitted, result.Summary.Skipped,
		result.Summary.Descriptors, result.Manifest.Fingerprint)

	if planFlags.travelerPath != "" {
		if err := traveler.WriteWorkbook(result, planFlags.travelerPath); err != nil {
			return fmt.Errorf("writing traveler: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Traveler: %s\n", planFlags.travelerPath)
	}
	if planFlags.reportPath != "" {
		doc, err := traveler.RenderHTML(result)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		if err := os.WriteFile(planFlags.reportPath, doc, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report: %s\n", planFlags.reportPath)
	}
	return nil
}

func marshalPlannedSteps(f *process.ProcessFlow, pretty bool) ([]byte, error) {
	if pretty {
		return wire.MarshalFlowIndent(f)
	}
	return wire.MarshalFlow(f)
}

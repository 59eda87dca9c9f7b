package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fabflow/app"
	"fabflow/internal/config"
	"fabflow/internal/testkit"
	"fabflow/internal/version"
	"fabflow/internal/wire"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Plan the reference flow against seeded in-memory collaborators",
	Long: `Plans the canonical oxide deposition, contact lithography, and oxide
etch sequence against an in-memory catalog and analytic surrogate models.
No configuration, model registry, or backing services required; useful
for a first look at the step output.`,
	Args: cobra.NoArgs,
	RunE: runDemoCmd,
}

func runDemoCmd(cmd *cobra.Command, _ []string) error {
	kit := testkit.NewTestKit()
	kit.SeedStandardCatalog()

	planner := app.NewPlanner(
		kit.CatalogAdapter(),
		kit.MaskAdapter(),
		kit.ResolverAdapter(),
		config.DefaultPlanning(),
		0,
		version.Version,
	)

	result, err := planner.Plan(cmd.Context(), app.PlanRequest{
		FlowID:      "demo-flow",
		Descriptors: kit.CreateTestDescriptors(),
	})
	if err != nil {
		return err
	}

	steps, err := wire.MarshalFlowIndent(result.Flow)
	if err != nil {
		return err
	}
	fmt.Println(string(steps))

	fmt.Fprintf(os.Stderr, "\nFlow %s: %d emitted, %d skipped of %d descriptors\n",
		result.Flow.FlowID, result.Summary.Emitted, result.Summary.Skipped, result.Summary.Descriptors)
	fmt.Fprintf(os.Stderr, "Fingerprint: %s\n", result.Manifest.Fingerprint)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fabflow/adapters/surrogate"
	"fabflow/internal/config"
	"fabflow/internal/testkit"
)

var fitFlags struct {
	output    string
	synthetic string
}

var fitCmd = &cobra.Command{
	Use:   "fit [training-set.json]",
	Short: "Fit a surrogate model from historical process runs",
	Long: `Fits a quadratic response surface to a training set of historical runs
by least squares and writes the model JSON into the registry directory
(MODEL_REGISTRY_DIR), where planning resolves it by model reference.

The training set names the model reference, the ordered input parameters,
and the observed runs:

  {
    "model_ref": "cvd_oxide_rate_v2",
    "inputs": ["temperature_c", "pressure_torr", "time_s"],
    "runs": [{"inputs": [400, 2.5, 60], "observed": 118.4}, ...]
  }

With --synthetic, samples a reference response surface instead of reading
a file. The resulting cvd_std or etch_std model matches the refs the demo
catalog expects.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFitCmd,
}

func init() {
	fitCmd.Flags().StringVarP(&fitFlags.output, "output", "o", "", "Model JSON path (default <registry>/<model_ref>.json)")
	fitCmd.Flags().StringVar(&fitFlags.synthetic, "synthetic", "", "Sample a reference surface instead of reading a file: deposition or etch")
}

func runFitCmd(cmd *cobra.Command, args []string) error {
	var set *surrogate.TrainingSet
	var err error
	switch {
	case fitFlags.synthetic != "" && len(args) > 0:
		return fmt.Errorf("pass a training set file or --synthetic, not both")
	case fitFlags.synthetic != "":
		set, err = syntheticTrainingSet(cmd.Context(), fitFlags.synthetic)
	case len(args) == 1:
		set, err = surrogate.LoadTrainingSet(args[0])
	default:
		return fmt.Errorf("pass a training set file or --synthetic")
	}
	if err != nil {
		return err
	}

	model, err := surrogate.FitQuadratic(set.ModelRef, set.Inputs, set.Runs)
	if err != nil {
		return fmt.Errorf("fitting %s: %w", set.ModelRef, err)
	}

	output := fitFlags.output
	if output == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.Models.RegistryDir, 0o755); err != nil {
			return fmt.Errorf("creating registry dir: %w", err)
		}
		output = filepath.Join(cfg.Models.RegistryDir, string(set.ModelRef)+".json")
	}
	if err := surrogate.SaveModel(output, model); err != nil {
		return err
	}

	q := model.Quality
	fmt.Printf("Fitted %s from %d runs\n", model.ModelRef, q.Runs)
	fmt.Printf("  r-squared:         %.4f\n", q.RSquared)
	fmt.Printf("  mean abs residual: %.4f\n", q.MeanAbsResidual)
	fmt.Printf("  max abs residual:  %.4f\n", q.MaxAbsResidual)
	fmt.Printf("Model written to %s\n", output)
	return nil
}

// syntheticTrainingSet samples one of the reference surfaces through a
// seeded RNG stream
func syntheticTrainingSet(ctx context.Context, surface string) (*surrogate.TrainingSet, error) {
	kit := testkit.NewTestKit()
	generator, err := testkit.NewRunGeneratorWithRNG(ctx, testkit.DefaultRunConfig(), kit.RNGAdapter())
	if err != nil {
		return nil, err
	}
	switch surface {
	case "deposition":
		return generator.DepositionTrainingSet("cvd_std"), nil
	case "etch":
		return generator.EtchTrainingSet("etch_std"), nil
	default:
		return nil, fmt.Errorf("unknown surface %q: want deposition or etch", surface)
	}
}

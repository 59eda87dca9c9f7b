package testkit

import (
	"context"
	"math/rand"

	"fabflow/adapters/surrogate"
	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/ports"
)

// RunGeneratorConfig configures synthetic process-run generation
type RunGeneratorConfig struct {
	Runs       int           `json:"runs"`
	NoiseSigma float64       `json:"noise_sigma"`
	Space      process.Space `json:"space"`
	Seed       int64         `json:"seed"`
}

// DefaultRunConfig returns sensible defaults for synthetic run generation
func DefaultRunConfig() RunGeneratorConfig {
	return RunGeneratorConfig{
		Runs:       60,
		NoiseSigma: 0.5,
		Space:      process.DefaultSpace(),
		Seed:       42,
	}
}

// RunGenerator synthesizes historical process runs by sampling a response
// surface across the recipe box and adding gaussian measurement noise.
// Fitting against generated runs should recover the surface. Runs are
// deterministic per seed, so fixtures stay stable across test executions.
//
// The generator assumes the canonical two-dimensional space: dimension 0
// feeds the surface's time argument, dimension 1 its pressure argument.
type RunGenerator struct {
	config RunGeneratorConfig
	rng    *rand.Rand
}

// NewRunGenerator creates a generator with its own seeded stream
func NewRunGenerator(config RunGeneratorConfig) *RunGenerator {
	return &RunGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// NewRunGeneratorWithRNG creates a generator whose stream comes from an RNG
// port. Equal seeds yield the same runs as NewRunGenerator.
func NewRunGeneratorWithRNG(ctx context.Context, config RunGeneratorConfig, rngPort ports.RNGPort) (*RunGenerator, error) {
	stream, err := rngPort.SeededStream(ctx, "run_generator", config.Seed)
	if err != nil {
		return nil, err
	}
	return &RunGenerator{config: config, rng: stream}, nil
}

// DepositionTrainingSet samples the deposition thickness surface
func (g *RunGenerator) DepositionTrainingSet(ref core.ModelRef) *surrogate.TrainingSet {
	return g.trainingSet(ref, DepositionSurface(ref))
}

// EtchTrainingSet samples the etch depth surface
func (g *RunGenerator) EtchTrainingSet(ref core.ModelRef) *surrogate.TrainingSet {
	return g.trainingSet(ref, EtchSurface(ref))
}

func (g *RunGenerator) trainingSet(ref core.ModelRef, model FuncModel) *surrogate.TrainingSet {
	set := &surrogate.TrainingSet{
		ModelRef: ref,
		Inputs:   g.config.Space.Names(),
		Runs:     make([]surrogate.Observation, 0, g.config.Runs),
	}
	for i := 0; i < g.config.Runs; i++ {
		point := g.samplePoint()
		observed := model.Fn(point[0], point[1]) + g.rng.NormFloat64()*g.config.NoiseSigma
		set.Runs = append(set.Runs, surrogate.Observation{
			Inputs:   point,
			Observed: observed,
		})
	}
	return set
}

// samplePoint draws one recipe point uniformly from the box
func (g *RunGenerator) samplePoint() []float64 {
	point := make([]float64, len(g.config.Space))
	for i, b := range g.config.Space {
		point[i] = b.Low + g.rng.Float64()*(b.High-b.Low)
	}
	return point
}

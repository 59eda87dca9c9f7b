package surrogate

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"fabflow/domain/core"
)

// Observation is one historical run: the recipe point, ordered like the
// training set's inputs, and the measured response.
type Observation struct {
	Inputs   []float64 `json:"inputs"`
	Observed float64   `json:"observed"`
}

// TrainingSet is the on-disk format for historical runs used to fit a model
type TrainingSet struct {
	ModelRef core.ModelRef `json:"model_ref"`
	Inputs   []string      `json:"inputs"`
	Runs     []Observation `json:"runs"`
}

// LoadTrainingSet reads a training set from a JSON file
func LoadTrainingSet(path string) (*TrainingSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading training set %s: %w", path, err)
	}
	var set TrainingSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing training set %s: %w", path, err)
	}
	return &set, nil
}

// FitQuadratic fits a second-order response surface to historical runs by QR
// least squares. It needs at least as many runs as coefficient terms.
func FitQuadratic(ref core.ModelRef, inputs []string, observations []Observation) (*QuadraticModel, error) {
	if ref == "" {
		return nil, core.NewValidationError("model_ref", "must not be empty")
	}
	if len(inputs) == 0 {
		return nil, core.NewValidationError("inputs", "must name at least one parameter")
	}
	terms := quadraticTerms(len(inputs))
	if len(observations) < terms {
		return nil, core.NewValidationError("runs",
			fmt.Sprintf("need at least %d runs to fit %d coefficients, got %d", terms, terms, len(observations)))
	}

	n := len(observations)
	design := mat.NewDense(n, terms, nil)
	response := mat.NewVecDense(n, nil)
	for i, obs := range observations {
		if len(obs.Inputs) != len(inputs) {
			return nil, core.NewValidationError("runs",
				fmt.Sprintf("run %d has %d inputs, expected %d", i, len(obs.Inputs), len(inputs)))
		}
		design.SetRow(i, features(obs.Inputs))
		response.SetVec(i, obs.Observed)
	}

	var qr mat.QR
	qr.Factorize(design)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, response); err != nil {
		return nil, fmt.Errorf("solving least squares for %s: %w", ref, err)
	}

	coefficients := make([]float64, terms)
	for i := range coefficients {
		coefficients[i] = beta.AtVec(i)
	}

	model := &QuadraticModel{
		ModelRef:     ref,
		Inputs:       append([]string(nil), inputs...),
		Coefficients: coefficients,
		FittedAt:     core.Now(),
	}
	quality, err := assess(model, observations)
	if err != nil {
		return nil, fmt.Errorf("assessing fit for %s: %w", ref, err)
	}
	model.Quality = quality
	return model, nil
}

// assess computes residual statistics of the fitted surface over its own
// training runs
func assess(model *QuadraticModel, observations []Observation) (FitQuality, error) {
	observed := make([]float64, len(observations))
	absResiduals := make([]float64, len(observations))
	ssRes := 0.0
	for i, obs := range observations {
		predicted := dot(model.Coefficients, features(obs.Inputs))
		residual := obs.Observed - predicted
		observed[i] = obs.Observed
		absResiduals[i] = math.Abs(residual)
		ssRes += residual * residual
	}

	meanAbs, err := stats.Mean(absResiduals)
	if err != nil {
		return FitQuality{}, err
	}
	maxAbs, err := stats.Max(absResiduals)
	if err != nil {
		return FitQuality{}, err
	}
	meanObserved, err := stats.Mean(observed)
	if err != nil {
		return FitQuality{}, err
	}

	ssTot := 0.0
	for _, y := range observed {
		d := y - meanObserved
		ssTot += d * d
	}
	rSquared := 1.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	} else if ssRes > 0 {
		rSquared = 0
	}

	return FitQuality{
		Runs:            len(observations),
		RSquared:        rSquared,
		MeanAbsResidual: meanAbs,
		MaxAbsResidual:  maxAbs,
	}, nil
}

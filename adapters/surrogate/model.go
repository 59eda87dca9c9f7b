// Package surrogate fits and serves quadratic response surface models that
// stand in for physical process tools during recipe optimization.
package surrogate

import (
	"fmt"

	"fabflow/domain/core"
	"fabflow/domain/process"
)

// QuadraticModel is a fitted second-order response surface. For k inputs the
// coefficient vector covers the intercept, each linear term, each squared
// term, and each pairwise cross term, in that order.
type QuadraticModel struct {
	ModelRef     core.ModelRef  `json:"model_ref"`
	Inputs       []string       `json:"inputs"`
	Coefficients []float64      `json:"coefficients"`
	Quality      FitQuality     `json:"quality"`
	FittedAt     core.Timestamp `json:"fitted_at"`
}

// FitQuality summarizes how well the surface reproduces its training runs
type FitQuality struct {
	Runs            int     `json:"runs"`
	RSquared        float64 `json:"r_squared"`
	MeanAbsResidual float64 `json:"mean_abs_residual"`
	MaxAbsResidual  float64 `json:"max_abs_residual"`
}

// Ref returns the model reference tools point at
func (m *QuadraticModel) Ref() core.ModelRef {
	return m.ModelRef
}

// Validate checks structural integrity after load
func (m *QuadraticModel) Validate() error {
	if m.ModelRef == "" {
		return core.NewValidationError("model_ref", "must not be empty")
	}
	if len(m.Inputs) == 0 {
		return core.NewValidationError("inputs", "must name at least one parameter")
	}
	if want := quadraticTerms(len(m.Inputs)); len(m.Coefficients) != want {
		return core.NewValidationError("coefficients",
			fmt.Sprintf("expected %d terms for %d inputs, got %d", want, len(m.Inputs), len(m.Coefficients)))
	}
	return nil
}

// Predict evaluates the surface at the recipe point. Every named input must
// be present in the recipe.
func (m *QuadraticModel) Predict(r *process.RecipeParameters) (float64, error) {
	point := make([]float64, len(m.Inputs))
	for i, name := range m.Inputs {
		v, ok := r.Get(name)
		if !ok {
			return 0, fmt.Errorf("%w: recipe missing input %s", core.ErrSurrogateFailure, name)
		}
		point[i] = v
	}
	return dot(m.Coefficients, features(point)), nil
}

// quadraticTerms is the coefficient count for a full second-order surface in
// k inputs: intercept + k linear + k squared + k(k-1)/2 cross terms.
func quadraticTerms(k int) int {
	return 1 + 2*k + k*(k-1)/2
}

// features expands a point into the second-order design row
func features(x []float64) []float64 {
	row := make([]float64, 0, quadraticTerms(len(x)))
	row = append(row, 1)
	row = append(row, x...)
	for _, v := range x {
		row = append(row, v*v)
	}
	for i := 0; i < len(x); i++ {
		for j := i + 1; j < len(x); j++ {
			row = append(row, x[i]*x[j])
		}
	}
	return row
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

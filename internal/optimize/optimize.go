// Package optimize tunes recipe parameters against a surrogate process
// model. Descent runs in an unconstrained space mapped into the parameter
// box through a sigmoid, so every iterate is feasible and the zero start
// lands exactly on the box midpoint. A deterministic coarse grid backs the
// descent up: the optimizer always returns a bounded recipe unless the
// surrogate itself cannot be evaluated.
package optimize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/ports"
)

const (
	DefaultIterationBudget = 100
	DefaultGridPoints      = 7
)

// Result is one optimization outcome
type Result struct {
	Point        []float64                 // tuned parameters, space order, inside bounds
	Recipe       *process.RecipeParameters // same point materialized as a recipe
	Achieved     float64                   // surrogate prediction at the point
	Objective    float64                   // squared error against the target
	Iterations   int                       // descent iterations consumed
	Converged    bool                      // descent converged within budget
	UsedFallback bool                      // grid fallback produced the point
}

// Optimizer holds the parameter space and search budgets
type Optimizer struct {
	space      process.Space
	budget     int
	gridPoints int
}

// New creates an optimizer over the given space. Non-positive budget or a
// grid under two points per dimension fall back to defaults.
func New(space process.Space, budget, gridPoints int) *Optimizer {
	if budget <= 0 {
		budget = DefaultIterationBudget
	}
	if gridPoints < 2 {
		gridPoints = DefaultGridPoints
	}
	return &Optimizer{space: space, budget: budget, gridPoints: gridPoints}
}

// Space returns the parameter space the optimizer searches
func (o *Optimizer) Space() process.Space {
	return o.space
}

// Optimize finds bounded recipe parameters whose predicted metric is closest
// to target. The search is deterministic: identical model, target, and
// configuration produce an identical result.
func (o *Optimizer) Optimize(model ports.SurrogateModel, target float64) (Result, error) {
	if err := o.space.Validate(); err != nil {
		return Result{}, err
	}

	objective := func(point []float64) float64 {
		recipe := o.space.Recipe(point)
		predicted, err := model.Predict(recipe)
		if err != nil {
			return math.Inf(1)
		}
		if math.IsNaN(predicted) || math.IsInf(predicted, 0) {
			return math.Inf(1)
		}
		diff := predicted - target
		return diff * diff
	}

	zObjective := func(z []float64) float64 {
		return objective(o.fromLatent(z))
	}

	problem := optimize.Problem{
		Func: zObjective,
		Grad: func(grad, z []float64) {
			fd.Gradient(grad, zObjective, z, &fd.Settings{Formula: fd.Central})
		},
	}

	// Zero latent vector maps to the box midpoint, the mandated seed.
	z0 := make([]float64, len(o.space))
	settings := &optimize.Settings{MajorIterations: o.budget}

	result, err := optimize.Minimize(problem, z0, settings, &optimize.LBFGS{})

	if point, iterations, ok := o.usableDescent(result, err); ok {
		achieved, predictErr := model.Predict(o.space.Recipe(point))
		if predictErr == nil && !math.IsNaN(achieved) && !math.IsInf(achieved, 0) {
			diff := achieved - target
			return Result{
				Point:      point,
				Recipe:     o.space.Recipe(point),
				Achieved:   achieved,
				Objective:  diff * diff,
				Iterations: iterations,
				Converged:  result.Status != optimize.IterationLimit,
			}, nil
		}
	}

	return o.gridSearch(model, target)
}

// usableDescent extracts a feasible finite point from a descent result
func (o *Optimizer) usableDescent(result *optimize.Result, err error) ([]float64, int, bool) {
	if err != nil || result == nil || len(result.Location.X) != len(o.space) {
		return nil, 0, false
	}
	point := o.space.Clamp(o.fromLatent(result.Location.X))
	for _, v := range point {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, false
		}
	}
	return point, result.Stats.MajorIterations, true
}

// gridSearch scans a fixed lattice over the box and keeps the best point.
// Ties keep the earliest lattice point, so the scan is order stable.
func (o *Optimizer) gridSearch(model ports.SurrogateModel, target float64) (Result, error) {
	dims := len(o.space)
	idx := make([]int, dims)

	best := Result{Objective: math.Inf(1), UsedFallback: true}
	found := false
	var lastErr error

	for {
		point := make([]float64, dims)
		for d, b := range o.space {
			point[d] = b.Low + (b.High-b.Low)*float64(idx[d])/float64(o.gridPoints-1)
		}

		recipe := o.space.Recipe(point)
		predicted, err := model.Predict(recipe)
		if err != nil {
			lastErr = err
		} else if !math.IsNaN(predicted) && !math.IsInf(predicted, 0) {
			diff := predicted - target
			if obj := diff * diff; obj < best.Objective {
				best.Point = point
				best.Recipe = recipe
				best.Achieved = predicted
				best.Objective = obj
				found = true
			}
		}

		// Odometer increment over the lattice
		d := dims - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < o.gridPoints {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			break
		}
	}

	if !found {
		if lastErr != nil {
			return Result{}, fmt.Errorf("%w: model %s: %v", core.ErrSurrogateFailure, model.Ref(), lastErr)
		}
		return Result{}, fmt.Errorf("%w: model %s produced no finite prediction", core.ErrSurrogateFailure, model.Ref())
	}
	return best, nil
}

// fromLatent maps an unconstrained latent vector into the box
func (o *Optimizer) fromLatent(z []float64) []float64 {
	x := make([]float64, len(o.space))
	for i, b := range o.space {
		x[i] = b.Low + (b.High-b.Low)*sigmoid(z[i])
	}
	return x
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

package optimize

import (
	"errors"
	"math"
	"testing"

	"fabflow/domain/core"
	"fabflow/domain/process"
)

// surfaceModel predicts thickness = time * (4 + pressure), the canonical
// deposition response surface used across the engine's fixtures
type surfaceModel struct{}

func (surfaceModel) Ref() core.ModelRef { return "cvd_surface" }

func (surfaceModel) Predict(r *process.RecipeParameters) (float64, error) {
	timeS, _ := r.Get(process.ParamTimeS)
	pressure, _ := r.Get(process.ParamPressureTorr)
	return timeS * (4 + pressure), nil
}

// brokenModel always fails to evaluate
type brokenModel struct{}

func (brokenModel) Ref() core.ModelRef { return "broken" }

func (brokenModel) Predict(*process.RecipeParameters) (float64, error) {
	return 0, errors.New("coefficient file corrupt")
}

// nanModel never produces a finite prediction
type nanModel struct{}

func (nanModel) Ref() core.ModelRef { return "nan" }

func (nanModel) Predict(*process.RecipeParameters) (float64, error) {
	return math.NaN(), nil
}

// TestOptimizeReachesTarget tests that a reachable target is hit closely
func TestOptimizeReachesTarget(t *testing.T) {
	opt := New(process.DefaultSpace(), 0, 0)

	result, err := opt.Optimize(surfaceModel{}, 200)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if math.Abs(result.Achieved-200) > 0.5 {
		t.Errorf("Expected achieved metric near 200, got %.4f", result.Achieved)
	}
	if !opt.Space().Contains(result.Point) {
		t.Errorf("Result point %v escaped the parameter box", result.Point)
	}

	timeS, ok := result.Recipe.Get(process.ParamTimeS)
	if !ok {
		t.Fatal("Recipe missing time_s")
	}
	pressure, ok := result.Recipe.Get(process.ParamPressureTorr)
	if !ok {
		t.Fatal("Recipe missing pressure_torr")
	}
	if timeS < 5 || timeS > 30 {
		t.Errorf("time_s %.4f outside [5,30]", timeS)
	}
	if pressure < 0.5 || pressure > 3.0 {
		t.Errorf("pressure_torr %.4f outside [0.5,3.0]", pressure)
	}
}

// TestOptimizeUnreachableTargetStaysBounded tests saturation at the box edge
// when the target exceeds anything the surface can produce
func TestOptimizeUnreachableTargetStaysBounded(t *testing.T) {
	opt := New(process.DefaultSpace(), 0, 0)

	// Max of the surface inside the box is 30*(4+3) = 210
	result, err := opt.Optimize(surfaceModel{}, 10000)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if !opt.Space().Contains(result.Point) {
		t.Errorf("Result point %v escaped the parameter box", result.Point)
	}
	if result.Achieved > 210.0001 {
		t.Errorf("Achieved %.4f exceeds the surface maximum inside the box", result.Achieved)
	}
	if result.Achieved < 190 {
		t.Errorf("Expected saturation near the box edge, achieved only %.4f", result.Achieved)
	}
}

// TestOptimizeDeterministic tests that repeated runs return identical results
func TestOptimizeDeterministic(t *testing.T) {
	opt := New(process.DefaultSpace(), 0, 0)

	first, err := opt.Optimize(surfaceModel{}, 150)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := opt.Optimize(surfaceModel{}, 150)
		if err != nil {
			t.Fatalf("Optimize failed on repeat %d: %v", i, err)
		}
		for d := range first.Point {
			if first.Point[d] != again.Point[d] {
				t.Fatalf("Repeat %d diverged in dimension %d: %v vs %v", i, d, first.Point, again.Point)
			}
		}
		if first.Achieved != again.Achieved {
			t.Fatalf("Repeat %d achieved %.10f, first achieved %.10f", i, again.Achieved, first.Achieved)
		}
	}
}

// TestGridSearchFindsBestLatticePoint tests the fallback directly
func TestGridSearchFindsBestLatticePoint(t *testing.T) {
	opt := New(process.DefaultSpace(), 1, 7)

	result, err := opt.gridSearch(surfaceModel{}, 100)
	if err != nil {
		t.Fatalf("gridSearch failed: %v", err)
	}

	if !result.UsedFallback {
		t.Error("gridSearch result should be marked as fallback")
	}
	if !opt.Space().Contains(result.Point) {
		t.Errorf("Grid point %v escaped the parameter box", result.Point)
	}

	// Verify no lattice point does better than the reported objective
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			timeS := 5 + (30-5.0)*float64(i)/6
			pressure := 0.5 + (3.0-0.5)*float64(j)/6
			predicted := timeS * (4 + pressure)
			diff := predicted - 100
			if diff*diff < result.Objective-1e-9 {
				t.Fatalf("Lattice point (%.3f, %.3f) beats reported best objective %.6f", timeS, pressure, result.Objective)
			}
		}
	}
}

// TestOptimizeSurrogateFailure tests that an unevaluable model is a fatal
// surrogate error, not a silent fallback
func TestOptimizeSurrogateFailure(t *testing.T) {
	opt := New(process.DefaultSpace(), 0, 0)

	_, err := opt.Optimize(brokenModel{}, 200)
	if !errors.Is(err, core.ErrSurrogateFailure) {
		t.Fatalf("Expected ErrSurrogateFailure, got %v", err)
	}

	_, err = opt.Optimize(nanModel{}, 200)
	if !errors.Is(err, core.ErrSurrogateFailure) {
		t.Fatalf("Expected ErrSurrogateFailure for non-finite model, got %v", err)
	}
}

// TestOptimizeInvalidSpace tests configuration validation
func TestOptimizeInvalidSpace(t *testing.T) {
	bad := process.Space{{Name: "time_s", Low: 30, High: 5}}
	opt := New(bad, 0, 0)

	if _, err := opt.Optimize(surfaceModel{}, 200); err == nil {
		t.Fatal("Expected error for inverted bounds")
	}
}

package process

import (
	"fmt"

	"fabflow/domain/core"
)

// Bound is one named box constraint on a recipe parameter
type Bound struct {
	Name string  `json:"name" yaml:"name"`
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Validate checks that the bound is well-formed
func (b Bound) Validate() error {
	if b.Name == "" {
		return core.NewValidationError("bound", "name cannot be empty")
	}
	if b.Low >= b.High {
		return core.NewValidationError("bound", fmt.Sprintf("%s: low %.4f >= high %.4f", b.Name, b.Low, b.High))
	}
	return nil
}

// Midpoint is the optimizer seed point for this dimension
func (b Bound) Midpoint() float64 {
	return b.Low + (b.High-b.Low)/2
}

// Clamp forces v into [Low, High]
func (b Bound) Clamp(v float64) float64 {
	if v < b.Low {
		return b.Low
	}
	if v > b.High {
		return b.High
	}
	return v
}

// Contains reports whether v lies within the bound, inclusive
func (b Bound) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// Space is an ordered parameter space. Dimension order is fixed by
// configuration order and drives recipe key order on the wire.
type Space []Bound

// DefaultSpace returns the canonical two-dimensional recipe space
func DefaultSpace() Space {
	return Space{
		{Name: ParamTimeS, Low: 5, High: 30},
		{Name: ParamPressureTorr, Low: 0.5, High: 3.0},
	}
}

// Validate checks every bound and rejects duplicate names
func (s Space) Validate() error {
	if len(s) == 0 {
		return core.NewValidationError("parameter_space", "must define at least one bound")
	}
	seen := make(map[string]bool, len(s))
	for _, b := range s {
		if err := b.Validate(); err != nil {
			return err
		}
		if seen[b.Name] {
			return core.NewValidationError("parameter_space", "duplicate bound "+b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

// Names returns dimension names in space order
func (s Space) Names() []string {
	names := make([]string, len(s))
	for i, b := range s {
		names[i] = b.Name
	}
	return names
}

// Midpoint returns the seed point in space order
func (s Space) Midpoint() []float64 {
	mid := make([]float64, len(s))
	for i, b := range s {
		mid[i] = b.Midpoint()
	}
	return mid
}

// Clamp forces a point into the box, dimension by dimension
func (s Space) Clamp(point []float64) []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		if i < len(point) {
			out[i] = b.Clamp(point[i])
		} else {
			out[i] = b.Midpoint()
		}
	}
	return out
}

// Contains reports whether the point lies inside the box
func (s Space) Contains(point []float64) bool {
	if len(point) != len(s) {
		return false
	}
	for i, b := range s {
		if !b.Contains(point[i]) {
			return false
		}
	}
	return true
}

// Recipe materializes a point into recipe parameters, in space order
func (s Space) Recipe(point []float64) *RecipeParameters {
	r := NewRecipeParameters()
	for i, b := range s {
		v := b.Midpoint()
		if i < len(point) {
			v = point[i]
		}
		r.Set(b.Name, v)
	}
	return r
}

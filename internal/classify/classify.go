// Package classify infers the process category a structural change requires.
// The rule table is ordered; the first matching rule wins and the function
// is total, descriptors no rule matches classify as UNKNOWN.
package classify

import (
	"fabflow/domain/core"
	"fabflow/domain/process"
)

// Thresholds hold the aspect-ratio cut points between process sub-types.
// They are operator configuration, not constants: fabs tune them per node.
type Thresholds struct {
	// ConformalAspectRatio is the AR above which an addition needs a
	// conformal deposition. Strict: AR equal to the threshold is planar.
	ConformalAspectRatio float64 `json:"conformal_aspect_ratio" yaml:"conformal_aspect_ratio"`

	// AnisotropicAspectRatio is the AR below which a removal needs a
	// directional etch. Strict: AR equal to the threshold is isotropic.
	AnisotropicAspectRatio float64 `json:"anisotropic_aspect_ratio" yaml:"anisotropic_aspect_ratio"`
}

// DefaultThresholds returns the canonical cut points
func DefaultThresholds() Thresholds {
	return Thresholds{
		ConformalAspectRatio:   5.0,
		AnisotropicAspectRatio: 0.5,
	}
}

// Validate rejects thresholds that would invert the rule table
func (t Thresholds) Validate() error {
	if t.ConformalAspectRatio <= 0 {
		return errNonPositive("conformal_aspect_ratio")
	}
	if t.AnisotropicAspectRatio <= 0 {
		return errNonPositive("anisotropic_aspect_ratio")
	}
	return nil
}

// Classify runs the descriptor through the rule table:
//
//	1. ADDITION with AR above the conformal threshold -> DEPOSITION/CONFORMAL
//	2. ADDITION                                       -> DEPOSITION/PLANAR
//	3. REMOVAL with AR below the anisotropic threshold -> ETCH/ANISOTROPIC
//	4. REMOVAL                                        -> ETCH/ISOTROPIC
//	5. patterning flag set                            -> LITHOGRAPHY
//	6. otherwise                                      -> UNKNOWN
func Classify(d process.ChangeDescriptor, t Thresholds) process.Classification {
	switch d.Polarity {
	case process.PolarityAddition:
		if d.AspectRatio > t.ConformalAspectRatio {
			return process.Classification{Category: process.CategoryDeposition, SubType: process.SubTypeConformal}
		}
		return process.Classification{Category: process.CategoryDeposition, SubType: process.SubTypePlanar}
	case process.PolarityRemoval:
		if d.AspectRatio < t.AnisotropicAspectRatio {
			return process.Classification{Category: process.CategoryEtch, SubType: process.SubTypeAnisotropic}
		}
		return process.Classification{Category: process.CategoryEtch, SubType: process.SubTypeIsotropic}
	}

	if d.Patterning {
		return process.Classification{Category: process.CategoryLithography}
	}

	return process.Classification{Category: process.CategoryUnknown}
}

func errNonPositive(field string) error {
	return core.NewValidationError(field, "must be > 0")
}

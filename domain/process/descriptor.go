package process

import (
	"fmt"

	"fabflow/domain/core"
)

// Polarity indicates the structural direction of a change
type Polarity string

const (
	PolarityAddition Polarity = "ADDITION"
	PolarityRemoval  Polarity = "REMOVAL"
	// PolarityNone marks patterning changes, which transfer no material.
	PolarityNone Polarity = ""
)

// SupportedWaferSizes lists the wafer diameters (mm) the engine plans for
var SupportedWaferSizes = []int{200, 300, 450}

// ChangeDescriptor describes one structural difference between consecutive
// layout cross-sections. Descriptors arrive ready-made from upstream
// differencing; the engine never derives them from geometry.
type ChangeDescriptor struct {
	OrderIndex        int            `json:"order_index"`
	Polarity          Polarity       `json:"polarity,omitempty"`
	PrimaryMaterial   string         `json:"primary_material,omitempty"`
	AffectedMaterials []string       `json:"affected_materials,omitempty"`
	AspectRatio       float64        `json:"aspect_ratio"`
	ConformalityScore float64        `json:"conformality_score"`
	TargetMetric      float64        `json:"target_metric,omitempty"`
	WaferSizeMM       int            `json:"wafer_size_mm"`
	Patterning        bool           `json:"patterning,omitempty"`
	LayoutRef         core.LayoutRef `json:"layout_ref,omitempty"`
}

// Validate checks one descriptor in isolation. Sequence-level checks
// (contiguity) belong to ValidateSequence.
func (d ChangeDescriptor) Validate() error {
	if d.OrderIndex < 0 {
		return core.NewDescriptorError(d.OrderIndex, "order_index must be >= 0")
	}
	if d.AspectRatio < 0 {
		return core.NewDescriptorError(d.OrderIndex, "aspect_ratio must be >= 0")
	}
	if d.ConformalityScore < 0 || d.ConformalityScore > 1 {
		return core.NewDescriptorError(d.OrderIndex, fmt.Sprintf("conformality_score %.3f outside [0,1]", d.ConformalityScore))
	}
	if !waferSizeSupported(d.WaferSizeMM) {
		return core.NewDescriptorError(d.OrderIndex, fmt.Sprintf("wafer size %dmm not supported", d.WaferSizeMM))
	}

	if d.Patterning {
		if d.LayoutRef == "" {
			return fmt.Errorf("%w: order_index %d", core.ErrMissingLayout, d.OrderIndex)
		}
		if d.Polarity != PolarityNone {
			return core.NewDescriptorError(d.OrderIndex, "patterning change must not carry a polarity")
		}
		return nil
	}

	switch d.Polarity {
	case PolarityAddition, PolarityRemoval:
	case PolarityNone:
		// No polarity and no patterning flag still classifies (to UNKNOWN),
		// so it is not malformed. Target and material checks only apply when
		// a polarity is present.
		return nil
	default:
		return core.NewDescriptorError(d.OrderIndex, fmt.Sprintf("unknown polarity %q", d.Polarity))
	}

	if d.PrimaryMaterial == "" {
		return core.NewDescriptorError(d.OrderIndex, "primary_material required for material changes")
	}
	if d.TargetMetric <= 0 {
		return core.NewDescriptorError(d.OrderIndex, fmt.Sprintf("target_metric %.3f must be > 0", d.TargetMetric))
	}
	return nil
}

// Materials returns the affected material set with the primary material
// guaranteed to be included. Order is preserved, primary first when absent.
func (d ChangeDescriptor) Materials() []string {
	if d.PrimaryMaterial == "" {
		return append([]string(nil), d.AffectedMaterials...)
	}
	for _, m := range d.AffectedMaterials {
		if m == d.PrimaryMaterial {
			return append([]string(nil), d.AffectedMaterials...)
		}
	}
	out := make([]string, 0, len(d.AffectedMaterials)+1)
	out = append(out, d.PrimaryMaterial)
	out = append(out, d.AffectedMaterials...)
	return out
}

// ValidateSequence checks a whole descriptor sequence: every descriptor valid
// on its own, order indexes 0-based, contiguous, and strictly increasing, and
// one wafer size across the flow.
func ValidateSequence(descriptors []ChangeDescriptor) error {
	for i, d := range descriptors {
		if err := d.Validate(); err != nil {
			return err
		}
		if d.OrderIndex != i {
			return fmt.Errorf("%w: position %d has order_index %d", core.ErrSequenceGap, i, d.OrderIndex)
		}
		if d.WaferSizeMM != descriptors[0].WaferSizeMM {
			return core.NewDescriptorError(d.OrderIndex,
				fmt.Sprintf("wafer size %dmm differs from flow wafer size %dmm", d.WaferSizeMM, descriptors[0].WaferSizeMM))
		}
	}
	return nil
}

func waferSizeSupported(mm int) bool {
	for _, s := range SupportedWaferSizes {
		if s == mm {
			return true
		}
	}
	return false
}

package ports

import (
	"context"

	"fabflow/domain/core"
)

// MaskServicePort obtains photomask references for lithography steps from
// the mask-extraction collaborator
type MaskServicePort interface {
	// ExtractMask resolves a layout reference into a mask file reference.
	// Transport failures are fatal to the flow, never a per-step skip.
	ExtractMask(ctx context.Context, req MaskRequest) (MaskRef, error)
}

// MaskRequest identifies the layout region to extract
type MaskRequest struct {
	LayoutRef core.LayoutRef // layout snapshot backing the patterning change
	StepID    core.StepID    // e.g. LITHO_STEP_1, names the mask file
	Layer     MaskLayer      // GDS layer to extract
}

// MaskLayer addresses a GDS layer/datatype pair
type MaskLayer struct {
	Layer    int `json:"layer" yaml:"layer"`
	Datatype int `json:"datatype" yaml:"datatype"`
}

// MaskRef points at an extracted mask file
type MaskRef struct {
	Path string `json:"path"`
}

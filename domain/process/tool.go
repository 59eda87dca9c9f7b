package process

import (
	"fmt"

	"fabflow/domain/core"
)

// ToolStatus reflects the operational state of a fab tool
type ToolStatus string

const (
	ToolAvailable   ToolStatus = "AVAILABLE"
	ToolDown        ToolStatus = "DOWN"
	ToolMaintenance ToolStatus = "MAINTENANCE"
)

// Valid reports whether the status is one of the defined values
func (s ToolStatus) Valid() bool {
	switch s {
	case ToolAvailable, ToolDown, ToolMaintenance:
		return true
	}
	return false
}

// ToolRecord is a catalog entry for one fab tool
type ToolRecord struct {
	ToolID                core.ToolID   `json:"tool_id" yaml:"tool_id"`
	Status                ToolStatus    `json:"status" yaml:"status"`
	WaferSizeMM           int           `json:"wafer_size_mm" yaml:"wafer_size_mm"`
	CapableCategories     []Category    `json:"capable_categories" yaml:"capable_categories"`
	IncompatibleMaterials []string      `json:"incompatible_materials,omitempty" yaml:"incompatible_materials,omitempty"`
	SurrogateModelRef     core.ModelRef `json:"surrogate_model_ref,omitempty" yaml:"surrogate_model_ref,omitempty"`
}

// Validate checks a catalog record
func (t ToolRecord) Validate() error {
	if t.ToolID == "" {
		return core.NewValidationError("tool_id", "cannot be empty")
	}
	if !t.Status.Valid() {
		return core.NewValidationError("status", fmt.Sprintf("unknown status %q for tool %s", t.Status, t.ToolID))
	}
	if t.WaferSizeMM <= 0 {
		return core.NewValidationError("wafer_size_mm", fmt.Sprintf("must be > 0 for tool %s", t.ToolID))
	}
	if len(t.CapableCategories) == 0 {
		return core.NewValidationError("capable_categories", fmt.Sprintf("tool %s has no capabilities", t.ToolID))
	}
	for _, c := range t.CapableCategories {
		if !c.Valid() || c == CategoryUnknown {
			return core.NewValidationError("capable_categories", fmt.Sprintf("tool %s lists invalid category %q", t.ToolID, c))
		}
	}
	return nil
}

// CanProcess reports whether the tool is capable of the category
func (t ToolRecord) CanProcess(c Category) bool {
	for _, cap := range t.CapableCategories {
		if cap == c {
			return true
		}
	}
	return false
}

// ConflictsWith returns the first listed material the tool cannot touch, or
// empty when none conflict.
func (t ToolRecord) ConflictsWith(materials []string) string {
	for _, inc := range t.IncompatibleMaterials {
		for _, m := range materials {
			if inc == m {
				return m
			}
		}
	}
	return ""
}

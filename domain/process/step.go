package process

import (
	"fabflow/domain/core"
)

// ProcessStep is one executable unit of a process flow. StepNumber is the
// dense 1-based position among emitted steps, assigned at flow completion;
// SourceOrderIndex points back at the descriptor that produced the step.
type ProcessStep struct {
	StepNumber       int               `json:"step_number"`
	ProcessType      Category          `json:"process_type"`
	SubType          SubType           `json:"sub_type,omitempty"`
	ToolID           core.ToolID       `json:"tool_id"`
	Recipe           *RecipeParameters `json:"recipe_parameters"`
	SourceOrderIndex int               `json:"source_order_index"`
}

// ProcessFlow is the ordered output of planning one descriptor sequence
type ProcessFlow struct {
	FlowID      core.FlowID    `json:"flow_id"`
	WaferSizeMM int            `json:"wafer_size_mm"`
	Steps       []ProcessStep  `json:"steps"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// Renumber assigns dense 1-based step numbers in emission order. Skipped
// descriptors leave no gaps.
func (f *ProcessFlow) Renumber() {
	for i := range f.Steps {
		f.Steps[i].StepNumber = i + 1
	}
}

// StepCount returns the number of emitted steps
func (f *ProcessFlow) StepCount() int {
	return len(f.Steps)
}

// WaferState tracks what planning believes is on the wafer: its size and
// the set of materials present. Material order is insertion order, which
// keeps downstream compatibility checks deterministic.
type WaferState struct {
	SizeMM    int      `json:"size_mm"`
	Materials []string `json:"materials"`
}

// NewWaferState seeds the state with the bare substrate
func NewWaferState(sizeMM int) *WaferState {
	return &WaferState{
		SizeMM:    sizeMM,
		Materials: []string{"silicon"},
	}
}

// AddMaterial records a deposited material, deduplicating
func (w *WaferState) AddMaterial(m string) {
	if m == "" {
		return
	}
	for _, have := range w.Materials {
		if have == m {
			return
		}
	}
	w.Materials = append(w.Materials, m)
}

// Has reports whether the material is present on the wafer
func (w *WaferState) Has(m string) bool {
	for _, have := range w.Materials {
		if have == m {
			return true
		}
	}
	return false
}

// Union returns the wafer materials merged with extra materials, deduplicated
// and order preserving (wafer first, then extras).
func (w *WaferState) Union(extra []string) []string {
	out := append([]string(nil), w.Materials...)
	for _, m := range extra {
		found := false
		for _, have := range out {
			if have == m {
				found = true
				break
			}
		}
		if !found {
			out = append(out, m)
		}
	}
	return out
}

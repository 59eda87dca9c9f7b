package flow

import (
	"fabflow/domain/process"
)

// OutcomeKind says what planning did with one descriptor
type OutcomeKind string

const (
	OutcomeEmitted OutcomeKind = "EMITTED"
	OutcomeSkipped OutcomeKind = "SKIPPED"
)

// Diagnostic records why a descriptor was skipped or why the flow failed.
// Detail is free text for operators; Reason is a stable machine key.
type Diagnostic struct {
	OrderIndex int    `json:"order_index"`
	Stage      Stage  `json:"stage"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

// StepOutcome is the per-descriptor planning verdict. StepNumber is set only
// for emitted outcomes, after dense renumbering.
type StepOutcome struct {
	OrderIndex int         `json:"order_index"`
	Kind       OutcomeKind `json:"kind"`
	StepNumber int         `json:"step_number,omitempty"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// Summary aggregates a finished plan
type Summary struct {
	Descriptors   int            `json:"descriptors"`
	Emitted       int            `json:"emitted"`
	Skipped       int            `json:"skipped"`
	SkipsByReason map[string]int `json:"skips_by_reason,omitempty"`
}

// PlanResult is the complete output of planning one flow. On FLOW_FAILED the
// Flow field is nil (no partial flow leaves the engine) while Diagnostics
// and Error describe what happened.
type PlanResult struct {
	Flow        *process.ProcessFlow `json:"flow,omitempty"`
	Outcomes    []StepOutcome        `json:"outcomes"`
	Diagnostics []Diagnostic         `json:"diagnostics,omitempty"`
	Manifest    *PlanManifest        `json:"manifest,omitempty"`
	State       State                `json:"state"`
	Summary     Summary              `json:"summary"`
	Error       string               `json:"error,omitempty"`
}

// NewPlanResult starts an empty result in INIT
func NewPlanResult(descriptors int) *PlanResult {
	return &PlanResult{
		State: StateInit,
		Summary: Summary{
			Descriptors:   descriptors,
			SkipsByReason: make(map[string]int),
		},
	}
}

// RecordEmit marks a descriptor as emitted
func (r *PlanResult) RecordEmit(orderIndex int) {
	r.Outcomes = append(r.Outcomes, StepOutcome{
		OrderIndex: orderIndex,
		Kind:       OutcomeEmitted,
	})
	r.Summary.Emitted++
}

// RecordSkip marks a descriptor as skipped and keeps its diagnostic
func (r *PlanResult) RecordSkip(d Diagnostic) {
	diag := d
	r.Outcomes = append(r.Outcomes, StepOutcome{
		OrderIndex: d.OrderIndex,
		Kind:       OutcomeSkipped,
		Diagnostic: &diag,
	})
	r.Diagnostics = append(r.Diagnostics, d)
	r.Summary.Skipped++
	r.Summary.SkipsByReason[d.Reason]++
}

// Finalize numbers emitted outcomes against the renumbered flow and moves
// the result to DONE.
func (r *PlanResult) Finalize(f *process.ProcessFlow) {
	next := 1
	for i := range r.Outcomes {
		if r.Outcomes[i].Kind == OutcomeEmitted {
			r.Outcomes[i].StepNumber = next
			next++
		}
	}
	r.Flow = f
	r.State = StateDone
}

// Fail records a fatal error and moves the result to FLOW_FAILED. Any steps
// planned so far are discarded.
func (r *PlanResult) Fail(d Diagnostic, err error) {
	r.Diagnostics = append(r.Diagnostics, d)
	r.Flow = nil
	r.State = StateFailed
	if err != nil {
		r.Error = err.Error()
	}
}

// Succeeded reports whether the flow reached DONE
func (r *PlanResult) Succeeded() bool {
	return r.State == StateDone
}

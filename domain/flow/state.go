package flow

// State is the planning state machine position. Per-descriptor states cycle
// CLASSIFYING -> SELECTING_TOOL -> OPTIMIZING -> STEP_EMITTED | STEP_SKIPPED;
// DONE and FLOW_FAILED are terminal.
type State string

const (
	StateInit          State = "INIT"
	StateClassifying   State = "CLASSIFYING"
	StateSelectingTool State = "SELECTING_TOOL"
	StateOptimizing    State = "OPTIMIZING"
	StateStepEmitted   State = "STEP_EMITTED"
	StateStepSkipped   State = "STEP_SKIPPED"
	StateDone          State = "DONE"
	StateFailed        State = "FLOW_FAILED"
)

// Terminal reports whether the state ends the flow
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Stage names the pipeline stage a diagnostic originates from
type Stage string

const (
	StageValidate Stage = "validate"
	StageClassify Stage = "classify"
	StageSelect   Stage = "select_tool"
	StageOptimize Stage = "optimize"
	StageMask     Stage = "mask"
	StageEmit     Stage = "emit"
)

// Skip reasons recorded in diagnostics and summary counters
const (
	ReasonUnknownProcess   = "unknown_process"
	ReasonNoCompatibleTool = "no_compatible_tool"
)

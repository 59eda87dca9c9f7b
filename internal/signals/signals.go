// Package signals defines the engine's capitan event vocabulary. Planning
// emits these regardless of listeners; tests and operators hook what they
// need.
package signals

import "github.com/zoobzio/capitan"

// Signal definitions for flow planning events.
// Signals follow the pattern: fabflow.<entity>.<event>.
var (
	// Flow lifecycle signals.
	FlowStarted = capitan.NewSignal(
		"fabflow.flow.started",
		"Planning began for a descriptor sequence",
	)
	FlowCompleted = capitan.NewSignal(
		"fabflow.flow.completed",
		"Flow reached DONE with a renumbered step list",
	)
	FlowFailed = capitan.NewSignal(
		"fabflow.flow.failed",
		"Flow aborted with no partial output",
	)

	// Per-descriptor planning signals.
	StepClassified = capitan.NewSignal(
		"fabflow.step.classified",
		"Descriptor classified by the rule table",
	)
	ToolSelected = capitan.NewSignal(
		"fabflow.step.tool_selected",
		"Tool chosen for the classified step",
	)
	StepOptimized = capitan.NewSignal(
		"fabflow.step.optimized",
		"Recipe parameters tuned against the surrogate model",
	)
	StepEmitted = capitan.NewSignal(
		"fabflow.step.emitted",
		"Process step appended to the flow",
	)
	StepSkipped = capitan.NewSignal(
		"fabflow.step.skipped",
		"Descriptor skipped with a recorded diagnostic",
	)

	// Mask collaborator signals.
	MaskRequested = capitan.NewSignal(
		"fabflow.mask.requested",
		"Mask extraction requested for a patterning step",
	)
	MaskResolved = capitan.NewSignal(
		"fabflow.mask.resolved",
		"Mask reference obtained from the collaborator",
	)
)

// Field keys for flow planning event data.
var (
	// Flow identity.
	FieldFlowID      = capitan.NewStringKey("flow_id")
	FieldWaferSize   = capitan.NewIntKey("wafer_size_mm")
	FieldDescriptors = capitan.NewIntKey("descriptors")

	// Descriptor position and classification.
	FieldOrderIndex = capitan.NewIntKey("order_index")
	FieldCategory   = capitan.NewStringKey("category")
	FieldSubType    = capitan.NewStringKey("sub_type")

	// Selection and optimization.
	FieldToolID     = capitan.NewStringKey("tool_id")
	FieldModelRef   = capitan.NewStringKey("model_ref")
	FieldTarget     = capitan.NewFloat32Key("target_metric")
	FieldAchieved   = capitan.NewFloat32Key("achieved_metric")
	FieldIterations = capitan.NewIntKey("iterations")
	FieldSearchMode = capitan.NewStringKey("search_mode") // descent | grid

	// Skip and failure metadata.
	FieldStage  = capitan.NewStringKey("stage")
	FieldReason = capitan.NewStringKey("reason")

	// Output accounting.
	FieldEmitted = capitan.NewIntKey("emitted")
	FieldSkipped = capitan.NewIntKey("skipped")

	// Mask metadata.
	FieldLayoutRef = capitan.NewStringKey("layout_ref")
	FieldMaskPath  = capitan.NewStringKey("mask_path")

	// Timing.
	FieldPlanDuration = capitan.NewDurationKey("plan_duration")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)

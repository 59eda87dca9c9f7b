package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"

	"fabflow/domain/core"
	"fabflow/domain/flow"
	"fabflow/domain/process"
	"fabflow/internal/classify"
	"fabflow/internal/config"
	"fabflow/internal/optimize"
	"fabflow/internal/selector"
	"fabflow/internal/signals"
	"fabflow/ports"
)

// Planner turns an ordered descriptor sequence into a process flow. One Plan
// call is one flow; descriptors are processed strictly in order_index order
// on a single goroutine, which is what makes the tool load tie-break and the
// wafer material accumulation deterministic.
type Planner struct {
	catalog   ports.ToolCatalogPort
	masks     ports.MaskServicePort
	resolver  ports.ModelResolverPort
	planning  config.PlanningConfig
	selector  *selector.Selector
	optimizer *optimize.Optimizer
	version   string
}

// PlanRequest defines one planning run
type PlanRequest struct {
	FlowID      core.FlowID // optional, generated if empty
	Descriptors []process.ChangeDescriptor
}

// NewPlanner wires a planner from its collaborator ports and planning config
func NewPlanner(
	catalog ports.ToolCatalogPort,
	masks ports.MaskServicePort,
	resolver ports.ModelResolverPort,
	planning config.PlanningConfig,
	queryBudget core.QueryBudget,
	version string,
) *Planner {
	return &Planner{
		catalog:   catalog,
		masks:     masks,
		resolver:  resolver,
		planning:  planning,
		selector:  selector.New(catalog, queryBudget),
		optimizer: optimize.New(planning.Space, planning.IterationBudget, planning.GridPoints),
		version:   version,
	}
}

// Plan runs the full CLASSIFY -> SELECT -> OPTIMIZE -> EMIT pipeline over the
// request. Recoverable step outcomes become diagnostics; fatal conditions
// abort with FLOW_FAILED and no partial flow. The returned result is always
// non-nil, the error mirrors its failure state.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*flow.PlanResult, error) {
	start := time.Now()

	flowID := req.FlowID
	if flowID == "" {
		flowID = core.FlowID(core.NewID())
	}

	result := flow.NewPlanResult(len(req.Descriptors))

	if err := process.ValidateSequence(req.Descriptors); err != nil {
		p.fail(ctx, result, flowID, flow.Diagnostic{
			Stage:  flow.StageValidate,
			Reason: "malformed_sequence",
			Detail: err.Error(),
		}, err)
		return result, err
	}

	waferSize := 0
	if len(req.Descriptors) > 0 {
		waferSize = req.Descriptors[0].WaferSizeMM
	}

	manifest, err := p.buildManifest(ctx, flowID, req.Descriptors)
	if err != nil {
		p.fail(ctx, result, flowID, flow.Diagnostic{
			Stage:  flow.StageValidate,
			Reason: "catalog_unavailable",
			Detail: err.Error(),
		}, err)
		return result, err
	}
	result.Manifest = manifest

	capitan.Emit(ctx, signals.FlowStarted,
		signals.FieldFlowID.Field(flowID.String()),
		signals.FieldWaferSize.Field(waferSize),
		signals.FieldDescriptors.Field(len(req.Descriptors)),
	)

	flowRecord := &process.ProcessFlow{
		FlowID:      flowID,
		WaferSizeMM: waferSize,
		CreatedAt:   core.Now(),
	}
	wafer := process.NewWaferState(waferSize)
	loads := make(map[core.ToolID]int)
	lithoOrdinal := 0

	for _, d := range req.Descriptors {
		if err := ctx.Err(); err != nil {
			p.fail(ctx, result, flowID, flow.Diagnostic{
				OrderIndex: d.OrderIndex,
				Stage:      flow.StageClassify,
				Reason:     "context_canceled",
				Detail:     err.Error(),
			}, err)
			return result, err
		}

		result.State = flow.StateClassifying
		cls := classify.Classify(d, p.planning.Thresholds)
		capitan.Emit(ctx, signals.StepClassified,
			signals.FieldFlowID.Field(flowID.String()),
			signals.FieldOrderIndex.Field(d.OrderIndex),
			signals.FieldCategory.Field(string(cls.Category)),
			signals.FieldSubType.Field(string(cls.SubType)),
		)

		if cls.IsUnknown() {
			p.skip(ctx, result, flowID, flow.Diagnostic{
				OrderIndex: d.OrderIndex,
				Stage:      flow.StageClassify,
				Reason:     flow.ReasonUnknownProcess,
				Detail:     fmt.Sprintf("%v: descriptor matched no rule", core.ErrUnknownProcess),
			})
			continue
		}

		result.State = flow.StateSelectingTool
		materials := wafer.Union(d.Materials())
		tool, err := p.selector.Select(ctx, selector.Request{
			Classification: cls,
			WaferSizeMM:    waferSize,
			Materials:      materials,
			Load:           func(id core.ToolID) int { return loads[id] },
		})
		if err != nil {
			if errors.Is(err, core.ErrNoCompatibleTool) {
				p.skip(ctx, result, flowID, flow.Diagnostic{
					OrderIndex: d.OrderIndex,
					Stage:      flow.StageSelect,
					Reason:     flow.ReasonNoCompatibleTool,
					Detail:     err.Error(),
				})
				continue
			}
			p.fail(ctx, result, flowID, flow.Diagnostic{
				OrderIndex: d.OrderIndex,
				Stage:      flow.StageSelect,
				Reason:     "catalog_unavailable",
				Detail:     err.Error(),
			}, err)
			return result, err
		}
		capitan.Emit(ctx, signals.ToolSelected,
			signals.FieldFlowID.Field(flowID.String()),
			signals.FieldOrderIndex.Field(d.OrderIndex),
			signals.FieldToolID.Field(tool.ToolID.String()),
		)

		var recipe *process.RecipeParameters
		if cls.Category == process.CategoryLithography {
			lithoOrdinal++
			recipe, err = p.lithoRecipe(ctx, flowID, d, lithoOrdinal)
			if err != nil {
				p.fail(ctx, result, flowID, flow.Diagnostic{
					OrderIndex: d.OrderIndex,
					Stage:      flow.StageMask,
					Reason:     "mask_unavailable",
					Detail:     err.Error(),
				}, err)
				return result, err
			}
		} else {
			result.State = flow.StateOptimizing
			recipe, err = p.optimizedRecipe(ctx, flowID, d, tool)
			if err != nil {
				p.fail(ctx, result, flowID, flow.Diagnostic{
					OrderIndex: d.OrderIndex,
					Stage:      flow.StageOptimize,
					Reason:     "optimization_failed",
					Detail:     err.Error(),
				}, err)
				return result, err
			}
		}

		flowRecord.Steps = append(flowRecord.Steps, process.ProcessStep{
			ProcessType:      cls.Category,
			SubType:          cls.SubType,
			ToolID:           tool.ToolID,
			Recipe:           recipe,
			SourceOrderIndex: d.OrderIndex,
		})
		loads[tool.ToolID]++
		if d.Polarity == process.PolarityAddition {
			wafer.AddMaterial(d.PrimaryMaterial)
		}

		result.RecordEmit(d.OrderIndex)
		result.State = flow.StateStepEmitted
		capitan.Emit(ctx, signals.StepEmitted,
			signals.FieldFlowID.Field(flowID.String()),
			signals.FieldOrderIndex.Field(d.OrderIndex),
			signals.FieldToolID.Field(tool.ToolID.String()),
			signals.FieldCategory.Field(string(cls.Category)),
		)
	}

	flowRecord.Renumber()
	result.Finalize(flowRecord)

	capitan.Emit(ctx, signals.FlowCompleted,
		signals.FieldFlowID.Field(flowID.String()),
		signals.FieldEmitted.Field(result.Summary.Emitted),
		signals.FieldSkipped.Field(result.Summary.Skipped),
		signals.FieldPlanDuration.Field(time.Since(start)),
	)
	return result, nil
}

// buildManifest fingerprints the inputs, planning config, and catalog
// snapshot before any planning happens
func (p *Planner) buildManifest(ctx context.Context, flowID core.FlowID, descriptors []process.ChangeDescriptor) (*flow.PlanManifest, error) {
	tools, err := p.catalog.ListTools(ctx)
	if err != nil {
		if !errors.Is(err, core.ErrCatalogUnavailable) {
			err = core.NewCatalogError(err)
		}
		return nil, err
	}
	toolIDs := make([]string, len(tools))
	for i, t := range tools {
		toolIDs[i] = t.ToolID.String()
	}

	return flow.NewPlanManifest(
		flowID,
		flow.ComputeInputHash(descriptors),
		p.planning.Fingerprint(),
		core.ComputeCatalogHash(toolIDs),
		p.version,
	), nil
}

// lithoRecipe assembles the fixed sub-recipes plus the extracted mask
// reference. lithoOrdinal is the 1-based position among patterning steps and
// names the mask file.
func (p *Planner) lithoRecipe(ctx context.Context, flowID core.FlowID, d process.ChangeDescriptor, lithoOrdinal int) (*process.RecipeParameters, error) {
	stepID := core.StepID(fmt.Sprintf("LITHO_STEP_%d", lithoOrdinal))

	capitan.Emit(ctx, signals.MaskRequested,
		signals.FieldFlowID.Field(flowID.String()),
		signals.FieldOrderIndex.Field(d.OrderIndex),
		signals.FieldLayoutRef.Field(d.LayoutRef.String()),
	)

	mask, err := p.masks.ExtractMask(ctx, ports.MaskRequest{
		LayoutRef: d.LayoutRef,
		StepID:    stepID,
		Layer:     p.planning.MaskLayer,
	})
	if err != nil {
		if !errors.Is(err, core.ErrMaskUnavailable) {
			err = core.NewMaskError(err)
		}
		return nil, err
	}

	capitan.Emit(ctx, signals.MaskResolved,
		signals.FieldFlowID.Field(flowID.String()),
		signals.FieldOrderIndex.Field(d.OrderIndex),
		signals.FieldMaskPath.Field(mask.Path),
	)

	return process.NewRecipeParameters().
		SetText(process.ParamResistCoat, p.planning.Litho.ResistCoat).
		SetText(process.ParamExposure, p.planning.Litho.Exposure).
		SetText(process.ParamDevelop, p.planning.Litho.Develop).
		SetText(process.ParamMaskFile, mask.Path), nil
}

// optimizedRecipe resolves the tool's surrogate model and tunes parameters
// against the descriptor target
func (p *Planner) optimizedRecipe(ctx context.Context, flowID core.FlowID, d process.ChangeDescriptor, tool process.ToolRecord) (*process.RecipeParameters, error) {
	if tool.SurrogateModelRef == "" {
		return nil, fmt.Errorf("%w: tool %s has no surrogate model", core.ErrModelUnresolved, tool.ToolID)
	}

	model, err := p.resolver.Resolve(ctx, tool.SurrogateModelRef)
	if err != nil {
		if !errors.Is(err, core.ErrModelUnresolved) {
			err = fmt.Errorf("%w: %s: %v", core.ErrModelUnresolved, tool.SurrogateModelRef, err)
		}
		return nil, err
	}

	tuned, err := p.optimizer.Optimize(model, d.TargetMetric)
	if err != nil {
		return nil, err
	}

	searchMode := "descent"
	if tuned.UsedFallback {
		searchMode = "grid"
	}
	capitan.Emit(ctx, signals.StepOptimized,
		signals.FieldFlowID.Field(flowID.String()),
		signals.FieldOrderIndex.Field(d.OrderIndex),
		signals.FieldModelRef.Field(tool.SurrogateModelRef.String()),
		signals.FieldTarget.Field(float32(d.TargetMetric)),
		signals.FieldAchieved.Field(float32(tuned.Achieved)),
		signals.FieldIterations.Field(tuned.Iterations),
		signals.FieldSearchMode.Field(searchMode),
	)

	recipe := tuned.Recipe.Clone()
	recipe.Set(achievedParam(d.Polarity), tuned.Achieved)
	return recipe, nil
}

// achievedParam picks the reported metric key by polarity: additions report
// thickness, removals report depth
func achievedParam(polarity process.Polarity) string {
	if polarity == process.PolarityRemoval {
		return process.ParamAchievedDepth
	}
	return process.ParamAchievedThickness
}

func (p *Planner) skip(ctx context.Context, result *flow.PlanResult, flowID core.FlowID, d flow.Diagnostic) {
	result.RecordSkip(d)
	result.State = flow.StateStepSkipped
	capitan.Emit(ctx, signals.StepSkipped,
		signals.FieldFlowID.Field(flowID.String()),
		signals.FieldOrderIndex.Field(d.OrderIndex),
		signals.FieldStage.Field(string(d.Stage)),
		signals.FieldReason.Field(d.Reason),
	)
}

func (p *Planner) fail(ctx context.Context, result *flow.PlanResult, flowID core.FlowID, d flow.Diagnostic, err error) {
	result.Fail(d, err)
	capitan.Error(ctx, signals.FlowFailed,
		signals.FieldFlowID.Field(flowID.String()),
		signals.FieldOrderIndex.Field(d.OrderIndex),
		signals.FieldStage.Field(string(d.Stage)),
		signals.FieldReason.Field(d.Reason),
		signals.FieldError.Field(err),
	)
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"fabflow/adapters/traveler"
	"fabflow/app"
	"fabflow/domain/core"
	"fabflow/domain/flow"
	"fabflow/domain/process"
	"fabflow/internal/wire"
)

// planRequest is the JSON body for the planning endpoints
type planRequest struct {
	FlowID      string                     `json:"flow_id,omitempty"`
	Descriptors []process.ChangeDescriptor `json:"descriptors"`
}

// planResponse wraps a successful plan. Steps carry the locked wire
// rendering verbatim.
type planResponse struct {
	FlowID      string             `json:"flow_id"`
	State       flow.State         `json:"state"`
	Steps       json.RawMessage    `json:"steps"`
	Outcomes    []flow.StepOutcome `json:"outcomes"`
	Diagnostics []flow.Diagnostic  `json:"diagnostics,omitempty"`
	Summary     flow.Summary       `json:"summary"`
	Manifest    *flow.PlanManifest `json:"manifest,omitempty"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": a.version,
	})
}

func (a *App) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := a.catalog.ListTools(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": tools,
		"count": len(tools),
	})
}

func (a *App) handlePlan(w http.ResponseWriter, r *http.Request) {
	result, ok := a.runPlan(w, r)
	if !ok {
		return
	}

	steps, err := wire.MarshalFlow(result.Flow)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, planResponse{
		FlowID:      result.Flow.FlowID.String(),
		State:       result.State,
		Steps:       steps,
		Outcomes:    result.Outcomes,
		Diagnostics: result.Diagnostics,
		Summary:     result.Summary,
		Manifest:    result.Manifest,
	})
}

func (a *App) handleTraveler(w http.ResponseWriter, r *http.Request) {
	result, ok := a.runPlan(w, r)
	if !ok {
		return
	}

	book, err := traveler.NewWorkbook(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "traveler_failed", err.Error())
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="traveler_%s.xlsx"`, result.Flow.FlowID))
	if err := book.Write(w); err != nil {
		log.Printf("[API] Failed to stream traveler workbook: %v", err)
	}
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	result, ok := a.runPlan(w, r)
	if !ok {
		return
	}

	doc, err := traveler.RenderHTML(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "report_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(doc)
}

// runPlan decodes the request, runs the planner, and maps failures onto
// HTTP statuses. On false the error response has already been written.
func (a *App) runPlan(w http.ResponseWriter, r *http.Request) (*flow.PlanResult, bool) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid request body: %v", err))
		return nil, false
	}
	if len(req.Descriptors) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "descriptors required")
		return nil, false
	}

	result, err := a.planner.Plan(r.Context(), app.PlanRequest{
		FlowID:      core.FlowID(req.FlowID),
		Descriptors: req.Descriptors,
	})
	if err != nil {
		status, code := planErrorStatus(err)
		writeError(w, status, code, err.Error())
		return nil, false
	}
	return result, true
}

// planErrorStatus maps fatal planning errors onto HTTP statuses and stable
// error codes.
func planErrorStatus(err error) (int, string) {
	switch {
	case core.IsMalformedInput(err):
		return http.StatusUnprocessableEntity, "invalid_sequence"
	case errors.Is(err, core.ErrMissingLayout):
		return http.StatusUnprocessableEntity, "missing_layout"
	case errors.Is(err, core.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, "catalog_unavailable"
	case errors.Is(err, core.ErrMaskUnavailable):
		return http.StatusBadGateway, "mask_unavailable"
	case errors.Is(err, core.ErrModelUnresolved):
		return http.StatusInternalServerError, "model_unresolved"
	case errors.Is(err, core.ErrSurrogateFailure):
		return http.StatusInternalServerError, "surrogate_failure"
	default:
		return http.StatusInternalServerError, "plan_failed"
	}
}

// Package selector picks the tool a process step runs on. Selection is
// deterministic: hard constraints first, then least-loaded, then smallest
// tool_id.
package selector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/ports"
)

// LoadFunc reports how many steps the current flow has already assigned to a
// tool. A nil LoadFunc means no assignments yet.
type LoadFunc func(core.ToolID) int

// Request carries everything selection needs for one step
type Request struct {
	Classification process.Classification
	WaferSizeMM    int
	Materials      []string // affected materials plus accumulated wafer materials
	Load           LoadFunc
}

// Selector queries the catalog and applies the selection policy
type Selector struct {
	catalog ports.ToolCatalogPort
	budget  core.QueryBudget
}

// New creates a selector. budget bounds each catalog query; zero disables
// the per-query deadline.
func New(catalog ports.ToolCatalogPort, budget core.QueryBudget) *Selector {
	return &Selector{catalog: catalog, budget: budget}
}

// Select returns the tool for the request, or core.ErrNoCompatibleTool when
// nothing qualifies. Catalog transport failures come back wrapping
// core.ErrCatalogUnavailable; an expired query deadline counts as an empty
// candidate set, not a transport failure.
func (s *Selector) Select(ctx context.Context, req Request) (process.ToolRecord, error) {
	query := ports.ToolQuery{
		Category:    req.Classification.Category,
		WaferSizeMM: req.WaferSizeMM,
		Materials:   req.Materials,
		Budget:      s.budget,
	}

	candidates, err := s.catalog.QueryTools(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return process.ToolRecord{}, noToolError(req, "catalog query deadline expired")
		}
		return process.ToolRecord{}, core.NewCatalogError(err)
	}

	// Backends pre-filter opportunistically; every hard constraint is
	// re-verified here so a permissive backend cannot leak a bad tool.
	qualified := candidates[:0:0]
	for _, tool := range candidates {
		if satisfies(tool, req) {
			qualified = append(qualified, tool)
		}
	}

	if len(qualified) == 0 {
		return process.ToolRecord{}, noToolError(req, fmt.Sprintf("%d candidates, none qualified", len(candidates)))
	}

	load := req.Load
	if load == nil {
		load = func(core.ToolID) int { return 0 }
	}
	sort.Slice(qualified, func(i, j int) bool {
		li, lj := load(qualified[i].ToolID), load(qualified[j].ToolID)
		if li != lj {
			return li < lj
		}
		return qualified[i].ToolID < qualified[j].ToolID
	})

	return qualified[0], nil
}

func satisfies(tool process.ToolRecord, req Request) bool {
	if tool.Status != process.ToolAvailable {
		return false
	}
	if tool.WaferSizeMM != req.WaferSizeMM {
		return false
	}
	if !tool.CanProcess(req.Classification.Category) {
		return false
	}
	if conflict := tool.ConflictsWith(req.Materials); conflict != "" {
		return false
	}
	return true
}

func noToolError(req Request, detail string) error {
	return fmt.Errorf("%w: category %s wafer %dmm: %s",
		core.ErrNoCompatibleTool, req.Classification.Category, req.WaferSizeMM, detail)
}

package selector

import (
	"context"
	"errors"
	"testing"

	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/ports"
)

// stubCatalog returns canned tools or a canned error
type stubCatalog struct {
	tools []process.ToolRecord
	err   error
}

func (s *stubCatalog) QueryTools(ctx context.Context, req ports.ToolQuery) ([]process.ToolRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tools, nil
}

func (s *stubCatalog) ListTools(ctx context.Context) ([]process.ToolRecord, error) {
	return s.tools, s.err
}

func availableTool(id string, categories ...process.Category) process.ToolRecord {
	return process.ToolRecord{
		ToolID:            core.ToolID(id),
		Status:            process.ToolAvailable,
		WaferSizeMM:       300,
		CapableCategories: categories,
	}
}

func depositionRequest() Request {
	return Request{
		Classification: process.Classification{Category: process.CategoryDeposition, SubType: process.SubTypePlanar},
		WaferSizeMM:    300,
		Materials:      []string{"silicon_dioxide", "silicon"},
	}
}

// TestSelectHardConstraints tests that every hard constraint disqualifies locally,
// even when the backend returned the tool
func TestSelectHardConstraints(t *testing.T) {
	down := availableTool("CVD_02", process.CategoryDeposition)
	down.Status = process.ToolDown

	wrongSize := availableTool("CVD_03", process.CategoryDeposition)
	wrongSize.WaferSizeMM = 200

	wrongCategory := availableTool("ETCH_01", process.CategoryEtch)

	incompatible := availableTool("CVD_04", process.CategoryDeposition)
	incompatible.IncompatibleMaterials = []string{"silicon_dioxide"}

	catalog := &stubCatalog{tools: []process.ToolRecord{
		down, wrongSize, wrongCategory, incompatible,
		availableTool("CVD_01", process.CategoryDeposition),
	}}

	tool, err := New(catalog, 0).Select(context.Background(), depositionRequest())
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if tool.ToolID != "CVD_01" {
		t.Errorf("Expected CVD_01 to be the only qualified tool, got %s", tool.ToolID)
	}
}

// TestSelectNoCompatibleTool tests the recoverable empty-candidate outcome
func TestSelectNoCompatibleTool(t *testing.T) {
	catalog := &stubCatalog{tools: []process.ToolRecord{
		availableTool("ETCH_01", process.CategoryEtch),
	}}

	_, err := New(catalog, 0).Select(context.Background(), depositionRequest())
	if !errors.Is(err, core.ErrNoCompatibleTool) {
		t.Fatalf("Expected ErrNoCompatibleTool, got %v", err)
	}
	if errors.Is(err, core.ErrCatalogUnavailable) {
		t.Error("No-tool outcome must not look like a catalog failure")
	}
}

// TestSelectTieBreakByLoadThenID tests least-loaded first, then lexicographic tool_id
func TestSelectTieBreakByLoadThenID(t *testing.T) {
	catalog := &stubCatalog{tools: []process.ToolRecord{
		availableTool("CVD_02", process.CategoryDeposition),
		availableTool("CVD_01", process.CategoryDeposition),
		availableTool("CVD_03", process.CategoryDeposition),
	}}
	sel := New(catalog, 0)

	// No load recorded: lexicographic smallest wins
	req := depositionRequest()
	tool, err := sel.Select(context.Background(), req)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if tool.ToolID != "CVD_01" {
		t.Errorf("Expected CVD_01 on equal load, got %s", tool.ToolID)
	}

	// CVD_01 already used twice, CVD_02 once: CVD_02 wins
	loads := map[core.ToolID]int{"CVD_01": 2, "CVD_02": 1, "CVD_03": 3}
	req.Load = func(id core.ToolID) int { return loads[id] }
	tool, err = sel.Select(context.Background(), req)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if tool.ToolID != "CVD_02" {
		t.Errorf("Expected least-loaded CVD_02, got %s", tool.ToolID)
	}
}

// TestSelectDeadlineMeansEmptySet tests that an expired query deadline is a
// no-tool outcome, not a catalog failure
func TestSelectDeadlineMeansEmptySet(t *testing.T) {
	catalog := &stubCatalog{err: context.DeadlineExceeded}

	_, err := New(catalog, core.NewQueryBudget(0)).Select(context.Background(), depositionRequest())
	if !errors.Is(err, core.ErrNoCompatibleTool) {
		t.Fatalf("Expected deadline expiry to read as no compatible tool, got %v", err)
	}
}

// TestSelectCatalogFailureIsFatal tests that transport errors stay distinguishable
func TestSelectCatalogFailureIsFatal(t *testing.T) {
	catalog := &stubCatalog{err: errors.New("connection refused")}

	_, err := New(catalog, 0).Select(context.Background(), depositionRequest())
	if !errors.Is(err, core.ErrCatalogUnavailable) {
		t.Fatalf("Expected ErrCatalogUnavailable, got %v", err)
	}
	if errors.Is(err, core.ErrNoCompatibleTool) {
		t.Error("Catalog failure must not look like a no-tool outcome")
	}
}

// TestSelectDeterministic tests repeat selection stability
func TestSelectDeterministic(t *testing.T) {
	catalog := &stubCatalog{tools: []process.ToolRecord{
		availableTool("CVD_09", process.CategoryDeposition),
		availableTool("CVD_05", process.CategoryDeposition),
		availableTool("CVD_07", process.CategoryDeposition),
	}}
	sel := New(catalog, 0)

	var first core.ToolID
	for i := 0; i < 20; i++ {
		tool, err := sel.Select(context.Background(), depositionRequest())
		if err != nil {
			t.Fatalf("Select failed on iteration %d: %v", i, err)
		}
		if i == 0 {
			first = tool.ToolID
			continue
		}
		if tool.ToolID != first {
			t.Fatalf("Selection flapped: iteration %d chose %s, first chose %s", i, tool.ToolID, first)
		}
	}
	if first != "CVD_05" {
		t.Errorf("Expected CVD_05, got %s", first)
	}
}

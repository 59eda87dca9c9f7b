package traveler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"fabflow/app"
	"fabflow/domain/core"
	"fabflow/domain/flow"
	"fabflow/internal/config"
	"fabflow/internal/testkit"
)

func plannedResult(t *testing.T) *flow.PlanResult {
	t.Helper()
	kit := testkit.NewTestKit()
	kit.SeedStandardCatalog()
	planner := app.NewPlanner(
		kit.CatalogAdapter(),
		kit.MaskAdapter(),
		kit.ResolverAdapter(),
		config.DefaultPlanning(),
		core.QueryBudget(0),
		"test",
	)
	result, err := planner.Plan(context.Background(), app.PlanRequest{
		FlowID:      "flow-traveler",
		Descriptors: kit.CreateTestDescriptors(),
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	return result
}

func TestWriteWorkbook(t *testing.T) {
	result := plannedResult(t)
	path := filepath.Join(t.TempDir(), "traveler.xlsx")

	if err := WriteWorkbook(result, path); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	checks := []struct {
		cell string
		want string
	}{
		{"A1", "Step"},
		{"A2", "1"},
		{"B2", "Deposition"},
		{"D2", "CVD_01"},
		{"B3", "Lithography"},
		{"D3", "LITHO_01"},
		{"A4", "3"},
		{"B4", "Etch"},
	}
	for _, c := range checks {
		got, err := f.GetCellValue(stepsSheet, c.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", c.cell, err)
		}
		if got != c.want {
			t.Errorf("cell %s = %q, want %q", c.cell, got, c.want)
		}
	}

	recipe, err := f.GetCellValue(stepsSheet, "E3")
	if err != nil {
		t.Fatalf("GetCellValue(E3): %v", err)
	}
	if !strings.Contains(recipe, "mask_file=output/mask_LITHO_STEP_1.gds") {
		t.Errorf("litho recipe missing mask file, got %q", recipe)
	}

	flowID, err := f.GetCellValue(summarySheet, "B1")
	if err != nil {
		t.Fatalf("GetCellValue(Summary!B1): %v", err)
	}
	if flowID != "flow-traveler" {
		t.Errorf("summary flow id = %q, want flow-traveler", flowID)
	}
}

func TestWriteWorkbookRejectsFailedFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traveler.xlsx")
	if err := WriteWorkbook(&flow.PlanResult{State: flow.StateFailed}, path); err == nil {
		t.Fatal("expected failed flow to be rejected")
	}
}

func TestRenderMarkdown(t *testing.T) {
	result := plannedResult(t)

	md, err := RenderMarkdown(result)
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	report := string(md)

	wants := []string{
		"# Process Traveler flow-traveler",
		"Wafer size: 300mm",
		"| 1 | Deposition |",
		"| 2 | Lithography |",
		"| 3 | Etch |",
		"mask_file=output/mask_LITHO_STEP_1.gds",
		"## Determinism Record",
	}
	for _, want := range wants {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(report, "## Skipped Changes") {
		t.Error("clean flow should not list skipped changes")
	}
}

func TestRenderMarkdownListsSkips(t *testing.T) {
	kit := testkit.NewTestKit()
	kit.SeedStandardCatalog()
	kit.CatalogAdapter().SetStatus("ETCH_01", "DOWN")
	planner := app.NewPlanner(
		kit.CatalogAdapter(),
		kit.MaskAdapter(),
		kit.ResolverAdapter(),
		config.DefaultPlanning(),
		core.QueryBudget(0),
		"test",
	)
	result, err := planner.Plan(context.Background(), app.PlanRequest{
		Descriptors: kit.CreateTestDescriptors(),
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	md, err := RenderMarkdown(result)
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(string(md), "## Skipped Changes") {
		t.Error("expected skipped changes section")
	}
	if !strings.Contains(string(md), "no_compatible_tool") {
		t.Error("expected skip reason in report")
	}
}

func TestRenderHTML(t *testing.T) {
	result := plannedResult(t)

	out, err := RenderHTML(result)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	doc := string(out)
	if !strings.Contains(doc, "<h1") {
		t.Error("expected an h1 heading in the HTML")
	}
	if !strings.Contains(doc, "<table>") {
		t.Error("expected the steps table in the HTML")
	}
	if !strings.Contains(doc, "CVD_01") {
		t.Error("expected tool ids in the HTML")
	}
}

// Package traveler renders planned flows into shop-floor documents: an xlsx
// workbook for the line, plus markdown and HTML reports for review.
package traveler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"fabflow/domain/flow"
	"fabflow/domain/process"
)

const (
	stepsSheet   = "Process Steps"
	summarySheet = "Summary"
)

// NewWorkbook builds the xlsx traveler for a planned flow. The result must
// be a successful plan; failed flows have no traveler. Callers own the
// returned file and must Close it.
func NewWorkbook(result *flow.PlanResult) (*excelize.File, error) {
	if result == nil || result.Flow == nil {
		return nil, fmt.Errorf("no flow to export")
	}

	f := excelize.NewFile()

	f.SetSheetName("Sheet1", stepsSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	headers := []string{"Step", "Process Type", "Sub-Type", "Tool", "Recipe"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(stepsSheet, cell, h)
		f.SetCellStyle(stepsSheet, cell, cell, headerStyle)
	}
	f.SetColWidth(stepsSheet, "B", "C", 16)
	f.SetColWidth(stepsSheet, "E", "E", 60)

	for i, step := range result.Flow.Steps {
		row := i + 2
		f.SetCellValue(stepsSheet, fmt.Sprintf("A%d", row), step.StepNumber)
		f.SetCellValue(stepsSheet, fmt.Sprintf("B%d", row), step.ProcessType.WireName())
		f.SetCellValue(stepsSheet, fmt.Sprintf("C%d", row), string(step.SubType))
		f.SetCellValue(stepsSheet, fmt.Sprintf("D%d", row), step.ToolID.String())
		f.SetCellValue(stepsSheet, fmt.Sprintf("E%d", row), recipeLine(step.Recipe))
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	writeSummary(f, result)

	return f, nil
}

// WriteWorkbook exports the planned flow as an xlsx traveler at path
func WriteWorkbook(result *flow.PlanResult, path string) error {
	f, err := NewWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writeSummary(f *excelize.File, result *flow.PlanResult) {
	rows := [][2]interface{}{
		{"Flow ID", result.Flow.FlowID.String()},
		{"Wafer Size (mm)", result.Flow.WaferSizeMM},
		{"Created", result.Flow.CreatedAt.Time().Format("2006-01-02 15:04:05 MST")},
		{"Descriptors", result.Summary.Descriptors},
		{"Steps Emitted", result.Summary.Emitted},
		{"Steps Skipped", result.Summary.Skipped},
	}
	if result.Manifest != nil {
		rows = append(rows,
			[2]interface{}{"Input Hash", string(result.Manifest.InputHash)},
			[2]interface{}{"Config Hash", string(result.Manifest.ConfigHash)},
			[2]interface{}{"Catalog Hash", string(result.Manifest.CatalogHash)},
			[2]interface{}{"Engine Version", string(result.Manifest.EngineVersion)},
			[2]interface{}{"Fingerprint", string(result.Manifest.Fingerprint)},
		)
	}
	reasons := make([]string, 0, len(result.Summary.SkipsByReason))
	for reason := range result.Summary.SkipsByReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		rows = append(rows, [2]interface{}{fmt.Sprintf("Skips: %s", reason), result.Summary.SkipsByReason[reason]})
	}

	f.SetColWidth(summarySheet, "A", "A", 20)
	f.SetColWidth(summarySheet, "B", "B", 70)
	for i, row := range rows {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row[1])
	}
}

// recipeLine flattens recipe parameters into one display string, preserving
// recipe order and the wire float rendering.
func recipeLine(r *process.RecipeParameters) string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, r.Len())
	for _, p := range r.Params() {
		if p.IsText {
			parts = append(parts, fmt.Sprintf("%s=%s", p.Name, p.Text))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", p.Name, process.FormatWireFloat(p.Value)))
		}
	}
	return strings.Join(parts, ", ")
}

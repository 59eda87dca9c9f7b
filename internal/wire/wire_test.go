package wire

import (
	"testing"

	"fabflow/domain/core"
	"fabflow/domain/process"
)

// TestMarshalStepLockedContract tests the exact byte form downstream systems parse
func TestMarshalStepLockedContract(t *testing.T) {
	recipe := process.NewRecipeParameters().
		Set(process.ParamTimeS, 15.2).
		Set(process.ParamPressureTorr, 1.8).
		Set(process.ParamAchievedThickness, 200.0)

	step := process.ProcessStep{
		StepNumber:  1,
		ProcessType: process.CategoryDeposition,
		ToolID:      "CVD_01",
		Recipe:      recipe,
	}

	got, err := MarshalStep(step)
	if err != nil {
		t.Fatalf("MarshalStep failed: %v", err)
	}

	want := `{"step_number":1,"process_type":"Deposition","tool_id":"CVD_01","recipe_parameters":{"time_s":15.2,"pressure_torr":1.8,"achieved_thickness_nm":200.0}}`
	if string(got) != want {
		t.Errorf("Contract mismatch:\n got %s\nwant %s", got, want)
	}
}

// TestMarshalStepLithography tests the litho step form with fixed sub-recipes
func TestMarshalStepLithography(t *testing.T) {
	recipe := process.NewRecipeParameters().
		SetText(process.ParamResistCoat, "STANDARD_COAT_1UM").
		SetText(process.ParamExposure, "STANDARD_EXPOSE_200mJ").
		SetText(process.ParamDevelop, "STANDARD_DEV_60S").
		SetText(process.ParamMaskFile, "output/mask_LITHO_STEP_1.gds")

	step := process.ProcessStep{
		StepNumber:  2,
		ProcessType: process.CategoryLithography,
		ToolID:      "LITHO_01",
		Recipe:      recipe,
	}

	got, err := MarshalStep(step)
	if err != nil {
		t.Fatalf("MarshalStep failed: %v", err)
	}

	want := `{"step_number":2,"process_type":"Lithography","tool_id":"LITHO_01","recipe_parameters":{"resist_coat_recipe":"STANDARD_COAT_1UM","exposure_recipe":"STANDARD_EXPOSE_200mJ","develop_recipe":"STANDARD_DEV_60S","mask_file":"output/mask_LITHO_STEP_1.gds"}}`
	if string(got) != want {
		t.Errorf("Contract mismatch:\n got %s\nwant %s", got, want)
	}
}

// TestMarshalStepRejectsUnknown tests that UNKNOWN never serializes
func TestMarshalStepRejectsUnknown(t *testing.T) {
	step := process.ProcessStep{
		StepNumber:  1,
		ProcessType: process.CategoryUnknown,
		ToolID:      "X",
		Recipe:      process.NewRecipeParameters(),
	}
	if _, err := MarshalStep(step); err == nil {
		t.Fatal("Expected error marshaling an unknown category")
	}
}

// TestWireFloatRendering tests integral floats keep one decimal place
func TestWireFloatRendering(t *testing.T) {
	tests := []struct {
		value    float64
		rendered string
	}{
		{200.0, "200.0"},
		{15.2, "15.2"},
		{1.8, "1.8"},
		{0.5, "0.5"},
		{30, "30.0"},
		{0, "0.0"},
		{117.64705882352942, "117.64705882352942"},
	}

	for _, test := range tests {
		if got := process.FormatWireFloat(test.value); got != test.rendered {
			t.Errorf("FormatWireFloat(%v): expected %s, got %s", test.value, test.rendered, got)
		}
	}
}

// TestMarshalFlowStepOrder tests the array renders steps in step order
func TestMarshalFlowStepOrder(t *testing.T) {
	flow := &process.ProcessFlow{
		FlowID:      core.FlowID("flow-1"),
		WaferSizeMM: 300,
		Steps: []process.ProcessStep{
			{StepNumber: 1, ProcessType: process.CategoryDeposition, ToolID: "CVD_01",
				Recipe: process.NewRecipeParameters().Set(process.ParamTimeS, 10.0)},
			{StepNumber: 2, ProcessType: process.CategoryEtch, ToolID: "ETCH_01",
				Recipe: process.NewRecipeParameters().Set(process.ParamTimeS, 20.0)},
		},
	}

	got, err := MarshalFlow(flow)
	if err != nil {
		t.Fatalf("MarshalFlow failed: %v", err)
	}

	want := `[{"step_number":1,"process_type":"Deposition","tool_id":"CVD_01","recipe_parameters":{"time_s":10.0}},{"step_number":2,"process_type":"Etch","tool_id":"ETCH_01","recipe_parameters":{"time_s":20.0}}]`
	if string(got) != want {
		t.Errorf("Flow contract mismatch:\n got %s\nwant %s", got, want)
	}
}

// TestParseStepRoundTrip tests contract output parses back losslessly
func TestParseStepRoundTrip(t *testing.T) {
	original := process.ProcessStep{
		StepNumber:  3,
		ProcessType: process.CategoryEtch,
		ToolID:      "ETCH_01",
		Recipe: process.NewRecipeParameters().
			Set(process.ParamTimeS, 12.5).
			Set(process.ParamPressureTorr, 2.0).
			Set(process.ParamAchievedDepth, 150.0),
	}

	data, err := MarshalStep(original)
	if err != nil {
		t.Fatalf("MarshalStep failed: %v", err)
	}

	parsed, err := ParseStep(data)
	if err != nil {
		t.Fatalf("ParseStep failed: %v", err)
	}

	if parsed.StepNumber != 3 || parsed.ProcessType != process.CategoryEtch || parsed.ToolID != "ETCH_01" {
		t.Errorf("Round trip lost step identity: %+v", parsed)
	}

	depth, ok := parsed.Recipe.Get(process.ParamAchievedDepth)
	if !ok || depth != 150.0 {
		t.Errorf("Round trip lost achieved_depth_nm: %v %v", depth, ok)
	}

	// Re-marshal and compare bytes: the contract must be stable
	again, err := MarshalStep(parsed)
	if err != nil {
		t.Fatalf("Re-marshal failed: %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("Round trip not byte stable:\n first %s\nsecond %s", data, again)
	}
}

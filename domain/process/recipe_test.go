package process

import (
	"encoding/json"
	"testing"
)

// TestRecipeParametersOrder tests that serialization follows insertion order,
// not alphabetical order. The step output contract depends on it.
func TestRecipeParametersOrder(t *testing.T) {
	r := NewRecipeParameters().
		Set(ParamTimeS, 18).
		Set(ParamPressureTorr, 2.5).
		Set(ParamAchievedThickness, 117)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"time_s":18.0,"pressure_torr":2.5,"achieved_thickness_nm":117.0}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

// TestRecipeParametersUpsert tests that re-setting a key keeps its position
func TestRecipeParametersUpsert(t *testing.T) {
	r := NewRecipeParameters().
		Set(ParamTimeS, 10).
		Set(ParamPressureTorr, 1.0).
		Set(ParamTimeS, 20)

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	params := r.Params()
	if params[0].Name != ParamTimeS || params[0].Value != 20 {
		t.Errorf("First param = %+v, want time_s=20", params[0])
	}

	v, ok := r.Get(ParamTimeS)
	if !ok || v != 20 {
		t.Errorf("Get(time_s) = %v, %v; want 20, true", v, ok)
	}
}

// TestRecipeParametersText tests string-valued settings
func TestRecipeParametersText(t *testing.T) {
	r := NewRecipeParameters().
		SetText(ParamResistCoat, "STANDARD_COAT_1UM").
		SetText(ParamMaskFile, "output/mask_LITHO_STEP_1.gds")

	s, ok := r.GetText(ParamResistCoat)
	if !ok || s != "STANDARD_COAT_1UM" {
		t.Errorf("GetText = %q, %v; want STANDARD_COAT_1UM, true", s, ok)
	}

	// Numeric Get on a text param misses, and vice versa.
	if _, ok := r.Get(ParamResistCoat); ok {
		t.Error("Get() should not return text params")
	}
	if _, ok := r.GetText("missing"); ok {
		t.Error("GetText() should miss on absent key")
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"resist_coat_recipe":"STANDARD_COAT_1UM","mask_file":"output/mask_LITHO_STEP_1.gds"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

// TestRecipeParametersRoundTrip tests that parsing preserves key order
func TestRecipeParametersRoundTrip(t *testing.T) {
	in := `{"time_s":12.5,"pressure_torr":1.0,"resist_coat_recipe":"STANDARD_COAT_1UM"}`

	var r RecipeParameters
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	out, err := json.Marshal(&r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != in {
		t.Errorf("Round trip changed the document:\n in: %s\nout: %s", in, out)
	}
}

// TestRecipeParametersClone tests copy independence
func TestRecipeParametersClone(t *testing.T) {
	r := NewRecipeParameters().Set(ParamTimeS, 10)
	c := r.Clone()
	c.Set(ParamTimeS, 99)

	if v, _ := r.Get(ParamTimeS); v != 10 {
		t.Errorf("Clone mutation leaked into original: %v", v)
	}
}

// TestFormatWireFloat tests the locked float rendering
func TestFormatWireFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{200, "200.0"},
		{0, "0.0"},
		{2.5, "2.5"},
		{117.6, "117.6"},
		{-3, "-3.0"},
		{0.125, "0.125"},
	}
	for _, test := range tests {
		if got := FormatWireFloat(test.in); got != test.want {
			t.Errorf("FormatWireFloat(%v) = %q, want %q", test.in, got, test.want)
		}
	}
}

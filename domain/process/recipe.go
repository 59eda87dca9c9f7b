package process

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Canonical recipe parameter names. The wire contract fixes their spelling
// and, via insertion order, their position in serialized output.
const (
	ParamTimeS             = "time_s"
	ParamPressureTorr      = "pressure_torr"
	ParamAchievedThickness = "achieved_thickness_nm"
	ParamAchievedDepth     = "achieved_depth_nm"

	ParamResistCoat = "resist_coat_recipe"
	ParamExposure   = "exposure_recipe"
	ParamDevelop    = "develop_recipe"
	ParamMaskFile   = "mask_file"
)

// Param is one named recipe setting. Numeric settings carry Value; string
// settings (lithography sub-recipes, mask references) carry Text.
type Param struct {
	Name   string
	Value  float64
	Text   string
	IsText bool
}

// RecipeParameters is an insertion-ordered set of recipe settings. Order
// matters: serialized output must list parameters in the order the planner
// set them.
type RecipeParameters struct {
	params []Param
}

// NewRecipeParameters returns an empty recipe
func NewRecipeParameters() *RecipeParameters {
	return &RecipeParameters{}
}

// Set upserts a numeric parameter, preserving first-set order
func (r *RecipeParameters) Set(name string, v float64) *RecipeParameters {
	for i := range r.params {
		if r.params[i].Name == name {
			r.params[i] = Param{Name: name, Value: v}
			return r
		}
	}
	r.params = append(r.params, Param{Name: name, Value: v})
	return r
}

// SetText upserts a string parameter, preserving first-set order
func (r *RecipeParameters) SetText(name, s string) *RecipeParameters {
	for i := range r.params {
		if r.params[i].Name == name {
			r.params[i] = Param{Name: name, Text: s, IsText: true}
			return r
		}
	}
	r.params = append(r.params, Param{Name: name, Text: s, IsText: true})
	return r
}

// Get returns a numeric parameter value
func (r *RecipeParameters) Get(name string) (float64, bool) {
	for _, p := range r.params {
		if p.Name == name && !p.IsText {
			return p.Value, true
		}
	}
	return 0, false
}

// GetText returns a string parameter value
func (r *RecipeParameters) GetText(name string) (string, bool) {
	for _, p := range r.params {
		if p.Name == name && p.IsText {
			return p.Text, true
		}
	}
	return "", false
}

// Params returns the settings in insertion order
func (r *RecipeParameters) Params() []Param {
	return append([]Param(nil), r.params...)
}

// Len returns the number of settings
func (r *RecipeParameters) Len() int {
	return len(r.params)
}

// Clone returns an independent copy
func (r *RecipeParameters) Clone() *RecipeParameters {
	return &RecipeParameters{params: append([]Param(nil), r.params...)}
}

// FormatWireFloat renders a float the way the locked contract expects:
// integral values keep one decimal place (200 -> "200.0"), fractional values
// render shortest-form without exponent.
func FormatWireFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalJSON emits settings as a JSON object in insertion order
func (r RecipeParameters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range r.params {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if p.IsText {
			val, err := json.Marshal(p.Text)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		} else {
			buf.WriteString(FormatWireFloat(p.Value))
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving key order
func (r *RecipeParameters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("recipe_parameters: expected object, got %v", tok)
	}

	r.params = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("recipe_parameters: non-string key %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := valTok.(type) {
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return fmt.Errorf("recipe_parameters: %s: %v", key, err)
			}
			r.Set(key, f)
		case string:
			r.SetText(key, v)
		default:
			return fmt.Errorf("recipe_parameters: %s holds unsupported value %v", key, valTok)
		}
	}

	// Consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

package classify

import (
	"testing"

	"fabflow/domain/process"
)

// TestClassifyRuleTable tests the ordered rule table over representative descriptors
func TestClassifyRuleTable(t *testing.T) {
	thresholds := DefaultThresholds()

	tests := []struct {
		descriptor process.ChangeDescriptor
		category   process.Category
		subType    process.SubType
	}{
		// Rule 1: high-AR addition fills need conformal deposition
		{process.ChangeDescriptor{Polarity: process.PolarityAddition, AspectRatio: 8.0}, process.CategoryDeposition, process.SubTypeConformal},
		{process.ChangeDescriptor{Polarity: process.PolarityAddition, AspectRatio: 5.01}, process.CategoryDeposition, process.SubTypeConformal},
		// Rule 2: remaining additions are planar
		{process.ChangeDescriptor{Polarity: process.PolarityAddition, AspectRatio: 0.2}, process.CategoryDeposition, process.SubTypePlanar},
		{process.ChangeDescriptor{Polarity: process.PolarityAddition, AspectRatio: 0}, process.CategoryDeposition, process.SubTypePlanar},
		// Rule 3: low-AR removals need a directional etch
		{process.ChangeDescriptor{Polarity: process.PolarityRemoval, AspectRatio: 0.3}, process.CategoryEtch, process.SubTypeAnisotropic},
		{process.ChangeDescriptor{Polarity: process.PolarityRemoval, AspectRatio: 0.49}, process.CategoryEtch, process.SubTypeAnisotropic},
		// Rule 4: remaining removals are isotropic
		{process.ChangeDescriptor{Polarity: process.PolarityRemoval, AspectRatio: 2.0}, process.CategoryEtch, process.SubTypeIsotropic},
		// Rule 5: patterning changes carry no polarity
		{process.ChangeDescriptor{Patterning: true, LayoutRef: "layout-7"}, process.CategoryLithography, process.SubTypeNone},
		// Rule 6: nothing matched
		{process.ChangeDescriptor{}, process.CategoryUnknown, process.SubTypeNone},
	}

	for _, test := range tests {
		got := Classify(test.descriptor, thresholds)
		if got.Category != test.category {
			t.Errorf("Descriptor %+v: expected category %s, got %s", test.descriptor, test.category, got.Category)
		}
		if got.SubType != test.subType {
			t.Errorf("Descriptor %+v: expected sub-type %q, got %q", test.descriptor, test.subType, got.SubType)
		}
	}
}

// TestClassifyBoundaryIsStrict tests that AR exactly at a threshold falls to the later rule
func TestClassifyBoundaryIsStrict(t *testing.T) {
	thresholds := DefaultThresholds()

	addition := process.ChangeDescriptor{Polarity: process.PolarityAddition, AspectRatio: 5.0}
	if got := Classify(addition, thresholds); got.SubType != process.SubTypePlanar {
		t.Errorf("AR exactly at conformal threshold should be planar, got %s", got.SubType)
	}

	removal := process.ChangeDescriptor{Polarity: process.PolarityRemoval, AspectRatio: 0.5}
	if got := Classify(removal, thresholds); got.SubType != process.SubTypeIsotropic {
		t.Errorf("AR exactly at anisotropic threshold should be isotropic, got %s", got.SubType)
	}
}

// TestClassifyPolarityWinsOverPatterning tests rule order: polarity rules fire
// before the patterning rule is consulted
func TestClassifyPolarityWinsOverPatterning(t *testing.T) {
	// A descriptor that somehow carries both a polarity and the patterning
	// flag classifies by polarity, the table is strictly ordered.
	d := process.ChangeDescriptor{
		Polarity:    process.PolarityAddition,
		AspectRatio: 1.0,
		Patterning:  true,
		LayoutRef:   "layout-1",
	}

	got := Classify(d, DefaultThresholds())
	if got.Category != process.CategoryDeposition {
		t.Errorf("Expected polarity rule to win, got category %s", got.Category)
	}
}

// TestClassifyCustomThresholds tests that thresholds are honored, not baked in
func TestClassifyCustomThresholds(t *testing.T) {
	custom := Thresholds{ConformalAspectRatio: 2.0, AnisotropicAspectRatio: 1.0}

	d := process.ChangeDescriptor{Polarity: process.PolarityAddition, AspectRatio: 3.0}
	if got := Classify(d, custom); got.SubType != process.SubTypeConformal {
		t.Errorf("AR 3.0 above custom threshold 2.0 should be conformal, got %s", got.SubType)
	}

	r := process.ChangeDescriptor{Polarity: process.PolarityRemoval, AspectRatio: 0.8}
	if got := Classify(r, custom); got.SubType != process.SubTypeAnisotropic {
		t.Errorf("AR 0.8 below custom threshold 1.0 should be anisotropic, got %s", got.SubType)
	}
}

// TestThresholdsValidate tests rejection of non-positive cut points
func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Errorf("Default thresholds should validate, got %v", err)
	}

	bad := Thresholds{ConformalAspectRatio: 0, AnisotropicAspectRatio: 0.5}
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero conformal threshold")
	}

	bad = Thresholds{ConformalAspectRatio: 5, AnisotropicAspectRatio: -1}
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for negative anisotropic threshold")
	}
}

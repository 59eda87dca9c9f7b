package surrogate

import (
	"testing"

	"fabflow/domain/core"
	"fabflow/domain/process"

	"github.com/stretchr/testify/assert"
)

func TestQuadraticTerms(t *testing.T) {
	tests := []struct {
		inputs   int
		expected int
	}{
		{1, 3},  // intercept + x + x^2
		{2, 6},  // intercept + 2 linear + 2 squared + 1 cross
		{3, 10}, // intercept + 3 linear + 3 squared + 3 cross
		{4, 15},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, quadraticTerms(test.inputs), "term count wrong for %d inputs", test.inputs)
	}
}

func TestQuadraticModelValidate(t *testing.T) {
	valid := func() *QuadraticModel {
		return &QuadraticModel{
			ModelRef:     "cvd_thickness_v1",
			Inputs:       []string{process.ParamTimeS, process.ParamPressureTorr},
			Coefficients: []float64{0, 4, 0, 0, 0, 1},
			Quality:      FitQuality{Runs: 60, RSquared: 0.99},
			FittedAt:     core.Now(),
		}
	}

	assert.NoError(t, valid().Validate())

	noRef := valid()
	noRef.ModelRef = ""
	assert.Error(t, noRef.Validate(), "empty model_ref should be rejected")

	noInputs := valid()
	noInputs.Inputs = nil
	assert.Error(t, noInputs.Validate(), "model without inputs should be rejected")

	truncated := valid()
	truncated.Coefficients = truncated.Coefficients[:5]
	err := truncated.Validate()
	assert.Error(t, err, "coefficient count must match the input dimension")
	assert.Contains(t, err.Error(), "expected 6 terms")
}

// TestPredictFeatureOrder pins the coefficient layout: intercept, linear
// terms, squared terms, then pairwise cross terms.
func TestPredictFeatureOrder(t *testing.T) {
	model := &QuadraticModel{
		ModelRef:     "layout_probe",
		Inputs:       []string{process.ParamTimeS, process.ParamPressureTorr},
		Coefficients: []float64{1, 2, 3, 4, 5, 6},
	}

	// At (x, y) = (2, 3): 1 + 2*2 + 3*3 + 4*4 + 5*9 + 6*6 = 111
	got, err := model.Predict(recipeAt(2, 3))
	assert.NoError(t, err)
	assert.InDelta(t, 111.0, got, 1e-9)
}

func TestPredictReadsOnlyNamedInputs(t *testing.T) {
	model, err := FitQuadratic("cvd_std", standardInputs, depositionRuns(42, 60, 0))
	assert.NoError(t, err)

	// Extra recipe entries, numeric or text, must not disturb the evaluation.
	recipe := recipeAt(10, 1.0).
		Set(process.ParamAchievedThickness, 999).
		SetText(process.ParamResistCoat, "STANDARD_COAT_1UM")

	got, err := model.Predict(recipe)
	assert.NoError(t, err)
	assert.InDelta(t, 50.0, got, 1e-6)
}

package core

import (
	"errors"
	"fmt"
	"testing"
)

// TestErrorClassification tests the step-recoverable / flow-fatal split that
// drives skip-versus-abort decisions during planning.
func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		malformed   bool
		recoverable bool
		fatal       bool
	}{
		{"unknown process", ErrUnknownProcess, false, true, false},
		{"no compatible tool", ErrNoCompatibleTool, false, true, false},
		{"malformed descriptor", ErrMalformedDescriptor, true, false, true},
		{"sequence gap", ErrSequenceGap, true, false, true},
		{"missing layout", ErrMissingLayout, false, false, true},
		{"model unresolved", ErrModelUnresolved, false, false, true},
		{"surrogate failure", ErrSurrogateFailure, false, false, true},
		{"catalog unavailable", ErrCatalogUnavailable, false, false, true},
		{"mask unavailable", ErrMaskUnavailable, false, false, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsMalformedInput(test.err); got != test.malformed {
				t.Errorf("IsMalformedInput = %v, want %v", got, test.malformed)
			}
			if got := IsStepRecoverable(test.err); got != test.recoverable {
				t.Errorf("IsStepRecoverable = %v, want %v", got, test.recoverable)
			}
			if got := IsFlowFatal(test.err); got != test.fatal {
				t.Errorf("IsFlowFatal = %v, want %v", got, test.fatal)
			}
		})
	}
}

// TestClassificationSurvivesWrapping tests that wrapped errors still classify
func TestClassificationSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("descriptor 3: %w", ErrNoCompatibleTool)
	if !IsStepRecoverable(wrapped) {
		t.Error("Wrapped recoverable error no longer classifies as recoverable")
	}

	catalogErr := NewCatalogError(errors.New("connection refused"))
	if !errors.Is(catalogErr, ErrCatalogUnavailable) {
		t.Error("NewCatalogError does not wrap ErrCatalogUnavailable")
	}
	if !IsFlowFatal(catalogErr) {
		t.Error("Catalog error should be flow fatal")
	}

	maskErr := NewMaskError(errors.New("timeout"))
	if !errors.Is(maskErr, ErrMaskUnavailable) {
		t.Error("NewMaskError does not wrap ErrMaskUnavailable")
	}
}

// TestDescriptorErrorCarriesIndex tests the descriptor error message format
func TestDescriptorErrorCarriesIndex(t *testing.T) {
	err := NewDescriptorError(4, "aspect_ratio must be >= 0")
	if !errors.Is(err, ErrMalformedDescriptor) {
		t.Error("Descriptor error does not wrap ErrMalformedDescriptor")
	}
	want := "malformed change descriptor: order_index 4: aspect_ratio must be >= 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// TestNotFoundErrors tests the not-found family
func TestNotFoundErrors(t *testing.T) {
	if !IsNotFoundError(ErrToolNotFound) {
		t.Error("ErrToolNotFound should be a not-found error")
	}
	if !IsNotFoundError(ErrModelNotFound) {
		t.Error("ErrModelNotFound should be a not-found error")
	}
	if IsNotFoundError(ErrUnknownProcess) {
		t.Error("ErrUnknownProcess should not be a not-found error")
	}

	err := NewNotFoundError("tool", "CVD_99")
	if !IsNotFoundError(err) {
		t.Error("NewNotFoundError should classify as not found")
	}
}

package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrToolNotFound  = fmt.Errorf("%w: tool", ErrNotFound)
	ErrModelNotFound = fmt.Errorf("%w: surrogate model", ErrNotFound)
	ErrFlowNotFound  = fmt.Errorf("%w: flow", ErrNotFound)

	// Input validation errors
	ErrMalformedDescriptor = errors.New("malformed change descriptor")
	ErrSequenceGap         = errors.New("descriptor sequence not contiguous")

	// Planning errors, recoverable per step
	ErrUnknownProcess   = errors.New("no process rule matched")
	ErrNoCompatibleTool = errors.New("no compatible tool")

	// Planning errors, fatal to the flow
	ErrMissingLayout      = errors.New("patterning change has no layout reference")
	ErrModelUnresolved    = errors.New("surrogate model reference unresolved")
	ErrSurrogateFailure   = errors.New("surrogate model evaluation failed")
	ErrCatalogUnavailable = errors.New("tool catalog unavailable")
	ErrMaskUnavailable    = errors.New("mask service unavailable")

	// Determinism errors
	ErrHashMismatch = errors.New("hash mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewDescriptorError(orderIndex int, reason string) error {
	return fmt.Errorf("%w: order_index %d: %s", ErrMalformedDescriptor, orderIndex, reason)
}

func NewCatalogError(err error) error {
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}

func NewMaskError(err error) error {
	return fmt.Errorf("%w: %v", ErrMaskUnavailable, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedDescriptor) ||
		errors.Is(err, ErrSequenceGap)
}

// IsStepRecoverable reports whether the error skips the step but leaves the
// flow running.
func IsStepRecoverable(err error) bool {
	return errors.Is(err, ErrUnknownProcess) ||
		errors.Is(err, ErrNoCompatibleTool)
}

// IsFlowFatal reports whether the error aborts the whole flow with no
// partial output.
func IsFlowFatal(err error) bool {
	return errors.Is(err, ErrMalformedDescriptor) ||
		errors.Is(err, ErrSequenceGap) ||
		errors.Is(err, ErrMissingLayout) ||
		errors.Is(err, ErrModelUnresolved) ||
		errors.Is(err, ErrSurrogateFailure) ||
		errors.Is(err, ErrCatalogUnavailable) ||
		errors.Is(err, ErrMaskUnavailable)
}

package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	FlowID    ID
	StepID    ID
	ToolID    ID
	ModelRef  ID
	LayoutRef ID
)

// String conversions for domain IDs
func (id FlowID) String() string    { return ID(id).String() }
func (id StepID) String() string    { return ID(id).String() }
func (id ToolID) String() string    { return ID(id).String() }
func (id ModelRef) String() string  { return ID(id).String() }
func (id LayoutRef) String() string { return ID(id).String() }

// ParseFlowID parses a string into FlowID
func ParseFlowID(s string) (FlowID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("flow ID cannot be empty")
	}
	return FlowID(s), nil
}

// ParseToolID parses a string into ToolID
func ParseToolID(s string) (ToolID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("tool ID cannot be empty")
	}
	return ToolID(s), nil
}

// ParseModelRef parses a string into ModelRef
func ParseModelRef(s string) (ModelRef, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("model ref cannot be empty")
	}
	return ModelRef(s), nil
}

// ParseLayoutRef parses a string into LayoutRef
func ParseLayoutRef(s string) (LayoutRef, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("layout ref cannot be empty")
	}
	return LayoutRef(s), nil
}

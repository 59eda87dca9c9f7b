// Package wire owns the locked step serialization contract. Key order,
// process_type spelling, and float rendering are fixed; downstream systems
// parse this byte-for-byte.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"fabflow/domain/core"
	"fabflow/domain/process"
)

// MarshalStep renders one step in the locked contract form:
//
//	{"step_number":1,"process_type":"Deposition","tool_id":"CVD_01","recipe_parameters":{...}}
func MarshalStep(s process.ProcessStep) ([]byte, error) {
	wireName := s.ProcessType.WireName()
	if wireName == "" {
		return nil, fmt.Errorf("step %d: category %q has no wire name", s.StepNumber, s.ProcessType)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"step_number":`)
	buf.WriteString(strconv.Itoa(s.StepNumber))

	buf.WriteString(`,"process_type":`)
	name, err := json.Marshal(wireName)
	if err != nil {
		return nil, err
	}
	buf.Write(name)

	buf.WriteString(`,"tool_id":`)
	toolID, err := json.Marshal(s.ToolID.String())
	if err != nil {
		return nil, err
	}
	buf.Write(toolID)

	buf.WriteString(`,"recipe_parameters":`)
	recipe := s.Recipe
	if recipe == nil {
		recipe = process.NewRecipeParameters()
	}
	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return nil, err
	}
	buf.Write(recipeJSON)

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalFlow renders the flow as a JSON array of contract steps, in step
// order
func MarshalFlow(f *process.ProcessFlow) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, step := range f.Steps {
		if i > 0 {
			buf.WriteByte(',')
		}
		stepJSON, err := MarshalStep(step)
		if err != nil {
			return nil, err
		}
		buf.Write(stepJSON)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalFlowIndent is MarshalFlow with human-friendly indentation. The
// compact form stays the contract; this is for terminals and reports.
func MarshalFlowIndent(f *process.ProcessFlow) ([]byte, error) {
	compact, err := MarshalFlow(f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stepEnvelope mirrors the contract keys for parsing
type stepEnvelope struct {
	StepNumber  int                       `json:"step_number"`
	ProcessType string                    `json:"process_type"`
	ToolID      string                    `json:"tool_id"`
	Recipe      *process.RecipeParameters `json:"recipe_parameters"`
}

// ParseStep reads a contract-form step back into the domain
func ParseStep(data []byte) (process.ProcessStep, error) {
	var env stepEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return process.ProcessStep{}, err
	}

	category := process.CategoryFromWire(env.ProcessType)
	if category == process.CategoryUnknown {
		return process.ProcessStep{}, fmt.Errorf("unknown process_type %q", env.ProcessType)
	}
	if env.Recipe == nil {
		env.Recipe = process.NewRecipeParameters()
	}

	return process.ProcessStep{
		StepNumber:  env.StepNumber,
		ProcessType: category,
		ToolID:      core.ToolID(env.ToolID),
		Recipe:      env.Recipe,
	}, nil
}

// ParseFlow reads a contract-form step array
func ParseFlow(data []byte) ([]process.ProcessStep, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	steps := make([]process.ProcessStep, 0, len(raw))
	for i, r := range raw {
		step, err := ParseStep(r)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

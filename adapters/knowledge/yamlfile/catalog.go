// Package yamlfile implements a read-only tool catalog backed by a YAML
// file, the default backend for demos and small deployments.
package yamlfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/ports"
)

type catalogFile struct {
	Tools []process.ToolRecord `yaml:"tools"`
}

// Catalog serves tool records parsed once at load time
type Catalog struct {
	tools []process.ToolRecord
}

// Load parses and validates a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates catalog YAML from memory
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	seen := make(map[core.ToolID]bool)
	for _, tool := range file.Tools {
		if err := tool.Validate(); err != nil {
			return nil, err
		}
		if seen[tool.ToolID] {
			return nil, core.NewValidationError("tool_id", fmt.Sprintf("duplicate tool %s", tool.ToolID))
		}
		seen[tool.ToolID] = true
	}
	return &Catalog{tools: file.Tools}, nil
}

// QueryTools pre-filters availability, wafer size, and category in memory.
// The selector re-verifies every constraint.
func (c *Catalog) QueryTools(ctx context.Context, q ports.ToolQuery) ([]process.ToolRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var matched []process.ToolRecord
	for _, tool := range c.tools {
		if tool.Status != process.ToolAvailable {
			continue
		}
		if tool.WaferSizeMM != q.WaferSizeMM {
			continue
		}
		if !tool.CanProcess(q.Category) {
			continue
		}
		matched = append(matched, tool)
	}
	return matched, nil
}

// ListTools returns the full catalog regardless of status
func (c *Catalog) ListTools(ctx context.Context) ([]process.ToolRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]process.ToolRecord(nil), c.tools...), nil
}

// Ensure Catalog implements ToolCatalogPort
var _ ports.ToolCatalogPort = (*Catalog)(nil)

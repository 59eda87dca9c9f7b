package surrogate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"fabflow/domain/core"
	"fabflow/ports"
)

// loadParallelism bounds concurrent model file reads during registry load
const loadParallelism = 4

// Registry resolves surrogate model references from fitted model files. It is
// safe for concurrent use once loaded.
type Registry struct {
	mu     sync.RWMutex
	models map[core.ModelRef]*QuadraticModel
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{models: make(map[core.ModelRef]*QuadraticModel)}
}

// LoadRegistry reads every *.json model file under dir
func LoadRegistry(ctx context.Context, dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading model registry %s: %w", dir, err)
	}

	registry := NewRegistry()
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(loadParallelism)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		g.Go(func() error {
			model, err := LoadModel(path)
			if err != nil {
				return err
			}
			registry.Register(model)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return registry, nil
}

// LoadModel reads and validates one fitted model file
func LoadModel(path string) (*QuadraticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}
	var model QuadraticModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &model, nil
}

// SaveModel writes a fitted model next to its siblings in the registry dir
func SaveModel(path string, model *QuadraticModel) error {
	if err := model.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Register adds or replaces a model under its reference
func (r *Registry) Register(model *QuadraticModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[model.ModelRef] = model
}

// Resolve implements ModelResolverPort
func (r *Registry) Resolve(ctx context.Context, ref core.ModelRef) (ports.SurrogateModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	model, ok := r.models[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrModelUnresolved, ref)
	}
	return model, nil
}

// Refs lists registered model references in sorted order
func (r *Registry) Refs() []core.ModelRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]core.ModelRef, 0, len(r.models))
	for ref := range r.models {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs
}

// Package testkit provides fakes and fixtures for exercising the planning
// engine without a database, mask service, or model registry.
package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	catalog  *MemoryCatalog
	masks    *FakeMaskService
	resolver *FakeModelResolver
}

// NewTestKit creates a test kit with empty fakes
func NewTestKit() *TestKit {
	return &TestKit{
		catalog:  NewMemoryCatalog(),
		masks:    NewFakeMaskService("output"),
		resolver: NewFakeModelResolver(),
	}
}

// CatalogAdapter returns the in-memory catalog fake
func (t *TestKit) CatalogAdapter() *MemoryCatalog {
	return t.catalog
}

// MaskAdapter returns the fake mask service
func (t *TestKit) MaskAdapter() *FakeMaskService {
	return t.masks
}

// ResolverAdapter returns the fake model resolver
func (t *TestKit) ResolverAdapter() *FakeModelResolver {
	return t.resolver
}

// RNGAdapter returns an RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return &RNGAdapter{}
}

// SeedStandardCatalog loads the three-tool reference fab: one CVD, one
// litho, one etch tool, all available at 300mm
func (t *TestKit) SeedStandardCatalog() {
	t.catalog.Seed([]process.ToolRecord{
		{
			ToolID:            "CVD_01",
			Status:            process.ToolAvailable,
			WaferSizeMM:       300,
			CapableCategories: []process.Category{process.CategoryDeposition},
			SurrogateModelRef: "cvd_std",
		},
		{
			ToolID:            "LITHO_01",
			Status:            process.ToolAvailable,
			WaferSizeMM:       300,
			CapableCategories: []process.Category{process.CategoryLithography},
		},
		{
			ToolID:                "ETCH_01",
			Status:                process.ToolAvailable,
			WaferSizeMM:           300,
			CapableCategories:     []process.Category{process.CategoryEtch},
			IncompatibleMaterials: []string{"copper"},
			SurrogateModelRef:     "etch_std",
		},
	})
	t.resolver.Register(DepositionSurface("cvd_std"))
	t.resolver.Register(EtchSurface("etch_std"))
}

// CreateTestDescriptors returns the canonical oxide-pattern-etch sequence:
// deposit 200nm oxide, pattern resist, etch 150nm back
func (t *TestKit) CreateTestDescriptors() []process.ChangeDescriptor {
	return []process.ChangeDescriptor{
		{
			OrderIndex:        0,
			Polarity:          process.PolarityAddition,
			PrimaryMaterial:   "silicon_dioxide",
			AffectedMaterials: []string{"silicon_dioxide"},
			AspectRatio:       0.2,
			ConformalityScore: 0.9,
			TargetMetric:      200,
			WaferSizeMM:       300,
		},
		{
			OrderIndex:  1,
			Patterning:  true,
			LayoutRef:   "layout-snapshot-7",
			WaferSizeMM: 300,
		},
		{
			OrderIndex:        2,
			Polarity:          process.PolarityRemoval,
			PrimaryMaterial:   "silicon_dioxide",
			AffectedMaterials: []string{"silicon_dioxide", "photoresist"},
			AspectRatio:       0.3,
			ConformalityScore: 0.5,
			TargetMetric:      150,
			WaferSizeMM:       300,
		},
	}
}

// MemoryCatalog implements ToolCatalogPort in memory with injectable faults
// and latency. It never pre-filters, which forces the selector to prove its
// own constraint checking.
type MemoryCatalog struct {
	mu      sync.RWMutex
	tools   []process.ToolRecord
	err     error
	latency time.Duration
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{}
}

// Seed replaces the catalog contents
func (c *MemoryCatalog) Seed(tools []process.ToolRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools = append([]process.ToolRecord(nil), tools...)
}

// SetStatus flips one tool's status in place
func (c *MemoryCatalog) SetStatus(toolID core.ToolID, status process.ToolStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tools {
		if c.tools[i].ToolID == toolID {
			c.tools[i].Status = status
		}
	}
}

// FailWith makes every query return err until cleared with nil
func (c *MemoryCatalog) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Delay makes every query sleep, honoring context expiry
func (c *MemoryCatalog) Delay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latency = d
}

func (c *MemoryCatalog) QueryTools(ctx context.Context, req ports.ToolQuery) ([]process.ToolRecord, error) {
	return c.snapshot(ctx, req.Budget)
}

func (c *MemoryCatalog) ListTools(ctx context.Context) ([]process.ToolRecord, error) {
	return c.snapshot(ctx, 0)
}

func (c *MemoryCatalog) snapshot(ctx context.Context, budget core.QueryBudget) ([]process.ToolRecord, error) {
	c.mu.RLock()
	err := c.err
	latency := c.latency
	tools := append([]process.ToolRecord(nil), c.tools...)
	c.mu.RUnlock()

	if err != nil {
		return nil, err
	}
	if latency > 0 {
		if !budget.IsZero() && latency > budget.Duration() {
			return nil, context.DeadlineExceeded
		}
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return tools, nil
}

// FakeMaskService implements MaskServicePort with deterministic local paths
type FakeMaskService struct {
	mu        sync.Mutex
	outputDir string
	err       error
	requests  []ports.MaskRequest
}

func NewFakeMaskService(outputDir string) *FakeMaskService {
	return &FakeMaskService{outputDir: outputDir}
}

// FailWith makes every extraction return err until cleared with nil
func (m *FakeMaskService) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns every extraction request seen
func (m *FakeMaskService) Requests() []ports.MaskRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.MaskRequest(nil), m.requests...)
}

func (m *FakeMaskService) ExtractMask(ctx context.Context, req ports.MaskRequest) (ports.MaskRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return ports.MaskRef{}, m.err
	}
	m.requests = append(m.requests, req)
	return ports.MaskRef{Path: fmt.Sprintf("%s/mask_%s.gds", m.outputDir, req.StepID)}, nil
}

// FuncModel adapts a plain function into a SurrogateModel
type FuncModel struct {
	ModelRef core.ModelRef
	Fn       func(timeS, pressure float64) float64
}

func (m FuncModel) Ref() core.ModelRef { return m.ModelRef }

func (m FuncModel) Predict(r *process.RecipeParameters) (float64, error) {
	timeS, _ := r.Get(process.ParamTimeS)
	pressure, _ := r.Get(process.ParamPressureTorr)
	return m.Fn(timeS, pressure), nil
}

// DepositionSurface models CVD thickness as time * (4 + pressure), the
// response surface the synthetic training runs are drawn from
func DepositionSurface(ref core.ModelRef) FuncModel {
	return FuncModel{ModelRef: ref, Fn: func(timeS, pressure float64) float64 {
		return timeS * (4 + pressure)
	}}
}

// EtchSurface models etched depth as time * (3 + 2*pressure)
func EtchSurface(ref core.ModelRef) FuncModel {
	return FuncModel{ModelRef: ref, Fn: func(timeS, pressure float64) float64 {
		return timeS * (3 + 2*pressure)
	}}
}

// FakeModelResolver implements ModelResolverPort over registered models
type FakeModelResolver struct {
	mu     sync.RWMutex
	models map[core.ModelRef]ports.SurrogateModel
}

func NewFakeModelResolver() *FakeModelResolver {
	return &FakeModelResolver{models: make(map[core.ModelRef]ports.SurrogateModel)}
}

// Register adds a model under its own ref
func (r *FakeModelResolver) Register(model ports.SurrogateModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[model.Ref()] = model
}

func (r *FakeModelResolver) Resolve(ctx context.Context, ref core.ModelRef) (ports.SurrogateModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	model, ok := r.models[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrModelUnresolved, ref)
	}
	return model, nil
}

// RNGAdapter implements the RNGPort interface for testing
type RNGAdapter struct{}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// Stream creates a deterministic RNG stream scoped to a flow and stage
func (r *RNGAdapter) Stream(ctx context.Context, flowID, stage, key string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	if flowID != "" {
		seed = int64(hashString(flowID)) + seed
	}
	if stage != "" {
		seed = int64(hashString(stage)) + seed
	}
	if key != "" {
		seed = int64(hashString(key)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// ValidateSeed ensures the seed produces expected deterministic results
func (r *RNGAdapter) ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error {
	return nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

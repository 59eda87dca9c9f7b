package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/internal/classify"
	"fabflow/internal/errors"
	"fabflow/ports"
)

// Catalog backend names
const (
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Mask collaborator modes
const (
	MaskModeLocal = "local"
	MaskModeHTTP  = "http"
)

// Config represents the complete application configuration
type Config struct {
	Catalog  CatalogConfig
	Models   ModelConfig
	Masks    MaskConfig
	Server   ServerConfig
	Planning PlanningConfig
}

// CatalogConfig holds tool catalog backend settings
type CatalogConfig struct {
	Backend     string        // yaml | sqlite | postgres
	File        string        // yaml backend catalog file
	SQLitePath  string        // sqlite backend database file
	DatabaseURL string        // postgres backend DSN
	QueryBudget time.Duration // per-query deadline, zero disables
}

// ModelConfig holds surrogate model registry settings
type ModelConfig struct {
	RegistryDir string
}

// MaskConfig holds mask-extraction collaborator settings
type MaskConfig struct {
	Mode       string // local | http
	ServiceURL string
	OutputDir  string
	Timeout    time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// LithoRecipes are the fixed sub-recipes lithography steps carry. They are
// fleet standards, configured rather than computed.
type LithoRecipes struct {
	ResistCoat string `yaml:"resist_coat"`
	Exposure   string `yaml:"exposure"`
	Develop    string `yaml:"develop"`
}

// PlanningConfig holds the tunable planning semantics: classifier cut points,
// the recipe parameter box, optimizer budgets, and lithography standards.
// A YAML planning file may overlay any of it.
type PlanningConfig struct {
	Thresholds      classify.Thresholds `yaml:"thresholds"`
	Space           process.Space       `yaml:"parameter_space"`
	IterationBudget int                 `yaml:"iteration_budget"`
	GridPoints      int                 `yaml:"grid_points"`
	Litho           LithoRecipes        `yaml:"litho_recipes"`
	MaskLayer       ports.MaskLayer     `yaml:"mask_layer"`
}

// DefaultPlanning returns the canonical planning semantics
func DefaultPlanning() PlanningConfig {
	return PlanningConfig{
		Thresholds:      classify.DefaultThresholds(),
		Space:           process.DefaultSpace(),
		IterationBudget: 100,
		GridPoints:      7,
		Litho: LithoRecipes{
			ResistCoat: "STANDARD_COAT_1UM",
			Exposure:   "STANDARD_EXPOSE_200mJ",
			Develop:    "STANDARD_DEV_60S",
		},
		MaskLayer: ports.MaskLayer{Layer: 10, Datatype: 0},
	}
}

// Load reads configuration from environment variables, overlays the optional
// planning file, and validates the result
func Load() (*Config, error) {
	config := &Config{
		Catalog:  loadCatalogConfig(),
		Models:   loadModelConfig(),
		Masks:    loadMaskConfig(),
		Server:   loadServerConfig(),
		Planning: DefaultPlanning(),
	}

	if file := os.Getenv("PLANNING_FILE"); file != "" {
		planning, err := LoadPlanningFile(file)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load planning file")
		}
		config.Planning = planning
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadPlanningFile reads a YAML planning overlay on top of the defaults.
// Absent keys keep their default; a present parameter_space replaces the
// default box wholesale.
func LoadPlanningFile(path string) (PlanningConfig, error) {
	planning := DefaultPlanning()

	data, err := os.ReadFile(path)
	if err != nil {
		return planning, errors.Wrapf(err, "read planning file %s", path)
	}
	if err := yaml.Unmarshal(data, &planning); err != nil {
		return planning, errors.ConfigInvalid(fmt.Sprintf("parse planning file %s: %v", path, err))
	}
	if err := planning.Validate(); err != nil {
		return planning, err
	}
	return planning, nil
}

// Validate rejects planning semantics the engine cannot honor
func (p PlanningConfig) Validate() error {
	if err := p.Thresholds.Validate(); err != nil {
		return err
	}
	if err := p.Space.Validate(); err != nil {
		return err
	}
	if p.IterationBudget <= 0 {
		return errors.ConfigInvalid("iteration_budget must be > 0")
	}
	if p.GridPoints < 2 {
		return errors.ConfigInvalid("grid_points must be >= 2")
	}
	if p.Litho.ResistCoat == "" || p.Litho.Exposure == "" || p.Litho.Develop == "" {
		return errors.ConfigInvalid("litho_recipes must name all three sub-recipes")
	}
	if p.MaskLayer.Layer < 0 || p.MaskLayer.Datatype < 0 {
		return errors.ConfigInvalid("mask_layer indexes must be >= 0")
	}
	return nil
}

// Fingerprint hashes the planning semantics for the plan manifest. Identical
// fingerprints guarantee identical classifier, optimizer, and litho behavior.
func (p PlanningConfig) Fingerprint() core.ConfigHash {
	settings := map[string]interface{}{
		"conformal_aspect_ratio":   p.Thresholds.ConformalAspectRatio,
		"anisotropic_aspect_ratio": p.Thresholds.AnisotropicAspectRatio,
		"iteration_budget":         p.IterationBudget,
		"grid_points":              p.GridPoints,
		"litho_resist_coat":        p.Litho.ResistCoat,
		"litho_exposure":           p.Litho.Exposure,
		"litho_develop":            p.Litho.Develop,
		"mask_layer":               fmt.Sprintf("%d/%d", p.MaskLayer.Layer, p.MaskLayer.Datatype),
	}
	for _, b := range p.Space {
		settings["bound_"+b.Name] = fmt.Sprintf("[%g,%g]", b.Low, b.High)
	}
	return core.ComputeConfigHash(settings)
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Backend:     getEnvOrDefault("CATALOG_BACKEND", BackendYAML),
		File:        getEnvOrDefault("CATALOG_FILE", "catalog.yaml"),
		SQLitePath:  getEnvOrDefault("CATALOG_SQLITE_PATH", "fabflow.db"),
		DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		QueryBudget: getEnvDurationOrDefault("CATALOG_QUERY_BUDGET", 0),
	}
}

func loadModelConfig() ModelConfig {
	return ModelConfig{
		RegistryDir: getEnvOrDefault("MODEL_REGISTRY_DIR", "models"),
	}
}

func loadMaskConfig() MaskConfig {
	return MaskConfig{
		Mode:       getEnvOrDefault("MASK_MODE", MaskModeLocal),
		ServiceURL: getEnvOrDefault("MASK_SERVICE_URL", ""),
		OutputDir:  getEnvOrDefault("MASK_OUTPUT_DIR", "output"),
		Timeout:    getEnvDurationOrDefault("MASK_TIMEOUT", 30*time.Second),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func validateConfig(config *Config) error {
	switch config.Catalog.Backend {
	case BackendYAML, BackendSQLite, BackendPostgres:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown catalog backend %q", config.Catalog.Backend))
	}
	if config.Catalog.Backend == BackendPostgres && config.Catalog.DatabaseURL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required for the postgres catalog backend")
	}
	if config.Catalog.Backend == BackendYAML && config.Catalog.File == "" {
		return errors.ConfigInvalid("CATALOG_FILE is required for the yaml catalog backend")
	}
	switch config.Masks.Mode {
	case MaskModeLocal:
	case MaskModeHTTP:
		if config.Masks.ServiceURL == "" {
			return errors.ConfigInvalid("MASK_SERVICE_URL is required for http mask mode")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown mask mode %q", config.Masks.Mode))
	}
	return config.Planning.Validate()
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

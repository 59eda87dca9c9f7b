package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"fabflow/adapters/knowledge/postgres"
	"fabflow/adapters/knowledge/sqlite"
	"fabflow/adapters/knowledge/yamlfile"
	"fabflow/adapters/masks"
	"fabflow/adapters/surrogate"
	"fabflow/app"
	"fabflow/domain/core"
	"fabflow/domain/process"
	"fabflow/internal/config"
	"fabflow/internal/migration"
	"fabflow/internal/version"
	"fabflow/ports"
)

// buildCatalog opens the configured catalog backend. The returned closer is
// always safe to call, including on error.
func buildCatalog(ctx context.Context, cfg *config.Config) (ports.ToolCatalogPort, func(), error) {
	noop := func() {}

	switch cfg.Catalog.Backend {
	case config.BackendYAML:
		catalog, err := yamlfile.Load(cfg.Catalog.File)
		if err != nil {
			return nil, noop, err
		}
		return catalog, noop, nil

	case config.BackendSQLite:
		catalog, err := sqlite.Open(cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return catalog, func() { catalog.Close() }, nil

	case config.BackendPostgres:
		db, err := sqlx.Connect("postgres", cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to postgres catalog: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("pinging postgres catalog: %w", err)
		}
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("migrating catalog schema: %w", err)
		}
		return postgres.NewCatalog(db), func() { db.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
}

func buildMasks(cfg *config.Config) ports.MaskServicePort {
	if cfg.Masks.Mode == config.MaskModeHTTP {
		return masks.NewHTTPMaskService(cfg.Masks.ServiceURL, cfg.Masks.Timeout)
	}
	return masks.NewLocalMaskService(cfg.Masks.OutputDir)
}

// buildPlanner wires a planner from configuration: catalog backend, mask
// collaborator, and the surrogate model registry.
func buildPlanner(ctx context.Context, cfg *config.Config) (*app.Planner, ports.ToolCatalogPort, func(), error) {
	catalog, closeCatalog, err := buildCatalog(ctx, cfg)
	if err != nil {
		return nil, nil, closeCatalog, err
	}

	registry, err := surrogate.LoadRegistry(ctx, cfg.Models.RegistryDir)
	if err != nil {
		closeCatalog()
		return nil, nil, func() {}, err
	}

	planner := app.NewPlanner(
		catalog,
		buildMasks(cfg),
		registry,
		cfg.Planning,
		core.NewQueryBudget(cfg.Catalog.QueryBudget),
		version.Version,
	)
	return planner, catalog, closeCatalog, nil
}

// readDescriptors reads a change descriptor array from path, or stdin when
// path is "-".
func readDescriptors(path string) ([]process.ChangeDescriptor, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading descriptors: %w", err)
	}

	var descriptors []process.ChangeDescriptor
	if err := json.Unmarshal(data, &descriptors); err != nil {
		return nil, fmt.Errorf("parsing descriptors: %w", err)
	}
	return descriptors, nil
}

// Package migration manages the PostgreSQL catalog schema.
package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"fabflow/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createToolsTable(ctx, db); err != nil {
		return errors.MigrationFailed(err, "failed to create tools table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.MigrationFailed(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createToolsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tools (
			tool_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			wafer_size_mm INT NOT NULL,
			capable_categories TEXT[] NOT NULL,
			incompatible_materials TEXT[] NOT NULL DEFAULT '{}',
			surrogate_model_ref TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_tools_status_wafer
		ON tools (status, wafer_size_mm)
	`)
	return err
}

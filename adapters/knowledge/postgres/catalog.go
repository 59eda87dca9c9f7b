// Package postgres implements the tool catalog against PostgreSQL. The
// schema lives in internal/migration and is applied at startup.
package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fabflow/domain/process"
	"fabflow/ports"
)

// Catalog implements ToolCatalogPort for PostgreSQL
type Catalog struct {
	db *sqlx.DB
}

// NewCatalog creates a new PostgreSQL tool catalog
func NewCatalog(db *sqlx.DB) *Catalog {
	return &Catalog{db: db}
}

// UpsertTool inserts or updates one catalog record
func (c *Catalog) UpsertTool(ctx context.Context, tool process.ToolRecord) error {
	if err := tool.Validate(); err != nil {
		return err
	}

	categories := make([]string, len(tool.CapableCategories))
	for i, cat := range tool.CapableCategories {
		categories[i] = string(cat)
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO tools (
			tool_id, status, wafer_size_mm, capable_categories,
			incompatible_materials, surrogate_model_ref, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (tool_id) DO UPDATE SET
			status = EXCLUDED.status,
			wafer_size_mm = EXCLUDED.wafer_size_mm,
			capable_categories = EXCLUDED.capable_categories,
			incompatible_materials = EXCLUDED.incompatible_materials,
			surrogate_model_ref = EXCLUDED.surrogate_model_ref,
			updated_at = NOW()`,
		tool.ToolID, tool.Status, tool.WaferSizeMM, pq.Array(categories),
		pq.Array(tool.IncompatibleMaterials), tool.SurrogateModelRef)
	return err
}

// SeedTools upserts a whole catalog in one transaction
func (c *Catalog) SeedTools(ctx context.Context, tools []process.ToolRecord) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tool := range tools {
		if err := tool.Validate(); err != nil {
			return err
		}
		categories := make([]string, len(tool.CapableCategories))
		for i, cat := range tool.CapableCategories {
			categories[i] = string(cat)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tools (
				tool_id, status, wafer_size_mm, capable_categories,
				incompatible_materials, surrogate_model_ref, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (tool_id) DO UPDATE SET
				status = EXCLUDED.status,
				wafer_size_mm = EXCLUDED.wafer_size_mm,
				capable_categories = EXCLUDED.capable_categories,
				incompatible_materials = EXCLUDED.incompatible_materials,
				surrogate_model_ref = EXCLUDED.surrogate_model_ref,
				updated_at = NOW()`,
			tool.ToolID, tool.Status, tool.WaferSizeMM, pq.Array(categories),
			pq.Array(tool.IncompatibleMaterials), tool.SurrogateModelRef)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// QueryTools pre-filters on what SQL can express: availability, wafer size,
// category capability, and material overlap. The selector re-verifies every
// constraint locally.
func (c *Catalog) QueryTools(ctx context.Context, q ports.ToolQuery) ([]process.ToolRecord, error) {
	if !q.Budget.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Budget.Duration())
		defer cancel()
	}

	materials := q.Materials
	if materials == nil {
		materials = []string{}
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT tool_id, status, wafer_size_mm, capable_categories,
		       incompatible_materials, surrogate_model_ref
		FROM tools
		WHERE status = 'AVAILABLE'
		  AND wafer_size_mm = $1
		  AND $2 = ANY(capable_categories)
		  AND NOT (incompatible_materials && $3)
		ORDER BY tool_id ASC
	`, q.WaferSizeMM, string(q.Category), pq.Array(materials))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTools(rows)
}

// ListTools returns the full catalog regardless of status
func (c *Catalog) ListTools(ctx context.Context) ([]process.ToolRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT tool_id, status, wafer_size_mm, capable_categories,
		       incompatible_materials, surrogate_model_ref
		FROM tools
		ORDER BY tool_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTools(rows)
}

func scanTools(rows *sql.Rows) ([]process.ToolRecord, error) {
	var tools []process.ToolRecord
	for rows.Next() {
		var tool process.ToolRecord
		var categories, incompatible []string
		err := rows.Scan(
			&tool.ToolID, &tool.Status, &tool.WaferSizeMM,
			pq.Array(&categories), pq.Array(&incompatible), &tool.SurrogateModelRef,
		)
		if err != nil {
			return nil, err
		}
		tool.CapableCategories = make([]process.Category, len(categories))
		for i, cat := range categories {
			tool.CapableCategories[i] = process.Category(cat)
		}
		if len(incompatible) > 0 {
			tool.IncompatibleMaterials = incompatible
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

// Ensure Catalog implements ToolCatalogPort
var _ ports.ToolCatalogPort = (*Catalog)(nil)

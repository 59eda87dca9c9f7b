// Package sqlite implements the tool catalog on an embedded SQLite database
// for single-host deployments with no external server.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"fabflow/domain/process"
	"fabflow/ports"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Catalog implements ToolCatalogPort on SQLite. Category and material lists
// are stored as JSON text columns.
type Catalog struct {
	db *sql.DB
}

// Open creates the database file if needed, applies pragmas, and migrates
// the schema.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite catalog: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog pragma %q: %w", p, err)
		}
	}

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the database handle
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS tools (
			tool_id                TEXT PRIMARY KEY,
			status                 TEXT NOT NULL,
			wafer_size_mm          INTEGER NOT NULL,
			capable_categories     TEXT NOT NULL,
			incompatible_materials TEXT NOT NULL DEFAULT '[]',
			surrogate_model_ref    TEXT NOT NULL DEFAULT '',
			updated_at             TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_tools_status_wafer ON tools(status, wafer_size_mm);
	`)
	if err != nil {
		return fmt.Errorf("migrate catalog schema: %w", err)
	}
	return nil
}

// UpsertTool inserts or updates one catalog record
func (c *Catalog) UpsertTool(ctx context.Context, tool process.ToolRecord) error {
	if err := tool.Validate(); err != nil {
		return err
	}

	categories, err := json.Marshal(tool.CapableCategories)
	if err != nil {
		return err
	}
	incompatible, err := json.Marshal(emptyIfNil(tool.IncompatibleMaterials))
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO tools (
			tool_id, status, wafer_size_mm, capable_categories,
			incompatible_materials, surrogate_model_ref, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (tool_id) DO UPDATE SET
			status = excluded.status,
			wafer_size_mm = excluded.wafer_size_mm,
			capable_categories = excluded.capable_categories,
			incompatible_materials = excluded.incompatible_materials,
			surrogate_model_ref = excluded.surrogate_model_ref,
			updated_at = datetime('now')`,
		tool.ToolID, tool.Status, tool.WaferSizeMM,
		string(categories), string(incompatible), tool.SurrogateModelRef)
	return err
}

// SeedTools upserts a whole catalog in one transaction
func (c *Catalog) SeedTools(ctx context.Context, tools []process.ToolRecord) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tool := range tools {
		if err := tool.Validate(); err != nil {
			return err
		}
		categories, err := json.Marshal(tool.CapableCategories)
		if err != nil {
			return err
		}
		incompatible, err := json.Marshal(emptyIfNil(tool.IncompatibleMaterials))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tools (
				tool_id, status, wafer_size_mm, capable_categories,
				incompatible_materials, surrogate_model_ref, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
			ON CONFLICT (tool_id) DO UPDATE SET
				status = excluded.status,
				wafer_size_mm = excluded.wafer_size_mm,
				capable_categories = excluded.capable_categories,
				incompatible_materials = excluded.incompatible_materials,
				surrogate_model_ref = excluded.surrogate_model_ref,
				updated_at = datetime('now')`,
			tool.ToolID, tool.Status, tool.WaferSizeMM,
			string(categories), string(incompatible), tool.SurrogateModelRef)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// QueryTools pre-filters availability, wafer size, and category. Material
// conflicts are left to the selector since JSON text columns cannot express
// set overlap cleanly.
func (c *Catalog) QueryTools(ctx context.Context, q ports.ToolQuery) ([]process.ToolRecord, error) {
	if !q.Budget.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Budget.Duration())
		defer cancel()
	}

	// capable_categories holds a JSON array of quoted names, so a substring
	// match on the quoted category is exact.
	needle := fmt.Sprintf("%q", string(q.Category))

	rows, err := c.db.QueryContext(ctx, `
		SELECT tool_id, status, wafer_size_mm, capable_categories,
		       incompatible_materials, surrogate_model_ref
		FROM tools
		WHERE status = 'AVAILABLE'
		  AND wafer_size_mm = ?
		  AND instr(capable_categories, ?) > 0
		ORDER BY tool_id ASC
	`, q.WaferSizeMM, needle)
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
		var categoriesJSON, incompatibleJSON string
		err := rows.Scan(
			&tool.ToolID, &tool.Status, &tool.WaferSizeMM,
			&categoriesJSON, &incompatibleJSON, &tool.SurrogateModelRef,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(categoriesJSON), &tool.CapableCategories); err != nil {
			return nil, fmt.Errorf("tool %s has corrupt capable_categories: %w", tool.ToolID, err)
		}
		var incompatible []string
		if strings.TrimSpace(incompatibleJSON) != "" {
			if err := json.Unmarshal([]byte(incompatibleJSON), &incompatible); err != nil {
				return nil, fmt.Errorf("tool %s has corrupt incompatible_materials: %w", tool.ToolID, err)
			}
		}
		if len(incompatible) > 0 {
			tool.IncompatibleMaterials = incompatible
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Ensure Catalog implements ToolCatalogPort
var _ ports.ToolCatalogPort = (*Catalog)(nil)

package ports

import (
	"context"

	"fabflow/domain/core"
	"fabflow/domain/process"
)

// ToolCatalogPort answers tool queries from the fab knowledge catalog
type ToolCatalogPort interface {
	// QueryTools returns candidate tools for the query. Backends may
	// pre-filter on whatever the query expresses; the selector re-verifies
	// every hard constraint on the result regardless.
	QueryTools(ctx context.Context, req ToolQuery) ([]process.ToolRecord, error)

	// ListTools returns every record in the catalog
	ListTools(ctx context.Context) ([]process.ToolRecord, error)
}

// ToolQuery defines the hard-constraint filter for tool selection
type ToolQuery struct {
	Category    process.Category // required process capability
	WaferSizeMM int              // wafer size the flow runs on
	Materials   []string         // materials the tool must tolerate
	Budget      core.QueryBudget // optional per-query deadline, zero means none
}

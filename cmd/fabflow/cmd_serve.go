package main

import (
	"github.com/spf13/cobra"

	"fabflow/internal/api"
	"fabflow/internal/config"
	"fabflow/internal/version"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planning HTTP API",
	Long: `Starts the HTTP API: plan flows, download travelers and reports, list
the catalog, and stream planning lifecycle events over SSE. Listens on
PORT unless --addr overrides it.`,
	Args: cobra.NoArgs,
	RunE: runServeCmd,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (default :$PORT)")
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	planner, catalog, closeCatalog, err := buildPlanner(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	service := api.NewApp(planner, catalog, version.Version)
	defer service.Close()

	addr := serveFlags.addr
	if addr == "" {
		addr = ":" + cfg.Server.Port
	}
	return service.Start(api.Config{Addr: addr})
}

package main

import (
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"fabflow/internal/config"
	"fabflow/internal/mcpserver"
	"fabflow/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve planning tools over MCP stdio",
	Long: `Starts an MCP server on stdin/stdout exposing plan_flow,
classify_change, and list_tools so agent clients can plan flows
conversationally. Logs go to stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: runMCPCmd,
}

func runMCPCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	planner, catalog, closeCatalog, err := buildPlanner(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	s := mcpserver.New(planner, catalog, cfg.Planning.Thresholds, version.Version)
	log.Println("Starting fabflow MCP server on stdio")
	return server.ServeStdio(s)
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fabflow/internal/config"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tool catalog",
	Long: `Lists every tool in the configured catalog backend with status, wafer
size, supported categories, material incompatibilities, and the surrogate
model each tool points at.`,
	Args: cobra.NoArgs,
	RunE: runToolsCmd,
}

func runToolsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	catalog, closeCatalog, err := buildCatalog(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	tools, err := catalog.ListTools(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing catalog: %w", err)
	}
	if len(tools) == 0 {
		fmt.Println("Catalog is empty.")
		return nil
	}

	fmt.Printf("%-12s %-14s %-7s %-26s %-24s %s\n",
		"TOOL", "STATUS", "WAFER", "CATEGORIES", "INCOMPATIBLE", "SURROGATE")
	for _, t := range tools {
		categories := make([]string, len(t.CapableCategories))
		for i, c := range t.CapableCategories {
			categories[i] = string(c)
		}
		incompatible := strings.Join(t.IncompatibleMaterials, ",")
		if incompatible == "" {
			incompatible = "-"
		}
		surrogateRef := string(t.SurrogateModelRef)
		if surrogateRef == "" {
			surrogateRef = "-"
		}
		fmt.Printf("%-12s %-14s %-7s %-26s %-24s %s\n",
			t.ToolID, t.Status, fmt.Sprintf("%dmm", t.WaferSizeMM),
			strings.Join(categories, ","), incompatible, surrogateRef)
	}
	fmt.Printf("\n%d tools (%s backend)\n", len(tools), cfg.Catalog.Backend)
	return nil
}

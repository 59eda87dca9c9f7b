// Command fabflow plans semiconductor process flows. It turns ordered
// structural change descriptors into executable process steps by classifying
// each change, selecting a compatible tool from the catalog, and optimizing
// recipe parameters against the tool's surrogate model.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	apperrors "fabflow/internal/errors"
	"fabflow/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "fabflow",
	Short: "Deterministic process-flow planning for structural changes",
	Long: `Fabflow converts a sequence of structural change descriptors into a
planned process flow. Each descriptor is classified (deposition, etch, or
lithography), matched against the tool catalog, and given an optimized
recipe from the tool's surrogate model. Planning is deterministic: the
same descriptors, catalog, and configuration always produce the same
steps and the same plan fingerprint.

Catalog backends (yaml file, SQLite, Postgres) and the mask collaborator
are selected through the environment: CATALOG_BACKEND, CATALOG_FILE,
CATALOG_SQLITE_PATH, DATABASE_URL, MODEL_REGISTRY_DIR, MASK_MODE. A .env
file in the working directory is loaded when present.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.Version
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	if err := rootCmd.Execute(); err != nil {
		if code := apperrors.GetCode(err); code != "UNKNOWN" {
			fmt.Fprintf(os.Stderr, "%s: %v\n", code, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

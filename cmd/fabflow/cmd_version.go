package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fabflow/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fabflow version",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("fabflow %s\n", version.Version)
	},
}

// Package main provides the entry point for the regionpatch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for regionpatch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regionpatch",
		Short: "Assign geocoded observations to administrative regions",
		Long: `regionpatch resolves latitude/longitude observations to administrative
regions at four nested granularity levels and appends the region
identifiers and names as columns to CSV tables.

Boundary polygons are downloaded once per (vintage, level) pair and
cached locally. Multiple dataset vintages are merged so regions retired
between releases remain resolvable.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewPatchCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

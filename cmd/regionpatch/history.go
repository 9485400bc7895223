package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/epifield/regionpatch/internal/config"
	"github.com/epifield/regionpatch/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded patch runs",
		Long: `History lists previously recorded patch runs, newest first, with their
match statistics. Runs are recorded automatically by the patch command.

Examples:
  # Show the last 10 runs
  regionpatch history

  # Show the last 3 runs with per-file statistics
  regionpatch history --limit 3 --files

  # Show match-rate history for one input file
  regionpatch history --file data/sites.csv`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to show")
	cmd.Flags().Bool("files", false, "Show per-file statistics for each run")
	cmd.Flags().String("file", "", "Show history for one input file path instead of runs")
	cmd.Flags().BoolP("json", "j", false, "Output JSON instead of the table")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showFiles, err := cmd.Flags().GetBool("files")
	if err != nil {
		return err
	}
	filePath, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// A missing database just means nothing has been recorded yet.
	opts := database.Options{CreateIfNotExists: false, EnableWAL: false}
	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}
	defer db.Close()

	ctx := context.Background()

	if filePath != "" {
		return printFileHistory(ctx, cmd, db, filePath, limit, asJSON)
	}
	return printRuns(ctx, cmd, db, limit, showFiles, asJSON)
}

// printRuns writes the recent runs, optionally with per-file details.
func printRuns(ctx context.Context, cmd *cobra.Command, db *database.RunDB, limit int, showFiles, asJSON bool) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "Run %d  %s  (%s)\n",
			run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.Duration.Round(10*time.Millisecond))
		fmt.Fprintf(out, "  vintages: %s  max distance: %.0f km\n",
			run.Vintages, run.MaxDistance/1000)
		fmt.Fprintf(out, "  files: %d", run.Files)
		if run.FailedFiles > 0 {
			fmt.Fprintf(out, " (%d failed)", run.FailedFiles)
		}
		fmt.Fprintf(out, "  matched: %d/%d rows (%.1f%%)\n",
			run.MatchedRows, run.CoordRows, run.MatchRate()*100)

		if showFiles {
			files, err := db.ListRunFiles(ctx, run.ID)
			if err != nil {
				return fmt.Errorf("failed to list run files: %w", err)
			}
			for _, f := range files {
				if f.Error != "" {
					fmt.Fprintf(out, "    %s: FAILED (%s)\n", f.Path, f.Error)
					continue
				}
				fmt.Fprintf(out, "    %s: %d/%d rows matched (%.1f%%)\n",
					f.Path, f.MatchedRows, f.CoordRows, f.MatchRate*100)
			}
		}
		fmt.Fprintln(out)
	}

	return nil
}

// printFileHistory writes the recorded statistics for one input path.
func printFileHistory(ctx context.Context, cmd *cobra.Command, db *database.RunDB, path string, limit int, asJSON bool) error {
	records, err := db.FileHistory(ctx, path, limit)
	if err != nil {
		return fmt.Errorf("failed to query file history: %w", err)
	}

	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintf(out, "No recorded runs for %s.\n", path)
		return nil
	}

	fmt.Fprintf(out, "History for %s:\n", path)
	for _, f := range records {
		if f.Error != "" {
			fmt.Fprintf(out, "  run %d: FAILED (%s)\n", f.RunID, f.Error)
			continue
		}
		fmt.Fprintf(out, "  run %d: %d/%d rows matched (%.1f%%)\n",
			f.RunID, f.MatchedRows, f.CoordRows, f.MatchRate*100)
	}

	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/epifield/regionpatch/internal/boundary"
	"github.com/epifield/regionpatch/internal/config"
	"github.com/epifield/regionpatch/internal/database"
	"github.com/epifield/regionpatch/internal/geo"
	"github.com/epifield/regionpatch/internal/model"
	"github.com/epifield/regionpatch/internal/patcher"
	"github.com/epifield/regionpatch/internal/report"
)

// NewPatchCmd creates the patch command.
func NewPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch [file...]",
		Short: "Append region columns to CSV tables",
		Long: `Patch resolves the latitude/longitude columns of each input table to
administrative regions at four granularity levels and appends an
identifier and a name column per level.

Re-running patch on an already patched table replaces the region
columns instead of duplicating them. Rows without coordinates, and
rows farther than the maximum distance from every region, keep empty
region cells.

Examples:
  # Patch explicit files
  regionpatch patch sites.csv visits.csv

  # Patch every CSV in a directory via glob discovery
  regionpatch patch --glob 'data/*.csv'

  # Use a single boundary vintage and a tighter distance bound
  regionpatch patch --vintages 2024 --max-distance 10 sites.csv

  # Emit a JSON run report to a file
  regionpatch patch --json --output report.json sites.csv

Configuration file (.regionpatch) example:
  vintages: [2024, 2016]
  max_distance_km: 50
  latitude_column: lat
  longitude_column: lng`,
		Args: cobra.ArbitraryArgs,
		RunE: runPatchCmd,
	}

	// Boundary source flags
	cmd.Flags().StringP("base-url", "u", config.DefaultBaseURL,
		"Boundary source root URL")
	cmd.Flags().IntSlice("vintages", config.DefaultVintages(),
		"Ordered boundary vintages, primary first")
	cmd.Flags().String("cache-dir", "",
		"Boundary cache directory (default: XDG cache directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each boundary download")
	cmd.Flags().Float64("rate", config.DefaultRequestsPerSecond,
		"Maximum boundary download requests per second")

	// Resolution flags
	cmd.Flags().Float64P("max-distance", "d", config.DefaultMaxDistance/1000,
		"Maximum resolution distance in kilometres")
	cmd.Flags().String("lat-column", config.DefaultLatitudeColumn,
		"Input column carrying latitude")
	cmd.Flags().String("lon-column", config.DefaultLongitudeColumn,
		"Input column carrying longitude")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultConcurrency,
		"Number of files patched in parallel")
	cmd.Flags().StringP("glob", "g", config.DefaultFileGlob,
		"Glob pattern for input discovery when no files are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .regionpatch in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write run report to specified file path (creates directories if needed)")

	return cmd
}

// runPatchCmd executes the patch command.
func runPatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runPatch(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Apply config file settings first so explicit flags win below.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL, err = cmd.Flags().GetString("base-url")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("vintages") {
		cfg.Vintages, err = cmd.Flags().GetIntSlice("vintages")
		if err != nil {
			return nil, err
		}
	}

	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, err
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}

	if cmd.Flags().Changed("timeout") {
		cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("rate") {
		cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rate")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("max-distance") {
		km, err := cmd.Flags().GetFloat64("max-distance")
		if err != nil {
			return nil, err
		}
		cfg.MaxDistance = km * 1000
	}

	if cmd.Flags().Changed("lat-column") {
		cfg.LatitudeColumn, err = cmd.Flags().GetString("lat-column")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("lon-column") {
		cfg.LongitudeColumn, err = cmd.Flags().GetString("lon-column")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("batch") {
		cfg.Concurrency, err = cmd.Flags().GetInt("batch")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("glob") {
		cfg.FileGlob, err = cmd.Flags().GetString("glob")
		if err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Always record runs using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments override both the config file list and glob
	// discovery.
	if len(args) > 0 {
		cfg.Files = args
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// discoverFiles returns the input file list: explicit paths when given,
// otherwise the sorted glob matches. Glob order is filesystem dependent,
// so sorting keeps runs reproducible.
func discoverFiles(cfg *config.Config) ([]string, error) {
	if len(cfg.Files) > 0 {
		return cfg.Files, nil
	}

	matches, err := filepath.Glob(cfg.FileGlob)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", cfg.FileGlob, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// buildResolvers downloads, merges, and indexes the boundary data for
// every granularity level. The levels are independent, so they are built
// concurrently.
func buildResolvers(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]*geo.Resolver, error) {
	fetcher := boundary.NewFetcher(cfg.CacheDir,
		boundary.WithBaseURL(cfg.BaseURL),
		boundary.WithFilenameTemplate(cfg.FilenameTemplate),
		boundary.WithTimeout(cfg.FetchTimeout),
		boundary.WithRateLimit(cfg.RequestsPerSecond),
		boundary.WithFetcherLogger(logger),
	)
	loader := boundary.NewLoader(cfg.IDProperty, cfg.NameProperty)
	merger := boundary.NewMerger(fetcher, loader, boundary.WithMergerLogger(logger))

	resolvers := make([]*geo.Resolver, model.LevelCount)

	g, gctx := errgroup.WithContext(ctx)
	for level := 0; level < model.LevelCount; level++ {
		g.Go(func() error {
			set, err := merger.BuildSet(gctx, level, cfg.Vintages)
			if err != nil {
				return fmt.Errorf("failed to build level %d boundary set: %w", level, err)
			}

			index, err := geo.BuildIndex(set, cfg.MaxDistance)
			if err != nil {
				return fmt.Errorf("failed to build level %d index: %w", level, err)
			}

			logger.Info("boundary index built",
				"level", level,
				"regions", index.Regions(),
			)

			resolvers[level] = geo.NewResolver(index)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return resolvers, nil
}

// runPatch executes the patch run.
func runPatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	files, err := discoverFiles(cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no input files (pass file paths as arguments or use --glob)")
	}

	logger.Info("starting patch run",
		"files", len(files),
		"vintages", cfg.Vintages,
		"maxDistanceM", cfg.MaxDistance,
		"concurrency", cfg.Concurrency,
	)

	// Open database connection if saving is enabled
	var db *database.RunDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	startTime := time.Now()

	fmt.Printf("Building boundary indices for vintages %v...\n", cfg.Vintages)
	resolvers, err := buildResolvers(ctx, cfg, logger)
	if err != nil {
		return err
	}

	p := patcher.New(resolvers,
		patcher.WithLogger(logger),
		patcher.WithCoordinateColumns(cfg.LatitudeColumn, cfg.LongitudeColumn),
	)
	bp := patcher.NewBatchProcessor(p,
		patcher.WithConcurrency(cfg.Concurrency),
		patcher.WithBatchLogger(logger),
	)

	fmt.Printf("Patching %d files (concurrency: %d)...\n\n", len(files), cfg.Concurrency)

	var mu sync.Mutex
	reports, err := bp.ProcessBatchWithCallback(ctx, files, func(fr *model.FileReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		if fr.Failed() {
			fmt.Printf("[%d/%d] FAILED %s: %s\n", index+1, len(files), fr.Path, fr.Error)
			return
		}
		fmt.Printf("[%d/%d] Patched %s: %d/%d rows matched (%.1f%%)\n",
			index+1, len(files), fr.Path, fr.Matched(), fr.CoordRows, fr.MatchRate()*100)
	})
	if err != nil {
		return err
	}

	run := &model.RunReport{
		StartedAt:   startTime,
		Duration:    time.Since(startTime),
		Vintages:    cfg.Vintages,
		MaxDistance: cfg.MaxDistance,
		Files:       reports,
	}

	fmt.Printf("\nPatch run completed in %s\n\n", run.Duration.Round(time.Millisecond))

	if err := outputReport(cfg, run); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}

	if err := saveRunReport(ctx, db, run, logger); err != nil {
		logger.Error("failed to save run report", "error", err)
	}

	if n := run.FailedFiles(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(files))
	}
	return nil
}

// outputReport outputs the run report in the requested format.
func outputReport(cfg *config.Config, run *model.RunReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full per-level match counts)
	if cfg.JSONReport {
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(run)
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(run)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(run)
	return err
}

// saveRunReport saves the run report to the database if enabled.
// If db is nil, this function is a no-op.
func saveRunReport(ctx context.Context, db *database.RunDB, run *model.RunReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	runID, err := db.SaveRunReport(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}

	logger.Info("run report saved to database", "runID", runID)
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/epifield/regionpatch/internal/boundary"
	"github.com/epifield/regionpatch/internal/config"
	"github.com/epifield/regionpatch/internal/model"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download boundary files into the local cache",
		Long: `Fetch downloads the boundary file for every (vintage, level) pair into
the local cache, so later patch runs work without network access.
Files already present in the cache are skipped.

Examples:
  # Prefetch the default vintages
  regionpatch fetch

  # Prefetch a specific vintage into a custom cache directory
  regionpatch fetch --vintages 2021 --cache-dir ./boundaries`,
		Args: cobra.NoArgs,
		RunE: runFetchCmd,
	}

	cmd.Flags().StringP("base-url", "u", config.DefaultBaseURL,
		"Boundary source root URL")
	cmd.Flags().IntSlice("vintages", config.DefaultVintages(),
		"Boundary vintages to download")
	cmd.Flags().String("cache-dir", "",
		"Boundary cache directory (default: XDG cache directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each boundary download")
	cmd.Flags().Float64("rate", config.DefaultRequestsPerSecond,
		"Maximum boundary download requests per second")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .regionpatch in current or home directory)")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildFetchConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runFetch(ctx, cfg, logger)
}

// buildFetchConfig creates a Config from the fetch command's flags.
// Fetch carries only the boundary-source subset of the configuration.
func buildFetchConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

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

	return cfg, nil
}

// runFetch downloads every (vintage, level) boundary file sequentially.
// The rate limiter spaces the requests, so there is nothing to gain from
// fetching in parallel.
func runFetch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fetcher := boundary.NewFetcher(cfg.CacheDir,
		boundary.WithBaseURL(cfg.BaseURL),
		boundary.WithFilenameTemplate(cfg.FilenameTemplate),
		boundary.WithTimeout(cfg.FetchTimeout),
		boundary.WithRateLimit(cfg.RequestsPerSecond),
		boundary.WithFetcherLogger(logger),
	)

	total := len(cfg.Vintages) * model.LevelCount
	fmt.Printf("Fetching %d boundary files into %s...\n", total, cfg.CacheDir)

	var fetched int
	for _, vintage := range cfg.Vintages {
		for level := 0; level < model.LevelCount; level++ {
			path, err := fetcher.Fetch(ctx, vintage, level)
			if err != nil {
				return fmt.Errorf("fetch failed: %w", err)
			}
			fetched++
			fmt.Printf("[%d/%d] %s\n", fetched, total, path)
		}
	}

	fmt.Println("\nAll boundary files cached.")
	return nil
}

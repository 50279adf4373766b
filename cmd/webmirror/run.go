package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yendo/webmirror/internal/config"
	"github.com/yendo/webmirror/internal/console"
	"github.com/yendo/webmirror/internal/database"
	"github.com/yendo/webmirror/internal/fetcher"
	"github.com/yendo/webmirror/internal/log"
	"github.com/yendo/webmirror/internal/metadata"
	"github.com/yendo/webmirror/internal/mirror"
	"github.com/yendo/webmirror/internal/model"
	"github.com/yendo/webmirror/internal/pathmap"
	"github.com/yendo/webmirror/internal/processor"
	"github.com/yendo/webmirror/internal/report"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <url> [<url>...]",
		Short: "Mirror one or more web pages with their assets",
		Long: `Run downloads each URL into a <host>/<path> directory tree.

The page is saved as index.html with root-relative stylesheet, script,
and image references rewritten to relative ones, and every referenced
asset is downloaded next to it.

Examples:
  # Mirror a single page
  webmirror run https://example.com/docs/page.html

  # Mirror several pages concurrently
  webmirror run https://example.com/a https://example.org/b

  # Print link and image statistics for each page
  webmirror run --metadata https://example.com/

  # Mirror into a specific directory
  webmirror run --dir /srv/mirror https://example.com/

  # Write a JSON run summary to a file
  webmirror run --json --output summary.json https://example.com/

Configuration file (.webmirror) example:
  sites:
    example.com:
      tags: [link, script, img]
      assetConcurrency: 4
  defaults:
    assetConcurrency: 8`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	// Mirroring behavior flags
	cmd.Flags().BoolP("metadata", "M", false,
		"Print link/image statistics for each mirrored page")
	cmd.Flags().StringP("dir", "d", "",
		"Base directory for the mirror tree (default: current directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of URLs mirrored in parallel")
	cmd.Flags().IntP("asset-concurrency", "a", config.DefaultAssetConcurrency,
		"Maximum concurrent asset downloads per page")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webmirror in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write run summary to specified file path (creates directories if needed)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(cfg.Verbose)
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

	return runMirror(ctx, cfg, logger)
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

	cfg.WithMetadata, err = cmd.Flags().GetBool("metadata")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.AssetConcurrency, err = cmd.Flags().GetInt("asset-concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
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

	// Always record mirrored pages using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the target URLs
	cfg.Targets = args

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// Sensitive values, including credentials embedded in target URLs, are
// masked before they reach the output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runMirror executes the mirror run.
func runMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting mirror run",
		"targets", cfg.Targets,
		"concurrency", cfg.Concurrency,
		"outputDir", cfg.OutputDir,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if history recording is enabled.
	// A broken database degrades to a run without history, not a failure.
	var db *database.MirrorDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("history database unavailable, continuing without it",
				"dir", cfg.DBDir,
				"error", err,
			)
		} else {
			defer db.Close()
			logger.Info("history database opened", "dir", cfg.DBDir)
		}
	}

	p, err := buildProcessor(cfg, logger)
	if err != nil {
		return err
	}

	mirrorReport, err := p.ProcessAll(ctx, cfg.Targets, cfg.WithMetadata)
	if err != nil {
		return err
	}

	saveResults(ctx, db, mirrorReport, logger)

	if err := outputReport(cfg, mirrorReport); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}

	return nil
}

// buildProcessor wires the fetcher, path mapper, and per-site writers
// into a batch processor.
func buildProcessor(cfg *config.Config, logger *slog.Logger) (*processor.Processor, error) {
	mapper, err := pathmap.New(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	out := console.New(os.Stdout)

	client := fetcher.New(
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithConsole(out),
	)

	// Each target gets a writer configured from its host's site config,
	// so one batch can mix per-site tag sets and pool sizes.
	writerFor := func(targetURL string) *mirror.Writer {
		site := siteConfigFor(cfg, targetURL)

		tags := config.DefaultRewriteTags()
		if len(site.Tags) > 0 {
			tags = site.Tags
		}

		assetConcurrency := cfg.AssetConcurrency
		if site.AssetConcurrency > 0 {
			assetConcurrency = site.AssetConcurrency
		}

		return mirror.NewWriter(client, mapper,
			mirror.WithTags(tags),
			mirror.WithAssetConcurrency(assetConcurrency),
			mirror.WithConsole(out),
			mirror.WithLogger(logger),
		)
	}

	return processor.New(client, writerFor,
		processor.WithConcurrency(cfg.Concurrency),
		processor.WithConsole(out),
		processor.WithLogger(logger),
	), nil
}

// siteConfigFor resolves the site configuration for a target URL by host.
func siteConfigFor(cfg *config.Config, targetURL string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	u, err := url.Parse(targetURL)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}

	return cfg.SiteConfigs.GetSiteConfig(u.Host)
}

// saveResults records each mirrored page in the history database.
// Recording is best effort; failures are logged and skipped.
func saveResults(ctx context.Context, db *database.MirrorDB, mirrorReport *model.MirrorReport, logger *slog.Logger) {
	if db == nil {
		return
	}

	for i := range mirrorReport.Pages {
		if !mirrorReport.Pages[i].Succeeded() {
			continue
		}

		// Metadata reporting may be off, but the stored record still
		// carries the counts. Work on a copy so the run summary keeps
		// metadata only when the user asked for it.
		rec := mirrorReport.Pages[i]
		if rec.Metadata == nil {
			if md, err := metadataForSavedPage(rec.SavedPath); err == nil {
				rec.Metadata = md
			}
		}

		if _, err := db.SavePageResult(ctx, rec); err != nil {
			logger.Error("failed to record mirrored page",
				"url", rec.URL,
				"error", err,
			)
		}
	}
}

// metadataForSavedPage recomputes page statistics from the saved file.
func metadataForSavedPage(savedPath string) (*model.Metadata, error) {
	data, err := os.ReadFile(savedPath) //nolint:gosec // Path was produced by this run
	if err != nil {
		return nil, err
	}
	md, err := metadata.Compute(string(data))
	if err != nil {
		return nil, err
	}
	return &md, nil
}

// outputReport outputs the run summary in the requested format.
func outputReport(cfg *config.Config, mirrorReport *model.MirrorReport) error {
	// The default text summary only appears when explicitly redirected
	// to a file; console lines already cover the interactive case.
	if !cfg.JSONReport && !cfg.MarkdownReport && cfg.ReportFile == "" {
		return nil
	}

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

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewVersionedJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.WithMetadata))
	}

	_, err := writer.Write(mirrorReport)
	return err
}

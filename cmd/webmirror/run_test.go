package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yendo/webmirror/internal/config"
	"github.com/yendo/webmirror/internal/model"
)

// TestNewRunCmd tests the run command creation.
func TestNewRunCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "run <url> [<url>...]" {
			t.Errorf("expected use 'run <url> [<url>...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has metadata flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("metadata")
		if flag == nil {
			t.Fatal("expected metadata flag")
		}
		if flag.Shorthand != "M" {
			t.Errorf("expected shorthand 'M', got %q", flag.Shorthand)
		}
	})

	t.Run("has dir flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("dir")
		if flag == nil {
			t.Fatal("expected dir flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has concurrency flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("concurrency")
		if flag == nil {
			t.Fatal("expected concurrency flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has asset-concurrency flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("asset-concurrency")
		if flag == nil {
			t.Fatal("expected asset-concurrency flag")
		}
		if flag.Shorthand != "a" {
			t.Errorf("expected shorthand 'a', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("markdown")
		if flag == nil {
			t.Fatal("expected markdown flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestSetupLogger tests the logger setup.
func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("creates logger for verbose mode", func(t *testing.T) {
		t.Parallel()
		if setupLogger(true) == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("creates logger for non-verbose mode", func(t *testing.T) {
		t.Parallel()
		if setupLogger(false) == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBuildConfig tests config construction from flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults with targets", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://example.com/" {
			t.Errorf("expected one target, got %v", cfg.Targets)
		}
		if cfg.Concurrency != config.DefaultConcurrency {
			t.Errorf("expected default concurrency, got %d", cfg.Concurrency)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected default timeout, got %s", cfg.Timeout)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to default to true")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("flag overrides", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		args := []string{
			"--metadata",
			"--dir", "/tmp/mirror",
			"--timeout", "5s",
			"--concurrency", "2",
			"--asset-concurrency", "3",
		}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.WithMetadata {
			t.Error("expected metadata to be enabled")
		}
		if cfg.OutputDir != "/tmp/mirror" {
			t.Errorf("expected output dir /tmp/mirror, got %q", cfg.OutputDir)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected 5s timeout, got %s", cfg.Timeout)
		}
		if cfg.Concurrency != 2 || cfg.AssetConcurrency != 3 {
			t.Errorf("expected concurrency 2/3, got %d/%d", cfg.Concurrency, cfg.AssetConcurrency)
		}
	})

	t.Run("missing explicit config file errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{"--config", "/nonexistent/.webmirror"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		if _, err := buildConfig(cmd, []string{"https://example.com/"}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("loads site config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".webmirror")
		content := "sites:\n  example.com:\n    tags: [img]\n    assetConcurrency: 2\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		site := cfg.SiteConfigs.GetSiteConfig("example.com")
		if len(site.Tags) != 1 || site.Tags[0] != "img" {
			t.Errorf("expected site tags [img], got %v", site.Tags)
		}
		if site.AssetConcurrency != 2 {
			t.Errorf("expected site asset concurrency 2, got %d", site.AssetConcurrency)
		}
	})

	t.Run("conflicting report formats fail validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{"--json", "--markdown"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); err == nil {
			t.Error("expected validation error for --json with --markdown")
		}
	})
}

// TestSiteConfigFor tests per-target site config resolution.
func TestSiteConfigFor(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.SiteConfigs = &config.File{
		Sites: map[string]config.SiteConfig{
			"example.com": {Tags: []string{"img"}},
		},
		Defaults: config.SiteConfig{AssetConcurrency: 5},
	}

	t.Run("matches by host", func(t *testing.T) {
		t.Parallel()

		site := siteConfigFor(cfg, "https://example.com/docs/page.html")
		if len(site.Tags) != 1 || site.Tags[0] != "img" {
			t.Errorf("expected site tags [img], got %v", site.Tags)
		}
		if site.AssetConcurrency != 5 {
			t.Errorf("expected defaults merged in, got %d", site.AssetConcurrency)
		}
	})

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()

		site := siteConfigFor(cfg, "https://other.example/")
		if len(site.Tags) != 0 {
			t.Errorf("expected no tag override, got %v", site.Tags)
		}
		if site.AssetConcurrency != 5 {
			t.Errorf("expected default asset concurrency 5, got %d", site.AssetConcurrency)
		}
	})

	t.Run("nil site configs yield zero value", func(t *testing.T) {
		t.Parallel()

		bare := config.NewConfig()
		site := siteConfigFor(bare, "https://example.com/")
		if len(site.Tags) != 0 || site.AssetConcurrency != 0 {
			t.Errorf("expected zero site config, got %+v", site)
		}
	})
}

// TestRunMirror tests the full run against a local server.
func TestRunMirror(t *testing.T) {
	t.Parallel()

	newServer := func(t *testing.T) *httptest.Server {
		t.Helper()
		mux := http.NewServeMux()
		mux.HandleFunc("/page.html", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><img src="/logo.png"></body></html>`)) //nolint:errcheck
		})
		mux.HandleFunc("/logo.png", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{1}) //nolint:errcheck
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)
		return server
	}

	t.Run("mirrors target and writes JSON summary", func(t *testing.T) {
		t.Parallel()

		server := newServer(t)
		base := t.TempDir()
		summaryPath := filepath.Join(t.TempDir(), "out", "summary.json")

		cfg := config.NewConfig()
		cfg.Targets = []string{server.URL + "/page.html"}
		cfg.OutputDir = base
		cfg.JSONReport = true
		cfg.ReportFile = summaryPath
		cfg.SaveToDB = false

		if err := runMirror(context.Background(), cfg, setupLogger(false)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		host := strings.TrimPrefix(server.URL, "http://")
		if _, err := os.Stat(filepath.Join(base, host, "index.html")); err != nil {
			t.Errorf("expected mirrored index.html: %v", err)
		}
		if _, err := os.Stat(filepath.Join(base, host, "logo.png")); err != nil {
			t.Errorf("expected downloaded asset: %v", err)
		}

		data, err := os.ReadFile(summaryPath)
		if err != nil {
			t.Fatalf("expected summary file: %v", err)
		}
		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("summary is not valid JSON: %v", err)
		}
		if parsed["pages_mirrored"] != float64(1) {
			t.Errorf("expected 1 mirrored page in summary, got %v", parsed["pages_mirrored"])
		}
	})

	t.Run("failed target still succeeds as a run", func(t *testing.T) {
		t.Parallel()

		server := newServer(t)
		base := t.TempDir()
		summaryPath := filepath.Join(t.TempDir(), "summary.md")

		cfg := config.NewConfig()
		cfg.Targets = []string{server.URL + "/missing.html"}
		cfg.OutputDir = base
		cfg.MarkdownReport = true
		cfg.ReportFile = summaryPath
		cfg.SaveToDB = false

		if err := runMirror(context.Background(), cfg, setupLogger(false)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(summaryPath)
		if err != nil {
			t.Fatalf("expected summary file: %v", err)
		}
		if !strings.Contains(string(data), "failed") {
			t.Errorf("expected failure noted in summary, got %q", data)
		}
	})
}

// TestOutputReport tests run summary output handling.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	sampleReport := func() *model.MirrorReport {
		report := model.NewMirrorReport()
		report.Pages = []model.PageResult{
			{URL: "https://example.com/", SavedPath: "/m/example.com/index.html"},
		}
		return report
	}

	t.Run("skips output without format or file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		if err := outputReport(cfg, sampleReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("writes text summary when only output file given", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "summary.txt")
		cfg := config.NewConfig()
		cfg.ReportFile = path

		if err := outputReport(cfg, sampleReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected summary file: %v", err)
		}
		if !bytes.Contains(data, []byte("MIRROR RUN SUMMARY")) {
			t.Errorf("expected text summary, got %q", data)
		}
	})

	t.Run("creates nested output directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a", "b", "summary.json")
		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = path

		if err := outputReport(cfg, sampleReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected summary file: %v", err)
		}
	})
}

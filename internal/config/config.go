package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are chosen for polite, reliable mirroring of ordinary web pages.
const (
	// DefaultTimeout is the per-request HTTP timeout. 30 seconds is
	// generous enough for slow origins while still failing a dead host
	// within a single run.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of URLs mirrored in parallel.
	// Each URL is independent, so a small pool keeps output readable
	// without serializing the whole batch.
	DefaultConcurrency = 4

	// DefaultAssetConcurrency bounds the number of in-flight asset
	// downloads per page. A page can reference hundreds of assets;
	// unbounded fan-out would open that many sockets at once.
	DefaultAssetConcurrency = 8

	// DefaultUserAgent identifies webmirror in HTTP requests.
	// A descriptive User-Agent lets operators identify mirror traffic.
	DefaultUserAgent = "webmirror/1.0 (+https://github.com/yendo/webmirror)"

	// DefaultMaxBodySize limits the response body size read per request.
	// 10MB covers pages and typical assets while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// AppName is the application name used for XDG directory paths.
	AppName = "webmirror"
)

// DefaultRewriteTags returns the HTML tags whose asset references are
// rewritten and downloaded. The slice is freshly allocated so callers
// may modify it.
func DefaultRewriteTags() []string {
	return []string{"link", "script", "img"}
}

// Config holds all configuration options for webmirror.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// because the number of options is manageable and nesting would add
// complexity without significant benefit.
type Config struct {
	// Targets is the list of page URLs to mirror.
	// Must contain at least one absolute URL with scheme and host.
	Targets []string

	// WithMetadata enables printing link/image statistics for every
	// mirrored page in the batch.
	WithMetadata bool

	// Concurrency is the number of URLs processed in parallel.
	Concurrency int

	// AssetConcurrency bounds concurrent asset downloads per page.
	AssetConcurrency int

	// Timeout is the HTTP timeout applied to each request.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64

	// OutputDir is the base directory for the mirror tree.
	// Empty means the current working directory.
	OutputDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .webmirror in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host overrides loaded from the config file.
	SiteConfigs *File

	// JSONReport enables a JSON run summary instead of console-only output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables a Markdown run summary.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the run summary.
	// When set, the summary is written there instead of stdout.
	ReportFile string

	// SaveToDB indicates whether to record mirrored pages in the
	// history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory.
	DBDir string

	// Verbose enables debug-level structured logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
// Users override specific values after creation.
func NewConfig() *Config {
	return &Config{
		Timeout:          DefaultTimeout,
		Concurrency:      DefaultConcurrency,
		AssetConcurrency: DefaultAssetConcurrency,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for webmirror.
// On Linux: ~/.local/share/webmirror
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webmirror.
// On Linux: ~/.config/webmirror
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found; fixing one error often makes the
// rest irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.AssetConcurrency <= 0 {
		return ErrInvalidAssetConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yendo/webmirror/internal/console"
	"github.com/yendo/webmirror/internal/fetcher"
	"github.com/yendo/webmirror/internal/model"
	"github.com/yendo/webmirror/internal/pathmap"
	"github.com/yendo/webmirror/internal/rewrite"
)

// IndexFileName is the filename every mirrored page is saved under
// inside its mapped directory.
const IndexFileName = "index.html"

// Writer persists pages and their assets into the mirror tree.
//
// Design decision: The writer receives its fetcher, mapper, and console
// rather than constructing them because:
//  1. All workers must share one HTTP client and one console lock
//  2. Tests substitute an httptest-backed fetcher
//  3. Per-site writers differ only in tags and pool size
type Writer struct {
	// fetcher retrieves asset bytes.
	fetcher *fetcher.Client

	// mapper derives local paths for the page and its assets.
	mapper *pathmap.Mapper

	// console receives the per-asset success lines.
	console *console.Console

	// logger records diagnostics that are not part of console output.
	logger *slog.Logger

	// tags is the set of HTML tags rewritten and downloaded.
	tags []string

	// assetConcurrency bounds in-flight asset downloads per page.
	assetConcurrency int
}

// Option configures a Writer.
type Option func(*Writer)

// WithTags sets the HTML tags whose references are rewritten and downloaded.
func WithTags(tags []string) Option {
	return func(w *Writer) {
		if len(tags) > 0 {
			w.tags = tags
		}
	}
}

// WithAssetConcurrency sets the per-page asset download pool size.
func WithAssetConcurrency(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.assetConcurrency = n
		}
	}
}

// WithConsole sets the console handle for download status lines.
func WithConsole(out *console.Console) Option {
	return func(w *Writer) {
		w.console = out
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates a Writer saving pages through the given fetcher and
// path mapper.
func NewWriter(f *fetcher.Client, m *pathmap.Mapper, opts ...Option) *Writer {
	w := &Writer{
		fetcher:          f,
		mapper:           m,
		console:          console.New(nil),
		tags:             []string{"link", "script", "img"},
		assetConcurrency: 8,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = slog.Default()
	}

	return w
}

// SavePage writes the rewritten page to <directory>/index.html and
// downloads every asset the rewritten document references, resolved
// against baseURL. It returns once all asset downloads have completed.
//
// Asset failures never fail the page: the fetcher has already reported
// them and the asset is simply missing from the mirror. Only page-level
// filesystem errors are returned.
func (w *Writer) SavePage(ctx context.Context, pageURL, content, baseURL string) (model.PageResult, error) {
	result := model.PageResult{URL: pageURL}

	dir, err := w.mapper.DirectoryFor(pageURL)
	if err != nil {
		return result, err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return result, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	rewritten, err := rewrite.StripLeadingSlash(content, w.tags)
	if err != nil {
		// Best-effort: save the page unmodified when rewriting fails.
		w.logger.Warn("asset rewrite failed, saving original content",
			"url", pageURL,
			"error", err,
		)
		rewritten = content
	}

	filePath := filepath.Join(dir, IndexFileName)
	if err := os.WriteFile(filePath, []byte(rewritten), 0600); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	result.SavedPath = filePath

	refs, err := rewrite.ExtractAssets(rewritten, baseURL, w.tags)
	if err != nil {
		w.logger.Warn("asset extraction failed",
			"url", pageURL,
			"error", err,
		)
		return result, nil
	}

	var downloaded, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(w.assetConcurrency)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			if err := w.downloadAsset(ctx, ref); err != nil {
				failed.Add(1)
				w.logger.Debug("asset skipped",
					"asset", ref.URL,
					"page", pageURL,
					"error", err,
				)
				return nil
			}
			downloaded.Add(1)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Goroutines always return nil; failures are counted.

	result.AssetsDownloaded = int(downloaded.Load())
	result.AssetsFailed = int(failed.Load())

	return result, nil
}

// downloadAsset fetches one asset and writes it to its mapped path.
// Fetch failures have already been reported by the fetcher, so the
// caller skips silently; success is announced on the console.
func (w *Writer) downloadAsset(ctx context.Context, ref model.AssetReference) error {
	data, err := w.fetcher.FetchBytes(ctx, ref.URL)
	if err != nil {
		return err
	}

	target, err := w.mapper.LocalFileFor(ref.URL)
	if err != nil {
		return err
	}

	// Sibling assets may share a directory; MkdirAll is idempotent and
	// safe to race.
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	w.console.Printf("Downloaded asset: %s\n", ref.URL)
	return nil
}

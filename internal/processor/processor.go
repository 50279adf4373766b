package processor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yendo/webmirror/internal/console"
	"github.com/yendo/webmirror/internal/fetcher"
	"github.com/yendo/webmirror/internal/metadata"
	"github.com/yendo/webmirror/internal/mirror"
	"github.com/yendo/webmirror/internal/model"
)

// WriterFactory returns the mirror writer to use for a target URL.
// A factory rather than a fixed writer because per-site configuration
// (tag set, asset pool size) can differ between targets in one batch.
type WriterFactory func(targetURL string) *mirror.Writer

// Processor mirrors pages end to end.
type Processor struct {
	// fetcher retrieves page text.
	fetcher *fetcher.Client

	// writerFor builds the writer for each target.
	writerFor WriterFactory

	// console receives per-page status lines.
	console *console.Console

	// logger records diagnostics.
	logger *slog.Logger

	// concurrency is the maximum number of URLs processed in parallel.
	concurrency int
}

// Option configures a Processor.
type Option func(*Processor)

// WithConcurrency sets the maximum number of concurrent page workers.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithConsole sets the console handle for page status lines.
func WithConsole(out *console.Console) Option {
	return func(p *Processor) {
		p.console = out
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// New creates a Processor that fetches pages with f and saves them
// through writers produced by writerFor.
func New(f *fetcher.Client, writerFor WriterFactory, opts ...Option) *Processor {
	p := &Processor{
		fetcher:     f,
		writerFor:   writerFor,
		console:     console.New(nil),
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Process mirrors a single URL. A fetch failure abandons only this URL:
// the fetcher has reported it, and the returned result carries the error
// while sibling URLs in a batch continue unaffected.
func (p *Processor) Process(ctx context.Context, pageURL string, withMetadata bool) model.PageResult {
	text, err := p.fetcher.FetchText(ctx, pageURL)
	if err != nil {
		return model.PageResult{URL: pageURL, Error: err.Error()}
	}

	writer := p.writerFor(pageURL)
	result, err := writer.SavePage(ctx, pageURL, text, pageURL)
	if err != nil {
		p.logger.Error("failed to save page",
			"url", pageURL,
			"error", err,
		)
		result.Error = err.Error()
		return result
	}

	p.console.Printf("Downloaded %s to %s\n", pageURL, result.SavedPath)

	if withMetadata {
		md, err := metadata.Compute(text)
		if err != nil {
			p.logger.Warn("metadata computation failed",
				"url", pageURL,
				"error", err,
			)
			return result
		}
		result.Metadata = &md
		metadata.Print(p.console, md)
	}

	return result
}

// ProcessAll mirrors every URL concurrently and waits for all of them to
// complete. Results keep input order, one per URL, including failures.
// The returned error is non-nil only when the context was cancelled.
func (p *Processor) ProcessAll(ctx context.Context, urls []string, withMetadata bool) (*model.MirrorReport, error) {
	report := model.NewMirrorReport()
	report.Pages = make([]model.PageResult, len(urls))

	p.logger.Info("starting mirror run",
		"targets", len(urls),
		"concurrency", p.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, pageURL := range urls {
		i, pageURL := i, pageURL
		g.Go(func() error {
			select {
			case <-ctx.Done():
				report.Pages[i] = model.PageResult{URL: pageURL, Error: ctx.Err().Error()}
				return ctx.Err()
			default:
			}

			// Each goroutine writes only its own slot, so no lock is
			// needed around the results slice.
			report.Pages[i] = p.Process(ctx, pageURL, withMetadata)
			return nil
		})
	}

	err := g.Wait()
	report.Elapsed = time.Since(report.StartedAt)

	p.logger.Info("mirror run complete",
		"mirrored", report.PagesMirrored(),
		"failed", report.PagesFailed(),
		"assets", report.TotalAssets(),
		"elapsed", report.Elapsed,
	)

	return report, err
}

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yendo/webmirror/internal/model"
)

// timeRounding keeps elapsed durations readable in the summary.
const timeRounding = time.Millisecond

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-page detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-page details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(report *model.MirrorReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.MirrorReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         MIRROR RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Started:  %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:  %s\n", report.Elapsed.Round(timeRounding)))
	sb.WriteString(fmt.Sprintf("Targets:  %d\n", len(report.Pages)))
	sb.WriteString("\n")
}

// writeSummary writes the aggregate counters section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.MirrorReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TOTALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages mirrored: %d\n", report.PagesMirrored()))
	sb.WriteString(fmt.Sprintf("  Pages failed:   %d\n", report.PagesFailed()))
	sb.WriteString(fmt.Sprintf("  Assets saved:   %d\n", report.TotalAssets()))
	sb.WriteString(fmt.Sprintf("  Assets failed:  %d\n", report.TotalAssetFailures()))
	sb.WriteString("\n")
}

// writePages writes the per-page result section.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.MirrorReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, page := range report.Pages {
		if page.Succeeded() {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", page.URL))
			sb.WriteString(fmt.Sprintf("      saved to %s (%d assets", page.SavedPath, page.AssetsDownloaded))
			if page.AssetsFailed > 0 {
				sb.WriteString(fmt.Sprintf(", %d failed", page.AssetsFailed))
			}
			sb.WriteString(")\n")
		} else {
			sb.WriteString(fmt.Sprintf("  [x] %s\n", page.URL))
			sb.WriteString(fmt.Sprintf("      %s\n", page.Error))
		}

		if w.verbose && page.Metadata != nil {
			sb.WriteString(fmt.Sprintf("      links: %d, images: %d, fetched: %s\n",
				page.Metadata.NumLinks, page.Metadata.NumImages, page.Metadata.LastFetch))
		}
	}
	sb.WriteString("\n")
}

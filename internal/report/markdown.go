package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/yendo/webmirror/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(report *model.MirrorReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.MirrorReport) {
	md.H1("Mirror Run Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(timeRounding).String()},
			{"Targets", strconv.Itoa(len(report.Pages))},
		},
	})
	md.PlainText("")
}

// writeSummary writes the aggregate counters section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.MirrorReport) {
	md.H2("Totals")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Count"},
		Rows: [][]string{
			{"Pages mirrored", strconv.Itoa(report.PagesMirrored())},
			{"Pages failed", strconv.Itoa(report.PagesFailed())},
			{"Assets saved", strconv.Itoa(report.TotalAssets())},
			{"Assets failed", strconv.Itoa(report.TotalAssetFailures())},
		},
	})
	md.PlainText("")

	if len(report.Pages) > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of page outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.MirrorReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Outcomes"),
		piechart.WithShowData(true),
	)

	if n := report.PagesMirrored(); n > 0 {
		chart.LabelAndIntValue("Mirrored", uint64(n))
	}
	if n := report.PagesFailed(); n > 0 {
		chart.LabelAndIntValue("Failed", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.MirrorReport) {
	switch {
	case report.PagesFailed() > 0 && report.PagesMirrored() == 0:
		md.Cautionf("Every target failed. %d page(s) could not be fetched.", report.PagesFailed())
	case report.PagesFailed() > 0:
		md.Warningf("%d page(s) failed and are missing from the mirror.", report.PagesFailed())
	case report.TotalAssetFailures() > 0:
		md.Importantf("%d asset(s) could not be downloaded.", report.TotalAssetFailures())
	default:
		md.Tip("All targets mirrored cleanly.")
	}
	md.PlainText("")
}

// writePages writes the per-page result section.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.MirrorReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No targets processed.")
		md.PlainText("")
		return
	}

	headers := []string{"URL", "Status", "Saved To", "Assets", "Links", "Images"}

	rows := make([][]string, len(report.Pages))
	for i, page := range report.Pages {
		status := "mirrored"
		saved := page.SavedPath
		if !page.Succeeded() {
			status = "failed: " + truncateString(page.Error, 50)
			saved = "-"
		}

		links, images := "-", "-"
		if page.Metadata != nil {
			links = strconv.Itoa(page.Metadata.NumLinks)
			images = strconv.Itoa(page.Metadata.NumImages)
		}

		rows[i] = []string{
			"`" + page.URL + "`",
			status,
			truncateString(saved, 60),
			strconv.Itoa(page.AssetsDownloaded),
			links,
			images,
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/yendo/webmirror/internal/model"
)

// JSONWriter outputs run summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the wire shape of a run summary with aggregate fields
// precomputed so consumers don't have to re-derive them.
type JSONReport struct {
	// Version is the webmirror version that produced this report.
	Version string `json:"version,omitempty"`

	// StartedAt is the run start time in RFC3339.
	StartedAt string `json:"started_at"`

	// ElapsedMS is the wall-clock run duration in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`

	// PagesMirrored counts pages saved to disk.
	PagesMirrored int `json:"pages_mirrored"`

	// PagesFailed counts pages that produced no mirror.
	PagesFailed int `json:"pages_failed"`

	// AssetsDownloaded counts assets saved across all pages.
	AssetsDownloaded int `json:"assets_downloaded"`

	// AssetsFailed counts assets that could not be fetched.
	AssetsFailed int `json:"assets_failed"`

	// Pages holds the per-URL results in input order.
	Pages []model.PageResult `json:"pages"`
}

// NewJSONReport flattens a run summary into its wire shape.
func NewJSONReport(report *model.MirrorReport, version string) *JSONReport {
	return &JSONReport{
		Version:          version,
		StartedAt:        report.StartedAt.Format(time.RFC3339),
		ElapsedMS:        report.Elapsed.Milliseconds(),
		PagesMirrored:    report.PagesMirrored(),
		PagesFailed:      report.PagesFailed(),
		AssetsDownloaded: report.TotalAssets(),
		AssetsFailed:     report.TotalAssetFailures(),
		Pages:            report.Pages,
	}
}

// Write outputs the run summary in JSON format.
func (w *JSONWriter) Write(report *model.MirrorReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, ""))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// VersionedJSONWriter outputs summaries stamped with a version string.
type VersionedJSONWriter struct {
	*JSONWriter

	// version is the webmirror version string.
	version string
}

// NewVersionedJSONWriter creates a writer that stamps each report with
// the producing version.
func NewVersionedJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *VersionedJSONWriter {
	return &VersionedJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the run summary with version metadata.
func (w *VersionedJSONWriter) Write(report *model.MirrorReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}

package model

import (
	"net/url"
	"time"
)

// PageResult records the outcome of mirroring a single URL.
// A result is produced for every requested URL, including failures,
// so a batch run always yields one result per input.
type PageResult struct {
	// URL is the page URL as requested.
	URL string `json:"url"`

	// SavedPath is the local path of the written index.html.
	// Empty when the page fetch or save failed.
	SavedPath string `json:"saved_path,omitempty"`

	// AssetsDownloaded is the number of assets written to disk.
	AssetsDownloaded int `json:"assets_downloaded"`

	// AssetsFailed is the number of assets that could not be fetched
	// or written. Failed assets are simply absent from the mirror.
	AssetsFailed int `json:"assets_failed"`

	// Metadata holds the page statistics when metadata reporting was
	// requested for the run. Nil otherwise.
	Metadata *Metadata `json:"metadata,omitempty"`

	// Error is the failure message when the page could not be mirrored.
	// Empty on success. A string rather than an error so results
	// serialize cleanly to JSON.
	Error string `json:"error,omitempty"`
}

// Host returns the host component of the result's URL.
// Returns an empty string if the URL does not parse.
func (r *PageResult) Host() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// Succeeded reports whether the page itself was mirrored.
// Individual asset failures do not fail the page.
func (r *PageResult) Succeeded() bool {
	return r.Error == ""
}

// MirrorReport summarizes a whole mirror run across all requested URLs.
type MirrorReport struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Pages contains one result per requested URL, in input order.
	Pages []PageResult `json:"pages"`
}

// NewMirrorReport creates an empty report with the start time set to now.
func NewMirrorReport() *MirrorReport {
	return &MirrorReport{
		StartedAt: time.Now().UTC(),
		Pages:     make([]PageResult, 0),
	}
}

// PagesMirrored returns the number of pages that were saved successfully.
func (m *MirrorReport) PagesMirrored() int {
	count := 0
	for i := range m.Pages {
		if m.Pages[i].Succeeded() {
			count++
		}
	}
	return count
}

// PagesFailed returns the number of pages that could not be mirrored.
func (m *MirrorReport) PagesFailed() int {
	return len(m.Pages) - m.PagesMirrored()
}

// TotalAssets returns the total number of assets written across all pages.
func (m *MirrorReport) TotalAssets() int {
	total := 0
	for i := range m.Pages {
		total += m.Pages[i].AssetsDownloaded
	}
	return total
}

// TotalAssetFailures returns the total number of asset download failures.
func (m *MirrorReport) TotalAssetFailures() int {
	total := 0
	for i := range m.Pages {
		total += m.Pages[i].AssetsFailed
	}
	return total
}

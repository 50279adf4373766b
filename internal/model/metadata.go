package model

// TimestampLayout is the fixed human-readable layout for the metadata
// fetch timestamp: weekday, month, zero-padded day, year, and clock time,
// always in UTC (e.g., "Sat Aug 23 2025 14:03:27 UTC").
const TimestampLayout = "Mon Jan 02 2006 15:04:05 UTC"

// Metadata holds simple statistics about a single fetched page.
//
// Design decision: Metadata is a plain value computed per page and passed
// directly from the compute step to the print step. It is never stored on
// shared state, so concurrent page processing cannot observe another
// page's statistics.
type Metadata struct {
	// NumLinks is the number of anchor (<a>) tags in the document.
	NumLinks int `json:"num_links"`

	// NumImages is the number of image (<img>) tags in the document.
	NumImages int `json:"images"`

	// LastFetch is the fetch timestamp formatted with TimestampLayout.
	LastFetch string `json:"last_fetch"`
}

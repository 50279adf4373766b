package model

// AssetReference is a single downloadable resource discovered in a page.
// It pairs the tag that referenced the asset with the absolute URL the
// reference resolves to.
//
// Design decision: We resolve URLs at extraction time rather than storing
// the raw attribute value because:
//  1. The download stage only needs absolute URLs
//  2. Deduplication and local path mapping work on absolute URLs
//  3. The raw value is still present in the rewritten document
type AssetReference struct {
	// Tag is the HTML element name that referenced the asset
	// (e.g., "link", "script", "img").
	Tag string `json:"tag"`

	// URL is the absolute URL of the asset, resolved against the page's
	// base URL.
	URL string `json:"url"`
}

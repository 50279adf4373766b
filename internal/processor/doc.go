// Package processor drives the per-URL mirror pipeline (fetch, rewrite,
// save, download assets, optional metadata) and runs batches of URLs
// concurrently with a bounded worker pool.
package processor

// Package metadata computes and prints simple per-page statistics:
// anchor and image counts plus a UTC fetch timestamp.
package metadata

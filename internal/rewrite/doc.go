// Package rewrite transforms asset references in HTML documents.
// It strips the leading path separator from href/src attributes so
// mirrored assets resolve relative to the generated directory tree, and
// extracts resolved asset references for the download stage.
package rewrite

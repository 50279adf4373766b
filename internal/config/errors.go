package config

import "errors"

// Configuration validation errors.
// These are returned by Config.Validate() and name exactly what is wrong.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate() so callers can use
// errors.Is() for programmatic handling while still getting a
// human-readable message.
var (
	// ErrNoTarget is returned when no URL is given to mirror.
	ErrNoTarget = errors.New("no target specified: provide one or more URLs")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the page concurrency is not
	// positive. A value of zero would mean no pages are processed.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidAssetConcurrency is returned when the per-page asset
	// pool size is not positive.
	ErrInvalidAssetConcurrency = errors.New("invalid asset concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)

// Package fetcher provides the HTTP client used to retrieve pages and
// assets. Transport errors and non-2xx responses are reported to the
// console and returned to the caller, which treats the unit of work as
// skipped rather than aborting the run.
package fetcher

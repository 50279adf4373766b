// Package model defines the core data structures shared across webmirror.
// It contains the asset reference, page metadata, and mirror run report
// types that flow between the fetch, rewrite, and save stages.
package model

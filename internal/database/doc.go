// Package database provides SQLite-based storage for mirror history.
//
// This package implements the MirrorDB, which stores one record per
// successfully mirrored page: its URL, host, local path, counted links
// and images, and asset download tallies.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database

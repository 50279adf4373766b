package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yendo/webmirror/internal/model"
)

// DBFileName is the SQLite file kept inside the data directory.
const DBFileName = "webmirror.db"

// MirrorDB provides SQLite-based storage for mirror run history.
//
// Design decision: We use a single database file across all runs rather
// than one file per host. This keeps the history query cheap and makes
// backup/restore a single-file operation.
type MirrorDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures MirrorDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a MirrorDB inside the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*MirrorDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	mdb := &MirrorDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := mdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return mdb, nil
}

// Close closes the database connection.
func (mdb *MirrorDB) Close() error {
	return mdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (mdb *MirrorDB) createTables() error {
	schema := `
	-- Mirror records store individual page mirror results
	CREATE TABLE IF NOT EXISTS mirrors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		host TEXT NOT NULL,
		saved_path TEXT NOT NULL,
		link_count INTEGER DEFAULT 0,
		image_count INTEGER DEFAULT 0,
		assets_downloaded INTEGER DEFAULT 0,
		assets_failed INTEGER DEFAULT 0,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_mirrors_url ON mirrors(url);
	CREATE INDEX IF NOT EXISTS idx_mirrors_host ON mirrors(host);
	CREATE INDEX IF NOT EXISTS idx_mirrors_fetched ON mirrors(fetched_at);
	`

	_, err := mdb.db.ExecContext(context.Background(), schema)
	return err
}

// MirrorRecord represents a stored page mirror result.
type MirrorRecord struct {
	ID               int64
	URL              string
	Host             string
	SavedPath        string
	LinkCount        int
	ImageCount       int
	AssetsDownloaded int
	AssetsFailed     int
	FetchedAt        time.Time
}

// SavePageResult stores one successful page result. Failed pages carry
// no saved path and are not recorded.
func (mdb *MirrorDB) SavePageResult(ctx context.Context, result model.PageResult) (int64, error) {
	var linkCount, imageCount int
	if result.Metadata != nil {
		linkCount = result.Metadata.NumLinks
		imageCount = result.Metadata.NumImages
	}

	query := `
	INSERT INTO mirrors (url, host, saved_path, link_count, image_count, assets_downloaded, assets_failed)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := mdb.db.ExecContext(ctx, query,
		result.URL,
		result.Host(),
		result.SavedPath,
		linkCount,
		imageCount,
		result.AssetsDownloaded,
		result.AssetsFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert mirror record: %w", err)
	}

	return res.LastInsertId()
}

// Records returns stored mirror records, newest first. An empty host
// matches every host; limit <= 0 means no limit.
func (mdb *MirrorDB) Records(ctx context.Context, host string, limit int) ([]MirrorRecord, error) {
	query := `
	SELECT id, url, host, saved_path, link_count, image_count, assets_downloaded, assets_failed, fetched_at
	FROM mirrors
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if host != "" {
		query += " AND host = ?"
		args = append(args, host)
	}

	query += " ORDER BY fetched_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := mdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror records: %w", err)
	}
	defer rows.Close()

	var results []MirrorRecord
	for rows.Next() {
		var rec MirrorRecord
		var fetchedAt string

		err := rows.Scan(
			&rec.ID,
			&rec.URL,
			&rec.Host,
			&rec.SavedPath,
			&rec.LinkCount,
			&rec.ImageCount,
			&rec.AssetsDownloaded,
			&rec.AssetsFailed,
			&fetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mirror record: %w", err)
		}

		rec.FetchedAt = parseTimestamp(fetchedAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// LastMirror returns the most recent record for a URL, or nil when the
// URL has never been mirrored.
func (mdb *MirrorDB) LastMirror(ctx context.Context, url string) (*MirrorRecord, error) {
	query := `
	SELECT id, url, host, saved_path, link_count, image_count, assets_downloaded, assets_failed, fetched_at
	FROM mirrors
	WHERE url = ?
	ORDER BY fetched_at DESC, id DESC
	LIMIT 1
	`

	var rec MirrorRecord
	var fetchedAt string

	err := mdb.db.QueryRowContext(ctx, query, url).Scan(
		&rec.ID,
		&rec.URL,
		&rec.Host,
		&rec.SavedPath,
		&rec.LinkCount,
		&rec.ImageCount,
		&rec.AssetsDownloaded,
		&rec.AssetsFailed,
		&fetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mirror record: %w", err)
	}

	rec.FetchedAt = parseTimestamp(fetchedAt)
	return &rec, nil
}

// MirroredHosts returns every distinct host in the history, sorted.
func (mdb *MirrorDB) MirroredHosts(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT host FROM mirrors
	ORDER BY host
	`

	rows, err := mdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}

	return hosts, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

package dedup

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Cache persists content fingerprints across runs, keyed by path and
// invalidated when size or mtime change. Hashing a large export tree is by
// far the most expensive part of a dedup run; reruns skip it entirely for
// unchanged files.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache initializes or connects to the fingerprint database.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open fingerprint cache: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the cached fingerprint for path when size and mtime still
// match the recorded values.
func (c *Cache) Lookup(path string, size int64, mtimeNS int64) (string, bool) {
	var fingerprint string
	err := c.db.QueryRow(
		`SELECT sha256 FROM fingerprints WHERE path = ? AND size = ? AND mtime_ns = ?`,
		path, size, mtimeNS,
	).Scan(&fingerprint)
	if err != nil {
		return "", false
	}
	return fingerprint, true
}

// Store upserts the fingerprint record for path.
func (c *Cache) Store(path string, size int64, mtimeNS int64, fingerprint string) error {
	_, err := c.db.Exec(
		`INSERT INTO fingerprints (path, size, mtime_ns, sha256, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             size = excluded.size,
             mtime_ns = excluded.mtime_ns,
             sha256 = excluded.sha256,
             updated_at = excluded.updated_at`,
		path, size, mtimeNS, fingerprint, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store fingerprint: %w", err)
	}
	return nil
}

package digitraffic

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Snapshot keys.
const (
	snapshotCatalog  = "catalog"
	snapshotStations = "stations"
)

var (
	errNoCache       = errors.New("no snapshot cache configured")
	errSnapshotStale = errors.New("snapshot too old")
)

// SnapshotCache stores the last successfully fetched metadata documents in
// SQLite, so a flaky upstream degrades to slightly stale candidates instead
// of an empty catalog.
type SnapshotCache struct {
	db     *sql.DB
	maxAge time.Duration
}

// OpenSnapshotCache opens (or creates) the cache database at path.
// maxAge <= 0 means cached snapshots never expire.
func OpenSnapshotCache(path string, maxAge time.Duration) (*SnapshotCache, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS snapshots (
		key         TEXT PRIMARY KEY,
		body        BLOB NOT NULL,
		fetched_at  INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &SnapshotCache{db: db, maxAge: maxAge}, nil
}

// Store serializes v and replaces the snapshot under key.
func (s *SnapshotCache) Store(key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (key, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		key, body, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store snapshot %s: %w", key, err)
	}
	return nil
}

// Load decodes the snapshot under key into v and returns its fetch time.
// Missing or expired snapshots are errors.
func (s *SnapshotCache) Load(key string, v any) (time.Time, error) {
	var body []byte
	var fetchedAt int64
	err := s.db.QueryRow(
		`SELECT body, fetched_at FROM snapshots WHERE key = ?`, key,
	).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("snapshot %s: not cached", key)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load snapshot %s: %w", key, err)
	}

	at := time.Unix(fetchedAt, 0)
	if s.maxAge > 0 && time.Since(at) > s.maxAge {
		return at, fmt.Errorf("snapshot %s: %w", key, errSnapshotStale)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return at, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return at, nil
}

// Close closes the underlying database.
func (s *SnapshotCache) Close() error {
	return s.db.Close()
}

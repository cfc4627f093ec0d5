package override

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

// SQLiteStore keeps overrides in a one-table SQLite database. It offers the
// same contract as FileStore for deployments that already carry a snapshot
// cache database and prefer a single storage file.
type SQLiteStore struct {
	db        *sql.DB
	normalize resolve.Normalizer
}

// OpenSQLiteStore opens (or creates) the database at path and ensures the
// overrides table exists.
func OpenSQLiteStore(path string, normalize resolve.Normalizer) (*SQLiteStore, error) {
	if normalize == nil {
		normalize = resolve.NormalizeLowercaseUTF8
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open override db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS overrides (
		query       TEXT PRIMARY KEY,
		section_id  TEXT NOT NULL,
		updated_at  INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create overrides table: %w", err)
	}
	return &SQLiteStore{db: db, normalize: normalize}, nil
}

// Lookup returns the stored id for the normalized query, if any.
func (s *SQLiteStore) Lookup(query string) (string, bool, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT section_id FROM overrides WHERE query = ?`, s.normalize(query),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("override lookup: %w", err)
	}
	return id, true, nil
}

// Save stores query -> id, overwriting a previous confirmation for the same
// normalized query.
func (s *SQLiteStore) Save(query, id string) error {
	key := s.normalize(query)
	if key == "" {
		return fmt.Errorf("override save: query normalizes to empty")
	}
	_, err := s.db.Exec(
		`INSERT INTO overrides (query, section_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(query) DO UPDATE SET section_id = excluded.section_id, updated_at = excluded.updated_at`,
		key, id, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("override save: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

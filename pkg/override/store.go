// Package override persists caller-confirmed query-to-identifier mappings.
// A confirmed mapping short-circuits all catalog matching for the same
// normalized query, so a human's one-time disambiguation becomes permanent.
package override

// Store is the persistence contract shared by the file and SQLite backends.
// Implementations normalize keys with the same normalizer the resolver
// matches with; changing the normalization rule invalidates stored keys.
type Store interface {
	Lookup(query string) (id string, ok bool, err error)
	Save(query, id string) error
	Close() error
}

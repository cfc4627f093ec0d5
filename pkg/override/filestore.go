package override

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

// FileStore keeps overrides in a flat text file, one "key<TAB>id" mapping
// per line. The file is read fully on every lookup and rewritten fully on
// every save, so a save is an atomic replace of the whole mapping. Keys
// never contain tabs: normalization collapses all whitespace to single
// spaces.
type FileStore struct {
	mu        sync.Mutex
	path      string
	normalize resolve.Normalizer
	logger    *slog.Logger
}

// NewFileStore creates a store backed by the file at path. The file does
// not need to exist yet.
func NewFileStore(path string, normalize resolve.Normalizer, logger *slog.Logger) *FileStore {
	if normalize == nil {
		normalize = resolve.NormalizeLowercaseUTF8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, normalize: normalize, logger: logger}
}

// Lookup returns the stored id for the normalized query, if any.
func (s *FileStore) Lookup(query string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	id, ok := entries[s.normalize(query)]
	return id, ok, nil
}

// Save stores query -> id and persists immediately. A failed write is
// reported, never swallowed.
func (s *FileStore) Save(query, id string) error {
	key := s.normalize(query)
	if key == "" {
		return fmt.Errorf("override save: query normalizes to empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = id
	return s.write(entries)
}

// Close is a no-op; FileStore holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}

// load reads the whole mapping. A missing file is an empty store; a corrupt
// file degrades to whatever lines still parse.
func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read overrides %s: %w", s.path, err)
	}

	entries := make(map[string]string)
	for i, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		key, id, found := strings.Cut(line, "\t")
		if !found || key == "" || id == "" {
			s.logger.Warn("skipping malformed override line", "file", s.path, "line", i+1)
			continue
		}
		entries[key] = id
	}
	return entries, nil
}

// write replaces the file contents via temp file + rename. Keys are sorted
// so the file is diffable and rewrites are reproducible.
func (s *FileStore) write(entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('\t')
		b.WriteString(entries[k])
		b.WriteByte('\n')
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".overrides-*")
	if err != nil {
		return fmt.Errorf("write overrides %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write overrides %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write overrides %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace overrides %s: %w", s.path, err)
	}
	return nil
}

package override

import (
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "overrides.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)

	if err := s.Save("Tie 4: Kemintie 4.421", "00004_421_00000_1_0"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	id, ok, err := s.Lookup("TIE 4, KEMINTIE 4.421")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || id != "00004_421_00000_1_0" {
		t.Errorf("Lookup = (%q, %v), want stored id", id, ok)
	}
}

func TestSQLiteStoreMissAndOverwrite(t *testing.T) {
	s := newTestSQLiteStore(t)

	if _, ok, _ := s.Lookup("missing"); ok {
		t.Error("hit on empty store")
	}
	if err := s.Save("road", "a"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("road", "b"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	id, ok, _ := s.Lookup("road")
	if !ok || id != "b" {
		t.Errorf("Lookup = (%q, %v), want later save to win", id, ok)
	}
}

func TestSQLiteStoreSaveEmptyKeyFails(t *testing.T) {
	s := newTestSQLiteStore(t)
	if err := s.Save("???", "id"); err == nil {
		t.Error("query normalizing to empty must be rejected")
	}
}

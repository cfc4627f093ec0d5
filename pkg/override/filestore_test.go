package override

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.tsv")
	return NewFileStore(path, nil, nil), path
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, _ := newTestFileStore(t)

	if err := s.Save("Tie 3: Valtatie 3 3.250", "00003_250_04429_1_0"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, q := range []string{
		"Tie 3: Valtatie 3 3.250",
		"TIE 3 VALTATIE 3 3.250",
		"tie 3 valtatie 3 3 250  ",
	} {
		id, ok, err := s.Lookup(q)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", q, err)
		}
		if !ok || id != "00003_250_04429_1_0" {
			t.Errorf("Lookup(%q) = (%q, %v), want stored id", q, id, ok)
		}
	}
}

func TestFileStoreMiss(t *testing.T) {
	s, _ := newTestFileStore(t)
	_, ok, err := s.Lookup("never saved")
	if err != nil {
		t.Fatalf("Lookup on missing file: %v", err)
	}
	if ok {
		t.Error("hit on empty store")
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	s, _ := newTestFileStore(t)

	if err := s.Save("road", "first_id"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("ROAD", "second_id"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	id, ok, _ := s.Lookup("road")
	if !ok || id != "second_id" {
		t.Errorf("Lookup = (%q, %v), want second_id", id, ok)
	}
}

func TestFileStoreSkipsMalformedLines(t *testing.T) {
	s, path := newTestFileStore(t)

	content := "good key\tgood_id\nno tab on this line\n\t\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	id, ok, err := s.Lookup("good key")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || id != "good_id" {
		t.Errorf("valid line lost among corrupt ones: (%q, %v)", id, ok)
	}
	if _, ok, _ := s.Lookup("no tab on this line"); ok {
		t.Error("malformed line produced a hit")
	}
}

func TestFileStoreExactRoundTripOnDisk(t *testing.T) {
	s, path := newTestFileStore(t)

	if err := s.Save("Perämerentie", "00004_421_00000_1_0"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := "perämerentie\t00004_421_00000_1_0\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", string(data), want)
	}
	if strings.Contains(string(data), "\t\t") {
		t.Error("value contains stray tab")
	}
}

func TestFileStoreSaveEmptyKeyFails(t *testing.T) {
	s, _ := newTestFileStore(t)
	if err := s.Save("!!!", "id"); err == nil {
		t.Error("query normalizing to empty must be rejected")
	}
}

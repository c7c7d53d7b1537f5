package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("post.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("blogs/230101-a.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("blogs/230101-a.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestList_FlatAndFiltered(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("230102-b.md", []byte("b"))
	_ = s.Write("230101-a.md", []byte("a"))
	_ = s.Write("notes.txt", []byte("not markdown"))
	// Files in subdirectories must not be listed.
	_ = s.Write("assets/nested.md", []byte("nested"))

	names, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "230101-a.md" || names[1] != "230102-b.md" {
		t.Errorf("names = %v, want [230101-a.md 230102-b.md]", names)
	}
}

func TestSafePath_RejectsEscape(t *testing.T) {
	s := tempRoot(t)
	if _, err := s.Read("../outside.md"); err == nil {
		t.Error("expected error for path escaping root")
	}
	if err := s.Write("/abs/path.md", []byte("x")); err == nil {
		t.Error("expected error for absolute path")
	}
}

func TestNewFS_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := NewFS(missing); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestWrite_Atomic_NoTempLeftover(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("a.md", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "a.md" {
			t.Errorf("unexpected leftover entry %q", e.Name())
		}
	}
}

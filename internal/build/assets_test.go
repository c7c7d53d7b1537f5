package build

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/starford/dagaz/internal/models"
)

func record(id string, images ...string) models.PostMetadata {
	return models.PostMetadata{ID: id, Date: "2023-01-01", Title: id, Images: images}
}

func TestOrganize_CopiesFromNestedFolders(t *testing.T) {
	p, srcDir, outDir := testPipeline(t)
	writeSource(t, srcDir, filepath.Join("assets", "deep", "er", "pic.png"), "pixels")

	if err := p.Organize([]models.PostMetadata{record("230101-a", "pic.png")}); err != nil {
		t.Fatalf("Organize: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "blogs", "assets", "230101-a", "pic.png"))
	if err != nil {
		t.Fatalf("copied asset missing: %v", err)
	}
	if string(got) != "pixels" {
		t.Errorf("content = %q", got)
	}
}

func TestOrganize_PreservesModTime(t *testing.T) {
	p, srcDir, outDir := testPipeline(t)
	srcPath := filepath.Join(srcDir, "assets", "pic.png")
	writeSource(t, srcDir, filepath.Join("assets", "pic.png"), "pixels")

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Organize([]models.PostMetadata{record("230101-a", "pic.png")}); err != nil {
		t.Fatalf("Organize: %v", err)
	}

	dstInfo, err := os.Stat(filepath.Join(outDir, "blogs", "assets", "230101-a", "pic.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !dstInfo.ModTime().Equal(srcInfo.ModTime()) {
		t.Errorf("mtime = %v, want %v", dstInfo.ModTime(), srcInfo.ModTime())
	}
}

func TestOrganize_ResetRemovesStaleFiles(t *testing.T) {
	p, srcDir, outDir := testPipeline(t)
	writeSource(t, srcDir, filepath.Join("assets", "pic.png"), "pixels")
	// Leftover from a previous build of a since-renamed post.
	writeSource(t, outDir, filepath.Join("blogs", "assets", "old-post", "stale.png"), "stale")

	if err := p.Organize([]models.PostMetadata{record("230101-a", "pic.png")}); err != nil {
		t.Fatalf("Organize: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "blogs", "assets", "old-post")); !os.IsNotExist(err) {
		t.Error("stale post folder survived the reset")
	}
}

func TestOrganize_Idempotent(t *testing.T) {
	p, srcDir, outDir := testPipeline(t)
	writeSource(t, srcDir, filepath.Join("assets", "a.png"), "a")
	writeSource(t, srcDir, filepath.Join("assets", "b.png"), "b")
	records := []models.PostMetadata{record("230101-a", "a.png", "b.png")}

	if err := p.Organize(records); err != nil {
		t.Fatalf("first Organize: %v", err)
	}
	first := listTree(t, filepath.Join(outDir, "blogs", "assets"))
	if err := p.Organize(records); err != nil {
		t.Fatalf("second Organize: %v", err)
	}
	second := listTree(t, filepath.Join(outDir, "blogs", "assets"))

	if len(first) != len(second) {
		t.Fatalf("tree changed between runs: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("tree entry %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestOrganize_MissingImageIsNonFatal(t *testing.T) {
	p, srcDir, outDir := testPipeline(t)
	writeSource(t, srcDir, filepath.Join("assets", "real.png"), "real")

	err := p.Organize([]models.PostMetadata{
		record("230101-a", "ghost.png", "real.png"),
		record("230102-b", "real.png"),
	})
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}

	// Images after the missing one, and later records, are still copied.
	for _, rel := range []string{
		filepath.Join("230101-a", "real.png"),
		filepath.Join("230102-b", "real.png"),
	} {
		if _, err := os.Stat(filepath.Join(outDir, "blogs", "assets", rel)); err != nil {
			t.Errorf("expected %s to be copied: %v", rel, err)
		}
	}
}

func TestOrganize_NoSourceAssetsIsNoop(t *testing.T) {
	p, _, outDir := testPipeline(t)

	if err := p.Organize([]models.PostMetadata{record("230101-a", "pic.png")}); err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "blogs", "assets")); !os.IsNotExist(err) {
		t.Error("destination asset tree should not be created without a source tree")
	}
}

func TestOrganize_StatFailureIsFatal(t *testing.T) {
	p, srcDir, _ := testPipeline(t)
	// A self-referential link makes os.Stat on the asset tree fail with
	// something other than "not exist"; that must surface instead of
	// being treated as a missing folder.
	if err := os.Symlink("assets", filepath.Join(srcDir, "assets")); err != nil {
		t.Skipf("symlink: %v", err)
	}

	if err := p.Organize([]models.PostMetadata{record("230101-a", "pic.png")}); err == nil {
		t.Fatal("expected error when the asset tree cannot be inspected")
	}
}

func TestOrganize_DuplicateFilenameLexicalFirstWins(t *testing.T) {
	p, srcDir, outDir := testPipeline(t)
	writeSource(t, srcDir, filepath.Join("assets", "zeta", "dup.png"), "from-zeta")
	writeSource(t, srcDir, filepath.Join("assets", "alpha", "dup.png"), "from-alpha")

	if err := p.Organize([]models.PostMetadata{record("230101-a", "dup.png")}); err != nil {
		t.Fatalf("Organize: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "blogs", "assets", "230101-a", "dup.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "from-alpha" {
		t.Errorf("content = %q, want lexically-first match", got)
	}
}

func TestOrganize_SkipsRecordsWithoutImages(t *testing.T) {
	p, srcDir, outDir := testPipeline(t)
	writeSource(t, srcDir, filepath.Join("assets", "pic.png"), "pixels")

	if err := p.Organize([]models.PostMetadata{record("230101-a")}); err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "blogs", "assets", "230101-a")); !os.IsNotExist(err) {
		t.Error("image-less post should not get an asset folder")
	}
}

// listTree returns every path under root relative to it, sorted.
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(root, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		out = append(out, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	sort.Strings(out)
	return out
}

package build

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/dagaz/internal/models"
)

// Organize populates the output asset tree: one folder per published post,
// holding every image the post references.
//
// The destination asset root is removed and recreated on every run so that
// assets of deleted or renamed posts never linger from a previous build.
// Safe only because the pipeline is a single sequential process.
func (p *Pipeline) Organize(records []models.PostMetadata) error {
	sourceAssets := filepath.Join(p.source.Root(), assetsDirName)
	if _, err := os.Stat(sourceAssets); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("no assets folder found, skipping asset organization",
				slog.String("path", sourceAssets))
			return nil
		}
		return fmt.Errorf("build: stat assets dir: %w", err)
	}

	destAssets := filepath.Join(p.output.Root(), blogsDirName, assetsDirName)
	if err := os.RemoveAll(destAssets); err != nil {
		return fmt.Errorf("build: reset asset dir: %w", err)
	}
	if err := os.MkdirAll(destAssets, 0o755); err != nil {
		return fmt.Errorf("build: create asset dir: %w", err)
	}

	for _, rec := range records {
		if len(rec.Images) == 0 {
			continue
		}

		postDir := filepath.Join(destAssets, rec.ID)
		if err := os.MkdirAll(postDir, 0o755); err != nil {
			return fmt.Errorf("build: create post asset dir: %w", err)
		}

		for _, image := range rec.Images {
			src := findAsset(sourceAssets, image)
			if src == "" {
				p.logger.Warn("image not found in assets",
					slog.String("image", image),
					slog.String("post", rec.ID))
				continue
			}
			if err := copyFile(src, filepath.Join(postDir, image)); err != nil {
				return fmt.Errorf("build: copy %s: %w", image, err)
			}
			p.logger.Debug("copied image",
				slog.String("image", image),
				slog.String("post", rec.ID))
		}
	}

	return nil
}

// findAsset locates a file by name anywhere under root and returns its full
// path, or "" when absent. WalkDir visits entries in lexical order, so when
// the same filename exists in several subfolders the lexically-first path
// always wins.
func findAsset(root, name string) string {
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// copyFile copies src to dst, carrying over the source modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// Package build implements the site pipeline: document processing,
// per-post asset organization, and metadata publishing.
package build

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/parser"
	"github.com/starford/dagaz/internal/storage"
)

// Directory and file layout inside the source and output roots.
const (
	assetsDirName = "assets"
	blogsDirName  = "blogs"
)

// Pipeline runs the build stages against a source vault and an output tree.
// All stages are sequential; a Pipeline must not be used concurrently.
type Pipeline struct {
	source    *storage.FS
	output    *storage.FS
	scriptRel string // front-end script path, relative to the output root
	logger    *slog.Logger
}

// New creates a Pipeline. scriptRel is the path of the script that receives
// the generated metadata, relative to the output root (e.g. "js/blog.js").
func New(source, output *storage.FS, scriptRel string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		source:    source,
		output:    output,
		scriptRel: scriptRel,
		logger:    logger,
	}
}

// Run executes the full pipeline: process documents, organize assets,
// publish metadata. Returns the published posts in listing order.
func (p *Pipeline) Run() ([]models.Post, error) {
	posts, err := p.Process()
	if err != nil {
		return nil, err
	}
	records := Records(posts)
	if err := p.Organize(records); err != nil {
		return nil, err
	}
	if err := p.Publish(records); err != nil {
		return nil, err
	}
	p.logger.Info("build complete", slog.Int("posts", len(records)))
	return posts, nil
}

// Process converts every markdown document in the source root and
// accumulates metadata for the published set.
//
// Documents are enumerated non-recursively and handled in reverse filename
// order; with date-prefixed filenames that is newest-first. The order is
// fixed before any metadata filtering, so it is independent of which
// documents end up published. Every document is converted and written to
// the output tree; only those with both a title and a date contribute a
// post to the returned slice.
func (p *Pipeline) Process() ([]models.Post, error) {
	names, err := p.source.List("")
	if err != nil {
		return nil, fmt.Errorf("build: enumerate corpus: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var posts []models.Post
	for _, name := range names {
		p.logger.Info("processing", slog.String("file", name))

		data, err := p.source.Read(name)
		if err != nil {
			return nil, fmt.Errorf("build: read %s: %w", name, err)
		}
		content := string(data)
		stem := strings.TrimSuffix(name, ".md")

		res := parser.Parse(content, stem)
		converted := parser.Normalize(content, stem)

		if err := p.output.Write(filepath.Join(blogsDirName, name), []byte(converted)); err != nil {
			return nil, fmt.Errorf("build: write %s: %w", name, err)
		}

		p.logger.Debug("converted",
			slog.String("file", name),
			slog.String("title", loggableTitle(res.Title)),
			slog.String("date", res.Date),
			slog.Int("images", len(res.Images)))

		post := models.Post{
			ID:     stem,
			Title:  res.Title,
			Date:   res.Date,
			Images: res.Images,
			Body:   converted,
		}
		if !post.Published() {
			p.logger.Debug("no title or date, excluded from listing", slog.String("file", name))
			continue
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// Records returns the read-only metadata view of the published posts.
func Records(posts []models.Post) []models.PostMetadata {
	out := make([]models.PostMetadata, len(posts))
	for i := range posts {
		out[i] = posts[i].Metadata()
	}
	return out
}

// loggableTitle guards log output against titles that are not valid UTF-8.
// The document content itself is always passed through byte-for-byte.
func loggableTitle(title string) string {
	if !utf8.ValidString(title) {
		return "[title contains invalid UTF-8]"
	}
	return title
}

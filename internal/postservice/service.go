// Package postservice coordinates the post index and the generated site
// tree for read-only consumers (the preview API and the MCP server).
package postservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/storage"
)

// PostDetail is the full representation of a published post.
type PostDetail struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Images    []string  `json:"images"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostListItem is a lightweight item in a list response.
type PostListItem struct {
	ID     string   `json:"id"`
	Date   string   `json:"date"`
	Title  string   `json:"title"`
	Images []string `json:"images"`
}

// SearchHit is one full-text search result.
type SearchHit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Service reads posts from the index and their converted markdown from the
// built site tree. It never mutates either: authoring happens in the vault
// and changes arrive through the build pipeline.
type Service struct {
	site *storage.FS // rooted at the generated blogs directory
	db   index.PostIndex
}

// NewService creates a new post service.
func NewService(site *storage.FS, db index.PostIndex) *Service {
	return &Service{site: site, db: db}
}

// ListPosts returns the published posts, newest first.
func (s *Service) ListPosts(_ context.Context) ([]PostListItem, error) {
	rows, err := s.db.ListPosts()
	if err != nil {
		return nil, err
	}
	items := make([]PostListItem, len(rows))
	for i, r := range rows {
		items[i] = PostListItem{
			ID:     r.ID,
			Date:   r.Date,
			Title:  r.Title,
			Images: nonNilSlice(r.Images),
		}
	}
	return items, nil
}

// GetPost returns one post with its converted markdown content.
func (s *Service) GetPost(_ context.Context, id string) (*PostDetail, error) {
	row, err := s.db.GetPost(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	data, err := s.site.Read(id + ".md")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &PostDetail{
		ID:        row.ID,
		Date:      row.Date,
		Title:     row.Title,
		Images:    nonNilSlice(row.Images),
		Content:   string(data),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Search runs a full-text query over the published posts.
func (s *Service) Search(_ context.Context, query string, limit int) ([]SearchHit, error) {
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, len(results))
	for i, r := range results {
		hits[i] = SearchHit{ID: r.ID, Title: r.Title, Snippet: r.Snippet}
	}
	return hits, nil
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Package models defines the domain types for Dagaz.
package models

// Post represents one markdown document flowing through the build pipeline.
// It is transient: read once, normalized once, then reduced to its Metadata.
type Post struct {
	// ID is the filename stem (extension stripped), e.g. "230615-my-post".
	ID string
	// Title derived from content; empty when no usable line was found.
	Title string
	// Date in ISO form (YYYY-MM-DD) derived from the filename prefix;
	// empty when the stem does not start with six digits.
	Date string
	// Images referenced by the document, in first-seen order per syntax
	// group. Duplicates are kept.
	Images []string
	// Body is the normalized markdown written to the output tree.
	Body string
}

// Published reports whether the post carries enough metadata to appear in
// the front-end listing. Posts without a title or date are still converted
// and written, they just stay out of the published set.
func (p *Post) Published() bool {
	return p.Title != "" && p.Date != ""
}

// Metadata returns the published record for the post.
func (p *Post) Metadata() PostMetadata {
	return PostMetadata{
		ID:     p.ID,
		Date:   p.Date,
		Title:  p.Title,
		Images: p.Images,
	}
}

// PostMetadata is the per-post summary consumed by the front-end listing
// script. Records are created by the processor and never mutated afterwards.
type PostMetadata struct {
	ID     string   `json:"id"`
	Date   string   `json:"date"`
	Title  string   `json:"title"`
	Images []string `json:"images"`
}

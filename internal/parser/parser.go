// Package parser extracts titles, dates, and image references from
// note-style Markdown and rewrites embed-bracket image syntax into
// standard link syntax.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const titleMaxLen = 50

var (
	// ![[image.png]] — embed-bracket syntax used by note-taking apps.
	embedRe = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)
	// ![alt](assets/image.png) — standard link syntax; an optional
	// leading assets/ segment is stripped from the captured name.
	standardRe = regexp.MustCompile(`!\[.*?\]\((?:assets/)?([^\)]+)\)`)
	// Six leading digits of the filename stem, read as YYMMDD.
	datePrefixRe = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})`)
)

// Result holds everything the pipeline derives from a single document.
type Result struct {
	Title  string
	Date   string
	Images []string
}

// Parse derives title, date, and image references for a document.
// stem is the filename without extension.
func Parse(content, stem string) *Result {
	return &Result{
		Title:  ExtractTitle(content),
		Date:   ParseDate(stem),
		Images: ExtractImages(content),
	}
}

// ExtractTitle derives a title from markdown content. A leading heading wins;
// otherwise the first non-blank line that is not an image reference is used,
// truncated to 50 characters. Returns "" when nothing qualifies.
func ExtractTitle(content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")

	first := strings.TrimSpace(lines[0])
	if strings.HasPrefix(first, "#") {
		return strings.TrimSpace(strings.TrimLeft(first, "#"))
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "![[") || strings.HasPrefix(line, "![") {
			continue
		}
		// Truncation counts characters, not bytes, so a multibyte
		// title is never cut mid-rune.
		if utf8.RuneCountInString(line) > titleMaxLen {
			return string([]rune(line)[:titleMaxLen])
		}
		return line
	}

	return ""
}

// ParseDate converts a YYMMDD filename prefix into an ISO date string.
// The century is always "20"; stems without six leading digits yield "".
// Month and day digits are not range-checked.
func ParseDate(stem string) string {
	m := datePrefixRe.FindStringSubmatch(stem)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("20%s-%s-%s", m[1], m[2], m[3])
}

// ExtractImages returns every image filename referenced by the document:
// all embed-bracket matches in order of appearance, then all standard-syntax
// matches in order of appearance. The two groups are not interleaved, and
// duplicates are kept.
func ExtractImages(content string) []string {
	var out []string
	for _, m := range embedRe.FindAllStringSubmatch(content, -1) {
		out = append(out, m[1])
	}
	for _, m := range standardRe.FindAllStringSubmatch(content, -1) {
		out = append(out, m[1])
	}
	return out
}

// Normalize rewrites every embed-bracket image reference into standard link
// syntax pointing at the post's asset folder: ![[NAME]] becomes
// ![](assets/{id}/NAME), with NAME kept verbatim.
//
// References already in standard syntax are left untouched, including their
// paths: only embed-syntax references are relocated into the per-post
// folder. Idempotent on text already in standard form.
func Normalize(content, id string) string {
	return embedRe.ReplaceAllString(content, fmt.Sprintf("![](assets/%s/$1)", id))
}

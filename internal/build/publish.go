package build

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/dagaz/internal/models"
)

// markerStart begins the region of the front-end script this pipeline is
// allowed to overwrite. The token name is a contract with the consuming
// page and must be reproduced exactly.
const markerStart = "postsMetadata:"

// Publish serializes the post records and splices them into the marker
// region of the front-end script. The script keeps parsing the region as a
// literal array of objects, so everything around it is left untouched.
//
// A missing script file is a warning, not a failure: the stage is skipped
// and the build continues.
func (p *Pipeline) Publish(records []models.PostMetadata) error {
	scriptPath := filepath.Join(p.output.Root(), p.scriptRel)
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			p.logger.Warn("front-end script not found, skipping metadata publish",
				slog.String("path", scriptPath))
			return nil
		}
		return fmt.Errorf("build: read script: %w", err)
	}
	content := string(data)

	region := findMarkerRegion(content)
	if region == nil {
		p.logger.Warn("metadata marker not found in script",
			slog.String("path", scriptPath))
		return nil
	}

	updated := content[:region[0]] + renderMetadata(records) + content[region[1]:]
	if err := p.output.Write(p.scriptRel, []byte(updated)); err != nil {
		return fmt.Errorf("build: write script: %w", err)
	}

	p.logger.Info("metadata published",
		slog.String("path", scriptPath),
		slog.Int("posts", len(records)))
	return nil
}

// findMarkerRegion returns the [start, end) bounds of the first
// "postsMetadata: [ ... ]" region. Only whitespace may separate the token
// from its opening bracket; a token without an adjacent list does not start
// a region. Brackets are matched by depth so nested arrays inside the
// region do not end it early. Returns nil when no region exists.
func findMarkerRegion(content string) []int {
	for from := 0; from < len(content); {
		idx := strings.Index(content[from:], markerStart)
		if idx < 0 {
			return nil
		}
		start := from + idx
		from = start + len(markerStart)

		i := start + len(markerStart)
		for i < len(content) && isSpace(content[i]) {
			i++
		}
		if i >= len(content) || content[i] != '[' {
			continue
		}

		depth := 0
		for j := i; j < len(content); j++ {
			switch content[j] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return []int{start, j + 1}
				}
			}
		}
		return nil
	}
	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// renderMetadata produces the replacement text for the marker region:
// one object literal per record, single quotes in titles escaped, image
// lists as JSON string arrays.
func renderMetadata(records []models.PostMetadata) string {
	var b strings.Builder
	b.WriteString(markerStart + " [\n")
	for _, rec := range records {
		title := strings.ReplaceAll(rec.Title, "'", `\'`)
		images := rec.Images
		if images == nil {
			images = []string{}
		}
		imagesJSON, _ := json.Marshal(images)
		fmt.Fprintf(&b, "    { id: '%s', date: '%s', title: '%s', images: %s },\n",
			rec.ID, rec.Date, title, imagesJSON)
	}
	b.WriteString("  ]")
	return b.String()
}

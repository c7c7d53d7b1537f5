package index

import (
	"log/slog"
	"time"

	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/models"
)

// Sync brings the index in line with the latest build output:
//   - new or changed posts are upserted (checksum over the normalized body)
//   - posts that dropped out of the published set are deleted
func Sync(db *DB, posts []models.Post, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(posts))
	for i := range posts {
		p := &posts[i]
		seen[p.ID] = struct{}{}

		cs := checksum.Sum([]byte(p.Body))
		if checksums[p.ID] == cs {
			continue
		}

		row := PostRow{
			ID:        p.ID,
			Title:     p.Title,
			Date:      p.Date,
			Images:    p.Images,
			Checksum:  cs,
			UpdatedAt: time.Now(),
		}
		if err := db.UpsertPost(row, p.Body); err != nil {
			logger.Warn("sync: index failed", slog.String("id", p.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", p.ID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := seen[id]; !ok {
			if err := db.DeletePost(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

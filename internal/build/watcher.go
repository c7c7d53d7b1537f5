package build

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window between a source change and the rebuild it triggers.
// Editors fire bursts of events per save; one rebuild covers them all.
const rebuildDelay = 300 * time.Millisecond

// Watch starts an fsnotify watcher on the source root and calls rebuild
// after each (debounced) batch of changes, until ctx is cancelled.
//
// The pipeline is non-incremental, so any change to a markdown file or an
// asset triggers a full rebuild. New directories created at runtime are
// added to the watch list.
func Watch(ctx context.Context, sourceRoot string, logger *slog.Logger, rebuild func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, sourceRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", sourceRoot))

	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time

	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(rebuildDelay)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(rebuildDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			rebuild()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// Watch directories created after startup.
			if ev.Op&fsnotify.Create != 0 {
				if addErr := addDirsRecursive(w, ev.Name); addErr == nil {
					logger.Debug("watcher: watching new path", slog.String("path", ev.Name))
				}
			}

			if ignorable(ev.Name) {
				continue
			}

			logger.Debug("watcher: change detected",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			scheduleRebuild()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// ignorable filters editor temp/backup noise out of the rebuild trigger.
func ignorable(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp")
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
// Non-directories are ignored, as are paths that vanished in the meantime.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

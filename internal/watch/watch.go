// Package watch observes the storage root and reports new files.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is invoked once per new file. kind is "artifact" for
// generated packages and "media" for everything else.
type EventCallback func(kind, filename string, size int64)

// artifactSuffix mirrors pkgservice.ArtifactSuffix without importing it;
// the watcher classifies purely by name.
const artifactSuffix = ".apkg"

// Run watches root (a flat directory, no recursion needed) and calls cb
// for every file that appears, until ctx is cancelled. Dotfiles are
// skipped: atomic artifact writes stage through dot-prefixed temp names
// and only the final rename produces a visible Create event.
func Run(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			info, statErr := os.Stat(ev.Name)
			if statErr != nil || info.IsDir() {
				continue
			}

			kind := "media"
			if strings.HasSuffix(name, artifactSuffix) {
				kind = "artifact"
			}
			logger.Debug("watcher: new file",
				slog.String("kind", kind),
				slog.String("filename", name),
				slog.Int64("size", info.Size()))
			if cb != nil {
				cb(kind, name, info.Size())
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

package githubauth

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the write bursts credential agents produce
// when they rewrite the token file.
const watchDebounce = 500 * time.Millisecond

// Watch reloads the token whenever the file is rewritten. It blocks
// until ctx is canceled. Reload failures are logged and the previous
// token stays in effect; the next successful write recovers.
func (s *FileTokenSource) Watch(ctx context.Context, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: agents commonly replace the
	// file by rename, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if err := s.reload(); err != nil {
					log.Warn("token reload failed", "path", s.path, "error", err)
					return
				}
				log.Debug("token reloaded", "path", s.path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("token watcher error", "error", err)
		}
	}
}

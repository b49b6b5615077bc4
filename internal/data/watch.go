package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long a directory must stay quiet before reload runs.
const WatchDebounce = 100 * time.Millisecond

// Watch calls reload once a burst of changes to files accepted by match
// settles. It blocks until ctx is canceled. Reload errors are logged and the
// previous data stays active.
func Watch(ctx context.Context, dir string, match func(name string) bool, reload func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	slog.Info("watching data dir", "dir", dir)

	debounce := time.NewTimer(WatchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !match(ev.Name) {
				continue
			}
			debounce.Reset(WatchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("data watcher error", "dir", dir, "error", err)

		case <-debounce.C:
			if err := reload(ctx); err != nil {
				slog.Error("hot reload failed, keeping previous data", "dir", dir, "error", err)
				continue
			}
			slog.Info("hot reload done", "dir", dir)
		}
	}
}

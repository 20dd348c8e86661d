package storage

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for each photo file change.
// kind is one of "added", "removed".
type EventCallback func(kind string, name string)

// Watch starts an fsnotify watcher on the photos directory and reports
// image file changes until ctx is cancelled. Photos are stored flat,
// so no recursive watching is needed.
func Watch(ctx context.Context, fs *FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.Root()); err != nil {
		return err
	}

	logger.Info("photo watcher: started", slog.String("root", fs.Root()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("photo watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !IsImageName(name) {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Create):
				logger.Debug("photo watcher: added", slog.String("file", name))
				if cb != nil {
					cb("added", name)
				}
			case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
				logger.Debug("photo watcher: removed", slog.String("file", name))
				if cb != nil {
					cb("removed", name)
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("photo watcher: error", slog.String("error", err.Error()))
		}
	}
}

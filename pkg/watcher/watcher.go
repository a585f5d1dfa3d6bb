// Package watcher reloads the hot graph when the store document changes
// on disk. It belongs to the serve command's outer glue; the cache core
// itself never spawns goroutines.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StoreWatcher watches one store document and fires a callback after
// changes settle. Writes are debounced because stores are rewritten via
// temp file and rename, which shows up as several events in a row.
type StoreWatcher struct {
	path        string
	quietPeriod time.Duration
	onChange    func(ctx context.Context)
	logger      *slog.Logger
}

// New creates a watcher for path. onChange runs on the watcher goroutine
// after quietPeriod elapses with no further events.
func New(path string, quietPeriod time.Duration, onChange func(ctx context.Context), logger *slog.Logger) *StoreWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StoreWatcher{
		path:        path,
		quietPeriod: quietPeriod,
		onChange:    onChange,
		logger:      logger,
	}
}

// Start watches until the context is cancelled. The document's directory
// is watched rather than the file itself so renames over the file keep
// being seen.
func (w *StoreWatcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return err
	}
	w.logger.Info("watching store document", "path", w.path)

	go w.run(ctx, fw)
	return nil
}

func (w *StoreWatcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()

	var timer *time.Timer
	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("store document changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.quietPeriod)
			} else {
				timer.Reset(w.quietPeriod)
			}

		case <-timerC():
			timer = nil
			w.onChange(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

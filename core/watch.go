package core

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/livemeasure/internal/contract"
)

// WatchInput calls onChange each time the file at path is written.
// It runs until ctx is cancelled. Errors from onChange are logged and
// watching continues.
func WatchInput(ctx context.Context, path string, onChange func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	contract.LogInfo("Watching %s for changes (Ctrl+C to stop)", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, which shows up as Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := onChange(ctx); err != nil {
				contract.LogWarn("Recompute failed", err)
			}
			// Re-add the file in case an atomic save replaced the inode
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			contract.LogWarn("Watcher error", err)
		}
	}
}

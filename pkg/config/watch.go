package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the global configuration whenever the config file changes.
// It blocks until ctx is cancelled or the watcher fails. onReload is called
// after each successful reload and may be nil.
func Watch(ctx context.Context, onReload func(*CoursewareConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	cfg := Get()
	if err := watcher.Add(cfg.ConfigFilePath()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.ConfigFilePath(), err)
	}

	// Editors often replace the file rather than write in place, which
	// fires a burst of events. Debounce before reloading.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(250 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		case <-pending:
			pending = nil
			if err := Reload(); err != nil {
				return err
			}
			// Re-add in case the file was replaced
			_ = watcher.Add(cfg.ConfigFilePath())
			if onReload != nil {
				onReload(Get())
			}
		}
	}
}

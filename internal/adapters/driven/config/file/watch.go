package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// debounceDelay coalesces the burst of filesystem events an editor save
// produces into a single reload.
const debounceDelay = 200 * time.Millisecond

// Watch reloads the configuration whenever the file changes, until ctx is
// cancelled. Successful loads reach onChange; loads that fail, including
// validation failures, reach onError and leave the previous configuration
// in effect.
//
// The parent directory is watched rather than the file itself, because
// editors often replace the file by rename, which would silently detach a
// file-level watch.
func (s *ConfigStore) Watch(ctx context.Context, onChange func(domain.Config), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			reload = time.After(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onError(err)

		case <-reload:
			reload = nil
			cfg, err := s.Load(ctx)
			if err != nil {
				onError(err)
				continue
			}
			onChange(cfg)
		}
	}
}

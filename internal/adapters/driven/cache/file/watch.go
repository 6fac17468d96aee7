package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/logger"
)

// Watch blocks until ctx is cancelled, invoking onChange with fresh
// stats whenever the cache file is written, created, or replaced.
//
// The watch is on the containing directory rather than the file itself,
// because every persist replaces the file via rename and a direct file
// watch would go stale after the first one.
func (s *Store) Watch(ctx context.Context, onChange func(domain.CacheStats)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create cache watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger.Debug("Watching cache file %s", s.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			s.Reload()
			stats, err := s.Stats(ctx)
			if err != nil {
				logger.Warn("Failed to read cache stats after change: %v", err)
				continue
			}
			onChange(stats)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Cache watcher error: %v", err)
		}
	}
}

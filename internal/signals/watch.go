package signals

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/marmos91/fingered/internal/logger"
)

// DefaultDebounce coalesces the burst of events an editor produces when
// saving a file.
const DefaultDebounce = 100 * time.Millisecond

// WatchFile emits EventReload whenever path is written, created, or renamed
// into place. The parent directory is watched so that atomic replacement
// (write temp file, rename over) is noticed. Bursts within DefaultDebounce
// collapse into one event.
//
// The returned channel is closed when ctx ends.
func WatchFile(ctx context.Context, path string) (<-chan Event, error) {
	return watchFile(ctx, path, DefaultDebounce)
}

func watchFile(ctx context.Context, path string, debounce time.Duration) (<-chan Event, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan Event, 1)
	go func() {
		defer close(out)
		defer func() { _ = watcher.Close() }()

		timer := time.NewTimer(debounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				logger.Debug("users file changed", logger.UsersFile(abs), logger.KeyEvent, event.Op.String())
				timer.Reset(debounce)

			case <-timer.C:
				select {
				case out <- EventReload:
				default:
					// A reload is already pending.
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("users file watcher error", logger.UsersFile(abs), logger.Err(err))
			}
		}
	}()

	return out, nil
}

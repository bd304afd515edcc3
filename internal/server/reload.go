package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader watches the policy input files — catalog, guard rules,
// paraphrase patterns — and triggers hot-reload of whichever one changed.
type Reloader struct {
	watcher *fsnotify.Watcher
	server  *Server
	logger  *zap.Logger
	paths   []string
}

// NewReloader creates a file watcher for the given paths. Missing or empty
// paths are skipped, so built-in defaults need no watch setup.
func NewReloader(server *Server, logger *zap.Logger, paths []string) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var watched []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %q: %w", p, err)
		}
		watched = append(watched, p)
	}

	return &Reloader{
		watcher: watcher,
		server:  server,
		logger:  logger,
		paths:   watched,
	}, nil
}

// Run watches for file changes and reloads the changed config. Blocks until
// ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce per path: wait 500ms after the last write before reloading,
	// so an editor's write burst triggers one reload, not several.
	debounce := make(map[string]*time.Timer)
	stopAll := func() {
		for _, t := range debounce {
			t.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopAll()
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				path := event.Name
				if t, ok := debounce[path]; ok {
					t.Stop()
				}
				debounce[path] = time.AfterFunc(500*time.Millisecond, func() {
					if err := r.server.ReloadPath(path); err != nil {
						r.logger.Error("hot-reload failed, keeping active config",
							zap.String("path", path), zap.Error(err))
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

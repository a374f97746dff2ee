package meeting

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// PromptWatcher reloads a prompt file into a PromptStore whenever it changes.
type PromptWatcher struct {
	path    string
	store   *PromptStore
	watcher *fsnotify.Watcher
	log     *logrus.Entry
	// reloaded, when set, is called after every reload attempt
	reloaded func(error)
}

// WatchPrompts watches the directory holding path, since editors often
// replace a file instead of writing it in place.
func WatchPrompts(path string, store *PromptStore, log *logrus.Logger) (*PromptWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve prompts path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}
	return &PromptWatcher{
		path:    abs,
		store:   store,
		watcher: w,
		log:     log.WithField("component", "prompt-watcher"),
	}, nil
}

// Start blocks until ctx is done or the watcher is closed.
func (w *PromptWatcher) Start(ctx context.Context) error {
	w.log.WithField("path", w.path).Info("watching prompt file")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Errorf("watcher error: %v", err)
		}
	}
}

// reload keeps the previous catalogue when the new file does not parse.
func (w *PromptWatcher) reload() {
	ps, err := LoadPrompts(w.path)
	if err != nil {
		w.log.Warnf("prompt reload failed, keeping previous prompts: %v", err)
	} else {
		w.store.Set(ps)
		w.log.Info("prompts reloaded")
	}
	if w.reloaded != nil {
		w.reloaded(err)
	}
}

func (w *PromptWatcher) Stop() error {
	return w.watcher.Close()
}

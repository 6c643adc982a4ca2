// Package watcher reports changes to project files in a directory.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

type Watcher interface {
	Watch(ctx context.Context, path string) error
	Stop() error
	OnChange(callback func(path string, event EventType))
}

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// IsProjectFile reports whether path looks like a YAML project file.
func IsProjectFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// FSWatcher watches a single directory, non-recursively.
type FSWatcher struct {
	logger *slog.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	callback func(path string, event EventType)
	done     chan struct{}
}

func NewFSWatcher(logger *slog.Logger) *FSWatcher {
	return &FSWatcher{logger: logger}
}

func (w *FSWatcher) OnChange(callback func(path string, event EventType)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = callback
}

// Watch starts watching dir and returns once the watch is registered.
// Events are delivered until ctx is cancelled or Stop is called.
func (w *FSWatcher) Watch(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.mu.Lock()
	if w.fsw != nil {
		w.mu.Unlock()
		fsw.Close()
		return fmt.Errorf("watcher already running")
	}
	w.fsw = fsw
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Info("watching project files", "dir", dir)
	}

	go w.loop(ctx, fsw, done)
	return nil
}

func (w *FSWatcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.dispatch(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher error", "error", err)
			}
		}
	}
}

func (w *FSWatcher) dispatch(event fsnotify.Event) {
	if !IsProjectFile(event.Name) {
		return
	}

	var kind EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = EventCreate
	case event.Op&fsnotify.Write != 0:
		kind = EventModify
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = EventDelete
	default:
		return
	}

	w.mu.Lock()
	cb := w.callback
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Debug("project file changed", "path", event.Name, "event", kind.String())
	}
	if cb != nil {
		cb(event.Name, kind)
	}
}

func (w *FSWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw == nil {
		return nil
	}
	close(w.done)
	err := w.fsw.Close()
	w.fsw = nil
	return err
}

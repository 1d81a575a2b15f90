// Package watcher invalidates discovery and registry caches when theme
// directories change on disk. Rapid change bursts are debounced so one
// editor save or checkout produces a single invalidation.
package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/omegakit/omega/internal/logging"
)

// ChangeHandler receives the batch of changed paths after debouncing.
type ChangeHandler func(paths []string)

// ThemeWatcher watches theme roots recursively with debounced delivery.
type ThemeWatcher struct {
	watcher  *fsnotify.Watcher
	delay    time.Duration
	handlers []ChangeHandler
	logger   logging.Logger

	mutex   sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	done    chan struct{}
	once    sync.Once
}

// New creates a watcher delivering change batches after delay.
func New(delay time.Duration, logger logging.Logger) (*ThemeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ThemeWatcher{
		watcher: w,
		delay:   delay,
		logger:  logger.WithComponent("watcher"),
		pending: make(map[string]bool),
		done:    make(chan struct{}),
	}, nil
}

// AddHandler registers a change handler. Handlers run on the watcher
// goroutine and must not block.
func (tw *ThemeWatcher) AddHandler(handler ChangeHandler) {
	tw.mutex.Lock()
	defer tw.mutex.Unlock()
	tw.handlers = append(tw.handlers, handler)
}

// AddRoot watches root and every directory below it, skipping dot
// directories.
func (tw *ThemeWatcher) AddRoot(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return tw.watcher.Add(path)
	})
}

// Start processes events until the context is canceled or Stop is called.
func (tw *ThemeWatcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-tw.done:
				return
			case event, ok := <-tw.watcher.Events:
				if !ok {
					return
				}
				tw.record(event)
			case err, ok := <-tw.watcher.Errors:
				if !ok {
					return
				}
				tw.logger.Warn(ctx, err, "watch error")
			}
		}
	}()
}

// Stop terminates event processing and releases the watcher.
func (tw *ThemeWatcher) Stop() {
	tw.once.Do(func() {
		close(tw.done)
		tw.watcher.Close()

		tw.mutex.Lock()
		if tw.timer != nil {
			tw.timer.Stop()
		}
		tw.mutex.Unlock()
	})
}

// record buffers one event and (re)arms the debounce timer. New
// directories are added to the watch set so nested theme trees stay
// covered.
func (tw *ThemeWatcher) record(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		// Ignore errors: the path may already be gone or be a file.
		_ = tw.AddRoot(event.Name)
	}

	tw.mutex.Lock()
	defer tw.mutex.Unlock()

	tw.pending[event.Name] = true
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.timer = time.AfterFunc(tw.delay, tw.flush)
}

// flush delivers the pending batch to every handler.
func (tw *ThemeWatcher) flush() {
	tw.mutex.Lock()
	paths := make([]string, 0, len(tw.pending))
	for path := range tw.pending {
		paths = append(paths, path)
	}
	tw.pending = make(map[string]bool)
	handlers := tw.handlers
	tw.mutex.Unlock()

	if len(paths) == 0 {
		return
	}
	for _, handler := range handlers {
		handler(paths)
	}
}

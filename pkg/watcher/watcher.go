// Package watcher re-extracts component props when files change on disk.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/propspec/pkg/parser"
	"github.com/gnana997/propspec/pkg/props"
	"github.com/gnana997/propspec/pkg/scanner"
)

// WatchOptions configures a Watcher.
type WatchOptions struct {
	// DebounceMs groups rapid writes to one file into one extraction.
	// Zero means 200ms.
	DebounceMs int

	// Exclude holds glob patterns, relative to the watched root, for paths
	// to ignore. Nil means scanner.DefaultExcludes().
	Exclude []string

	// Props is passed to every extraction.
	Props props.Options
}

// Event reports the new props of a changed component.
type Event struct {
	Path  string       `json:"path"`
	Props []props.Prop `json:"props,omitempty"`
	// Err is set when the changed file could not be extracted.
	Err     error  `json:"-"`
	Error   string `json:"error,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

// Watcher watches a directory tree and re-extracts .svelte files as they
// change.
//
// **Usage:**
//
//	w, err := watcher.New(ext, watcher.WatchOptions{}, func(ev watcher.Event) {
//	    fmt.Println(ev.Path, len(ev.Props))
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start("./src"); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher  *fsnotify.Watcher
	ext      *props.Extractor
	onChange func(Event)
	logger   *slog.Logger
	options  WatchOptions
	root     string

	// Debouncing
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// Lifecycle
	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
	loopDone sync.WaitGroup
}

// New creates a Watcher. onChange is called from a background goroutine
// once per settled change.
func New(ext *props.Extractor, options WatchOptions, onChange func(Event), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = 200
	}
	if options.Exclude == nil {
		options.Exclude = scanner.DefaultExcludes()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:        fsw,
		ext:            ext,
		onChange:       onChange,
		logger:         logger,
		options:        options,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start begins watching rootPath and every non-excluded directory below it.
// It returns once the watches are in place; events are handled in the
// background until Stop.
func (w *Watcher) Start(rootPath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	w.root = root

	if err := w.watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	if err := w.addTree(root); err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	w.started = true
	w.loopDone.Add(1)
	go w.eventLoop()

	w.logger.Info("File watcher started", "root", root)
	return nil
}

// addTree watches every directory under dir, skipping excluded ones.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on error
		}
		if !d.IsDir() || path == w.root {
			return nil
		}
		if w.shouldIgnore(path, true) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops the watcher and cancels pending extractions.
//
// **Thread Safety:** Safe to call multiple times (idempotent).
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopChan)
	w.mu.Unlock()

	// Cancel all debounce timers
	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.loopDone.Wait()
	w.logger.Info("File watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	defer w.loopDone.Done()
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) && isDir(path) {
		if !w.shouldIgnore(path, true) {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("Failed to watch directory", "path", path, "error", err)
			}
			if err := w.addTree(path); err != nil {
				w.logger.Warn("Failed to watch directory tree", "path", path, "error", err)
			}
		}
		return
	}

	if !parser.IsComponentFile(path) || w.shouldIgnore(path, false) {
		return
	}

	w.logger.Debug("File event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.debounceExtract(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancelPending(path)
		w.emit(Event{Path: path, Removed: true})
	}
}

// debounceExtract schedules an extraction after the debounce delay. Only the
// last event in a burst for the same file triggers it.
func (w *Watcher) debounceExtract(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}

	w.debounceTimers[path] = time.AfterFunc(
		time.Duration(w.options.DebounceMs)*time.Millisecond,
		func() {
			w.debounceMu.Lock()
			delete(w.debounceTimers, path)
			w.debounceMu.Unlock()

			w.extract(path)
		},
	)
}

func (w *Watcher) cancelPending(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
		delete(w.debounceTimers, path)
	}
}

func (w *Watcher) extract(path string) {
	select {
	case <-w.stopChan:
		return
	default:
	}

	w.logger.Debug("Extracting changed file", "file", path)

	ev := Event{Path: path}
	ev.Props, ev.Err = w.ext.ExtractFile(context.Background(), path, w.options.Props)
	if ev.Err != nil {
		ev.Error = ev.Err.Error()
		w.logger.Warn("Failed to extract file", "file", path, "error", ev.Err)
	}
	w.emit(ev)
}

func (w *Watcher) emit(ev Event) {
	if w.onChange != nil {
		w.onChange(ev)
	}
}

// shouldIgnore matches path, relative to the root, against the exclude
// globs.
func (w *Watcher) shouldIgnore(path string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.options.Exclude {
		if scanner.Excluded(pattern, rel, isDir) {
			return true
		}
	}
	return false
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.debounceMu.Lock()
	pending := len(w.debounceTimers)
	w.debounceMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return Stats{
		PendingExtractions: pending,
		IsRunning:          running,
	}
}

// Stats contains watcher statistics.
type Stats struct {
	PendingExtractions int
	IsRunning          bool
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

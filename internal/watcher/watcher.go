// Package watcher implements the debounced, single-subscription file
// watcher (§4.8): fsnotify events are normalized, coalesced per path over a
// ~250ms window, and routed by extension to the code or docs side of an
// Index Manager.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/localsearch/localsearch/internal/logging"
	"github.com/localsearch/localsearch/internal/pathutil"
)

// EventKind is the normalized event type after coalescing.
type EventKind string

const (
	EventAdd    EventKind = "add"
	EventChange EventKind = "change"
	EventDelete EventKind = "delete"
)

// Dispatcher is the subset of indexmgr.Manager the watcher needs. A project
// holds only this thin interface, never the manager itself, to avoid a
// watcher-manager ownership cycle (§9).
type Dispatcher interface {
	UpdateFile(ctx context.Context, relPath string) error
	RemoveFile(ctx context.Context, relPath string) error
}

const debounceWindow = 250 * time.Millisecond

// Watcher recursively watches one project root and coalesces fsnotify
// events into debounced, per-path updates submitted serially to dispatcher
// (§4.8, "no concurrent writers per store").
type Watcher struct {
	root       string
	dispatcher Dispatcher

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	pending map[string]EventKind
	timer   *time.Timer
}

// New creates a Watcher for root, recursively subscribing to every
// directory under it. Routing between the code and docs side of dispatcher
// happens inside the Index Manager itself (doc-pattern matching against the
// project's config), so the watcher only needs one dispatch target.
func New(root string, dispatcher Dispatcher) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:       root,
		dispatcher: dispatcher,
		fsw:        fsw,
		pending:    map[string]EventKind{},
		done:       make(chan struct{}),
	}
	if err := w.addDirsRecursively(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins the watch loop in a background goroutine.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.loop(ctx)
}

// Stop cancels the watch loop and waits for it to exit.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleRawEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Default().Warn("watcher", "fsnotify error", map[string]any{"error": err.Error()})
		}
	}
}

func (w *Watcher) handleRawEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if isDir(event.Name) {
			_ = w.addDirsRecursively(event.Name)
			return
		}
	}

	rel, err := pathutil.ToRel(w.root, event.Name)
	if err != nil {
		return
	}

	kind, ok := normalize(event.Op)
	if !ok {
		return
	}

	w.mu.Lock()
	// "change" overrides a prior "add"; "delete" overrides any prior event
	// for the same path; a subsequent add/change overrides a prior "delete"
	// within the same window (the common atomic-save pattern: remove
	// original, rename temp into place), since the file genuinely exists on
	// disk again by the time the batch flushes (§4.8 coalescing rules).
	switch {
	case kind == EventDelete:
		w.pending[rel] = EventDelete
	default:
		w.pending[rel] = kind
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceWindow, w.flush)
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = map[string]EventKind{}
	w.mu.Unlock()

	ctx := context.Background()
	for rel, kind := range batch {
		var err error
		switch kind {
		case EventDelete:
			err = w.dispatcher.RemoveFile(ctx, rel)
		default:
			err = w.dispatcher.UpdateFile(ctx, rel)
		}
		if err != nil {
			logging.Default().Warn("watcher", "dispatch failed", map[string]any{"path": rel, "error": err.Error()})
		}
	}
}

func normalize(op fsnotify.Op) (EventKind, bool) {
	switch {
	case op&fsnotify.Remove != 0 || op&fsnotify.Rename != 0:
		return EventDelete, true
	case op&fsnotify.Create != 0:
		return EventAdd, true
	case op&fsnotify.Write != 0:
		return EventChange, true
	default:
		return "", false
	}
}

func (w *Watcher) addDirsRecursively(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if shouldSkipDir(path) {
				return filepath.SkipDir
			}
			_ = w.fsw.Add(path)
		}
		return nil
	})
}

func shouldSkipDir(path string) bool {
	base := filepath.Base(path)
	return base == ".git" || base == "node_modules" || base == ".localsearch" || base == "vendor"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

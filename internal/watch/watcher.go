package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault coalesces editor save bursts into a single reload.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the check interval when fsnotify cannot watch the directory.
const pollDefault = 2 * time.Second

// Watcher signals whenever the tasks file changes on disk. Signals are
// coalesced; consumers reload the whole file on each one.
type Watcher struct {
	path     string
	debounce time.Duration
	poll     time.Duration
	events   chan struct{}

	mu      sync.Mutex
	pending *time.Timer
}

// New creates a watcher for the given tasks file.
func New(path string, debounce, poll time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = debounceDefault
	}
	if poll <= 0 {
		poll = pollDefault
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		poll:     poll,
		events:   make(chan struct{}, 1),
	}
}

// Events returns the change channel. At most one signal is buffered.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Run blocks until ctx is cancelled, feeding Events. Falls back to modtime
// polling when the directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("fsnotify unavailable, polling instead", "error", err)
		return w.runPoll(ctx)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors and atomic writers replace
	// the file by rename, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		slog.Warn("watch directory failed, polling instead",
			"dir", filepath.Dir(w.path), "error", err)
		return w.runPoll(ctx)
	}

	slog.Debug("watching tasks file", "mode", "fsnotify", "file", w.path)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.pending != nil {
				w.pending.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Sidecars count as the file changing: atomic writers stage a
			// .tmp next to it and SQLite appends to -wal before checkpointing.
			if !strings.HasPrefix(filepath.Clean(event.Name), w.path) {
				continue
			}
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// schedule arms the debounce timer, restarting it if one is already pending.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.notify)
}

// notify delivers a signal without blocking. A full buffer means a reload
// is already queued.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

// runPoll compares the file's size and modtime on an interval.
func (w *Watcher) runPoll(ctx context.Context) error {
	slog.Debug("watching tasks file", "mode", "poll", "file", w.path, "interval", w.poll)

	var lastMod time.Time
	var lastSize int64
	if info, err := os.Stat(w.path); err == nil {
		lastMod = info.ModTime()
		lastSize = info.Size()
	}

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if info.ModTime().Equal(lastMod) && info.Size() == lastSize {
				continue
			}
			lastMod = info.ModTime()
			lastSize = info.Size()
			w.notify()
		}
	}
}

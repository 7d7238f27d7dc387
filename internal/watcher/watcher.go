// Package watcher turns an inbox directory of downloaded measurement
// JSON files into a stream of stable file paths.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kestrel-data/thermal.report/internal/monitoring"
)

// defaultSettleDelay is how long a file must stay quiet before it is
// emitted. Downloads arrive in several writes; emitting on the first
// event would hand the pipeline a truncated document.
const defaultSettleDelay = 500 * time.Millisecond

// Watcher watches one directory for *.json measurement files. Existing
// files are emitted on startup so a backlog is not lost across
// restarts.
type Watcher struct {
	dir    string
	files  chan string
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a Watcher for dir.
func New(dir string) *Watcher {
	return &Watcher{
		dir:     dir,
		files:   make(chan string, 16),
		settle:  defaultSettleDelay,
		pending: make(map[string]*time.Timer),
	}
}

// SetSettleDelay overrides the quiet period before a file is emitted.
// Intended for tests.
func (w *Watcher) SetSettleDelay(d time.Duration) { w.settle = d }

// Files returns the channel of settled measurement file paths.
func (w *Watcher) Files() <-chan string { return w.files }

// Run watches the inbox until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	// Pick up files already sitting in the inbox.
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && isMeasurementFile(e.Name()) {
			w.schedule(filepath.Join(w.dir, e.Name()))
		}
	}

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isMeasurementFile(ev.Name) {
				continue
			}
			w.schedule(ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			monitoring.Logf("inbox watch error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func isMeasurementFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// schedule (re)arms the settle timer for path. Each write resets the
// timer, so the path is emitted once the file has been quiet for the
// settle period.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.files <- path
	})
}

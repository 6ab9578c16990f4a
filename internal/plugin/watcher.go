package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when using a closed Watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// DefaultWatchDelay is how long a path must stay quiet before its change
// is reported.
const DefaultWatchDelay = 100 * time.Millisecond

// Watcher reports changes to plugin sources under the watched directories.
// Several writes to the same file within the delay are reported once.
type Watcher struct {
	mu sync.Mutex

	watcher *fsnotify.Watcher
	delay   time.Duration
	pending map[string]*time.Timer

	changes chan string
	errors  chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewWatcher creates a watcher. A delay <= 0 uses DefaultWatchDelay.
func NewWatcher(delay time.Duration) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fsw,
		delay:   delay,
		pending: make(map[string]*time.Timer),
		changes: make(chan string, 100),
		errors:  make(chan error, 10),
		closeCh: make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch watches each directory and its immediate subdirectories, which is
// where directory plugins live. Missing directories are skipped.
func (w *Watcher) Watch(dirs ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if err := w.watcher.Add(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Changes returns the channel of changed plugin source paths.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and closes both channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.closedWg.Wait()

	err := w.watcher.Close()

	w.mu.Lock()
	close(w.changes)
	close(w.errors)
	w.mu.Unlock()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Rename) {
		return
	}

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.mu.Lock()
			if !w.closed {
				_ = w.watcher.Add(ev.Name)
			}
			w.mu.Unlock()
			return
		}
	}

	if !isPluginSource(ev.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[ev.Name]; ok {
		t.Reset(w.delay)
		return
	}
	path := ev.Name
	w.pending[path] = time.AfterFunc(w.delay, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	delete(w.pending, path)
	select {
	case w.changes <- path:
	default:
	}
}

// isPluginSource reports whether a change to path can affect a plugin.
func isPluginSource(path string) bool {
	switch filepath.Base(path) {
	case manifestJSON, manifestYAML, manifestYML:
		return true
	}
	return filepath.Ext(path) == ".lua"
}

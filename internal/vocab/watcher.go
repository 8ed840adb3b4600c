package vocab

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay coalesces rapid successive writes (editors often
// truncate then write) into a single reload.
const DefaultDebounceDelay = 200 * time.Millisecond

// Watcher hot-reloads a vocabulary directory. On every debounced change it
// loads a fresh Store and swaps the snapshot pointer; snapshots already
// handed out are never mutated, so in-flight comparisons stay consistent.
type Watcher struct {
	dir     string
	fsw     *fsnotify.Watcher
	current atomic.Pointer[Store]
	done    chan struct{}

	// OnReload, if set, is called with each successfully loaded snapshot.
	OnReload func(*Store)

	// OnError, if set, receives reload and watch errors. A failed reload
	// keeps the previous snapshot in place.
	OnError func(error)

	mu            sync.Mutex
	debounceDelay time.Duration
	timer         *time.Timer
	closed        bool
}

// NewWatcher loads the vocabulary from dir and prepares a filesystem watch
// on it. The initial load must succeed; Start must be called to begin
// receiving updates.
func NewWatcher(dir string) (*Watcher, error) {
	store, err := Load(dir)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create vocabulary watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch vocabulary directory %s: %w", dir, err)
	}

	w := &Watcher{
		dir:           dir,
		fsw:           fsw,
		done:          make(chan struct{}),
		debounceDelay: DefaultDebounceDelay,
	}
	w.current.Store(store)
	return w, nil
}

// Current returns the latest vocabulary snapshot.
func (w *Watcher) Current() *Store {
	return w.current.Load()
}

// Start begins processing filesystem events in a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Close stops the watcher and releases its filesystem resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isVocabFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.scheduleReload()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// scheduleReload debounces reloads so a burst of writes triggers one load.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	store, err := Load(w.dir)
	if err != nil {
		// Keep serving the previous snapshot; a half-edited vocabulary
		// must not take down running comparisons.
		w.reportError(fmt.Errorf("vocabulary reload: %w", err))
		return
	}
	w.current.Store(store)
	if w.OnReload != nil {
		w.OnReload(store)
	}
}

func (w *Watcher) reportError(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}

func isVocabFile(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name != SynonymsDoc && name != PatternsDoc && name != IntentTagsDoc {
		return false
	}
	for _, allowed := range docExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

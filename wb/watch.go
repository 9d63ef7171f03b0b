package wb

// watch.go: fsnotify-backed directory refresh. The watcher goroutine only
// records which directories changed; the dispatcher drains that set from
// its 1 Hz block and rescans on its own thread, so no X call ever happens
// off the main loop.

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher tracks open directories for external changes.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	changed map[string]bool
	refs    map[string]int
}

// NewWatcher starts the fsnotify pump. A failed init degrades to manual
// refresh only.
func NewWatcher() *Watcher {
	w := &Watcher{
		changed: make(map[string]bool),
		refs:    make(map[string]int),
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warnf("fsnotify unavailable: %v", err)
		return w
	}
	w.fsw = fsw
	go w.pump()
	return w
}

func (w *Watcher) pump() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.mu.Lock()
			w.changed[filepath.Dir(ev.Name)] = true
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Debugf("fsnotify: %v", err)
		}
	}
}

// Watch adds a directory (refcounted: two windows on one directory share
// a watch).
func (w *Watcher) Watch(dir string) {
	if w.fsw == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refs[dir]++
	if w.refs[dir] == 1 {
		if err := w.fsw.Add(dir); err != nil {
			log.Debugf("watching %s: %v", dir, err)
		}
	}
}

// Unwatch drops a reference and the watch with the last one.
func (w *Watcher) Unwatch(dir string) {
	if w.fsw == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.refs[dir] == 0 {
		return
	}
	w.refs[dir]--
	if w.refs[dir] == 0 {
		delete(w.refs, dir)
		w.fsw.Remove(dir)
	}
}

// Changed drains and returns the set of directories with activity since
// the last call.
func (w *Watcher) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.changed) == 0 {
		return nil
	}
	out := make([]string, 0, len(w.changed))
	for d := range w.changed {
		out = append(out, d)
	}
	w.changed = make(map[string]bool)
	return out
}

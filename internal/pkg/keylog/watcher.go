package keylog

import (
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nicholashanson/tlscore/internal/pkg/logger"
)

// Snapshot provides atomic-swap access to a SecretLog so that concurrent
// readers always observe either a complete prior snapshot or a complete
// new one — never a torn view of a log being reloaded mid-read.
type Snapshot struct {
	ptr atomic.Pointer[SecretLog]
}

// NewSnapshot wraps an initial SecretLog for atomic-swap access.
func NewSnapshot(initial SecretLog) *Snapshot {
	s := &Snapshot{}
	s.Store(initial)
	return s
}

// Load returns the current SecretLog snapshot.
func (s *Snapshot) Load() SecretLog {
	p := s.ptr.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Store atomically replaces the snapshot.
func (s *Snapshot) Store(log SecretLog) {
	s.ptr.Store(&log)
}

// Watcher tails a key-log file on disk, reparsing it and atomically
// swapping a Snapshot whenever fsnotify reports a write — or, if
// fsnotify is unavailable, on a polling fallback interval. This is a
// boundary concern: the core's key schedule never reads files itself.
type Watcher struct {
	path         string
	snapshot     *Snapshot
	pollInterval time.Duration

	fsWatcher *fsnotify.Watcher
	stopChan  chan struct{}
	done      chan struct{}
}

// NewWatcher creates a Watcher for path, performing an initial load into
// snapshot before returning.
func NewWatcher(path string, pollInterval time.Duration) (*Watcher, error) {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	initial, err := Load(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:         path,
		snapshot:     NewSnapshot(initial),
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err := fsWatcher.Add(path); err == nil {
			w.fsWatcher = fsWatcher
		} else {
			fsWatcher.Close()
		}
	}

	return w, nil
}

// Snapshot returns the Watcher's live snapshot accessor.
func (w *Watcher) Snapshot() *Snapshot {
	return w.snapshot
}

// Run blocks, reloading the key log on file events (or the polling
// fallback) until Stop is called. Intended to run in its own goroutine.
func (w *Watcher) Run() {
	defer close(w.done)

	if w.fsWatcher != nil {
		defer w.fsWatcher.Close()
		for {
			select {
			case <-w.stopChan:
				return
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					w.reload()
				}
			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				logger.Get().Warn("keylog watcher error", "error", err)
			}
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.reload()
		}
	}
}

// Stop terminates Run and waits for it to return.
func (w *Watcher) Stop() {
	close(w.stopChan)
	<-w.done
}

func (w *Watcher) reload() {
	log, err := Load(w.path)
	if err != nil {
		logger.Get().Warn("keylog reload failed", "path", w.path, "error", err)
		return
	}
	w.snapshot.Store(log)
}

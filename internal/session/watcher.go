package session

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watch event types.
const (
	EventPersisted = "persisted" // A session file was written or renamed into place
	EventRemoved   = "removed"   // A session file disappeared
)

// WatchEvent reports a change to a session file in the storage directory.
type WatchEvent struct {
	Type string    // EventPersisted or EventRemoved
	ID   uuid.UUID // Session id parsed from the file name
	Path string    // Full path to the session file
}

// Watcher monitors the storage directory so a viewer can pick up sessions
// saved by other runs.
type Watcher struct {
	fsWatcher *fsnotify.Watcher

	Events chan WatchEvent
	Errors chan error

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for store's directory, creating the directory
// if needed.
func NewWatcher(store *Store) (*Watcher, error) {
	dir, err := store.Dir()
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		Events:    make(chan WatchEvent, 100),
		Errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// watchLoop handles fsnotify events
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				// Error channel full, drop
			}
		}
	}
}

// handleFSEvent translates a filesystem event into a WatchEvent
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !isSessionFile(name) {
		return
	}
	id, err := uuid.Parse(name)
	if err != nil {
		return
	}

	var typ string
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		typ = EventPersisted
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = EventRemoved
	default:
		return
	}

	select {
	case w.Events <- WatchEvent{Type: typ, ID: id, Path: event.Name}:
	default:
		// Event channel full
	}
}

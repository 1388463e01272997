package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsSavedSession(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "sessions"))
	w, err := NewWatcher(store)
	require.NoError(t, err)
	w.Start()
	t.Cleanup(func() { _ = w.Stop() })

	s := New()
	require.NoError(t, store.Save(s))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events:
			if ev.ID == s.ID && ev.Type == EventPersisted {
				assert.Equal(t, store.Path(s.ID), ev.Path)
				return
			}
		case err := <-w.Errors:
			t.Fatalf("watcher error: %v", err)
		case <-timeout:
			t.Fatal("timed out waiting for persisted event")
		}
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(NewStore(t.TempDir()))
	require.NoError(t, err)
	w.Start()

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatcherUnavailableDirectory(t *testing.T) {
	_, err := NewWatcher(NewStore(brokenDir(t)))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestHandleFSEvent(t *testing.T) {
	dir := t.TempDir()
	id := New().ID

	tests := []struct {
		name     string
		event    fsnotify.Event
		wantType string // empty means no event
	}{
		{"create", fsnotify.Event{Name: filepath.Join(dir, id.String()), Op: fsnotify.Create}, EventPersisted},
		{"write", fsnotify.Event{Name: filepath.Join(dir, id.String()), Op: fsnotify.Write}, EventPersisted},
		{"remove", fsnotify.Event{Name: filepath.Join(dir, id.String()), Op: fsnotify.Remove}, EventRemoved},
		{"rename away", fsnotify.Event{Name: filepath.Join(dir, id.String()), Op: fsnotify.Rename}, EventRemoved},
		{"chmod ignored", fsnotify.Event{Name: filepath.Join(dir, id.String()), Op: fsnotify.Chmod}, ""},
		{"temp file ignored", fsnotify.Event{Name: filepath.Join(dir, "."+id.String()+"-123.tmp"), Op: fsnotify.Create}, ""},
		{"foreign file ignored", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Create}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Watcher{Events: make(chan WatchEvent, 1)}
			w.handleFSEvent(tt.event)

			select {
			case ev := <-w.Events:
				require.NotEmpty(t, tt.wantType, "unexpected event %+v", ev)
				assert.Equal(t, tt.wantType, ev.Type)
				assert.Equal(t, id, ev.ID)
			default:
				assert.Empty(t, tt.wantType, "expected %s event", tt.wantType)
			}
		})
	}
}

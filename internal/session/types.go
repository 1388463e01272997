package session

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one logged occurrence. Kind tags the payload; the core never
// interprets it beyond carrying it through persistence.
type Event struct {
	Kind     string            `json:"kind"`               // e.g. "message", "metadata", "stdout"
	Message  string            `json:"message,omitempty"`  // Free-form text
	Metadata map[string]string `json:"metadata,omitempty"` // Structured key/value fields
	Time     time.Time         `json:"time"`               // When the event was created (UTC)
}

// NewEvent creates an event stamped with the current time.
func NewEvent(kind, message string) Event {
	return Event{
		Kind:    kind,
		Message: message,
		Time:    time.Now().UTC(),
	}
}

// WithMetadata returns a copy of e with key set to value.
// The receiver's map is never modified.
func (e Event) WithMetadata(key, value string) Event {
	md := make(map[string]string, len(e.Metadata)+1)
	maps.Copy(md, e.Metadata)
	md[key] = value
	e.Metadata = md
	return e
}

// Session is one recorded run of the host application.
type Session struct {
	ID        uuid.UUID // Generated once, names the session file
	CreatedAt time.Time // Used for ordering, UTC

	mu     sync.RWMutex
	events []Event // Newest first
}

// New creates a session with a fresh id.
func New() *Session {
	return newAt(time.Now())
}

func newAt(t time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: t.UTC(),
	}
}

// Append inserts e at the front of the event list.
func (s *Session) Append(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, Event{})
	copy(s.events[1:], s.events)
	s.events[0] = e
}

// Events returns a copy of the events, newest first.
func (s *Session) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of recorded events.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Compare orders sessions by CreatedAt, most recent first. It returns 0 only
// for sessions with the same id; equal timestamps fall back to id order.
func Compare(a, b *Session) int {
	if a.ID == b.ID {
		return 0
	}
	switch {
	case a.CreatedAt.After(b.CreatedAt):
		return -1
	case a.CreatedAt.Before(b.CreatedAt):
		return 1
	}
	if a.ID.String() < b.ID.String() {
		return -1
	}
	return 1
}

// SortNewestFirst sorts sessions in place using Compare.
func SortNewestFirst(sessions []*Session) {
	slices.SortFunc(sessions, Compare)
}

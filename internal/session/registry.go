package session

import (
	"errors"
	"sync"
	"time"

	"analog/internal/lifecycle"
)

// ErrAlreadyAttached is returned by Attach when the registry already has a
// lifecycle subscription.
var ErrAlreadyAttached = errors.New("registry already attached to a lifecycle source")

// ErrRegistryClosed is returned by Attach after Close.
var ErrRegistryClosed = errors.New("registry closed")

// Operation names passed to the ErrorReporter.
const (
	OpSave = "save"
	OpList = "list"
)

// Registry owns the current session for the lifetime of the process and
// merges it with the sessions restored from storage.
type Registry struct {
	store    *Store
	reporter ErrorReporter
	now      func() time.Time

	mu      sync.Mutex
	current *Session
	sub     lifecycle.Subscription
	closed  bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithErrorReporter sets the hook that receives save and restore failures.
func WithErrorReporter(r ErrorReporter) RegistryOption {
	return func(reg *Registry) { reg.reporter = r }
}

// WithClock overrides the time source used to stamp the current session.
func WithClock(now func() time.Time) RegistryOption {
	return func(reg *Registry) { reg.now = now }
}

// NewRegistry creates a registry backed by store. The current session is
// created on first use.
func NewRegistry(store *Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:    store,
		reporter: Discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the live session. Every call returns the same session.
func (r *Registry) Current() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		r.current = newAt(r.now())
	}
	return r.current
}

// Log appends e to the current session. Nothing is written to disk.
func (r *Registry) Log(e Event) {
	r.Current().Append(e)
}

// Sessions returns the current session followed by every restored session,
// newest first. The list is rebuilt on each call; a storage failure yields
// just the current session.
func (r *Registry) Sessions() []*Session {
	current := r.Current()

	restored, err := r.store.List()
	if err != nil {
		r.reporter.ReportError(OpList, err)
		return []*Session{current}
	}

	out := make([]*Session, 0, len(restored)+1)
	out = append(out, current)
	kept := restored[:0]
	for _, s := range restored {
		// The live copy supersedes an earlier snapshot of itself.
		if s.ID == current.ID {
			continue
		}
		kept = append(kept, s)
	}
	SortNewestFirst(kept)
	return append(out, kept...)
}

// Save persists the current session. Failures go to the ErrorReporter and
// are never returned, so Save is safe to call from a lifecycle handler.
func (r *Registry) Save() {
	if err := r.store.Save(r.Current()); err != nil {
		r.reporter.ReportError(OpSave, err)
	}
}

// Attach subscribes Save to src. A registry holds at most one subscription.
func (r *Registry) Attach(src lifecycle.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	if r.sub != nil {
		return ErrAlreadyAttached
	}
	r.sub = src.Subscribe(r.Save)
	return nil
}

// Close cancels the lifecycle subscription. It is safe to call more than once.
func (r *Registry) Close() error {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.closed = true
	r.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	return nil
}

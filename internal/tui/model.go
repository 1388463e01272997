package tui

import (
	"cmp"
	"slices"
	"time"

	"analog/internal/config"
	"analog/internal/session"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// ViewMode represents the current view
type ViewMode int

const (
	ViewSessions ViewMode = iota // Session list
	ViewEvents                   // Event log for selected session
	ViewKinds                    // Event kinds aggregation
)

// String names the view for navigation events.
func (v ViewMode) String() string {
	switch v {
	case ViewEvents:
		return "events"
	case ViewKinds:
		return "kinds"
	default:
		return "sessions"
	}
}

const (
	refreshInterval = 30 * time.Second
	maxKindExamples = 3
)

// Options configures a Model.
type Options struct {
	Registry *session.Registry
	Config   *config.Config
	Watcher  *session.Watcher // optional
}

// Model represents the application state
type Model struct {
	// Core state
	registry  *session.Registry
	cfg       *config.Config
	watcher   *session.Watcher
	styles    *Styles
	sessions  []*session.Session
	activeIdx int // Currently selected session index
	viewMode  ViewMode

	// UI components
	sessionList list.Model
	eventList   list.Model
	kindList    list.Model

	// Delegates (stored to update width)
	sessionDelegate *sessionDelegate
	eventDelegate   *eventDelegate
	kindDelegate    *kindDelegate

	// Aggregated kinds for active session
	kinds           []*kindSummary
	kindListSession uuid.UUID

	// Detail panel state
	detailPanelOpen bool
	selectedEvent   *session.Event

	// UI dimensions
	width  int
	height int

	// Error state
	err error
}

// NewModel creates a new Model with initialized state
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	styles := NewStyles(cfg)

	sessionDel := newSessionDelegate(&styles)
	eventDel := newEventDelegate(&styles)
	kindDel := newKindDelegate(&styles)

	m := Model{
		registry:        opts.Registry,
		cfg:             cfg,
		watcher:         opts.Watcher,
		styles:          &styles,
		viewMode:        ViewSessions,
		sessionDelegate: sessionDel,
		eventDelegate:   eventDel,
		kindDelegate:    kindDel,
	}

	m.sessionList = newList(sessionDel)
	m.eventList = newList(eventDel)
	m.kindList = newList(kindDel)

	return m
}

func newList(d list.ItemDelegate) list.Model {
	l := list.New([]list.Item{}, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadSessionsCmd(),
		m.watchSessionsCmd(),
		m.tickCmd(),
	)
}

// Message types
type (
	sessionsLoadedMsg []*session.Session
	sessionEventMsg   session.WatchEvent
	tickMsg           time.Time
	errMsg            struct{ error }
)

// loadSessionsCmd merges the live session with the persisted ones
func (m Model) loadSessionsCmd() tea.Cmd {
	return func() tea.Msg {
		return sessionsLoadedMsg(m.registry.Sessions())
	}
}

// watchSessionsCmd returns a command that waits for session file events
func (m Model) watchSessionsCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case event := <-m.watcher.Events:
			return sessionEventMsg(event)
		case err := <-m.watcher.Errors:
			return errMsg{err}
		}
	}
}

// tickCmd returns a command that ticks periodically to pick up new events
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// setSessions replaces the session list, keeping the selection on the same
// session when it still exists.
func (m Model) setSessions(sessions []*session.Session) Model {
	var selected uuid.UUID
	if sess := m.ActiveSession(); sess != nil {
		selected = sess.ID
	}

	m.sessions = sessions
	m.activeIdx = 0
	for i, s := range sessions {
		if s.ID == selected {
			m.activeIdx = i
			break
		}
	}

	m = m.updateSessionList()
	m = m.updateEventList()
	return m.aggregateKinds()
}

// updateSessionList rebuilds the session list items
func (m Model) updateSessionList() Model {
	live := m.liveID()
	items := make([]list.Item, len(m.sessions))
	for i, s := range m.sessions {
		items[i] = sessionItem{session: s, live: s.ID == live}
	}
	m.sessionList.SetItems(items)
	if len(items) > 0 {
		m.sessionList.Select(m.activeIdx)
	}
	return m
}

// updateEventList rebuilds the event list for the active session
func (m Model) updateEventList() Model {
	sess := m.ActiveSession()
	if sess == nil {
		m.eventList.SetItems([]list.Item{})
		return m
	}

	// Remember if user was at the top (following the newest event)
	wasAtTop := m.eventList.Index() == 0
	previousCount := len(m.eventList.Items())

	events := sess.Events()
	items := make([]list.Item, 0, len(events))
	for _, e := range events {
		if m.cfg.ShouldExclude(e.Kind) {
			continue
		}
		items = append(items, eventItem{event: e})
	}
	m.eventList.SetItems(items)

	if wasAtTop || previousCount == 0 {
		m.eventList.Select(0)
	}

	return m
}

// aggregateKinds builds the kind summaries for the active session
func (m Model) aggregateKinds() Model {
	sess := m.ActiveSession()
	if sess == nil {
		m.kinds = nil
		m.kindList.SetItems([]list.Item{})
		m.kindListSession = uuid.Nil
		return m
	}

	sessionChanged := m.kindListSession != sess.ID
	m.kindListSession = sess.ID

	wasAtTop := m.kindList.Index() == 0
	previousCount := len(m.kindList.Items())

	m.kinds = summarizeKinds(sess.Events(), m.cfg)

	items := make([]list.Item, len(m.kinds))
	for i, k := range m.kinds {
		items[i] = kindItem{summary: k}
	}
	m.kindList.SetItems(items)

	if sessionChanged || previousCount == 0 || wasAtTop {
		m.kindList.Select(0)
	}

	return m
}

// summarizeKinds counts events per kind, most frequent first. Events are
// expected newest first, so the examples are the latest messages.
func summarizeKinds(events []session.Event, cfg *config.Config) []*kindSummary {
	byKind := make(map[string]*kindSummary)
	seen := make(map[string]map[string]struct{})

	for i := range events {
		e := &events[i]
		if cfg.ShouldExclude(e.Kind) {
			continue
		}

		k, ok := byKind[e.Kind]
		if !ok {
			k = &kindSummary{Kind: e.Kind, LastSeen: e.Time}
			byKind[e.Kind] = k
			seen[e.Kind] = make(map[string]struct{})
		}
		k.Count++
		if e.Time.After(k.LastSeen) {
			k.LastSeen = e.Time
		}
		if len(k.Examples) < maxKindExamples && e.Message != "" {
			if _, dup := seen[e.Kind][e.Message]; !dup {
				seen[e.Kind][e.Message] = struct{}{}
				k.Examples = append(k.Examples, e.Message)
			}
		}
	}

	kinds := make([]*kindSummary, 0, len(byKind))
	for _, k := range byKind {
		kinds = append(kinds, k)
	}
	slices.SortFunc(kinds, func(a, b *kindSummary) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return kinds
}

// updateListSizes updates list dimensions based on terminal size
func (m Model) updateListSizes() Model {
	// Reserve space for header (2), tabs (2), column headers (1), help (2), margins (2)
	listHeight := max(m.height-9, 5)
	listWidth := max(m.width-4, 20)

	eventListWidth := listWidth
	if m.viewMode == ViewEvents && m.detailPanelOpen {
		eventListWidth = int(float64(listWidth) * 0.58)
	}

	m.sessionDelegate.SetWidth(listWidth)
	m.eventDelegate.SetWidth(eventListWidth)
	m.kindDelegate.SetWidth(listWidth)

	m.sessionList.SetSize(listWidth, listHeight)
	m.eventList.SetSize(eventListWidth, listHeight)
	m.kindList.SetSize(listWidth, listHeight)

	return m
}

// ActiveSession returns the currently selected session or nil
func (m Model) ActiveSession() *session.Session {
	if m.activeIdx >= 0 && m.activeIdx < len(m.sessions) {
		return m.sessions[m.activeIdx]
	}
	return nil
}

// liveID is the id of the session this process is recording into.
func (m Model) liveID() uuid.UUID {
	if m.registry == nil {
		return uuid.Nil
	}
	return m.registry.Current().ID
}

// record logs a browser navigation event into the live session and redraws
// the event views when the live session is the one on screen.
func (m Model) record(kind, message string, kv ...string) Model {
	if m.registry == nil {
		return m
	}

	e := session.NewEvent(kind, message)
	for i := 0; i+1 < len(kv); i += 2 {
		e = e.WithMetadata(kv[i], kv[i+1])
	}
	m.registry.Log(e)

	if sess := m.ActiveSession(); sess != nil && sess.ID == m.liveID() {
		m = m.updateSessionList()
		m = m.updateEventList()
		m = m.aggregateKinds()
	}
	return m
}

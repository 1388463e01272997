package tui

import (
	"strings"
	"testing"
	"time"

	"analog/internal/config"
	"analog/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) (Model, *session.Registry) {
	t.Helper()
	reg := session.NewRegistry(session.NewStore(t.TempDir()))
	m := NewModel(Options{Registry: reg, Config: config.DefaultConfig()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), reg
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t)
	if m.viewMode != ViewSessions {
		t.Errorf("expected initial view mode to be ViewSessions, got %d", m.viewMode)
	}
	if m.activeIdx != 0 {
		t.Errorf("expected initial activeIdx to be 0, got %d", m.activeIdx)
	}
}

func TestViewModeCycleRight(t *testing.T) {
	m, _ := newTestModel(t)

	want := []ViewMode{ViewEvents, ViewKinds, ViewSessions}
	for _, w := range want {
		m = press(t, m, key('l'))
		if m.viewMode != w {
			t.Errorf("expected view mode %s after 'l', got %s", w, m.viewMode)
		}
	}
}

func TestViewModeCycleLeft(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, key('h'))
	if m.viewMode != ViewKinds {
		t.Errorf("expected view mode to be ViewKinds after 'h', got %s", m.viewMode)
	}
}

func TestViewModeNumbers(t *testing.T) {
	tests := []struct {
		key  rune
		want ViewMode
	}{
		{'2', ViewEvents},
		{'3', ViewKinds},
		{'1', ViewSessions},
	}

	m, _ := newTestModel(t)
	for _, tt := range tests {
		m = press(t, m, key(tt.key))
		if m.viewMode != tt.want {
			t.Errorf("expected view mode %s after '%c', got %s", tt.want, tt.key, m.viewMode)
		}
	}
}

func TestEscReturnsToSessions(t *testing.T) {
	m, _ := newTestModel(t)
	m.viewMode = ViewEvents

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.viewMode != ViewSessions {
		t.Errorf("expected view mode to be ViewSessions after ESC, got %s", m.viewMode)
	}
}

func TestNavigationIsRecorded(t *testing.T) {
	m, reg := newTestModel(t)

	m = press(t, m, key('2'))

	events := reg.Current().Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(events))
	}
	if events[0].Kind != KindBrowseView {
		t.Errorf("expected kind %q, got %q", KindBrowseView, events[0].Kind)
	}
	if events[0].Metadata["view"] != "events" {
		t.Errorf("expected view metadata 'events', got %q", events[0].Metadata["view"])
	}

	// Selecting the view already shown records nothing
	press(t, m, key('2'))
	if n := reg.Current().Len(); n != 1 {
		t.Errorf("expected no new event, got %d total", n)
	}
}

func TestSessionsLoadedMarksLiveSession(t *testing.T) {
	m, reg := newTestModel(t)

	older := session.New()
	m = press(t, m, sessionsLoadedMsg{reg.Current(), older})

	if len(m.sessionList.Items()) != 2 {
		t.Fatalf("expected 2 session items, got %d", len(m.sessionList.Items()))
	}
	first := m.sessionList.Items()[0].(sessionItem)
	second := m.sessionList.Items()[1].(sessionItem)
	if !first.live || second.live {
		t.Errorf("expected only the first session to be live, got %v and %v", first.live, second.live)
	}
}

func TestReloadKeepsSelection(t *testing.T) {
	m, reg := newTestModel(t)
	other := session.New()

	m = press(t, m, sessionsLoadedMsg{reg.Current(), other}, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.ActiveSession(); got != other {
		t.Fatalf("expected tab to select the second session")
	}

	m = press(t, m, sessionsLoadedMsg{reg.Current(), session.New(), other})
	if got := m.ActiveSession(); got == nil || got.ID != other.ID {
		t.Errorf("expected selection to follow the session after reload")
	}
}

func TestTabWrapsAround(t *testing.T) {
	m, reg := newTestModel(t)
	m = press(t, m, sessionsLoadedMsg{reg.Current(), session.New()})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	if m.activeIdx != 0 {
		t.Errorf("expected activeIdx to wrap to 0, got %d", m.activeIdx)
	}
}

func TestDetailPanel(t *testing.T) {
	m, reg := newTestModel(t)
	reg.Log(session.NewEvent("message", "hello").WithMetadata("user", "ada"))
	m = press(t, m, sessionsLoadedMsg{reg.Current()}, key('2'))

	// The view switch itself is the newest event; move down to the message
	m = press(t, m, key('j'), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.detailPanelOpen {
		t.Fatal("expected detail panel to open on enter")
	}
	if m.selectedEvent == nil || m.selectedEvent.Message != "hello" {
		t.Fatalf("expected the hello event to be selected, got %+v", m.selectedEvent)
	}

	view := m.View()
	for _, want := range []string{"Event Details", "hello", "user: ada"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.detailPanelOpen {
		t.Error("expected ESC to close the detail panel first")
	}
	if m.viewMode != ViewEvents {
		t.Errorf("expected to stay in ViewEvents, got %s", m.viewMode)
	}
}

func TestSummarizeKinds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EventGroups = append([]config.EventGroup{
		{Name: "noise", Patterns: []string{"debug.*"}, Exclude: true},
	}, cfg.EventGroups...)

	now := time.Now()
	events := []session.Event{
		{Kind: "message", Message: "c", Time: now},
		{Kind: "error", Message: "boom", Time: now.Add(-time.Second)},
		{Kind: "message", Message: "b", Time: now.Add(-2 * time.Second)},
		{Kind: "debug.trace", Message: "hidden", Time: now.Add(-3 * time.Second)},
		{Kind: "message", Message: "b", Time: now.Add(-4 * time.Second)},
	}

	kinds := summarizeKinds(events, cfg)
	if len(kinds) != 2 {
		t.Fatalf("expected 2 kinds, got %d", len(kinds))
	}
	if kinds[0].Kind != "message" || kinds[0].Count != 3 {
		t.Errorf("expected message x3 first, got %s x%d", kinds[0].Kind, kinds[0].Count)
	}
	if got := strings.Join(kinds[0].Examples, ","); got != "c,b" {
		t.Errorf("expected deduplicated examples c,b, got %s", got)
	}
	if !kinds[0].LastSeen.Equal(now) {
		t.Errorf("expected LastSeen to be the newest event time")
	}
	if kinds[1].Kind != "error" || kinds[1].Count != 1 {
		t.Errorf("expected error x1 second, got %s x%d", kinds[1].Kind, kinds[1].Count)
	}
}

func TestViewRendersTabs(t *testing.T) {
	m, reg := newTestModel(t)
	m = press(t, m, sessionsLoadedMsg{reg.Current()})

	view := m.View()
	for _, want := range []string{"analog", "1 Sessions", "2 Events", "3 Kinds", "live"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestFlavorFallback(t *testing.T) {
	tests := []struct {
		theme string
		want  string
	}{
		{"latte", flavorFor("latte").Base().Hex},
		{"Mocha", flavorFor("mocha").Base().Hex},
		{"unknown", flavorFor("mocha").Base().Hex},
	}
	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			if got := flavorFor(tt.theme).Base().Hex; got != tt.want {
				t.Errorf("flavorFor(%q) base = %s, want %s", tt.theme, got, tt.want)
			}
		})
	}
	if flavorFor("latte").Base().Hex == flavorFor("mocha").Base().Hex {
		t.Error("expected latte and mocha to differ")
	}
}

package tui

import (
	"analog/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Navigation event kinds recorded into the live session.
const (
	KindBrowseView    = "browse.view"
	KindBrowseSession = "browse.session"
	KindBrowseDetail  = "browse.detail"
	KindBrowseRefresh = "browse.refresh"
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.updateListSizes(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionsLoadedMsg:
		m.err = nil
		return m.setSessions(msg), nil

	case sessionEventMsg:
		// Another run saved or removed a session; reload and keep watching
		return m, tea.Batch(m.loadSessionsCmd(), m.watchSessionsCmd())

	case tickMsg:
		return m, tea.Batch(m.loadSessionsCmd(), m.tickCmd())

	case errMsg:
		m.err = msg.error
		return m, m.watchSessionsCmd()
	}

	return m, nil
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc":
		if m.detailPanelOpen {
			m.detailPanelOpen = false
			m.selectedEvent = nil
			return m.updateListSizes(), nil
		}
		if m.viewMode != ViewSessions {
			return m.switchView(ViewSessions), nil
		}
		return m, nil

	case "1":
		return m.switchView(ViewSessions), nil
	case "2":
		return m.switchView(ViewEvents), nil
	case "3":
		return m.switchView(ViewKinds), nil

	case "l", "right":
		return m.switchView((m.viewMode + 1) % 3), nil
	case "h", "left":
		return m.switchView((m.viewMode + 2) % 3), nil

	case "tab":
		if len(m.sessions) == 0 {
			return m, nil
		}
		return m.selectSession((m.activeIdx + 1) % len(m.sessions)), nil

	case "enter":
		switch m.viewMode {
		case ViewSessions:
			if len(m.sessions) == 0 {
				return m, nil
			}
			m = m.selectSession(m.sessionList.Index())
			return m.switchView(ViewEvents), nil
		case ViewEvents:
			return m.toggleDetail(), nil
		}
		return m, nil

	case "r":
		m = m.record(KindBrowseRefresh, "Refreshed session list")
		return m, m.loadSessionsCmd()
	}

	// Pass remaining keys (j/k, arrows, paging) to the visible list
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewSessions:
		m.sessionList, cmd = m.sessionList.Update(msg)
	case ViewEvents:
		m.eventList, cmd = m.eventList.Update(msg)
		if m.detailPanelOpen {
			m.selectedEvent = m.currentEvent()
		}
	case ViewKinds:
		m.kindList, cmd = m.kindList.Update(msg)
	}
	return m, cmd
}

// switchView changes the view mode and records the change
func (m Model) switchView(v ViewMode) Model {
	if v == m.viewMode {
		return m
	}
	if v != ViewEvents {
		m.detailPanelOpen = false
		m.selectedEvent = nil
	}
	m.viewMode = v
	m = m.updateListSizes()

	attrs := []string{"view", v.String()}
	if sess := m.ActiveSession(); sess != nil {
		attrs = append(attrs, "session", sess.ID.String())
	}
	return m.record(KindBrowseView, "Opened "+v.String()+" view", attrs...)
}

// selectSession makes the session at idx active
func (m Model) selectSession(idx int) Model {
	if idx < 0 || idx >= len(m.sessions) || idx == m.activeIdx {
		return m
	}
	m.activeIdx = idx
	m.detailPanelOpen = false
	m.selectedEvent = nil
	m.sessionList.Select(idx)
	m.eventList.Select(0)
	m = m.updateListSizes()
	m = m.updateEventList()
	m = m.aggregateKinds()

	id := m.sessions[idx].ID.String()
	return m.record(KindBrowseSession, "Selected session "+id, "session", id)
}

// toggleDetail opens or closes the detail panel for the selected event
func (m Model) toggleDetail() Model {
	if m.detailPanelOpen {
		m.detailPanelOpen = false
		m.selectedEvent = nil
		return m.updateListSizes()
	}

	ev := m.currentEvent()
	if ev == nil {
		return m
	}
	m.detailPanelOpen = true
	m.selectedEvent = ev
	m = m.updateListSizes()
	return m.record(KindBrowseDetail, "Opened "+ev.Kind+" event", "kind", ev.Kind)
}

// currentEvent returns the event under the cursor in the events view
func (m Model) currentEvent() *session.Event {
	item, ok := m.eventList.SelectedItem().(eventItem)
	if !ok {
		return nil
	}
	ev := item.event
	return &ev
}

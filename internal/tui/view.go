package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI based on the model state
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderViewTabs())
	b.WriteString("\n")

	switch m.viewMode {
	case ViewSessions:
		b.WriteString(m.renderSessionHeaders())
		b.WriteString("\n")
		b.WriteString(m.sessionList.View())
	case ViewEvents:
		b.WriteString(m.renderEventHeaders())
		b.WriteString("\n")
		if m.detailPanelOpen {
			listWidth := lipgloss.Width(m.eventList.View())
			panel := m.renderDetailPanel(max(m.width-listWidth-6, 20), max(m.height-9, 5))
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.eventList.View(), "  ", panel))
		} else {
			b.WriteString(m.eventList.View())
		}
	case ViewKinds:
		b.WriteString(m.renderKindHeaders())
		b.WriteString("\n")
		b.WriteString(m.kindList.View())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders the top header bar
func (m Model) renderHeader() string {
	title := m.styles.Title.Render("analog")

	var status string
	if len(m.sessions) == 0 {
		status = m.styles.Status.Render("No sessions")
	} else {
		status = m.styles.Status.Render(fmt.Sprintf("%d sessions", len(m.sessions)))
	}

	active := ""
	if sess := m.ActiveSession(); sess != nil {
		if sess.ID == m.liveID() {
			active = m.styles.LiveIndicator.Render(" [" + shortID(sess) + " live]")
		} else {
			active = m.styles.Indicator.Render(" [" + shortID(sess) + "]")
		}
	}

	leftPart := lipgloss.Width(title)
	rightPart := lipgloss.Width(status) + lipgloss.Width(active)
	spacing := max(m.width-leftPart-rightPart-4, 1)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		strings.Repeat(" ", spacing),
		status,
		active,
	)
}

// renderViewTabs renders the tab bar for view modes
func (m Model) renderViewTabs() string {
	tabs := []struct {
		name string
		mode ViewMode
		key  string
	}{
		{"Sessions", ViewSessions, "1"},
		{"Events", ViewEvents, "2"},
		{"Kinds", ViewKinds, "3"},
	}

	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		label := fmt.Sprintf("%s %s", t.key, t.name)
		if t.mode == m.viewMode {
			rendered[i] = m.styles.ActiveTab.Render(label)
		} else {
			rendered[i] = m.styles.InactiveTab.Render(label)
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	gap := strings.Repeat("─", max(0, m.width-lipgloss.Width(row)-2))

	return row + m.styles.TabGap.Render(gap)
}

// renderHelp renders the help footer
func (m Model) renderHelp() string {
	var help []string

	switch m.viewMode {
	case ViewSessions:
		help = []string{"j/k:navigate", "enter:open", "tab:next session", "h/l:switch view", "r:refresh", "q:quit"}
	case ViewEvents:
		help = []string{"j/k:navigate", "enter:details", "tab:next session", "h/l:switch view", "esc:back", "q:quit"}
	case ViewKinds:
		help = []string{"j/k:navigate", "tab:next session", "h/l:switch view", "esc:back", "q:quit"}
	}

	return m.styles.Help.Render(strings.Join(help, " | "))
}

func (m Model) renderSessionHeaders() string {
	return m.styles.ColumnHeader.Width(m.width - 4).Render("  Session")
}

func (m Model) renderEventHeaders() string {
	header := fmt.Sprintf("%s  %s  %s",
		padRight("Time", EventTimeWidth),
		padRight("Kind", EventKindWidth),
		"Message",
	)
	return m.styles.ColumnHeader.Width(m.width - 4).Render(header)
}

func (m Model) renderKindHeaders() string {
	header := fmt.Sprintf("%s  %s  %s",
		padRight("Kind", KindNameWidth),
		padLeft("Count", KindCountWidth+2),
		"Latest",
	)
	return m.styles.ColumnHeader.Width(m.width - 4).Render(header)
}

// padRight pads a string with spaces on the right to reach target width
func padRight(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// padLeft pads a string with spaces on the left to reach target width
func padLeft(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return strings.Repeat(" ", width-len(r)) + s
}

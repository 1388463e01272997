package tui

import (
	"fmt"
	"io"
	"time"

	"analog/internal/session"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// Column widths shared by the delegates and the column headers.
const (
	EventTimeWidth = 8
	EventKindWidth = 20
	KindNameWidth  = 24
	KindCountWidth = 6
)

// ============================================================================
// Session Item
// ============================================================================

// sessionItem wraps a Session for the list component
type sessionItem struct {
	session *session.Session
	live    bool
}

func (i sessionItem) FilterValue() string { return i.session.ID.String() }
func (i sessionItem) Title() string       { return shortID(i.session) }
func (i sessionItem) Description() string {
	return fmt.Sprintf("%d events | %s", i.session.Len(), formatTimeAgo(i.session.CreatedAt))
}

// sessionDelegate renders session items
type sessionDelegate struct {
	styles *Styles
	width  int
}

func newSessionDelegate(styles *Styles) *sessionDelegate {
	return &sessionDelegate{styles: styles}
}

func (d *sessionDelegate) SetWidth(w int)                          { d.width = w }
func (d *sessionDelegate) Height() int                             { return 2 }
func (d *sessionDelegate) Spacing() int                            { return 1 }
func (d *sessionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d *sessionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(sessionItem)
	if !ok {
		return
	}

	indicator := "  "
	nameStyle := d.styles.Normal
	if i.live {
		indicator = d.styles.LiveSession.Render("● ")
		nameStyle = d.styles.LiveSession
	}
	if index == m.Index() {
		nameStyle = d.styles.Selected
	}

	name := i.session.ID.String()
	if i.live {
		name += " (live)"
	}
	desc := d.styles.Muted.Render(fmt.Sprintf("  %s | %d events | %s",
		i.session.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		i.session.Len(),
		formatTimeAgo(i.session.CreatedAt),
	))

	fmt.Fprintf(w, "%s%s\n%s", indicator, nameStyle.Render(truncate(name, d.width-2)), desc)
}

// ============================================================================
// Event Item
// ============================================================================

// eventItem wraps an Event for the list component
type eventItem struct {
	event session.Event
}

func (i eventItem) FilterValue() string { return i.event.Message }
func (i eventItem) Title() string       { return i.event.Kind }
func (i eventItem) Description() string { return truncate(i.event.Message, 60) }

// eventDelegate renders one event per row: time, kind, message.
type eventDelegate struct {
	styles *Styles
	width  int
}

func newEventDelegate(styles *Styles) *eventDelegate {
	return &eventDelegate{styles: styles}
}

func (d *eventDelegate) SetWidth(w int)                          { d.width = w }
func (d *eventDelegate) Height() int                             { return 1 }
func (d *eventDelegate) Spacing() int                            { return 0 }
func (d *eventDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d *eventDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(eventItem)
	if !ok {
		return
	}

	style := d.styles.ForKind(i.event.Kind)
	msgStyle := d.styles.Normal
	if index == m.Index() {
		style = d.styles.Highlight(style)
		msgStyle = d.styles.Selected
	}

	ts := d.styles.Timestamp.Render(i.event.Time.Local().Format("15:04:05"))
	kind := style.Render(padRight(i.event.Kind, EventKindWidth))
	msgWidth := d.width - EventTimeWidth - EventKindWidth - 4
	msg := msgStyle.Render(truncate(firstLine(i.event.Message), msgWidth))

	fmt.Fprintf(w, "%s  %s  %s", ts, kind, msg)
}

// ============================================================================
// Kind Item
// ============================================================================

// kindSummary aggregates the events of one kind within a session.
type kindSummary struct {
	Kind     string
	Count    int
	LastSeen time.Time
	Examples []string
}

// kindItem wraps a kindSummary for the list component
type kindItem struct {
	summary *kindSummary
}

func (i kindItem) FilterValue() string { return i.summary.Kind }
func (i kindItem) Title() string       { return i.summary.Kind }
func (i kindItem) Description() string {
	return fmt.Sprintf("%d occurrences", i.summary.Count)
}

// kindDelegate renders kind items
type kindDelegate struct {
	styles *Styles
	width  int
}

func newKindDelegate(styles *Styles) *kindDelegate {
	return &kindDelegate{styles: styles}
}

func (d *kindDelegate) SetWidth(w int)                          { d.width = w }
func (d *kindDelegate) Height() int                             { return 1 }
func (d *kindDelegate) Spacing() int                            { return 0 }
func (d *kindDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d *kindDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(kindItem)
	if !ok {
		return
	}

	style := d.styles.ForKind(i.summary.Kind)
	if index == m.Index() {
		style = d.styles.Highlight(style)
	}

	kind := style.Render(padRight(i.summary.Kind, KindNameWidth))
	count := d.styles.CountBadge.Render(padLeft(fmt.Sprintf("%d", i.summary.Count), KindCountWidth))

	example := ""
	if len(i.summary.Examples) > 0 {
		example = truncate(firstLine(i.summary.Examples[0]), d.width-KindNameWidth-KindCountWidth-6)
	}

	fmt.Fprintf(w, "%s  %s  %s", kind, count, d.styles.Example.Render(example))
}

// ============================================================================
// Helper Functions
// ============================================================================

// formatTimeAgo returns a human-readable relative time string
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Local().Format("Jan 2")
	}
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func shortID(s *session.Session) string {
	return s.ID.String()[:8]
}

package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const maxMessageLines = 12

// renderDetailPanel renders the event detail side panel
func (m Model) renderDetailPanel(width, height int) string {
	var b strings.Builder

	b.WriteString(m.styles.DetailHeader.Width(width).Render("Event Details"))
	b.WriteString("\n")

	ev := m.selectedEvent
	if ev == nil {
		b.WriteString(m.styles.Muted.Render("Select an event and press Enter"))
		return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
	}

	b.WriteString(m.styles.Label.Render("Kind: "))
	b.WriteString(m.styles.ForKind(ev.Kind).Render(ev.Kind))
	b.WriteString("\n")

	b.WriteString(m.styles.Label.Render("Time: "))
	b.WriteString(ev.Time.Local().Format("2006-01-02 15:04:05.000"))
	b.WriteString("\n\n")

	if ev.Message != "" {
		b.WriteString(m.styles.Label.Render("Message:"))
		b.WriteString("\n")
		msg := truncateMultiline(wrapText(ev.Message, width-4), width-4, maxMessageLines)
		b.WriteString(m.styles.CodeBlock.Width(width).Render(msg))
		b.WriteString("\n\n")
	}

	if len(ev.Metadata) > 0 {
		b.WriteString(m.styles.Label.Render("Metadata:"))
		b.WriteString("\n")
		keys := make([]string, 0, len(ev.Metadata))
		for k := range ev.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			line := "  " + k + ": " + ev.Metadata[k]
			b.WriteString(truncate(line, width-2))
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

// wrapText wraps text at word boundaries to fit within width
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}

		lineLen := 0
		for _, word := range strings.Fields(line) {
			wordLen := len([]rune(word))
			if lineLen+wordLen+1 > width && lineLen > 0 {
				result.WriteString("\n")
				lineLen = 0
			}
			if lineLen > 0 {
				result.WriteString(" ")
				lineLen++
			}
			// Truncate very long words
			if wordLen > width {
				word = truncate(word, width)
				wordLen = width
			}
			result.WriteString(word)
			lineLen += wordLen
		}
	}

	return result.String()
}

// truncateMultiline truncates text to maxLines and width
func truncateMultiline(text string, width, maxLines int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines = append(lines, "...")
	}
	for i, line := range lines {
		// Replace tabs with spaces for consistent display
		lines[i] = truncate(strings.ReplaceAll(line, "\t", "  "), width)
	}
	return strings.Join(lines, "\n")
}

// firstLine returns text up to the first newline.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i] + " …"
	}
	return text
}

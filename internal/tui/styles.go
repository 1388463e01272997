package tui

import (
	"strings"

	"analog/internal/config"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// palette is the subset of a catppuccin flavor the browser draws with.
type palette interface {
	Rosewater() catppuccin.Color
	Flamingo() catppuccin.Color
	Pink() catppuccin.Color
	Mauve() catppuccin.Color
	Red() catppuccin.Color
	Maroon() catppuccin.Color
	Peach() catppuccin.Color
	Yellow() catppuccin.Color
	Green() catppuccin.Color
	Teal() catppuccin.Color
	Sky() catppuccin.Color
	Sapphire() catppuccin.Color
	Blue() catppuccin.Color
	Lavender() catppuccin.Color
	Text() catppuccin.Color
	Subtext0() catppuccin.Color
	Overlay0() catppuccin.Color
	Overlay1() catppuccin.Color
	Surface0() catppuccin.Color
	Surface1() catppuccin.Color
	Base() catppuccin.Color
}

// flavorFor maps a theme name to its flavor, falling back to mocha.
func flavorFor(theme string) palette {
	switch strings.ToLower(theme) {
	case "latte":
		return catppuccin.Latte
	case "frappe", "frappé":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	default:
		return catppuccin.Mocha
	}
}

// colorByName resolves a catppuccin color name from the config.
func colorByName(p palette, name string) (lipgloss.Color, bool) {
	var c catppuccin.Color
	switch strings.ToLower(name) {
	case "rosewater":
		c = p.Rosewater()
	case "flamingo":
		c = p.Flamingo()
	case "pink":
		c = p.Pink()
	case "mauve":
		c = p.Mauve()
	case "red":
		c = p.Red()
	case "maroon":
		c = p.Maroon()
	case "peach":
		c = p.Peach()
	case "yellow":
		c = p.Yellow()
	case "green":
		c = p.Green()
	case "teal":
		c = p.Teal()
	case "sky":
		c = p.Sky()
	case "sapphire":
		c = p.Sapphire()
	case "blue":
		c = p.Blue()
	case "lavender":
		c = p.Lavender()
	case "text":
		c = p.Text()
	case "subtext", "subtext0":
		c = p.Subtext0()
	case "overlay", "overlay0":
		c = p.Overlay0()
	case "overlay1":
		c = p.Overlay1()
	default:
		return "", false
	}
	return lipgloss.Color(c.Hex), true
}

// Styles holds every style the browser renders with.
type Styles struct {
	Title         lipgloss.Style
	Status        lipgloss.Style
	LiveIndicator lipgloss.Style
	Indicator     lipgloss.Style
	Error         lipgloss.Style

	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	TabGap      lipgloss.Style

	Selected     lipgloss.Style
	Normal       lipgloss.Style
	Muted        lipgloss.Style
	LiveSession  lipgloss.Style
	Timestamp    lipgloss.Style
	CountBadge   lipgloss.Style
	Example      lipgloss.Style
	Help         lipgloss.Style
	ColumnHeader lipgloss.Style

	DetailHeader lipgloss.Style
	Label        lipgloss.Style
	CodeBlock    lipgloss.Style

	selectedBg lipgloss.Color
	groups     []groupStyle
}

type groupStyle struct {
	group *config.EventGroup
	style lipgloss.Style
}

// NewStyles builds styles for the configured flavor and event groups.
func NewStyles(cfg *config.Config) Styles {
	p := flavorFor(cfg.Theme)

	primary := lipgloss.Color(p.Mauve().Hex)
	secondary := lipgloss.Color(p.Green().Hex)
	danger := lipgloss.Color(p.Red().Hex)
	muted := lipgloss.Color(p.Overlay0().Hex)
	fg := lipgloss.Color(p.Text().Hex)
	bg := lipgloss.Color(p.Base().Hex)
	selectedBg := lipgloss.Color(p.Surface1().Hex)

	s := Styles{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(primary),
		Status:        lipgloss.NewStyle().Foreground(muted),
		LiveIndicator: lipgloss.NewStyle().Foreground(secondary).Bold(true),
		Indicator:     lipgloss.NewStyle().Foreground(muted),
		Error:         lipgloss.NewStyle().Foreground(danger).Bold(true).Padding(1),

		ActiveTab:   lipgloss.NewStyle().Bold(true).Background(primary).Foreground(bg).Padding(0, 2),
		InactiveTab: lipgloss.NewStyle().Foreground(muted).Padding(0, 2),
		TabGap:      lipgloss.NewStyle().Foreground(muted),

		Selected:     lipgloss.NewStyle().Background(selectedBg).Foreground(fg).Bold(true),
		Normal:       lipgloss.NewStyle().Foreground(fg),
		Muted:        lipgloss.NewStyle().Foreground(muted),
		LiveSession:  lipgloss.NewStyle().Foreground(secondary).Bold(true),
		Timestamp:    lipgloss.NewStyle().Foreground(muted).Width(EventTimeWidth),
		CountBadge:   lipgloss.NewStyle().Background(primary).Foreground(bg).Padding(0, 1),
		Example:      lipgloss.NewStyle().Foreground(muted).Italic(true),
		Help:         lipgloss.NewStyle().Foreground(muted),
		ColumnHeader: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Subtext0().Hex)).Bold(true).Underline(true),

		DetailHeader: lipgloss.NewStyle().Bold(true).Foreground(primary).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(muted),
		Label: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Blue().Hex)),
		CodeBlock: lipgloss.NewStyle().Foreground(fg).Background(lipgloss.Color(p.Surface0().Hex)).
			Padding(0, 1),

		selectedBg: selectedBg,
	}

	for i := range cfg.EventGroups {
		g := &cfg.EventGroups[i]
		style := s.Normal
		if c, ok := colorByName(p, g.Color); ok {
			style = lipgloss.NewStyle().Foreground(c)
		}
		if g.Bold {
			style = style.Bold(true)
		}
		s.groups = append(s.groups, groupStyle{group: g, style: style})
	}

	return s
}

// ForKind returns the style of the first event group matching kind.
func (s Styles) ForKind(kind string) lipgloss.Style {
	for _, gs := range s.groups {
		if gs.group.Matches(kind) {
			return gs.style
		}
	}
	return s.Normal
}

// Highlight marks a row as selected while keeping its foreground.
func (s Styles) Highlight(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.selectedBg)
}

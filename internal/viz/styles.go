package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var Themes = []Theme{
	{
		Name:      "deep",
		Primary:   lipgloss.Color("86"),
		Secondary: lipgloss.Color("49"),
		Accent:    lipgloss.Color("205"),
		Text:      lipgloss.Color("252"),
		Muted:     lipgloss.Color("240"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff4444"),
	},
	{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
	},
	{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
	},
}

// GetTheme returns a theme by name, or the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Styles are the rendered styles of one theme.
type Styles struct {
	Canvas   lipgloss.Style
	Stats    lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Graph    lipgloss.Style
	Help     lipgloss.Style
	Running  lipgloss.Style
	Paused   lipgloss.Style
	Done     lipgloss.Style
	theme    Theme
}

func NewStyles(t Theme) Styles {
	return Styles{
		Canvas:   lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 2),
		Stats:    lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(45),
		Header:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		Label:    lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Graph:    lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
		Help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(2),
		Running:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		Paused:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		Done:     lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		theme:    t,
	}
}

// ProgressBar renders a bar of width cells filled to percent.
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	color := s.theme.Error
	if percent > 0.8 {
		color = s.theme.Success
	} else if percent > 0.4 {
		color = s.theme.Warning
	}
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// Sparkline renders the last width values as block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}

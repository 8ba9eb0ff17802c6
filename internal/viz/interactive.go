package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/seals/internal/config"
)

var presetInfo = map[string]string{
	"seals":        "branching tree in a filling disc",
	"ferro":        "overdamped curve under pressure",
	"granular":     "dense overdamped curve",
	"granular-v2":  "granular with shrinking target",
	"sphere":       "delaunay mesh in a cylinder",
	"sphere-aniso": "mesh stretched along z",
	"curve":        "noisy closed curve",
}

var (
	pickTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickName   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// picker is a menu of presets.
type picker struct {
	cursor   int
	presets  []string
	selected string
}

func newPicker() picker {
	return picker{presets: config.ListPresets()}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m picker) View() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("SEALS") + "\n    " + pickSub.Render("growing surface simulation") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickCursor.Render("▸"), pickName.Render(fmt.Sprintf("%-14s", name)), pickDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", pickDim.Render(fmt.Sprintf("  %-14s", name)), pickDim.Render(desc)))
		}
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickDim.Render(" navigate  ") + pickKey.Render("enter") + pickDim.Render(" select  ") + pickKey.Render("q") + pickDim.Render(" quit") + "\n")
	return b.String()
}

// PickPreset lets the user choose a preset from a menu. It returns "" when
// the menu is left without a choice.
func PickPreset() (string, error) {
	final, err := tea.NewProgram(newPicker(), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	return final.(picker).selected, nil
}

package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/seals/internal/experiment"
)

const (
	width  = 80
	height = 24
	fps    = 15
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of a running simulation.
type Model struct {
	feed       *Feed
	cancel     context.CancelFunc
	title      string
	iterations int
	canvas     *Canvas
	camera     *Camera
	theme      Theme
	styles     Styles
	frozen     bool
	showHelp   bool
	current    feedState
	started    time.Time
}

// NewModel builds a live view reading from feed. cancel stops the run when
// the user quits.
func NewModel(feed *Feed, title string, iterations int, cancel context.CancelFunc) Model {
	theme := Themes[0]
	return Model{
		feed:       feed,
		cancel:     cancel,
		title:      title,
		iterations: iterations,
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(),
		theme:      theme,
		styles:     NewStyles(theme),
		started:    time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and pulls the latest state from the feed.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case " ":
			m.frozen = !m.frozen
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = NewStyles(m.theme)
		case "r":
			m.camera.Reset()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
		m.draw()
	case TickMsg:
		if !m.frozen {
			m.current = m.feed.state()
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) draw() {
	m.canvas.Clear()
	if f := m.current.frame; f != nil {
		DrawFrame(m.canvas, f, m.camera)
	}
}

func (m Model) status() string {
	st := m.styles
	switch {
	case m.current.done && m.current.err != nil:
		return st.Paused.Render("STOPPED: " + m.current.err.Error())
	case m.current.done:
		return st.Done.Render("DONE")
	case m.frozen:
		return st.Paused.Render("FROZEN")
	}
	return st.Running.Render("RUNNING")
}

// View renders the TUI interface.
func (m Model) View() string {
	st := m.styles
	cur := m.current.stats

	var s strings.Builder
	s.WriteString(st.Header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	progress := 0.0
	if m.iterations > 0 {
		progress = float64(cur.Step) / float64(m.iterations)
	}
	s.WriteString(st.ProgressBar(progress, 30) + fmt.Sprintf(" %3.0f%%\n", progress*100))

	if len(m.current.volumes) > 1 {
		chart := asciigraph.Plot(m.current.volumes, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Volume"))
		s.WriteString(st.Graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d / %d", cur.Step, m.iterations))
	row("Points", fmt.Sprintf("%d", cur.Points))
	row("Edges", fmt.Sprintf("%d", cur.Edges))
	row("Volume", fmt.Sprintf("%.4g", cur.Volume))
	row("Edge", fmt.Sprintf("%.4g ± %.2g", cur.EdgeMean, cur.EdgeStd))
	row("Extent", fmt.Sprintf("%.4g", cur.Extent))
	row("Flex", fmt.Sprintf("%.3f", cur.MeanFlexibility))
	row("Wall", time.Since(m.started).Round(time.Second).String())
	row("Theme", m.theme.Name)

	s.WriteString(st.Help.Render("\n─────────────────────\nSP:Freeze Q:Quit T:Theme\nXYZ:Rotate +-:Zoom ?:Help"))

	canvasView := st.Canvas.Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.Stats.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Freeze/unfreeze view     ║
║  Q        - Stop the run and quit    ║
║  x/X      - Rotate around X          ║
║  y/Y      - Rotate around Y          ║
║  z/Z      - Rotate around Z          ║
║  +/-      - Zoom                     ║
║  R        - Reset camera             ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Watch runs r while showing the live view. Quitting the view cancels the
// run, which still writes its final frame.
func Watch(ctx context.Context, r *experiment.Runner, title string) (*experiment.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := NewFeed(max(1, r.Config.SnapshotEvery/20))
	r.Observers = append(r.Observers, feed)

	type outcome struct {
		res *experiment.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := r.Run(ctx)
		feed.Finish(err)
		done <- outcome{res, err}
	}()

	_, uiErr := tea.NewProgram(NewModel(feed, title, r.Config.Iterations, cancel), tea.WithAltScreen()).Run()
	cancel()
	out := <-done
	if uiErr != nil && out.err == nil {
		return out.res, uiErr
	}
	return out.res, out.err
}

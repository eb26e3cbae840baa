// Package tui is the terminal frontend: the fractal drawn with half blocks
// in truecolor, a status bar and an optional histogram panel.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mandel/internal/analysis"
	"github.com/san-kum/mandel/internal/app"
	"github.com/san-kum/mandel/internal/control"
	"github.com/san-kum/mandel/internal/export"
)

const (
	frameInterval = 33 * time.Millisecond
	// pulseSeconds is how long one key press moves the camera. Terminals
	// report presses only, so every press is a short burst of motion.
	pulseSeconds = 0.15
	statusLines  = 2
	recordFile   = "mandel.gif"
	maxRecorded  = 300
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model of an exploring session.
type Model struct {
	ctx *app.Context

	theme  int
	styles styles

	width, height int
	lastFrame     time.Time
	frame         string

	showHelp  bool
	showStats bool
	recorder  *export.Recorder
	recording bool
}

// NewModel wraps an initialized session.
func NewModel(ctx *app.Context, theme string) Model {
	t := GetTheme(theme)
	m := Model{
		ctx:      ctx,
		styles:   newStyles(t),
		width:    80,
		height:   24,
		recorder: export.NewRecorder(4, maxRecorded),
	}
	for i, th := range Themes {
		if th.Name == t.Name {
			m.theme = i
		}
	}
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ctx.Resize(m.canvasSize())
		return m, nil
	case tickMsg:
		now := time.Time(msg)
		dt := 0.0
		if !m.lastFrame.IsZero() {
			dt = now.Sub(m.lastFrame).Seconds()
		}
		m.lastFrame = now
		img := m.ctx.Frame(dt)
		m.frame = HalfBlock(img)
		if m.recording && m.ctx.Renderer.IsDone() {
			m.recorder.Add(img)
		}
		return m, tick()
	}
	return m, nil
}

// canvasSize is the pixel size of the fractal area.
func (m Model) canvasSize() (int, int) {
	rows := max(m.height-statusLines, 1)
	return max(m.width, 1), 2 * rows
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "i":
		m.showStats = !m.showStats
		return m, nil
	case "y":
		m.theme = (m.theme + 1) % len(Themes)
		m.styles = newStyles(Themes[m.theme])
		m.ctx.SetStatus("theme " + Themes[m.theme].Name)
		return m, nil
	case "ctrl+r":
		m.toggleRecording()
		return m, nil
	}

	action, moved := m.ctx.Keys.Pulse(key, m.ctx.Camera, pulseSeconds)
	if moved {
		m.ctx.Renderer.SetViewport(m.ctx.Camera.Viewport())
		return m, nil
	}
	if action == control.ActionNone {
		return m, nil
	}
	if err := m.ctx.Handle(action); err != nil {
		if errors.Is(err, app.ErrQuit) {
			if m.recording {
				m.toggleRecording()
			}
			return m, tea.Quit
		}
		m.ctx.SetStatus(err.Error())
	}
	return m, nil
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.ctx.SetStatus("recording")
		return
	}
	m.recording = false
	if err := m.recorder.Save(recordFile); err != nil {
		m.ctx.SetStatus("recording failed: " + err.Error())
		return
	}
	m.ctx.SetStatus("saved " + recordFile)
}

func (m Model) View() string {
	st := m.styles
	var s strings.Builder
	s.WriteString(m.frame)
	s.WriteString("\n")
	s.WriteString(m.statusBar())

	view := s.String()
	if m.showStats {
		view = lipgloss.JoinHorizontal(lipgloss.Top, view, st.panel.Render(m.statsPanel()))
	}
	if m.showHelp {
		view = lipgloss.JoinHorizontal(lipgloss.Top, view, st.panel.Render(helpText))
	}
	return view
}

func (m Model) statusBar() string {
	st := m.styles
	r := m.ctx.Renderer
	v := r.Viewport()

	state := st.status.Render(r.State().String())
	if m.ctx.Paused() {
		state = st.warning.Render("paused")
	}
	parts := []string{
		state,
		st.bar.Render(ProgressBar(m.ctx.Progress(), 10)),
		keyValue(st, "at", fmt.Sprintf("%.8g%+.8gi", real(v.Position), imag(v.Position))),
		keyValue(st, "size", fmt.Sprintf("%.3g", v.Size)),
		keyValue(st, "steps", r.MaxStepCount()),
		keyValue(st, "res", r.Resolution()),
		keyValue(st, "ms/step", fmt.Sprintf("%.1f", m.ctx.StepTime())),
		keyValue(st, "fps", fmt.Sprintf("%.0f", m.ctx.FPS())),
	}
	if m.recording {
		parts = append(parts, st.warning.Render(fmt.Sprintf("● rec %d", m.recorder.Len())))
	}
	line := strings.Join(parts, "  ")
	status := m.ctx.Status()
	if status == "" {
		status = "? for help"
	}
	return line + "\n" + st.hint.Render(status)
}

func (m Model) statsPanel() string {
	r := m.ctx.Renderer
	stats := analysis.Compute(r.Output(), r.MaxLifetime(), 24)
	var s strings.Builder
	s.WriteString(analysis.Plot(stats.HistogramSeries(), "escape time", 30, 8))
	s.WriteString("\n")
	s.WriteString(keyValue(m.styles, "interior", fmt.Sprintf("%.1f%%", 100*stats.InteriorFraction())))
	s.WriteString("\n")
	s.WriteString(keyValue(m.styles, "mean life", fmt.Sprintf("%.1f", stats.MeanLifetime)))
	return s.String()
}

// Run starts the terminal frontend and blocks until the user quits.
func Run(ctx *app.Context, theme string) error {
	p := tea.NewProgram(NewModel(ctx, theme), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

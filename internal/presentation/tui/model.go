// Package tui is the interactive terminal host: a bubbletea program that
// shows the current step, its buttons and the chosen platform.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/aretw0/walkthrough/pkg/runner"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa")).MarginBottom(1)
	errTitleStyle = titleStyle.Foreground(lipgloss.Color("#fb7185"))
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e5e7eb"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")).Strikethrough(true)
	backStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d399"))
	statusErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#fb7185"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// chromeHeight is the number of lines around the viewport (title, buttons
// header, status and help).
const chromeHeight = 6

// viewMsg carries the engine view after an operation finished.
type viewMsg struct {
	view walkthrough.View
	err  error
}

// Option configures a Model.
type Option func(*Model)

// WithRenderer overrides the glamour renderer.
func WithRenderer(r runner.ContentRenderer) Option {
	return func(m *Model) {
		m.render = r
		m.fixedRenderer = true
	}
}

// WithClipboard overrides the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		m.copy = fn
	}
}

// Model is the bubbletea model of the wizard.
type Model struct {
	ctx    context.Context
	engine *walkthrough.Engine

	view     walkthrough.View
	viewport viewport.Model
	help     help.Model
	keys     KeyMap

	render        runner.ContentRenderer
	fixedRenderer bool
	copy          func(string) error

	status    string
	statusErr bool
	busy      bool
	width     int
	height    int
	quitting  bool
}

// NewModel creates the model. Operations run with ctx.
func NewModel(ctx context.Context, eng *walkthrough.Engine, opts ...Option) Model {
	m := Model{
		ctx:      ctx,
		engine:   eng,
		viewport: viewport.New(80, 20),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		render:   NewRenderer(78),
		copy:     clipboard.WriteAll,
		width:    80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run starts the program in the alternate screen and blocks until the user
// quits or ctx is done.
func Run(ctx context.Context, eng *walkthrough.Engine, opts ...Option) error {
	p := tea.NewProgram(NewModel(ctx, eng, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// EngineView returns the last engine view the model received.
func (m Model) EngineView() walkthrough.View {
	return m.view
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.engine.State().Phase == domain.PhaseUninitialized {
		return m.run(m.engine.Start)
	}
	return m.run(nil)
}

// run executes op off the update loop and reports the resulting view.
func (m Model) run(op func(context.Context) error) tea.Cmd {
	ctx, eng := m.ctx, m.engine
	return func() tea.Msg {
		var err error
		if op != nil {
			err = op(ctx)
		}
		return viewMsg{view: eng.View(), err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight-len(m.view.Buttons), 3)
		if !m.fixedRenderer {
			m.render = NewRenderer(msg.Width - 2)
		}
		m.setContent(false)
		return m, nil

	case viewMsg:
		changed := msg.view.StepID != m.view.StepID
		m.view = msg.view
		m.busy = false
		if msg.err != nil {
			m.setStatus(describe(msg.err), true)
		}
		m.viewport.Height = max(m.height-chromeHeight-len(m.view.Buttons), 3)
		m.setContent(changed)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Choose):
		n := int(msg.Runes[0] - '0')
		if n < 1 || n > len(m.view.Buttons) {
			m.setStatus(fmt.Sprintf("No button %d.", n), true)
			return m, nil
		}
		b := m.view.Buttons[n-1]
		if b.Disabled {
			m.setStatus(fmt.Sprintf("%q is disabled. Press e to enable it.", b.Label), true)
			return m, nil
		}
		m.setStatus("", false)
		return m.start(func(ctx context.Context) error {
			return m.engine.Activate(ctx, b.ID)
		})

	case key.Matches(msg, m.keys.Back):
		m.setStatus("", false)
		return m.start(m.engine.GoBack)

	case key.Matches(msg, m.keys.Restart):
		m.setStatus("Restarted.", false)
		return m.start(m.engine.Restart)

	case key.Matches(msg, m.keys.Platform):
		next := nextPlatform(m.view.State.Platform)
		m.setStatus("Platform: "+preference.DisplayName(next), false)
		return m.start(func(ctx context.Context) error {
			return m.engine.SetPlatform(ctx, next)
		})

	case key.Matches(msg, m.keys.Enable):
		for _, b := range m.view.Buttons {
			if b.Disabled && m.engine.EnableButton(b.ID) {
				m.setStatus(fmt.Sprintf("Enabled %q.", b.Label), false)
				return m, m.run(nil)
			}
		}
		m.setStatus("Nothing to enable.", false)
		return m, nil

	case key.Matches(msg, m.keys.CopyURL):
		if err := m.copy(m.view.URL); err != nil {
			m.setStatus("Clipboard error: "+err.Error(), true)
		} else {
			m.setStatus("Copied "+m.view.URL, false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) start(op func(context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, m.run(op)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) setContent(top bool) {
	text := m.view.Text
	if rendered, err := m.render(text); err == nil {
		text = rendered
	}
	m.viewport.SetContent(text)
	if top {
		m.viewport.GotoTop()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	title := m.view.Title
	if title == "" {
		title = "Loading…"
	}
	if m.view.Error {
		b.WriteString(errTitleStyle.Render(title))
	} else {
		b.WriteString(titleStyle.Render(title))
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	for i, btn := range m.view.Buttons {
		label := truncate(btn.Label, m.width-8)
		if btn.Action != nil && btn.Action.IsExternalLink() {
			label += " ↗"
		}
		line := fmt.Sprintf("[%d] %s", i+1, label)
		switch {
		case btn.Disabled:
			line = disabledStyle.Render(line)
		case btn.ID == domain.BackButtonID:
			line = backStyle.Render(line)
		default:
			line = buttonStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}

	platform := mutedStyle.Render("platform: " + preference.DisplayName(m.view.State.Platform))
	status := truncate(m.status, m.width-runewidth.StringWidth(preference.DisplayName(m.view.State.Platform))-14)
	if m.statusErr {
		status = statusErr.Render(status)
	} else {
		status = statusStyle.Render(status)
	}
	b.WriteString("\n" + platform + "  " + status + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// nextPlatform cycles through the built-in platforms; a custom or empty
// value starts over at the first one.
func nextPlatform(current string) string {
	for i, p := range domain.Platforms {
		if p == current {
			return domain.Platforms[(i+1)%len(domain.Platforms)]
		}
	}
	return domain.Platforms[0]
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrButtonDisabled):
		return "That button is disabled."
	case errors.Is(err, domain.ErrNotReady):
		return "The walkthrough could not be loaded."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	}
	return err.Error()
}

// truncate shortens s to width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

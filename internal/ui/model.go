package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/code-companion/backend/internal/model/catalog"
	"github.com/zhouzirui/code-companion/backend/internal/model/chat"
	"github.com/zhouzirui/code-companion/backend/internal/service/ai"
	"github.com/zhouzirui/code-companion/backend/internal/service/companion"
)

const (
	Title   = "🧠 DeepSeek Code Companion"
	Caption = "🚀 Your AI Pair Programmer with Debugging Superpowers"

	glamourStyle = "dark"
)

// Model is the terminal surface of one companion session.
type Model struct {
	ctx    context.Context
	ctrl   *companion.Controller
	models []catalog.ModelOption
	views  chan companion.View
	detach func()

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	width  int
	height int

	view   companion.View
	status string
}

type viewMsg struct{ view companion.View }

type submitDoneMsg struct {
	view companion.View
	err  error
}

func NewModel(ctx context.Context, ctrl *companion.Controller, models catalog.Store) Model {
	vp := viewport.New(80, 20)

	ti := textinput.New()
	ti.Placeholder = "Type your coding question here..."
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points

	h := help.New()
	h.ShowAll = false

	// intermediate frames are dropped when the buffer is full; submitDoneMsg
	// always carries the final view
	views := make(chan companion.View, 32)
	detach := ctrl.Attach(companion.RendererFunc(func(v companion.View) {
		select {
		case views <- v:
		default:
		}
	}))

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		models:   models.List(),
		views:    views,
		detach:   detach,
		viewport: vp,
		input:    ti,
		spinner:  sp,
		help:     h,
		keys:     defaultKeys(),
	}
	m.setView(ctrl.View(ctx))
	return m
}

// Detach stops forwarding controller transitions to this model.
func (m Model) Detach() {
	if m.detach != nil {
		m.detach()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForView(m.views))
}

func waitForView(views <-chan companion.View) tea.Cmd {
	return func() tea.Msg {
		return viewMsg{view: <-views}
	}
}

func (m Model) submitCmd(text string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		view, err := ctrl.Submit(ctx, text)
		return submitDoneMsg{view: view, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.setView(m.view)

	case viewMsg:
		m.setView(msg.view)
		cmds = append(cmds, waitForView(m.views))

	case submitDoneMsg:
		m.setView(msg.view)
		switch {
		case msg.err == nil:
			m.status = ""
		case errors.Is(msg.err, companion.ErrEmptyInput):
		default:
			var aiErr *ai.Error
			if !errors.As(msg.err, &aiErr) {
				m.status = msg.err.Error()
			}
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			text := m.input.Value()
			if m.view.Busy() || strings.TrimSpace(text) == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.status = ""
			return m, m.submitCmd(text)

		case key.Matches(msg, m.keys.Model):
			m.cycleModel()
			return m, nil

		case key.Matches(msg, m.keys.Reset):
			if view, err := m.ctrl.Reset(m.ctx); err != nil {
				m.status = err.Error()
			} else {
				m.status = "Started a new conversation"
				m.setView(view)
			}
			return m, nil

		case key.Matches(msg, m.keys.PageUp):
			m.viewport.HalfViewUp()
			return m, nil

		case key.Matches(msg, m.keys.PageDown):
			m.viewport.HalfViewDown()
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var spin tea.Cmd
		m.spinner, spin = m.spinner.Update(msg)
		cmds = append(cmds, spin)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) cycleModel() {
	if len(m.models) < 2 {
		return
	}
	next := m.models[0].ID
	for i, opt := range m.models {
		if opt.ID == m.view.Model {
			next = m.models[(i+1)%len(m.models)].ID
			break
		}
	}
	view, err := m.ctrl.SelectModel(m.ctx, next)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = "Model: " + next
	m.setView(view)
}

func (m *Model) setView(v companion.View) {
	m.view = v
	m.viewport.SetContent(renderTranscript(v.Turns, m.viewport.Width-2))
	m.viewport.GotoBottom()
}

// renderTranscript renders the turns as terminal markdown.
func renderTranscript(turns []chat.Turn, wrap int) string {
	if wrap < 20 {
		wrap = 20
	}

	var b strings.Builder
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			b.WriteString("### 🧑 You\n\n")
		case chat.RoleAssistant:
			b.WriteString("### 🤖 DeepSeek\n\n")
		default:
			continue
		}
		b.WriteString(turn.Content)
		b.WriteString("\n\n")
	}
	md := b.String()

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	// title, caption, status, input, help
	bodyHeight := m.height - 7
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	m.viewport.Width = m.width - 2
	m.viewport.Height = bodyHeight - 2
	m.input.Width = m.width - 6
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(Title),
		captionStyle.Render(Caption),
	)
	body := panelStyle().Width(m.width - 2).Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.statusLine(),
		m.input.View(),
		m.help.View(m.keys),
	)
}

func (m Model) statusLine() string {
	status := fmt.Sprintf("model=%s", m.view.Model)
	if m.view.Busy() {
		status = m.spinner.View() + " 🧠 Processing...  " + status
	}
	if m.view.Error != "" {
		return errorStyle.Render(m.view.Error)
	}
	if m.status != "" {
		status += "  " + m.status
	}
	return statusStyle.Render(status)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
}

// Package chat is the interactive conversation view: a scrolling
// transcript above a one-line composer. Messages are fetched on open,
// after every send, and on ctrl+r; nothing is streamed.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/meetly-app/meetly/internal/api"
	"github.com/meetly-app/meetly/internal/notify"
	"github.com/meetly-app/meetly/internal/ui"
	"github.com/meetly-app/meetly/pkg/models"
)

// DefaultTimeout bounds each call the view makes.
const DefaultTimeout = 15 * time.Second

// Service is the subset of the messages API the view needs.
type Service interface {
	List(ctx context.Context, conversationID string) ([]models.Message, error)
	Send(ctx context.Context, req models.SendMessageRequest) (*models.Message, error)
	MarkRead(ctx context.Context, conversationID string) error
}

// Options configures a Model.
type Options struct {
	Service        Service
	Bus            *notify.Bus
	Renderer       *ui.Renderer
	ConversationID string
	Me             string
	Title          string
	Timeout        time.Duration
}

type (
	loadedMsg struct {
		messages []models.Message
		err      error
	}
	sentMsg struct {
		err error
	}
	readMsg struct {
		err error
	}
)

// Model is the chat view's Bubble Tea model.
type Model struct {
	ctx  context.Context
	opts Options

	viewport viewport.Model
	input    textinput.Model

	messages []models.Message
	loading  bool
	sending  bool
	status   string
	err      error
	ready    bool
}

// New returns a Model for one conversation. ctx bounds every call.
func New(ctx context.Context, opts Options) Model {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Renderer == nil {
		opts.Renderer = ui.NewRenderer(ui.NewTheme(false))
	}

	in := textinput.New()
	in.Placeholder = "Type a message"
	in.Prompt = "› "
	in.CharLimit = 2000
	in.Focus()

	return Model{
		ctx:      ctx,
		opts:     opts,
		viewport: viewport.New(80, 16),
		input:    in,
		loading:  true,
		status:   "Loading…",
	}
}

// Init marks the conversation read and loads the transcript.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.markRead(), m.fetch())
}

func (m Model) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.opts.Timeout)
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		msgs, err := m.opts.Service.List(ctx, m.opts.ConversationID)
		return loadedMsg{messages: msgs, err: err}
	}
}

func (m Model) markRead() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		err := m.opts.Service.MarkRead(ctx, m.opts.ConversationID)
		if err == nil && m.opts.Bus != nil {
			m.opts.Bus.Publish(notify.UnreadCountChanged)
		}
		return readMsg{err: err}
	}
}

func (m Model) send(content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		_, err := m.opts.Service.Send(ctx, models.SendMessageRequest{
			ConversationID: m.opts.ConversationID,
			Content:        content,
		})
		if err == nil && m.opts.Bus != nil {
			m.opts.Bus.Publish(notify.UnreadCountChanged)
		}
		return sentMsg{err: err}
	}
}

// Update handles keys, window size, and call results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.opts.Renderer.Width = msg.Width
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			if !m.loading {
				m.loading = true
				m.status = "Refreshing…"
				return m, m.fetch()
			}
			return m, nil
		case tea.KeyEnter:
			content := strings.TrimSpace(m.input.Value())
			if content == "" || m.sending {
				return m, nil
			}
			m.sending = true
			m.status = "Sending…"
			return m, m.send(content)
		}

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.messages = msg.messages
		m.status = ""
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.input.Reset()
		m.loading = true
		m.status = "Refreshing…"
		return m, m.fetch()

	case readMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.opts.Renderer.Messages(m.messages, m.opts.Me))
}

// Messages returns the transcript currently shown.
func (m Model) Messages() []models.Message {
	return m.messages
}

// Err returns the last call failure, cleared by the next success.
func (m Model) Err() error {
	return m.err
}

// View renders the header, transcript, status line and composer.
func (m Model) View() string {
	theme := m.opts.Renderer.Theme()
	title := m.opts.Title
	if title == "" {
		title = "Chat"
	}
	header := lipgloss.NewStyle().Bold(!theme.NoColor).Render(title)

	status := m.status
	if m.err != nil {
		status = "Error: " + api.Message(m.err)
	}
	if status == "" {
		status = "enter send · ctrl+r refresh · esc quit"
	}
	statusLine := lipgloss.NewStyle().Faint(!theme.NoColor).Render(status)

	return strings.Join([]string{header, m.viewport.View(), statusLine, m.input.View()}, "\n")
}

// Run shows the view until the user quits.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) (Model, error) {
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	final, err := tea.NewProgram(New(ctx, opts), progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	m, _ := final.(Model)
	return m, err
}

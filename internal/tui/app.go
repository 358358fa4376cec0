package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SharminSirajudeen/nova/internal/core"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/state"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

const (
	refreshInterval = 2 * time.Second
	// Below this height the logo is dropped.
	compactHeight = 24
	inputHeight   = 3
	footerHeight  = 1
)

// replyMsg carries the result of one submitted line.
type replyMsg struct {
	reply reply
}

// resumeMsg reports projects resumed at startup.
type resumeMsg struct {
	ids         []string
	interrupted []state.InterruptedProject
	err         error
}

// eventMsg carries one project event. ok is false once the stream closed.
type eventMsg struct {
	ev project.Event
	ok bool
}

type tickMsg time.Time

// Shell is the interactive bubbletea model.
type Shell struct {
	ctx     context.Context
	backend Backend

	header   *Header
	input    *InputField
	footer   *Footer
	viewport viewport.Model

	transcript []string
	busy       bool
	quitting   bool
	width      int
	height     int
}

// NewShell creates a shell driving b. ctx bounds every request it issues.
func NewShell(ctx context.Context, b Backend) *Shell {
	s := &Shell{
		ctx:      ctx,
		backend:  b,
		header:   NewHeader(),
		input:    NewInputField(),
		footer:   NewFooter(),
		viewport: viewport.New(80, 10),
		width:    80,
	}
	s.syncSession()
	s.append(mutedStyle.Render("Type /help for commands."))
	return s
}

// Init starts the input cursor and the session refresh ticks, resumes
// interrupted projects and subscribes to project events.
func (s *Shell) Init() tea.Cmd {
	return tea.Batch(s.input.Focus(), s.resume(), tick(), s.listen())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (s *Shell) resume() tea.Cmd {
	ctx, b := s.ctx, s.backend
	return func() tea.Msg {
		ids, interrupted, err := resumeProjects(ctx, b)
		return resumeMsg{ids: ids, interrupted: interrupted, err: err}
	}
}

// listen waits for the next project event. It returns nil when the backend
// has no event stream.
func (s *Shell) listen() tea.Cmd {
	events := s.backend.Events()
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{ev: ev, ok: ok}
	}
}

// Update handles bubbletea messages.
func (s *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		s.updateSizes()
		return s, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			s.quitting = true
			return s, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			return s, cmd
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case InputSubmittedMsg:
		return s, s.submit(msg.Text)

	case replyMsg:
		return s, s.handleReply(msg.reply)

	case resumeMsg:
		if msg.err != nil {
			s.append(renderError(msg.err))
		} else if len(msg.ids) > 0 {
			s.append(renderResumed(msg.ids, msg.interrupted))
		}
		return s, nil

	case eventMsg:
		if !msg.ok {
			return s, nil
		}
		if line := renderEvent(msg.ev); line != "" {
			s.append(line)
		}
		s.syncSession()
		return s, s.listen()

	case tickMsg:
		s.syncSession()
		return s, tick()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Shell) submit(text string) tea.Cmd {
	if s.busy {
		s.footer.SetBusy("still working on the last request")
		return nil
	}
	s.append(userStyle.Render("> ") + text)
	s.busy = true
	s.footer.SetBusy(busyLabel(text, s.backend.ModeGet().Mode))

	ctx, b := s.ctx, s.backend
	return func() tea.Msg {
		return replyMsg{reply: execute(ctx, b, text)}
	}
}

func busyLabel(text string, mode models.Mode) string {
	switch {
	case strings.HasPrefix(text, "/"):
		return "working"
	case mode == models.ModeCompany:
		return "planning the project"
	default:
		return "thinking"
	}
}

func (s *Shell) handleReply(r reply) tea.Cmd {
	s.busy = false
	if r.Quit {
		s.quitting = true
		return tea.Quit
	}
	if r.Clear {
		s.transcript = nil
		s.refreshViewport()
	}
	if r.Err != nil {
		s.append(renderError(r.Err))
		s.footer.SetIdle(true, errorSummary(r.Err))
	} else {
		if r.Text != "" {
			s.append(r.Text)
		}
		s.footer.SetIdle(false, "")
	}
	s.syncSession()
	return nil
}

func errorSummary(err error) string {
	var ce *core.CommandError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	if errors.Is(err, errUsage) {
		return "usage"
	}
	return "error"
}

func (s *Shell) syncSession() {
	s.header.SetSession(s.backend.ModeGet(), s.backend.TierGet().Name)
	placeholder := "Ask something, or /help"
	if s.backend.ModeGet().Mode == models.ModeCompany {
		placeholder = "Describe a project, or /help"
	}
	s.input.SetPlaceholder(placeholder)
}

func (s *Shell) append(block string) {
	s.transcript = append(s.transcript, block)
	s.refreshViewport()
}

func (s *Shell) refreshViewport() {
	s.viewport.SetContent(strings.Join(s.transcript, "\n\n"))
	s.viewport.GotoBottom()
}

func (s *Shell) updateSizes() {
	s.header.SetCompact(s.height < compactHeight)
	s.header.SetWidth(s.width)
	s.input.SetWidth(s.width)
	s.footer.SetWidth(s.width)

	h := s.height - s.header.Height() - inputHeight - footerHeight
	if h < 1 {
		h = 1
	}
	s.viewport.Width = s.width
	s.viewport.Height = h
	s.refreshViewport()
}

// View renders the shell.
func (s *Shell) View() string {
	if s.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.header.View(),
		s.viewport.View(),
		s.input.View(),
		s.footer.View(),
	)
}

// Transcript returns the rendered blocks shown so far.
func (s *Shell) Transcript() []string {
	return append([]string(nil), s.transcript...)
}

// Run starts the shell on the terminal and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, c *core.Core) error {
	p := tea.NewProgram(NewShell(ctx, c), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

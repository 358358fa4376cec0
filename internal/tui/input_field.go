package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const historyLimit = 100

// InputSubmittedMsg is sent when the user submits a line.
type InputSubmittedMsg struct {
	Text string
}

// InputField is a single-line prompt with history.
type InputField struct {
	input   textinput.Model
	width   int
	history []string
	// cursor indexes history while browsing; len(history) means the live line.
	cursor int
	draft  string
}

// NewInputField creates a new InputField.
func NewInputField() *InputField {
	ti := textinput.New()
	ti.Placeholder = "Ask something, or /help"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	return &InputField{
		input: ti,
		width: 80,
	}
}

// SetWidth sets the width of the input field.
func (f *InputField) SetWidth(width int) {
	f.width = width
	f.input.Width = width - 4 // prompt and padding
}

// SetPlaceholder changes the hint shown while the line is empty.
func (f *InputField) SetPlaceholder(s string) {
	f.input.Placeholder = s
}

// Value returns the current line.
func (f *InputField) Value() string {
	return f.input.Value()
}

// Update handles messages for the input field.
func (f *InputField) Update(msg tea.Msg) (*InputField, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			text := strings.TrimSpace(f.input.Value())
			if text == "" {
				return f, nil
			}
			f.remember(text)
			f.input.Reset()
			return f, func() tea.Msg {
				return InputSubmittedMsg{Text: text}
			}
		case tea.KeyUp:
			f.browse(-1)
			return f, nil
		case tea.KeyDown:
			f.browse(1)
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *InputField) remember(text string) {
	if n := len(f.history); n == 0 || f.history[n-1] != text {
		f.history = append(f.history, text)
		if len(f.history) > historyLimit {
			f.history = f.history[len(f.history)-historyLimit:]
		}
	}
	f.cursor = len(f.history)
	f.draft = ""
}

func (f *InputField) browse(delta int) {
	next := f.cursor + delta
	if next < 0 || next > len(f.history) {
		return
	}
	if f.cursor == len(f.history) {
		f.draft = f.input.Value()
	}
	f.cursor = next
	if next == len(f.history) {
		f.input.SetValue(f.draft)
	} else {
		f.input.SetValue(f.history[next])
	}
	f.input.CursorEnd()
}

// View renders the input field.
func (f *InputField) View() string {
	promptStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(f.width - 2)

	prompt := promptStyle.Render("> ")
	return boxStyle.Render(prompt + f.input.View())
}

// Focus sets focus on the input field.
func (f *InputField) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes focus from the input field.
func (f *InputField) Blur() {
	f.input.Blur()
}

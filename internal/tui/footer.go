package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Footer shows the request status and keyboard hints.
type Footer struct {
	width   int
	message string
	busy    bool
	failed  bool

	hintStyle      lipgloss.Style
	busyStyle      lipgloss.Style
	errorStyle     lipgloss.Style
	separatorStyle lipgloss.Style
}

// NewFooter creates a new Footer.
func NewFooter() *Footer {
	return &Footer{
		width:          80,
		hintStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		busyStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		errorStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		separatorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// SetWidth sets the footer width.
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetBusy shows msg while a request is running.
func (f *Footer) SetBusy(msg string) {
	f.busy = true
	f.failed = false
	f.message = msg
}

// SetIdle clears the busy state. A failed request keeps its message.
func (f *Footer) SetIdle(failed bool, msg string) {
	f.busy = false
	f.failed = failed
	f.message = msg
}

// View renders the footer.
func (f *Footer) View() string {
	var left string
	switch {
	case f.busy:
		left = f.busyStyle.Render("⏳ " + f.message)
	case f.failed:
		left = f.errorStyle.Render("✗ " + f.message)
	case f.message != "":
		left = f.hintStyle.Render(f.message)
	}

	right := f.hintStyle.Render("↑/↓ history │ pgup/pgdn scroll │ /help │ ctrl+c quit")
	if left == "" {
		return right
	}
	return left + f.separatorStyle.Render(" │ ") + right
}

package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/SharminSirajudeen/nova/internal/core"
)

// Header renders the nova logo and the session line.
type Header struct {
	width   int
	compact bool
	info    core.ModeInfo
	tier    string
}

// NewHeader creates a new Header.
func NewHeader() *Header {
	return &Header{
		width: 80,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetCompact drops the logo, for short terminals.
func (h *Header) SetCompact(compact bool) {
	h.compact = compact
}

// SetSession updates the mode, tier and active project shown.
func (h *Header) SetSession(info core.ModeInfo, tierName string) {
	h.info = info
	h.tier = tierName
}

var logo = []string{
	" ███╗   ██╗ ██████╗ ██╗   ██╗ █████╗ ",
	" ████╗  ██║██╔═══██╗██║   ██║██╔══██╗",
	" ██╔██╗ ██║██║   ██║██║   ██║███████║",
	" ██║╚██╗██║██║   ██║╚██╗ ██╔╝██╔══██║",
	" ██║ ╚████║╚██████╔╝ ╚████╔╝ ██║  ██║",
	" ╚═╝  ╚═══╝ ╚═════╝   ╚═══╝  ╚═╝  ╚═╝",
}

// View renders the header.
func (h *Header) View() string {
	status := h.sessionLine()
	if h.compact {
		return status
	}

	colors := []string{"#7F5AF0", "#6B6FF2", "#5784F4", "#4399F6", "#2FAEF8", "#2CB67D"}
	lines := make([]string, 0, len(logo))
	for i, line := range logo {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i%len(colors)])).Bold(true)
		lines = append(lines, style.Render(line))
	}
	logoBlock := lipgloss.JoinVertical(lipgloss.Left, lines...)

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Italic(true).
		Render("Your team of local models")

	block := lipgloss.NewStyle().
		Width(h.width).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, logoBlock, subtitle))
	return lipgloss.JoinVertical(lipgloss.Left, block, status)
}

func (h *Header) sessionLine() string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)

	mode := string(h.info.Mode)
	if mode == "" {
		mode = "none"
	}
	line := label.Render("mode ") + value.Render(mode) +
		label.Render("  tier ") + value.Render(fmt.Sprintf("%d %s", h.info.Tier, h.tier))
	if h.info.ActiveProject != "" {
		line += label.Render("  project ") + value.Render(h.info.ActiveProject)
	}
	return lipgloss.NewStyle().Width(h.width).Padding(0, 1).Render(line)
}

// Height returns the header height in lines.
func (h *Header) Height() int {
	if h.compact {
		return 1
	}
	return len(logo) + 2 // logo, subtitle, session line
}

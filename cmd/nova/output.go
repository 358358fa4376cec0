package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/SharminSirajudeen/nova/internal/core"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// emit prints v as JSON under --json and calls human otherwise.
func emit(v any, human func()) error {
	if jsonOutput {
		return writeJSON(stdout, v)
	}
	human()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printStatus prints a colored status symbol followed by a message.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(stdout, "%s %s\n", c.Sprint(symbol), message)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

func printTable(headers []string, rows [][]string) {
	fmt.Fprintln(stdout, renderTable(headers, rows))
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f)
}

// errorBody is the --json error envelope.
type errorBody struct {
	Error *core.CommandError `json:"error"`
}

func asCommandError(err error) *core.CommandError {
	var ce *core.CommandError
	if errors.As(err, &ce) {
		return ce
	}
	return &core.CommandError{Code: core.CodeInternal, Message: err.Error()}
}

// reportError prints a failed command's error.
func reportError(err error) {
	ce := asCommandError(err)
	if jsonOutput {
		_ = writeJSON(stdout, errorBody{Error: ce})
		return
	}
	red := color.New(color.FgRed)
	fmt.Fprintf(stderr, "%s %s\n", red.Sprint("✗"), ce.Message)
	if len(ce.Attempted) > 0 {
		steps := make([]string, len(ce.Attempted))
		for i, a := range ce.Attempted {
			steps[i] = a.String()
		}
		fmt.Fprintf(stderr, "  attempted: %s\n", strings.Join(steps, " → "))
	}
	if ce.Code == core.CodeModeRequired {
		fmt.Fprintln(stderr, "  switch with: nova mode set <mode>")
	}
}

// Package tui implements the participant-facing terminal interface using
// Bubble Tea.
package tui

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrNotTTY is returned by Run when stdout is not a terminal. The assessment
// needs a mouse and a full screen; use the simulate command for scripted runs.
var ErrNotTTY = errors.New("stdout is not a terminal; use 'rapm simulate' for non-interactive runs")

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run starts the program in alternate screen mode with mouse reporting and
// blocks until the participant leaves the completion screen or aborts.
func Run(m *Model) error {
	if !IsTTY() {
		return ErrNotTTY
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

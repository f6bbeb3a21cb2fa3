// Package style provides shared terminal styling for the ledgerctl CLI.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var profile = termenv.NewOutput(os.Stdout).ColorProfile()

// Bold renders emphasized text, e.g. command names and headers.
var Bold = lipgloss.NewStyle().Bold(true)

// Dim renders de-emphasized text, e.g. ids and timestamps.
var Dim = lipgloss.NewStyle().Faint(true)

// Success renders confirmations (green when the terminal supports color).
var Success = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

// Danger renders errors and destructive confirmations.
var Danger = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

// ColorEnabled reports whether the current output profile supports color,
// so callers can decide whether to fall back to plain text (e.g. for
// --json output or a dumb terminal).
func ColorEnabled() bool {
	return profile != termenv.Ascii
}

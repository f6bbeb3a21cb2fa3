// Package cli holds rendering and interaction helpers shared by the
// ledgerctl subcommands: table output, Markdown help, and terminal
// width detection.
package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/colinmarc/ledgerctl/internal/style"
)

const (
	minWidth     = 72
	maxWidth     = 100
	defaultWidth = 80
)

// clampWidth keeps rendered output within a readable range regardless
// of how wide the actual terminal is.
func clampWidth(w int) int {
	if w < minWidth {
		return minWidth
	}
	if w > maxWidth {
		return maxWidth
	}
	return w
}

// detectWidth determines the terminal width to render at, honoring
// COLUMNS when set and falling back to the controlling terminal's
// reported width, then a sane default.
func detectWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return clampWidth(n)
		}
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return clampWidth(w)
	}
	return defaultWidth
}

// Column describes one column of a Table.
type Column struct {
	Header string
	Align  lipgloss.Position
}

// Table renders rows of string cells under a header, sized to what
// `list`, `query`, and `changes` need: no interactivity, no selection
// state.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// NewTable builds a Table with the given column headers.
func NewTable(headers ...string) *Table {
	cols := make([]Column, len(headers))
	for i, h := range headers {
		cols[i] = Column{Header: h, Align: lipgloss.Left}
	}
	return &Table{Columns: cols}
}

// AddRow appends a row of cells.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render returns the formatted table as a string.
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col.Header)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	headerStyle := style.Bold

	for i, col := range t.Columns {
		b.WriteString(headerStyle.Render(pad(col.Header, widths[i])))
		if i < len(t.Columns)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")

	total := 0
	for i, w := range widths {
		total += w
		if i < len(widths)-1 {
			total += 2
		}
	}
	b.WriteString(style.Dim.Render(strings.Repeat("-", total)))
	b.WriteString("\n")

	for _, row := range t.Rows {
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(pad(cell, widths[i]))
			if i < len(t.Columns)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

// RenderMarkdown renders markdown help text for the terminal, falling
// back to the raw source if glamour can't build a renderer (e.g. a
// dumb terminal with no ANSI support).
func RenderMarkdown(source string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(detectWidth()),
	)
	if err != nil {
		return source
	}
	out, err := r.Render(source)
	if err != nil {
		return source
	}
	return out
}

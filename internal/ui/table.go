// Package ui renders compact terminal tables for listing commands.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Table renders rows in a compact fixed-width format sized to the
// terminal.
type Table struct {
	Headers  []string
	Rows     [][]string
	MaxWidth int // max width per column, 0 = auto
}

// columnWidths calculates column widths from headers and content,
// clamped to MaxWidth when set.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	if t.MaxWidth > 0 {
		for i := range widths {
			if widths[i] > t.MaxWidth {
				widths[i] = t.MaxWidth
			}
		}
	}
	return widths
}

// TerminalWidth returns the current terminal width, defaulting to 120
// when stdout is not a terminal.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}

// Render outputs the table as a string.
func (t *Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}

	widths := t.columnWidths()
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	cellStyle := lipgloss.NewStyle().Foreground(ColorText)
	dimStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	headerCells := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headerCells[i] = headerStyle.Render(padRight(h, widths[i]))
	}
	sb.WriteString(" " + strings.Join(headerCells, "  ") + "\n")

	sepParts := make([]string, len(widths))
	for i, w := range widths {
		sepParts[i] = dimStyle.Render(strings.Repeat("-", w))
	}
	sb.WriteString(" " + strings.Join(sepParts, "  ") + "\n")

	for _, row := range t.Rows {
		cells := make([]string, len(t.Headers))
		for i := range t.Headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if widths[i] >= 2 && len(val) > widths[i] {
				val = val[:widths[i]-1] + "~"
			} else if widths[i] == 1 && len(val) > 1 {
				val = "~"
			}
			cells[i] = cellStyle.Render(padRight(val, widths[i]))
		}
		sb.WriteString(" " + strings.Join(cells, "  ") + "\n")
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// TruncateID shortens long opaque ids for table display. CalDAV ids
// share both prefix and suffix, so the middle is elided rather than the
// tail.
func TruncateID(id string, length int) string {
	if len(id) <= length || length < 5 {
		return id
	}
	half := (length - 2) / 2
	return id[:half] + ".." + id[len(id)-half:]
}

package output

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Table is an ASCII table whose column widths follow its widest cell.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	t := &Table{
		headers: headers,
		widths:  make([]int, len(headers)),
	}
	for i, h := range headers {
		t.widths[i] = displayWidth(h)
	}
	return t
}

// AddRow adds a row. Missing cells are blank; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
	for i, cell := range row {
		t.widths[i] = max(t.widths[i], displayWidth(cell))
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the table with a separator after every row.
func (t *Table) Render() string {
	return t.render(true)
}

// RenderCompact returns the table with separators only around the header
// and at the bottom.
func (t *Table) RenderCompact() string {
	return t.render(false)
}

func (t *Table) render(rowSeparators bool) string {
	if len(t.headers) == 0 {
		return ""
	}

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteString("\n")
	}

	line(t.renderSeparator("-"))
	line(t.renderRow(t.headers))
	line(t.renderSeparator("="))
	for _, row := range t.rows {
		line(t.renderRow(row))
		if rowSeparators {
			line(t.renderSeparator("-"))
		}
	}
	if !rowSeparators {
		line(t.renderSeparator("-"))
	}
	return sb.String()
}

// renderSeparator creates a line like +-----+-----+
func (t *Table) renderSeparator(fill string) string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat(fill, w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

// renderRow creates a line like | val | val |
func (t *Table) renderRow(cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = " " + padToWidth(cell, t.widths[i]) + " "
	}
	return "|" + strings.Join(parts, "|") + "|"
}

// displayWidth returns the rune count of s, ignoring ANSI escape codes.
func displayWidth(s string) int {
	return utf8.RuneCountInString(stripANSI(s))
}

var ansiEscape = regexp.MustCompile("\033\\[[0-9;]*[a-zA-Z]")

func stripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

func padToWidth(s string, width int) string {
	if w := displayWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// TruncateCell truncates text to maxWidth runes, dropping any color.
func TruncateCell(text string, maxWidth int) string {
	stripped := stripANSI(text)
	runes := []rune(stripped)
	if len(runes) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}

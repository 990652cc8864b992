// Package ascii renders aligned terminal text: boxes and column tables.
// Widths are display widths, so CJK and emoji in file names keep columns aligned.
package ascii

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Box builds a box containing the provided lines and returns it as a string.
// Lines are left-aligned with single-space padding on each side.
func Box(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	trimmed := make([]string, len(lines))
	maxWidth := 0
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " ")
		if w := StringWidth(trimmed[i]); w > maxWidth {
			maxWidth = w
		}
	}

	innerWidth := maxWidth + 2
	border := strings.Repeat("─", innerWidth)

	var sb strings.Builder
	sb.WriteString("┌" + border + "┐\n")
	for _, line := range trimmed {
		sb.WriteString("│ " + PadRight(line, maxWidth) + " │\n")
	}
	sb.WriteString("└" + border + "┘\n")
	return sb.String()
}

// Table renders headers and rows as left-aligned columns separated by two
// spaces, with a dashed rule under the header. Cells wider than maxCell
// (when > 0) are truncated with an ellipsis.
func Table(headers []string, rows [][]string, maxCell int) string {
	cols := len(headers)
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return ""
	}

	cell := func(r []string, i int) string {
		if i >= len(r) {
			return ""
		}
		if maxCell > 0 {
			return Truncate(r[i], maxCell)
		}
		return r[i]
	}

	widths := make([]int, cols)
	measure := func(r []string) {
		for i := 0; i < cols; i++ {
			if w := StringWidth(cell(r, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, r := range rows {
		measure(r)
	}

	var sb strings.Builder
	line := func(r []string) {
		parts := make([]string, cols)
		for i := 0; i < cols; i++ {
			parts[i] = PadRight(cell(r, i), widths[i])
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteString("\n")
	}

	if len(headers) > 0 {
		line(headers)
		rule := make([]string, cols)
		for i, w := range widths {
			rule[i] = strings.Repeat("-", w)
		}
		line(rule)
	}
	for _, r := range rows {
		line(r)
	}
	return sb.String()
}

// WriteTable writes Table output to w.
func WriteTable(w io.Writer, headers []string, rows [][]string, maxCell int) error {
	_, err := io.WriteString(w, Table(headers, rows, maxCell))
	return err
}

// PadRight pads s with spaces to the given display width.
func PadRight(s string, width int) string {
	if fill := width - StringWidth(s); fill > 0 {
		return s + strings.Repeat(" ", fill)
	}
	return s
}

// Truncate shortens value so that its display width fits within width. An
// ellipsis ("...") is appended when truncation occurs and there is space for it.
func Truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return substringWithWidth(value, width)
	}
	return substringWithWidth(value, width-3) + "..."
}

func substringWithWidth(s string, target int) string {
	if target <= 0 {
		return ""
	}
	width := 0
	var sb strings.Builder
	for _, r := range s {
		w := RuneWidth(r)
		if width+w > target {
			break
		}
		width += w
		sb.WriteRune(r)
	}
	return sb.String()
}

// RuneWidth returns the display width of a single rune.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// StringWidth returns the display width of a string.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

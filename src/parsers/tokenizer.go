package parsers

import "strings"

// SplitCells splits one line of the summary feed into trimmed cell values.
// A comma is a separator only when it is outside double quotes; quote
// characters themselves never reach the output. Malformed quoting degrades
// to a best-effort split instead of failing, and an empty line yields nil.
func SplitCells(line string) []string {
	if line == "" {
		return nil
	}
	var cells []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

// cellAt returns the cell at index i, or "" when the row is too short.
func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

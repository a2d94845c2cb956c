package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// formatTable lays out rows in columns sized by terminal display width. The
// numeric columns are right-aligned.
func formatTable(headers []string, rows [][]string, numeric ...int) []string {
	cols := len(headers)
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return nil
	}
	right := make([]bool, cols)
	for _, c := range numeric {
		if c >= 0 && c < cols {
			right[c] = true
		}
	}

	widths := make([]int, cols)
	all := append([][]string{headers}, rows...)
	for _, row := range all {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(all))
	for i, row := range all {
		if i == 0 && len(headers) == 0 {
			continue
		}
		var b strings.Builder
		for c, width := range widths {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			if c > 0 {
				b.WriteByte(' ')
			}
			if right[c] {
				b.WriteString(runewidth.FillLeft(cell, width))
			} else {
				b.WriteString(runewidth.FillRight(cell, width))
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

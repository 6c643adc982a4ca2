package flipdot

import (
	"fmt"
	"strings"
)

const (
	ActiveRune   = '#'
	InactiveRune = '.'
)

// ParseRows reads a grid drawn with '#' for active and '.' for inactive dots.
// All rows must have the same length.
func ParseRows(rows []string) ([][]bool, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("grid has no rows")
	}
	dots := make([][]bool, len(rows))
	width := -1
	for r, line := range rows {
		line = strings.TrimSpace(line)
		runes := []rune(line)
		if width == -1 {
			width = len(runes)
		} else if len(runes) != width {
			return nil, fmt.Errorf("row %d: expected %d dots, got %d", r, width, len(runes))
		}
		dots[r] = make([]bool, len(runes))
		for c, ch := range runes {
			switch ch {
			case ActiveRune:
				dots[r][c] = true
			case InactiveRune:
			default:
				return nil, fmt.Errorf("row %d col %d: unexpected %q", r, c, ch)
			}
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("grid has no columns")
	}
	return dots, nil
}

func FormatRows(dots [][]bool) []string {
	rows := make([]string, len(dots))
	for r, row := range dots {
		var b strings.Builder
		for _, d := range row {
			if d {
				b.WriteRune(ActiveRune)
			} else {
				b.WriteRune(InactiveRune)
			}
		}
		rows[r] = b.String()
	}
	return rows
}

package flipdot

import "fmt"

// NewDots returns an all-inactive grid.
func NewDots(dims Dimensions) [][]bool {
	dots := make([][]bool, dims.Rows)
	for r := range dots {
		dots[r] = make([]bool, dims.Columns)
	}
	return dots
}

func CloneDots(dots [][]bool) [][]bool {
	out := make([][]bool, len(dots))
	for r, row := range dots {
		out[r] = append([]bool(nil), row...)
	}
	return out
}

// ResizeDots keeps the region shared by the old and new grid; new cells are inactive.
func ResizeDots(dots [][]bool, dims Dimensions) [][]bool {
	out := NewDots(dims)
	for r := 0; r < len(dots) && r < dims.Rows; r++ {
		for c := 0; c < len(dots[r]) && c < dims.Columns; c++ {
			out[r][c] = dots[r][c]
		}
	}
	return out
}

// ToggleDot returns a copy of dots with (row, col) flipped.
func ToggleDot(dots [][]bool, row, col int) ([][]bool, error) {
	if row < 0 || row >= len(dots) || col < 0 || col >= len(dots[row]) {
		return nil, fmt.Errorf("dot (%d,%d) out of range", row, col)
	}
	out := CloneDots(dots)
	out[row][col] = !out[row][col]
	return out, nil
}

// CheckDots verifies that dots has exactly the given shape.
func CheckDots(dots [][]bool, dims Dimensions) error {
	if len(dots) != dims.Rows {
		return fmt.Errorf("expected %d rows, got %d", dims.Rows, len(dots))
	}
	for r, row := range dots {
		if len(row) != dims.Columns {
			return fmt.Errorf("row %d: expected %d columns, got %d", r, dims.Columns, len(row))
		}
	}
	return nil
}

// CountActive returns the number of active dots.
func CountActive(dots [][]bool) int {
	n := 0
	for _, row := range dots {
		for _, d := range row {
			if d {
				n++
			}
		}
	}
	return n
}

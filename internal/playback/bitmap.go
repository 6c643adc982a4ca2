package playback

import (
	"fmt"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
)

// PackBitmap encodes a grid for a flip-dot controller: one byte of rows, one
// byte of columns, then the dots in row-major order, eight per byte, most
// significant bit first. The last byte is zero padded.
func PackBitmap(dots [][]bool) []byte {
	rows := len(dots)
	cols := 0
	if rows > 0 {
		cols = len(dots[0])
	}

	out := make([]byte, 2+(rows*cols+7)/8)
	out[0] = byte(rows)
	out[1] = byte(cols)

	bit := 0
	for _, row := range dots {
		for _, on := range row {
			if on {
				out[2+bit/8] |= 0x80 >> uint(bit%8)
			}
			bit++
		}
	}
	return out
}

// UnpackBitmap reverses PackBitmap.
func UnpackBitmap(b []byte) ([][]bool, error) {
	if len(b) < 2 {
		return nil, fmt.Errorf("bitmap too short: %d bytes", len(b))
	}
	dims := flipdot.Dimensions{Rows: int(b[0]), Columns: int(b[1])}
	if want := 2 + (dims.Cells()+7)/8; len(b) != want {
		return nil, fmt.Errorf("bitmap for %dx%d needs %d bytes, got %d", dims.Rows, dims.Columns, want, len(b))
	}

	dots := flipdot.NewDots(dims)
	for i := 0; i < dims.Cells(); i++ {
		if b[2+i/8]&(0x80>>uint(i%8)) != 0 {
			dots[i/dims.Columns][i%dims.Columns] = true
		}
	}
	return dots, nil
}

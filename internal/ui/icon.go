package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const (
	iconSize = 22
	iconDots = 4
)

var (
	iconActive   = color.RGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff}
	iconInactive = color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff}
)

// iconPattern is the diagonal shown on the tray icon.
var iconPattern = [iconDots][iconDots]bool{
	{true, false, false, false},
	{false, true, false, false},
	{false, false, true, false},
	{false, false, false, true},
}

// iconBytes draws a small dot grid and returns it as PNG.
func iconBytes() []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	cell := iconSize / iconDots
	radius := cell/2 - 1
	offset := (iconSize - cell*iconDots) / 2

	for r := 0; r < iconDots; r++ {
		for c := 0; c < iconDots; c++ {
			fill := iconInactive
			if iconPattern[r][c] {
				fill = iconActive
			}
			cx := offset + c*cell + cell/2
			cy := offset + r*cell + cell/2
			for y := cy - radius; y <= cy+radius; y++ {
				for x := cx - radius; x <= cx+radius; x++ {
					dx, dy := x-cx, y-cy
					if dx*dx+dy*dy <= radius*radius {
						img.Set(x, y, fill)
					}
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

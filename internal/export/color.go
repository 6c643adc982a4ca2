package export

import (
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var hexColorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// ParseHexColor parses "#RRGGBB" (the '#' is optional, case-insensitive).
// Anything else is black.
func ParseHexColor(s string) colorful.Color {
	if !hexColorPattern.MatchString(s) {
		return colorful.Color{}
	}
	c, err := colorful.Hex("#" + strings.ToLower(strings.TrimPrefix(s, "#")))
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// lottieColor converts to the 0..1 RGB triple Lottie expects.
func lottieColor(c colorful.Color) []float64 {
	return []float64{c.R, c.G, c.B}
}

// Package flipdot holds the frame and settings model shared by the editor,
// the exporter and the players.
package flipdot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// Editor limits
	MinGridSize        = 4
	MaxGridSize        = 10
	MinFrameDurationMs = 100
	MaxFrameDurationMs = 1000

	DefaultRows            = 6
	DefaultColumns         = 6
	DefaultFrameDurationMs = 500

	DefaultBackground  = "#1a1a1a"
	DefaultActiveDot   = "#22c55e"
	DefaultInactiveDot = "#374151"
)

type Dimensions struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

func (d Dimensions) Cells() int {
	return d.Rows * d.Columns
}

type Colors struct {
	Background  string `json:"background"`
	ActiveDot   string `json:"active_dot"`
	InactiveDot string `json:"inactive_dot"`
}

func DefaultColors() Colors {
	return Colors{
		Background:  DefaultBackground,
		ActiveDot:   DefaultActiveDot,
		InactiveDot: DefaultInactiveDot,
	}
}

// Frame is one step of an animation. Dots[r][c] is true when the dot is
// flipped to its active side.
type Frame struct {
	ID        string    `json:"id"`
	Dots      [][]bool  `json:"dots"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFrame copies dots into a new frame with a fresh id.
func NewFrame(dots [][]bool) Frame {
	return Frame{
		ID:        uuid.NewString(),
		Dots:      CloneDots(dots),
		CreatedAt: time.Now().UTC(),
	}
}

type Settings struct {
	Dimensions        Dimensions `json:"dimensions"`
	Colors            Colors     `json:"colors"`
	FrameDurationMs   int        `json:"frame_duration_ms"`
	IncludeBackground bool       `json:"include_background"`
}

func DefaultSettings() Settings {
	return Settings{
		Dimensions:        Dimensions{Rows: DefaultRows, Columns: DefaultColumns},
		Colors:            DefaultColors(),
		FrameDurationMs:   DefaultFrameDurationMs,
		IncludeBackground: true,
	}
}

// FrameDuration returns the display time of a single frame.
func (s Settings) FrameDuration() time.Duration {
	return time.Duration(s.FrameDurationMs) * time.Millisecond
}

// SettingsError reports a setting outside the editor limits.
type SettingsError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, e.Min, e.Max, e.Value)
}

// Validate checks the editor limits. Colors are not checked; the exporter
// degrades malformed colors to black.
func (s Settings) Validate() error {
	if err := checkRange("rows", s.Dimensions.Rows, MinGridSize, MaxGridSize); err != nil {
		return err
	}
	if err := checkRange("columns", s.Dimensions.Columns, MinGridSize, MaxGridSize); err != nil {
		return err
	}
	return checkRange("frame_duration_ms", s.FrameDurationMs, MinFrameDurationMs, MaxFrameDurationMs)
}

func checkRange(field string, v, min, max int) error {
	if v < min || v > max {
		return &SettingsError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}

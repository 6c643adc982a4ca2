// Package projectfile reads and writes flip-dot projects as YAML.
//
// A project file looks like:
//
//	name: wave
//	rows: 4
//	columns: 4
//	frame_duration_ms: 250
//	colors:
//	  active_dot: "#22c55e"
//	frames:
//	  - ["#...", ".#..", "..#.", "...#"]
//	  - ["...#", "..#.", ".#..", "#..."]
//
// Omitted settings take the editor defaults.
package projectfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
	"github.com/flipdot/flipdot-studio/internal/studio"
)

type Colors struct {
	Background  string `yaml:"background,omitempty"`
	ActiveDot   string `yaml:"active_dot,omitempty"`
	InactiveDot string `yaml:"inactive_dot,omitempty"`
}

type File struct {
	Name              string     `yaml:"name"`
	Rows              int        `yaml:"rows,omitempty"`
	Columns           int        `yaml:"columns,omitempty"`
	FrameDurationMs   int        `yaml:"frame_duration_ms,omitempty"`
	IncludeBackground *bool      `yaml:"include_background,omitempty"`
	Colors            Colors     `yaml:"colors,omitempty"`
	Frames            [][]string `yaml:"frames"`
}

// Load reads and validates the project file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pf, nil
}

// Decode reads one YAML project from r and validates it.
func Decode(r io.Reader) (*File, error) {
	var pf File
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if err := pf.Validate(); err != nil {
		return nil, err
	}
	return &pf, nil
}

// Save writes pf to path as YAML.
func Save(path string, pf *File) error {
	var buf bytes.Buffer
	if err := Encode(&buf, pf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func Encode(w io.Writer, pf *File) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(pf); err != nil {
		return err
	}
	return enc.Close()
}

// Settings returns the file's settings with defaults filled in.
func (pf *File) Settings() flipdot.Settings {
	s := flipdot.DefaultSettings()
	if pf.Rows != 0 {
		s.Dimensions.Rows = pf.Rows
	}
	if pf.Columns != 0 {
		s.Dimensions.Columns = pf.Columns
	}
	if pf.FrameDurationMs != 0 {
		s.FrameDurationMs = pf.FrameDurationMs
	}
	if pf.IncludeBackground != nil {
		s.IncludeBackground = *pf.IncludeBackground
	}
	if pf.Colors.Background != "" {
		s.Colors.Background = pf.Colors.Background
	}
	if pf.Colors.ActiveDot != "" {
		s.Colors.ActiveDot = pf.Colors.ActiveDot
	}
	if pf.Colors.InactiveDot != "" {
		s.Colors.InactiveDot = pf.Colors.InactiveDot
	}
	return s
}

// Grids decodes the ASCII frames.
func (pf *File) Grids() ([][][]bool, error) {
	grids := make([][][]bool, len(pf.Frames))
	for i, rows := range pf.Frames {
		dots, err := flipdot.ParseRows(rows)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		grids[i] = dots
	}
	return grids, nil
}

// ToFrames returns the decoded frames ready for export.
func (pf *File) ToFrames() ([]flipdot.Frame, error) {
	grids, err := pf.Grids()
	if err != nil {
		return nil, err
	}
	frames := make([]flipdot.Frame, len(grids))
	for i, g := range grids {
		frames[i] = flipdot.NewFrame(g)
	}
	return frames, nil
}

// Validate checks the settings limits and that every frame matches the grid.
func (pf *File) Validate() error {
	s := pf.Settings()
	if err := s.Validate(); err != nil {
		return err
	}
	if len(pf.Frames) == 0 {
		return fmt.Errorf("project has no frames")
	}

	grids, err := pf.Grids()
	if err != nil {
		return err
	}
	for i, g := range grids {
		if err := flipdot.CheckDots(g, s.Dimensions); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

// FromProject converts a stored project into its file form.
func FromProject(p *studio.Project) *File {
	s := p.Settings
	include := s.IncludeBackground
	pf := &File{
		Name:              p.Name,
		Rows:              s.Dimensions.Rows,
		Columns:           s.Dimensions.Columns,
		FrameDurationMs:   s.FrameDurationMs,
		IncludeBackground: &include,
		Colors: Colors{
			Background:  s.Colors.Background,
			ActiveDot:   s.Colors.ActiveDot,
			InactiveDot: s.Colors.InactiveDot,
		},
		Frames: make([][]string, len(p.Frames)),
	}
	for i, g := range p.FrameGrids() {
		pf.Frames[i] = flipdot.FormatRows(g)
	}
	return pf
}

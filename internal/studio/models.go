// Package studio stores flip-dot projects and implements the frame editing
// operations of the editor.
package studio

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
)

const DefaultProjectName = "Untitled Animation"

var (
	ErrNotFound   = errors.New("project not found")
	ErrLastFrame  = errors.New("cannot delete the last remaining frame")
	ErrFrameIndex = errors.New("frame index out of range")
	ErrDotIndex   = errors.New("dot position out of range")
)

type Project struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Settings  flipdot.Settings `json:"settings"`
	Frames    []flipdot.Frame  `json:"frames"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// FrameGrids returns the dot grids of every frame in playback order.
func (p *Project) FrameGrids() [][][]bool {
	grids := make([][][]bool, len(p.Frames))
	for i, f := range p.Frames {
		grids[i] = f.Dots
	}
	return grids
}

func (p *Project) checkFrame(index int) error {
	if index < 0 || index >= len(p.Frames) {
		return ErrFrameIndex
	}
	return nil
}

// ExportRecord remembers a Lottie file written for a project.
type ExportRecord struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	FrameCount int       `json:"frame_count"`
	Bytes      int64     `json:"bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewID() string {
	return uuid.NewString()
}

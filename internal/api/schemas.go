package api

import (
	"time"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
	"github.com/flipdot/flipdot-studio/internal/studio"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	Projects int    `json:"projects"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CreateProjectRequest creates a project. Frames are optional ASCII grids
// ('#' active, '.' inactive); without them the project starts with one empty frame.
type CreateProjectRequest struct {
	Name     string            `json:"name"`
	Settings *flipdot.Settings `json:"settings,omitempty"`
	Frames   [][]string        `json:"frames,omitempty"`
}

type RenameProjectRequest struct {
	Name string `json:"name"`
}

type AddFrameRequest struct {
	// After is the index to insert behind; -1 inserts at the front and nil appends.
	After *int `json:"after,omitempty"`
}

type MoveFrameRequest struct {
	Delta int `json:"delta"`
}

type FrameResponse struct {
	ID   string   `json:"id"`
	Dots [][]bool `json:"dots"`
	Rows []string `json:"rows"`
}

type ProjectResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Settings   flipdot.Settings `json:"settings"`
	FrameCount int              `json:"frame_count"`
	Frames     []FrameResponse  `json:"frames"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
}

type ProjectSummary struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Settings   flipdot.Settings `json:"settings"`
	FrameCount int              `json:"frame_count"`
	UpdatedAt  string           `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

// FrameOpResponse is returned by frame operations that produce a new index.
type FrameOpResponse struct {
	Index   int             `json:"index"`
	Project ProjectResponse `json:"project"`
}

type ExportRecordResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	FrameCount int    `json:"frame_count"`
	Bytes      int64  `json:"bytes"`
	CreatedAt  string `json:"created_at"`
}

type ExportsResponse struct {
	Exports []ExportRecordResponse `json:"exports"`
}

func ProjectToResponse(p *studio.Project) ProjectResponse {
	frames := make([]FrameResponse, len(p.Frames))
	for i, f := range p.Frames {
		frames[i] = FrameResponse{ID: f.ID, Dots: f.Dots, Rows: flipdot.FormatRows(f.Dots)}
	}
	return ProjectResponse{
		ID:         p.ID,
		Name:       p.Name,
		Settings:   p.Settings,
		FrameCount: len(p.Frames),
		Frames:     frames,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
}

func ProjectToSummary(p *studio.Project) ProjectSummary {
	return ProjectSummary{
		ID:         p.ID,
		Name:       p.Name,
		Settings:   p.Settings,
		FrameCount: len(p.Frames),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
}

func ExportToResponse(rec *studio.ExportRecord) ExportRecordResponse {
	return ExportRecordResponse{
		ID:         rec.ID,
		Filename:   rec.Filename,
		Path:       rec.Path,
		FrameCount: rec.FrameCount,
		Bytes:      rec.Bytes,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
}

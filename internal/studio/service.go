package studio

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
)

// ErrMoveDelta is returned when a frame is moved by anything but one step.
var ErrMoveDelta = errors.New("frames move one step at a time")

type StudioService interface {
	CreateProject(ctx context.Context, name string, settings *flipdot.Settings) (*Project, error)
	ImportProject(ctx context.Context, name string, settings flipdot.Settings, grids [][][]bool) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	CountProjects(ctx context.Context) (int, error)
	DeleteProject(ctx context.Context, id string) error
	RenameProject(ctx context.Context, id, name string) (*Project, error)
	UpdateSettings(ctx context.Context, id string, settings flipdot.Settings) (*Project, error)

	AddFrame(ctx context.Context, id string, after int) (*Project, int, error)
	DeleteFrame(ctx context.Context, id string, index int) (*Project, error)
	ClearFrame(ctx context.Context, id string, index int) (*Project, error)
	MoveFrame(ctx context.Context, id string, index, delta int) (*Project, int, error)
	ToggleDot(ctx context.Context, id string, index, row, col int) (*Project, error)
	DuplicateFrame(ctx context.Context, id string, index int) (*Project, int, error)

	RecordExport(ctx context.Context, rec *ExportRecord) error
	ListExports(ctx context.Context, projectID string) ([]*ExportRecord, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	// mu serializes read-modify-write cycles on projects.
	mu sync.Mutex
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateProject(ctx context.Context, name string, settings *flipdot.Settings) (*Project, error) {
	st := flipdot.DefaultSettings()
	if settings != nil {
		st = *settings
	}
	return s.ImportProject(ctx, name, st, [][][]bool{flipdot.NewDots(st.Dimensions)})
}

// ImportProject stores a project with the given frames. Every grid must match
// the settings' dimensions.
func (s *Service) ImportProject(ctx context.Context, name string, settings flipdot.Settings, grids [][][]bool) (*Project, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if len(grids) == 0 {
		grids = [][][]bool{flipdot.NewDots(settings.Dimensions)}
	}

	frames := make([]flipdot.Frame, len(grids))
	for i, g := range grids {
		if err := flipdot.CheckDots(g, settings.Dimensions); err != nil {
			return nil, err
		}
		frames[i] = flipdot.NewFrame(g)
	}

	now := time.Now().UTC()
	p := &Project{
		ID:        NewID(),
		Name:      projectName(name),
		Settings:  settings,
		Frames:    frames,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("project created", "project_id", p.ID, "frames", len(frames))
	}
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *Service) CountProjects(ctx context.Context) (int, error) {
	return s.repo.CountProjects(ctx)
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("project deleted", "project_id", id)
	}
	return nil
}

func (s *Service) RenameProject(ctx context.Context, id, name string) (*Project, error) {
	return s.mutate(ctx, id, func(p *Project) error {
		p.Name = projectName(name)
		return nil
	})
}

// UpdateSettings replaces the project settings. When the grid size changes
// every frame is resized, keeping the overlapping dots.
func (s *Service) UpdateSettings(ctx context.Context, id string, settings flipdot.Settings) (*Project, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(p *Project) error {
		if settings.Dimensions != p.Settings.Dimensions {
			for i := range p.Frames {
				p.Frames[i].Dots = flipdot.ResizeDots(p.Frames[i].Dots, settings.Dimensions)
			}
		}
		p.Settings = settings
		return nil
	})
}

// AddFrame inserts an empty frame after index after; -1 inserts at the front.
// It returns the index of the new frame.
func (s *Service) AddFrame(ctx context.Context, id string, after int) (*Project, int, error) {
	var at int
	p, err := s.mutate(ctx, id, func(p *Project) error {
		if after < -1 || after >= len(p.Frames) {
			return ErrFrameIndex
		}
		at = after + 1
		p.Frames = insertFrame(p.Frames, at, flipdot.NewFrame(flipdot.NewDots(p.Settings.Dimensions)))
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return p, at, nil
}

func (s *Service) DeleteFrame(ctx context.Context, id string, index int) (*Project, error) {
	return s.mutate(ctx, id, func(p *Project) error {
		if err := p.checkFrame(index); err != nil {
			return err
		}
		if len(p.Frames) == 1 {
			return ErrLastFrame
		}
		p.Frames = append(p.Frames[:index], p.Frames[index+1:]...)
		return nil
	})
}

func (s *Service) ClearFrame(ctx context.Context, id string, index int) (*Project, error) {
	return s.mutate(ctx, id, func(p *Project) error {
		if err := p.checkFrame(index); err != nil {
			return err
		}
		p.Frames[index].Dots = flipdot.NewDots(p.Settings.Dimensions)
		return nil
	})
}

// MoveFrame swaps the frame with its neighbour in direction delta. Moving
// past either end leaves the order unchanged. It returns the frame's new index.
func (s *Service) MoveFrame(ctx context.Context, id string, index, delta int) (*Project, int, error) {
	if delta != -1 && delta != 1 {
		return nil, 0, ErrMoveDelta
	}

	to := index
	p, err := s.mutate(ctx, id, func(p *Project) error {
		if err := p.checkFrame(index); err != nil {
			return err
		}
		target := index + delta
		if target < 0 || target >= len(p.Frames) {
			return nil
		}
		p.Frames[index], p.Frames[target] = p.Frames[target], p.Frames[index]
		to = target
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return p, to, nil
}

func (s *Service) ToggleDot(ctx context.Context, id string, index, row, col int) (*Project, error) {
	return s.mutate(ctx, id, func(p *Project) error {
		if err := p.checkFrame(index); err != nil {
			return err
		}
		dots, err := flipdot.ToggleDot(p.Frames[index].Dots, row, col)
		if err != nil {
			return ErrDotIndex
		}
		p.Frames[index].Dots = dots
		return nil
	})
}

// DuplicateFrame inserts a copy of the frame right after it and returns the
// copy's index.
func (s *Service) DuplicateFrame(ctx context.Context, id string, index int) (*Project, int, error) {
	p, err := s.mutate(ctx, id, func(p *Project) error {
		if err := p.checkFrame(index); err != nil {
			return err
		}
		p.Frames = insertFrame(p.Frames, index+1, flipdot.NewFrame(p.Frames[index].Dots))
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return p, index + 1, nil
}

func (s *Service) RecordExport(ctx context.Context, rec *ExportRecord) error {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.CreateExport(ctx, rec); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("export recorded", "project_id", rec.ProjectID, "path", rec.Path, "bytes", rec.Bytes)
	}
	return nil
}

func (s *Service) ListExports(ctx context.Context, projectID string) ([]*ExportRecord, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListExports(ctx, projectID)
}

func (s *Service) mutate(ctx context.Context, id string, fn func(p *Project) error) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	if err := fn(p); err != nil {
		return nil, err
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func insertFrame(frames []flipdot.Frame, at int, f flipdot.Frame) []flipdot.Frame {
	frames = append(frames, flipdot.Frame{})
	copy(frames[at+1:], frames[at:])
	frames[at] = f
	return frames
}

func projectName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultProjectName
	}
	return name
}

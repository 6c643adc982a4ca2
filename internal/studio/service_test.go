package studio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/flipdot/flipdot-studio/internal/db"
	"github.com/flipdot/flipdot-studio/internal/flipdot"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewService(NewRepository(database.Conn()), nil)
}

func createProject(t *testing.T, svc *Service) *Project {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), "wave", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	return p
}

func TestService_CreateProject(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	p := createProject(t, svc)
	if p.ID == "" {
		t.Error("project.ID is empty")
	}
	if len(p.Frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(p.Frames))
	}
	if flipdot.CountActive(p.Frames[0].Dots) != 0 {
		t.Error("new project frame should be empty")
	}

	got, err := svc.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.Name != "wave" || got.Settings != flipdot.DefaultSettings() {
		t.Errorf("GetProject() = %+v", got)
	}
	if len(got.Frames) != 1 || got.Frames[0].ID != p.Frames[0].ID {
		t.Errorf("stored frames = %+v", got.Frames)
	}
}

func TestService_CreateProject_DefaultName(t *testing.T) {
	svc := setupTestService(t)

	p, err := svc.CreateProject(context.Background(), "   ", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if p.Name != DefaultProjectName {
		t.Errorf("Name = %q, want %q", p.Name, DefaultProjectName)
	}
}

func TestService_CreateProject_InvalidSettings(t *testing.T) {
	svc := setupTestService(t)

	settings := flipdot.DefaultSettings()
	settings.Dimensions.Rows = 11

	_, err := svc.CreateProject(context.Background(), "big", &settings)
	var serr *flipdot.SettingsError
	if !errors.As(err, &serr) || serr.Field != "rows" {
		t.Fatalf("CreateProject() error = %v, want rows SettingsError", err)
	}
}

func TestService_GetProject_NotFound(t *testing.T) {
	svc := setupTestService(t)

	if _, err := svc.GetProject(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProject() error = %v, want ErrNotFound", err)
	}
}

func TestService_AddFrame(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)
	first := p.Frames[0].ID

	p, at, err := svc.AddFrame(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("AddFrame() error = %v", err)
	}
	if at != 1 || len(p.Frames) != 2 || p.Frames[0].ID != first {
		t.Fatalf("AddFrame(after=0) at=%d frames=%d", at, len(p.Frames))
	}

	p, at, err = svc.AddFrame(ctx, p.ID, -1)
	if err != nil {
		t.Fatalf("AddFrame() error = %v", err)
	}
	if at != 0 || len(p.Frames) != 3 || p.Frames[1].ID != first {
		t.Fatalf("AddFrame(after=-1) at=%d, first frame now at wrong position", at)
	}

	if _, _, err := svc.AddFrame(ctx, p.ID, 3); !errors.Is(err, ErrFrameIndex) {
		t.Errorf("AddFrame(after=3) error = %v, want ErrFrameIndex", err)
	}
}

func TestService_DeleteFrame(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	if _, err := svc.DeleteFrame(ctx, p.ID, 0); !errors.Is(err, ErrLastFrame) {
		t.Fatalf("DeleteFrame() on last frame error = %v, want ErrLastFrame", err)
	}

	p, _, err := svc.AddFrame(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("AddFrame() error = %v", err)
	}
	keep := p.Frames[1].ID

	p, err = svc.DeleteFrame(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("DeleteFrame() error = %v", err)
	}
	if len(p.Frames) != 1 || p.Frames[0].ID != keep {
		t.Errorf("frames after delete = %+v", p.Frames)
	}

	if _, err := svc.DeleteFrame(ctx, p.ID, 5); !errors.Is(err, ErrFrameIndex) {
		t.Errorf("DeleteFrame(5) error = %v, want ErrFrameIndex", err)
	}
}

func TestService_ToggleAndClear(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	p, err := svc.ToggleDot(ctx, p.ID, 0, 2, 3)
	if err != nil {
		t.Fatalf("ToggleDot() error = %v", err)
	}
	if !p.Frames[0].Dots[2][3] {
		t.Fatal("dot (2,3) should be active")
	}

	stored, err := svc.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if !stored.Frames[0].Dots[2][3] {
		t.Fatal("toggle was not persisted")
	}

	if _, err := svc.ToggleDot(ctx, p.ID, 0, 6, 0); !errors.Is(err, ErrDotIndex) {
		t.Errorf("ToggleDot(6,0) error = %v, want ErrDotIndex", err)
	}

	p, err = svc.ClearFrame(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("ClearFrame() error = %v", err)
	}
	if flipdot.CountActive(p.Frames[0].Dots) != 0 {
		t.Error("frame should be empty after clear")
	}
}

func TestService_MoveFrame(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)
	p, _, _ = svc.AddFrame(ctx, p.ID, 0)
	a, b := p.Frames[0].ID, p.Frames[1].ID

	tests := []struct {
		name      string
		index     int
		delta     int
		wantIndex int
		wantOrder []string
	}{
		{"left edge is a no-op", 0, -1, 0, []string{a, b}},
		{"forward swaps", 0, 1, 1, []string{b, a}},
		{"right edge is a no-op", 1, 1, 1, []string{b, a}},
		{"backward swaps", 1, -1, 0, []string{a, b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, to, err := svc.MoveFrame(ctx, p.ID, tt.index, tt.delta)
			if err != nil {
				t.Fatalf("MoveFrame() error = %v", err)
			}
			if to != tt.wantIndex {
				t.Errorf("MoveFrame() index = %d, want %d", to, tt.wantIndex)
			}
			for i, id := range tt.wantOrder {
				if got.Frames[i].ID != id {
					t.Errorf("frame %d = %s, want %s", i, got.Frames[i].ID, id)
				}
			}
		})
	}

	if _, _, err := svc.MoveFrame(ctx, p.ID, 0, 2); !errors.Is(err, ErrMoveDelta) {
		t.Errorf("MoveFrame(delta=2) error = %v, want ErrMoveDelta", err)
	}
}

func TestService_DuplicateFrame(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)
	p, _ = svc.ToggleDot(ctx, p.ID, 0, 0, 0)

	p, at, err := svc.DuplicateFrame(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("DuplicateFrame() error = %v", err)
	}
	if at != 1 || len(p.Frames) != 2 {
		t.Fatalf("DuplicateFrame() at=%d frames=%d", at, len(p.Frames))
	}
	if p.Frames[1].ID == p.Frames[0].ID {
		t.Error("duplicate must get its own id")
	}
	if !p.Frames[1].Dots[0][0] {
		t.Error("duplicate should copy dots")
	}

	p, _ = svc.ToggleDot(ctx, p.ID, 1, 0, 0)
	if !p.Frames[0].Dots[0][0] {
		t.Error("editing the duplicate changed the original")
	}
}

func TestService_UpdateSettings_ResizesFrames(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)
	p, _ = svc.ToggleDot(ctx, p.ID, 0, 1, 1)
	p, _ = svc.ToggleDot(ctx, p.ID, 0, 5, 5)

	settings := p.Settings
	settings.Dimensions = flipdot.Dimensions{Rows: 4, Columns: 8}
	settings.FrameDurationMs = 250

	p, err := svc.UpdateSettings(ctx, p.ID, settings)
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if err := flipdot.CheckDots(p.Frames[0].Dots, settings.Dimensions); err != nil {
		t.Fatalf("frame not resized: %v", err)
	}
	if !p.Frames[0].Dots[1][1] || flipdot.CountActive(p.Frames[0].Dots) != 1 {
		t.Error("resize should keep the overlapping dots only")
	}

	settings.FrameDurationMs = 50
	if _, err := svc.UpdateSettings(ctx, p.ID, settings); err == nil {
		t.Error("UpdateSettings() should reject a 50ms frame duration")
	}
}

func TestService_RenameAndDelete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	p, err := svc.RenameProject(ctx, p.ID, "ripple")
	if err != nil {
		t.Fatalf("RenameProject() error = %v", err)
	}
	if p.Name != "ripple" {
		t.Errorf("Name = %q, want ripple", p.Name)
	}

	if err := svc.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if err := svc.DeleteProject(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteProject() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.RenameProject(ctx, p.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RenameProject() on deleted project error = %v, want ErrNotFound", err)
	}
}

func TestService_ImportProject_RejectsMismatchedFrames(t *testing.T) {
	svc := setupTestService(t)

	settings := flipdot.DefaultSettings()
	grids := [][][]bool{flipdot.NewDots(flipdot.Dimensions{Rows: 4, Columns: 4})}

	if _, err := svc.ImportProject(context.Background(), "bad", settings, grids); err == nil {
		t.Fatal("ImportProject() should reject frames that do not match the grid")
	}
}

func TestService_Exports(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	rec := &ExportRecord{ProjectID: p.ID, Filename: "wave.json", Path: "/tmp/wave.json", FrameCount: 1, Bytes: 120}
	if err := svc.RecordExport(ctx, rec); err != nil {
		t.Fatalf("RecordExport() error = %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Error("RecordExport() should fill id and timestamp")
	}

	records, err := svc.ListExports(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListExports() error = %v", err)
	}
	if len(records) != 1 || records[0].Filename != "wave.json" || records[0].Bytes != 120 {
		t.Errorf("ListExports() = %+v", records)
	}

	if _, err := svc.ListExports(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListExports(missing) error = %v, want ErrNotFound", err)
	}
}

func TestService_ListProjects(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	createProject(t, svc)
	createProject(t, svc)

	projects, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("ListProjects() = %d projects, want 2", len(projects))
	}
	for _, p := range projects {
		if len(p.Frames) != 1 {
			t.Errorf("project %s has %d frames, want 1", p.ID, len(p.Frames))
		}
	}

	count, err := svc.CountProjects(ctx)
	if err != nil || count != 2 {
		t.Errorf("CountProjects() = %d, %v", count, err)
	}
}

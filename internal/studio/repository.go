package studio

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
)

type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id string) error
	CountProjects(ctx context.Context) (int, error)

	CreateExport(ctx context.Context, rec *ExportRecord) error
	ListExports(ctx context.Context, projectID string) ([]*ExportRecord, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const projectColumns = `id, name, grid_rows, grid_columns, frame_duration_ms, include_background,
	background_color, active_dot_color, inactive_dot_color, created_at, updated_at`

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s := p.Settings
	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, s.Dimensions.Rows, s.Dimensions.Columns, s.FrameDurationMs, boolToInt(s.IncludeBackground),
		s.Colors.Background, s.Colors.ActiveDot, s.Colors.InactiveDot,
		p.CreatedAt.Format(time.RFC3339Nano), p.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	if err := insertFrames(ctx, tx, p.ID, p.Frames); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Frames, err = r.listFrames(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// The pool holds a single connection, so frames are loaded after the cursor closes.
	rows.Close()

	for _, p := range projects {
		if p.Frames, err = r.listFrames(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// UpdateProject rewrites the project row and replaces its frames.
func (r *SQLiteRepository) UpdateProject(ctx context.Context, p *Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s := p.Settings
	res, err := tx.ExecContext(ctx, `
		UPDATE projects SET name = ?, grid_rows = ?, grid_columns = ?, frame_duration_ms = ?, include_background = ?,
			background_color = ?, active_dot_color = ?, inactive_dot_color = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, s.Dimensions.Rows, s.Dimensions.Columns, s.FrameDurationMs, boolToInt(s.IncludeBackground),
		s.Colors.Background, s.Colors.ActiveDot, s.Colors.InactiveDot,
		p.UpdatedAt.Format(time.RFC3339Nano), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM frames WHERE project_id = ?", p.ID); err != nil {
		return err
	}
	if err := insertFrames(ctx, tx, p.ID, p.Frames); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CountProjects(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) CreateExport(ctx context.Context, rec *ExportRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exports (id, project_id, filename, path, frame_count, bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ProjectID, rec.Filename, rec.Path, rec.FrameCount, rec.Bytes, rec.CreatedAt.Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteRepository) ListExports(ctx context.Context, projectID string) ([]*ExportRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, filename, path, frame_count, bytes, created_at
		FROM exports WHERE project_id = ? ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Filename, &rec.Path, &rec.FrameCount, &rec.Bytes, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *SQLiteRepository) listFrames(ctx context.Context, projectID string) ([]flipdot.Frame, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dots, created_at FROM frames WHERE project_id = ? ORDER BY position
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []flipdot.Frame
	for rows.Next() {
		var f flipdot.Frame
		var dots, createdAt string
		if err := rows.Scan(&f.ID, &dots, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(dots), &f.Dots); err != nil {
			return nil, fmt.Errorf("decode frame %s: %w", f.ID, err)
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	var includeBackground int
	var createdAt, updatedAt string
	s := &p.Settings

	err := row.Scan(&p.ID, &p.Name, &s.Dimensions.Rows, &s.Dimensions.Columns, &s.FrameDurationMs, &includeBackground,
		&s.Colors.Background, &s.Colors.ActiveDot, &s.Colors.InactiveDot, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s.IncludeBackground = includeBackground == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &p, nil
}

func insertFrames(ctx context.Context, tx *sql.Tx, projectID string, frames []flipdot.Frame) error {
	for i, f := range frames {
		dots, err := json.Marshal(f.Dots)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO frames (id, project_id, position, dots, created_at) VALUES (?, ?, ?, ?, ?)
		`, f.ID, projectID, i, string(dots), f.CreatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert frame %d: %w", i, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

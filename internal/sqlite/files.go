// File path: internal/sqlite/files.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nicodishanthj/inkspace/internal/common/telemetry"
)

// FileSpec carries the metadata of an uploaded file. The binary payload is
// written by the asset store before this record is persisted.
type FileSpec struct {
	WorkspaceID  string
	Filename     string
	OriginalName string
	FilePath     string
	FileSize     int64
	MimeType     string
	FileHash     string
}

// ListFiles returns all files of a workspace ordered by upload time.
func (s *Store) ListFiles(ctx context.Context, workspaceID string) ([]File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := []File{}
	if err := s.db.SelectContext(ctx, &files,
		`SELECT * FROM files WHERE workspace_id = ? ORDER BY created_at, id`, workspaceID); err != nil {
		return nil, fmt.Errorf("select files: %w", err)
	}
	return files, nil
}

// GetFile retrieves file metadata by id.
func (s *Store) GetFile(ctx context.Context, id string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getFile(ctx, s.db, id)
}

func (s *Store) getFile(ctx context.Context, q sqlx.QueryerContext, id string) (*File, error) {
	var file File
	if err := sqlx.GetContext(ctx, q, &file, `SELECT * FROM files WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select file: %w", err)
	}
	return &file, nil
}

// CreateFile persists uploaded file metadata and returns the stored record.
func (s *Store) CreateFile(ctx context.Context, spec FileSpec) (*File, error) {
	if strings.TrimSpace(spec.WorkspaceID) == "" {
		return nil, validationf("workspace_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getWorkspace(ctx, s.db, spec.WorkspaceID); err != nil {
		return nil, err
	}
	id := newID()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, workspace_id, filename, original_name, file_path, file_size, mime_type, file_hash, ai_analysis, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
		id, spec.WorkspaceID, spec.Filename, spec.OriginalName, spec.FilePath,
		spec.FileSize, spec.MimeType, spec.FileHash, now()); err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	telemetry.RecordMutation()
	return s.getFile(ctx, s.db, id)
}

// SetFileAnalysis stores gateway-produced analysis text on the file row.
func (s *Store) SetFileAnalysis(ctx context.Context, id, analysis string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `UPDATE files SET ai_analysis = ? WHERE id = ?`, analysis, id)
	if err != nil {
		return nil, fmt.Errorf("update file analysis: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return s.getFile(ctx, s.db, id)
}

// DeleteFile removes a file metadata row and returns it so the caller can
// drop the backing blob.
func (s *Store) DeleteFile(ctx context.Context, id string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.getFile(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete file: %w", err)
	}
	telemetry.RecordMutation()
	return file, nil
}

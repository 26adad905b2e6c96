// File path: internal/sqlite/workspaces.go
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

// WorkspaceSpec carries caller-supplied workspace fields.
type WorkspaceSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ListWorkspaces returns all workspaces ordered by creation time.
func (s *Store) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	workspaces := []Workspace{}
	if err := s.db.SelectContext(ctx, &workspaces, `SELECT * FROM workspaces ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("select workspaces: %w", err)
	}
	return workspaces, nil
}

// GetWorkspace retrieves a single workspace by id.
func (s *Store) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getWorkspace(ctx, s.db, id)
}

func (s *Store) getWorkspace(ctx context.Context, q sqlx.QueryerContext, id string) (*Workspace, error) {
	var ws Workspace
	if err := sqlx.GetContext(ctx, q, &ws, `SELECT * FROM workspaces WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select workspace: %w", err)
	}
	return &ws, nil
}

// CreateWorkspace persists a new workspace and returns the stored record.
func (s *Store) CreateWorkspace(ctx context.Context, spec WorkspaceSpec) (*Workspace, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, validationf("workspace name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	icon := spec.Icon
	if icon == "" {
		icon = "🗂️"
	}
	id := newID()
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, description, icon, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?)`,
		id, spec.Name, spec.Description, icon, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert workspace: %w", err)
	}
	telemetry.RecordMutation()
	return s.getWorkspace(ctx, s.db, id)
}

// UpdateWorkspace replaces the mutable workspace fields.
func (s *Store) UpdateWorkspace(ctx context.Context, id string, spec WorkspaceSpec) (*Workspace, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, validationf("workspace name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx,
		`UPDATE workspaces SET name = ?, description = ?, icon = ?, updated_at = ? WHERE id = ?`,
		spec.Name, spec.Description, spec.Icon, now(), id)
	if err != nil {
		return nil, fmt.Errorf("update workspace: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return s.getWorkspace(ctx, s.db, id)
}

// DeleteWorkspace removes a workspace and everything it owns in dependency
// order inside one transaction.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getWorkspace(ctx, s.db, id); err != nil {
		return err
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		statements := []string{
			`DELETE FROM database_records WHERE database_id IN (SELECT id FROM databases WHERE workspace_id = ?)`,
			`DELETE FROM databases WHERE workspace_id = ?`,
			// Comments go before blocks so block-attached comments can
			// still be resolved through the blocks table.
			`DELETE FROM comments WHERE page_id IN (SELECT id FROM pages WHERE workspace_id = ?)
                         OR block_id IN (SELECT id FROM blocks WHERE page_id IN (SELECT id FROM pages WHERE workspace_id = ?))`,
			`DELETE FROM blocks WHERE page_id IN (SELECT id FROM pages WHERE workspace_id = ?)`,
			`DELETE FROM pages WHERE workspace_id = ?`,
			`DELETE FROM files WHERE workspace_id = ?`,
			`DELETE FROM workspaces WHERE id = ?`,
		}
		for _, stmt := range statements {
			args := []interface{}{id}
			if strings.Count(stmt, "?") == 2 {
				args = append(args, id)
			}
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("cascade delete workspace: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	telemetry.RecordMutation()
	return nil
}

// DuplicateWorkspace deep-copies a workspace with fresh identifiers,
// remapping page and block parent links, inside one transaction.
func (s *Store) DuplicateWorkspace(ctx context.Context, id string) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, err := s.getWorkspace(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	newWorkspaceID := newID()
	ts := now()
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workspaces (id, name, description, icon, created_at, updated_at)
                         VALUES (?, ?, ?, ?, ?, ?)`,
			newWorkspaceID, source.Name+" (Copy)", source.Description, source.Icon, ts, ts); err != nil {
			return fmt.Errorf("copy workspace: %w", err)
		}

		pages := []Page{}
		if err := tx.SelectContext(ctx, &pages, `SELECT * FROM pages WHERE workspace_id = ? ORDER BY created_at, id`, id); err != nil {
			return fmt.Errorf("select pages: %w", err)
		}
		pageIDs := make(map[string]string, len(pages))
		for _, page := range pages {
			pageIDs[page.ID] = newID()
		}
		for _, page := range pages {
			var parent *string
			if page.ParentID != nil {
				if mapped, ok := pageIDs[*page.ParentID]; ok {
					parent = &mapped
				}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO pages (id, workspace_id, parent_id, title, icon, cover_url, content, page_type,
                                     properties, is_template, is_archived, created_at, updated_at)
                                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				pageIDs[page.ID], newWorkspaceID, parent, page.Title, page.Icon, page.CoverURL,
				page.Content, page.PageType, page.Properties, page.IsTemplate, page.IsArchived, ts, ts); err != nil {
				return fmt.Errorf("copy page: %w", err)
			}
		}

		blocks := []Block{}
		if err := tx.SelectContext(ctx, &blocks,
			`SELECT * FROM blocks WHERE page_id IN (SELECT id FROM pages WHERE workspace_id = ?) ORDER BY created_at, id`, id); err != nil {
			return fmt.Errorf("select blocks: %w", err)
		}
		blockIDs := make(map[string]string, len(blocks))
		for _, block := range blocks {
			blockIDs[block.ID] = newID()
		}
		for _, block := range blocks {
			var parent *string
			if block.ParentID != nil {
				if mapped, ok := blockIDs[*block.ParentID]; ok {
					parent = &mapped
				}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO blocks (id, page_id, parent_id, type, content, position, created_at, updated_at)
                                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				blockIDs[block.ID], pageIDs[block.PageID], parent, block.Type, block.Content, block.Position, ts, ts); err != nil {
				return fmt.Errorf("copy block: %w", err)
			}
		}

		databases := []Database{}
		if err := tx.SelectContext(ctx, &databases, `SELECT * FROM databases WHERE workspace_id = ? ORDER BY created_at, id`, id); err != nil {
			return fmt.Errorf("select databases: %w", err)
		}
		for _, database := range databases {
			newDatabaseID := newID()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO databases (id, workspace_id, name, description, icon, schema, view_config, created_at, updated_at)
                                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				newDatabaseID, newWorkspaceID, database.Name, database.Description, database.Icon,
				database.Schema, database.ViewConfig, ts, ts); err != nil {
				return fmt.Errorf("copy database: %w", err)
			}
			records := []DatabaseRecord{}
			if err := tx.SelectContext(ctx, &records, `SELECT * FROM database_records WHERE database_id = ? ORDER BY created_at, id`, database.ID); err != nil {
				return fmt.Errorf("select records: %w", err)
			}
			for _, record := range records {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO database_records (id, database_id, properties, created_at, updated_at)
                                         VALUES (?, ?, ?, ?, ?)`,
					newID(), newDatabaseID, record.Properties, ts, ts); err != nil {
					return fmt.Errorf("copy record: %w", err)
				}
			}
		}

		files := []File{}
		if err := tx.SelectContext(ctx, &files, `SELECT * FROM files WHERE workspace_id = ? ORDER BY created_at, id`, id); err != nil {
			return fmt.Errorf("select files: %w", err)
		}
		for _, file := range files {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO files (id, workspace_id, filename, original_name, file_path, file_size, mime_type, file_hash, ai_analysis, created_at)
                                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				newID(), newWorkspaceID, file.Filename, file.OriginalName, file.FilePath,
				file.FileSize, file.MimeType, file.FileHash, file.AIAnalysis, ts); err != nil {
				return fmt.Errorf("copy file: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	telemetry.RecordMutation()
	return s.getWorkspace(ctx, s.db, newWorkspaceID)
}

// WorkspaceExport bundles a workspace with everything it owns.
type WorkspaceExport struct {
	Workspace *Workspace       `json:"workspace"`
	Pages     []Page           `json:"pages"`
	Databases []DatabaseExport `json:"databases"`
	Files     []File           `json:"files"`
}

// DatabaseExport pairs a database with its records.
type DatabaseExport struct {
	Database Database         `json:"database"`
	Records  []DatabaseRecord `json:"records"`
}

// ExportWorkspace returns the full workspace contents for backup.
func (s *Store) ExportWorkspace(ctx context.Context, id string) (*WorkspaceExport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.getWorkspace(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	export := &WorkspaceExport{Workspace: ws, Pages: []Page{}, Databases: []DatabaseExport{}, Files: []File{}}
	if err := s.db.SelectContext(ctx, &export.Pages, `SELECT * FROM pages WHERE workspace_id = ? ORDER BY created_at, id`, id); err != nil {
		return nil, fmt.Errorf("select pages: %w", err)
	}
	databases := []Database{}
	if err := s.db.SelectContext(ctx, &databases, `SELECT * FROM databases WHERE workspace_id = ? ORDER BY created_at, id`, id); err != nil {
		return nil, fmt.Errorf("select databases: %w", err)
	}
	for _, database := range databases {
		records := []DatabaseRecord{}
		if err := s.db.SelectContext(ctx, &records, `SELECT * FROM database_records WHERE database_id = ? ORDER BY created_at, id`, database.ID); err != nil {
			return nil, fmt.Errorf("select records: %w", err)
		}
		export.Databases = append(export.Databases, DatabaseExport{Database: database, Records: records})
	}
	if err := s.db.SelectContext(ctx, &export.Files, `SELECT * FROM files WHERE workspace_id = ? ORDER BY created_at, id`, id); err != nil {
		return nil, fmt.Errorf("select files: %w", err)
	}
	return export, nil
}

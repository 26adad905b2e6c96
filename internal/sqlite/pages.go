// File path: internal/sqlite/pages.go
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

// PageSpec carries caller-supplied page fields.
type PageSpec struct {
	WorkspaceID string   `json:"workspace_id"`
	ParentID    *string  `json:"parent_id"`
	Title       string   `json:"title"`
	Icon        string   `json:"icon"`
	CoverURL    *string  `json:"cover_url"`
	Content     JSONList `json:"content"`
	PageType    string   `json:"page_type"`
	Properties  JSONMap  `json:"properties"`
	IsTemplate  bool     `json:"is_template"`
}

// ListPages returns the non-archived pages under the given parent, or the
// workspace roots when parentID is nil, ordered by creation time.
func (s *Store) ListPages(ctx context.Context, workspaceID string, parentID *string) ([]Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := []Page{}
	var err error
	if parentID == nil {
		err = s.db.SelectContext(ctx, &pages,
			`SELECT * FROM pages WHERE workspace_id = ? AND parent_id IS NULL AND is_archived = 0 ORDER BY created_at, id`,
			workspaceID)
	} else {
		err = s.db.SelectContext(ctx, &pages,
			`SELECT * FROM pages WHERE workspace_id = ? AND parent_id = ? AND is_archived = 0 ORDER BY created_at, id`,
			workspaceID, *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("select pages: %w", err)
	}
	return pages, nil
}

// GetPage retrieves a single page by id, archived or not.
func (s *Store) GetPage(ctx context.Context, id string) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getPage(ctx, s.db, id)
}

func (s *Store) getPage(ctx context.Context, q sqlx.QueryerContext, id string) (*Page, error) {
	var page Page
	if err := sqlx.GetContext(ctx, q, &page, `SELECT * FROM pages WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("page %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select page: %w", err)
	}
	return &page, nil
}

// CreatePage persists a new page and returns the stored record. A parent,
// when set, must exist and belong to the same workspace.
func (s *Store) CreatePage(ctx context.Context, spec PageSpec) (*Page, error) {
	if strings.TrimSpace(spec.WorkspaceID) == "" {
		return nil, validationf("workspace_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getWorkspace(ctx, s.db, spec.WorkspaceID); err != nil {
		return nil, err
	}
	if spec.ParentID != nil {
		parent, err := s.getPage(ctx, s.db, *spec.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.WorkspaceID != spec.WorkspaceID {
			return nil, validationf("parent page belongs to a different workspace")
		}
	}
	icon := spec.Icon
	if icon == "" {
		icon = "📄"
	}
	pageType := spec.PageType
	if pageType == "" {
		pageType = "page"
	}
	content := spec.Content
	if content == nil {
		content = JSONList{}
	}
	properties := spec.Properties
	if properties == nil {
		properties = JSONMap{}
	}
	id := newID()
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (id, workspace_id, parent_id, title, icon, cover_url, content, page_type,
                     properties, is_template, is_archived, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, spec.WorkspaceID, spec.ParentID, spec.Title, icon, spec.CoverURL,
		content, pageType, properties, spec.IsTemplate, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert page: %w", err)
	}
	telemetry.RecordMutation()
	return s.getPage(ctx, s.db, id)
}

// UpdatePage replaces the mutable page fields and bumps updated_at.
func (s *Store) UpdatePage(ctx context.Context, id string, spec PageSpec) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content := spec.Content
	if content == nil {
		content = JSONList{}
	}
	properties := spec.Properties
	if properties == nil {
		properties = JSONMap{}
	}
	pageType := spec.PageType
	if pageType == "" {
		pageType = "page"
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages SET title = ?, icon = ?, cover_url = ?, content = ?, page_type = ?, properties = ?, updated_at = ?
                 WHERE id = ?`,
		spec.Title, spec.Icon, spec.CoverURL, content, pageType, properties, now(), id)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("page %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return s.getPage(ctx, s.db, id)
}

// DeletePage archives a page, or with permanent set removes the page row
// together with its blocks and comments in one transaction.
func (s *Store) DeletePage(ctx context.Context, id string, permanent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getPage(ctx, s.db, id); err != nil {
		return err
	}
	if !permanent {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE pages SET is_archived = 1, updated_at = ? WHERE id = ?`, now(), id); err != nil {
			return fmt.Errorf("archive page: %w", err)
		}
		telemetry.RecordMutation()
		return nil
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM comments WHERE page_id = ? OR block_id IN (SELECT id FROM blocks WHERE page_id = ?)`, id, id); err != nil {
			return fmt.Errorf("delete page comments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE page_id = ?`, id); err != nil {
			return fmt.Errorf("delete page blocks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	telemetry.RecordMutation()
	return nil
}

// File path: internal/sqlite/blocks.go
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

// BlockSpec carries caller-supplied block fields. Position is an explicit
// sort key owned by the caller; the store never auto-increments it.
type BlockSpec struct {
	PageID   string  `json:"page_id"`
	ParentID *string `json:"parent_id"`
	Type     string  `json:"type"`
	Content  JSONMap `json:"content"`
	Position int     `json:"position"`
}

// ListBlocks returns all blocks of a page ordered by position, creation
// order breaking ties.
func (s *Store) ListBlocks(ctx context.Context, pageID string) ([]Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocks := []Block{}
	if err := s.db.SelectContext(ctx, &blocks,
		`SELECT * FROM blocks WHERE page_id = ? ORDER BY position, created_at, id`, pageID); err != nil {
		return nil, fmt.Errorf("select blocks: %w", err)
	}
	return blocks, nil
}

// GetBlock retrieves a single block by id.
func (s *Store) GetBlock(ctx context.Context, id string) (*Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getBlock(ctx, s.db, id)
}

func (s *Store) getBlock(ctx context.Context, q sqlx.QueryerContext, id string) (*Block, error) {
	var block Block
	if err := sqlx.GetContext(ctx, q, &block, `SELECT * FROM blocks WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("block %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select block: %w", err)
	}
	return &block, nil
}

// CreateBlock persists a new block under an existing page.
func (s *Store) CreateBlock(ctx context.Context, spec BlockSpec) (*Block, error) {
	if strings.TrimSpace(spec.PageID) == "" {
		return nil, validationf("page_id required")
	}
	if strings.TrimSpace(spec.Type) == "" {
		return nil, validationf("block type required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getPage(ctx, s.db, spec.PageID); err != nil {
		return nil, err
	}
	if spec.ParentID != nil {
		parent, err := s.getBlock(ctx, s.db, *spec.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PageID != spec.PageID {
			return nil, validationf("parent block belongs to a different page")
		}
	}
	content := spec.Content
	if content == nil {
		content = JSONMap{}
	}
	id := newID()
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blocks (id, page_id, parent_id, type, content, position, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, spec.PageID, spec.ParentID, spec.Type, content, spec.Position, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	telemetry.RecordMutation()
	return s.getBlock(ctx, s.db, id)
}

// UpdateBlock replaces the mutable block fields and bumps updated_at.
func (s *Store) UpdateBlock(ctx context.Context, id string, spec BlockSpec) (*Block, error) {
	if strings.TrimSpace(spec.Type) == "" {
		return nil, validationf("block type required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	content := spec.Content
	if content == nil {
		content = JSONMap{}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE blocks SET type = ?, content = ?, position = ?, updated_at = ? WHERE id = ?`,
		spec.Type, content, spec.Position, now(), id)
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("block %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return s.getBlock(ctx, s.db, id)
}

// DeleteBlock hard-deletes a block; blocks have no archival state.
func (s *Store) DeleteBlock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("block %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return nil
}

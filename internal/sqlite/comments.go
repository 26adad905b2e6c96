// File path: internal/sqlite/comments.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nicodishanthj/inkspace/internal/common/telemetry"
)

// CommentSpec carries caller-supplied comment fields. Exactly one of PageID
// and BlockID should be set.
type CommentSpec struct {
	PageID  *string `json:"page_id"`
	BlockID *string `json:"block_id"`
	Content string  `json:"content"`
	Author  string  `json:"author"`
}

// ListComments returns comments attached to a page or a block, oldest first.
func (s *Store) ListComments(ctx context.Context, pageID, blockID string) ([]Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []Comment{}
	var err error
	switch {
	case pageID != "":
		err = s.db.SelectContext(ctx, &comments,
			`SELECT * FROM comments WHERE page_id = ? ORDER BY created_at, id`, pageID)
	case blockID != "":
		err = s.db.SelectContext(ctx, &comments,
			`SELECT * FROM comments WHERE block_id = ? ORDER BY created_at, id`, blockID)
	default:
		return nil, validationf("page_id or block_id required")
	}
	if err != nil {
		return nil, fmt.Errorf("select comments: %w", err)
	}
	return comments, nil
}

// CreateComment persists a new comment.
func (s *Store) CreateComment(ctx context.Context, spec CommentSpec) (*Comment, error) {
	if spec.PageID == nil && spec.BlockID == nil {
		return nil, validationf("page_id or block_id required")
	}
	if strings.TrimSpace(spec.Content) == "" {
		return nil, validationf("comment content required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newID()
	ts := now()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, page_id, block_id, content, author, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, spec.PageID, spec.BlockID, spec.Content, spec.Author, ts, ts); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	telemetry.RecordMutation()
	return s.getComment(ctx, id)
}

func (s *Store) getComment(ctx context.Context, id string) (*Comment, error) {
	var comment Comment
	if err := s.db.GetContext(ctx, &comment, `SELECT * FROM comments WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select comment: %w", err)
	}
	return &comment, nil
}

// UpdateComment replaces the comment text and bumps updated_at.
func (s *Store) UpdateComment(ctx context.Context, id, content string) (*Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationf("comment content required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`, content, now(), id)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return s.getComment(ctx, id)
}

// DeleteComment removes a comment by id.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return nil
}

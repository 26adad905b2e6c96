// File path: internal/sqlite/templates.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nicodishanthj/inkspace/internal/common/telemetry"
)

// TemplateSpec carries caller-supplied template fields.
type TemplateSpec struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	TemplateData JSONMap `json:"template_data"`
}

// ListTemplates returns all templates ordered by creation time.
func (s *Store) ListTemplates(ctx context.Context) ([]Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	templates := []Template{}
	if err := s.db.SelectContext(ctx, &templates, `SELECT * FROM templates ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("select templates: %w", err)
	}
	return templates, nil
}

// GetTemplate retrieves a single template by id.
func (s *Store) GetTemplate(ctx context.Context, id string) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getTemplate(ctx, s.db, id)
}

func (s *Store) getTemplate(ctx context.Context, q sqlx.QueryerContext, id string) (*Template, error) {
	var template Template
	if err := sqlx.GetContext(ctx, q, &template, `SELECT * FROM templates WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select template: %w", err)
	}
	return &template, nil
}

// CreateTemplate persists a reusable content blueprint.
func (s *Store) CreateTemplate(ctx context.Context, spec TemplateSpec) (*Template, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, validationf("template name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	category := spec.Category
	if category == "" {
		category = "general"
	}
	data := spec.TemplateData
	if data == nil {
		data = JSONMap{}
	}
	id := newID()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, description, category, template_data, created_at)
                 VALUES (?, ?, ?, ?, ?, ?)`,
		id, spec.Name, spec.Description, category, data, now()); err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	telemetry.RecordMutation()
	return s.getTemplate(ctx, s.db, id)
}

// DeleteTemplate removes a template blueprint; pages already materialized
// from it are untouched.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return nil
}

// ApplyResult reports what a template apply created.
type ApplyResult struct {
	Page   *Page   `json:"page"`
	Blocks []Block `json:"blocks"`
}

// ApplyTemplate materializes a template into a new page plus its declared
// blocks under the target workspace, inside one transaction.
func (s *Store) ApplyTemplate(ctx context.Context, templateID, workspaceID, title string) (*ApplyResult, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, validationf("workspace_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	template, err := s.getTemplate(ctx, s.db, templateID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getWorkspace(ctx, s.db, workspaceID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("%s - %s", template.Name, time.Now().UTC().Format("2006-01-02"))
	}

	data := template.TemplateData
	icon := stringField(data, "icon", "📄")
	pageType := stringField(data, "page_type", "page")
	content := listField(data, "content")
	properties := mapField(data, "properties")

	pageID := newID()
	ts := now()
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pages (id, workspace_id, parent_id, title, icon, cover_url, content, page_type,
                             properties, is_template, is_archived, created_at, updated_at)
                         VALUES (?, ?, NULL, ?, ?, NULL, ?, ?, ?, 0, 0, ?, ?)`,
			pageID, workspaceID, title, icon, content, pageType, properties, ts, ts); err != nil {
			return fmt.Errorf("materialize page: %w", err)
		}
		for _, entry := range blockEntries(data) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO blocks (id, page_id, parent_id, type, content, position, created_at, updated_at)
                                 VALUES (?, ?, NULL, ?, ?, ?, ?, ?)`,
				newID(), pageID, entry.blockType, entry.content, entry.position, ts, ts); err != nil {
				return fmt.Errorf("materialize block: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	telemetry.RecordMutation()
	page, err := s.getPage(ctx, s.db, pageID)
	if err != nil {
		return nil, err
	}
	blocks := []Block{}
	if err := s.db.SelectContext(ctx, &blocks,
		`SELECT * FROM blocks WHERE page_id = ? ORDER BY position, created_at, id`, pageID); err != nil {
		return nil, fmt.Errorf("select materialized blocks: %w", err)
	}
	return &ApplyResult{Page: page, Blocks: blocks}, nil
}

type templateBlock struct {
	blockType string
	content   JSONMap
	position  int
}

func blockEntries(data JSONMap) []templateBlock {
	raw, ok := data["blocks"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]templateBlock, 0, len(raw))
	for i, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		block := templateBlock{blockType: "text", content: JSONMap{}, position: i}
		if t, ok := entry["type"].(string); ok && t != "" {
			block.blockType = t
		}
		if c, ok := entry["content"].(map[string]interface{}); ok {
			block.content = JSONMap(c)
		}
		if p, ok := entry["position"].(float64); ok {
			block.position = int(p)
		}
		out = append(out, block)
	}
	return out
}

func stringField(data JSONMap, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func listField(data JSONMap, key string) JSONList {
	if v, ok := data[key].([]interface{}); ok {
		return JSONList(v)
	}
	return JSONList{}
}

func mapField(data JSONMap, key string) JSONMap {
	if v, ok := data[key].(map[string]interface{}); ok {
		return JSONMap(v)
	}
	return JSONMap{}
}

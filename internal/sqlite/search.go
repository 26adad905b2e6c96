// File path: internal/sqlite/search.go
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/nicodishanthj/inkspace/internal/common/telemetry"
)

const searchLimit = 20

// SearchResults groups per-type matches for a workspace search.
type SearchResults struct {
	Pages     []Page     `json:"pages"`
	Databases []Database `json:"databases"`
	Files     []File     `json:"files"`
}

// Search runs a case-insensitive substring match over pages, databases and
// files of one workspace. types narrows the searched sets when non-empty;
// each result list is capped and ordered by last modification descending.
func (s *Store) Search(ctx context.Context, workspaceID, query string, types []string) (*SearchResults, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, validationf("workspace_id required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, validationf("query required")
	}
	wanted := map[string]bool{}
	for _, t := range types {
		if trimmed := strings.ToLower(strings.TrimSpace(t)); trimmed != "" {
			wanted[trimmed] = true
		}
	}
	all := len(wanted) == 0
	pattern := "%" + escapeLike(query) + "%"

	s.mu.Lock()
	defer s.mu.Unlock()
	telemetry.RecordSearch()
	results := &SearchResults{Pages: []Page{}, Databases: []Database{}, Files: []File{}}
	if all || wanted["pages"] {
		if err := s.db.SelectContext(ctx, &results.Pages,
			`SELECT * FROM pages WHERE workspace_id = ? AND is_archived = 0
                         AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')
                         ORDER BY updated_at DESC LIMIT ?`,
			workspaceID, pattern, pattern, searchLimit); err != nil {
			return nil, fmt.Errorf("search pages: %w", err)
		}
	}
	if all || wanted["databases"] {
		if err := s.db.SelectContext(ctx, &results.Databases,
			`SELECT * FROM databases WHERE workspace_id = ?
                         AND (name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')
                         ORDER BY updated_at DESC LIMIT ?`,
			workspaceID, pattern, pattern, searchLimit); err != nil {
			return nil, fmt.Errorf("search databases: %w", err)
		}
	}
	if all || wanted["files"] {
		if err := s.db.SelectContext(ctx, &results.Files,
			`SELECT * FROM files WHERE workspace_id = ?
                         AND (original_name LIKE ? ESCAPE '\' OR filename LIKE ? ESCAPE '\' OR COALESCE(ai_analysis, '') LIKE ? ESCAPE '\')
                         ORDER BY created_at DESC LIMIT ?`,
			workspaceID, pattern, pattern, pattern, searchLimit); err != nil {
			return nil, fmt.Errorf("search files: %w", err)
		}
	}
	return results, nil
}

func escapeLike(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(query)
}

// File path: internal/sqlite/types.go
package sqlite

import (
	"encoding/json"
	"time"
)

// Workspace is the root container owning pages, databases and files.
type Workspace struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Icon        string    `db:"icon" json:"icon"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Page is a titled document node. ParentID forms a tree over pages within
// one workspace; root pages have no parent.
type Page struct {
	ID          string    `db:"id" json:"id"`
	WorkspaceID string    `db:"workspace_id" json:"workspace_id"`
	ParentID    *string   `db:"parent_id" json:"parent_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Icon        string    `db:"icon" json:"icon"`
	CoverURL    *string   `db:"cover_url" json:"cover_url,omitempty"`
	Content     JSONList  `db:"content" json:"content"`
	PageType    string    `db:"page_type" json:"page_type"`
	Properties  JSONMap   `db:"properties" json:"properties"`
	IsTemplate  bool      `db:"is_template" json:"is_template"`
	IsArchived  bool      `db:"is_archived" json:"is_archived"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Block is a typed content unit nested within a page, ordered by an
// explicit position key the caller controls.
type Block struct {
	ID        string    `db:"id" json:"id"`
	PageID    string    `db:"page_id" json:"page_id"`
	ParentID  *string   `db:"parent_id" json:"parent_id,omitempty"`
	Type      string    `db:"type" json:"type"`
	Content   JSONMap   `db:"content" json:"content"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Database is a user-defined typed table of records. Schema maps field
// names to {type, options?} and stays advisory after creation.
type Database struct {
	ID          string    `db:"id" json:"id"`
	WorkspaceID string    `db:"workspace_id" json:"workspace_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Icon        string    `db:"icon" json:"icon"`
	Schema      JSONMap   `db:"schema" json:"schema"`
	ViewConfig  JSONMap   `db:"view_config" json:"view_config"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DatabaseRecord is a row in a user-defined database.
type DatabaseRecord struct {
	ID         string    `db:"id" json:"id"`
	DatabaseID string    `db:"database_id" json:"database_id"`
	Properties JSONMap   `db:"properties" json:"properties"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// File is uploaded asset metadata; the binary payload lives on disk at
// FilePath.
type File struct {
	ID           string    `db:"id" json:"id"`
	WorkspaceID  string    `db:"workspace_id" json:"workspace_id"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"original_name"`
	FilePath     string    `db:"file_path" json:"file_path"`
	FileSize     int64     `db:"file_size" json:"file_size"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	FileHash     string    `db:"file_hash" json:"file_hash"`
	AIAnalysis   *string   `db:"ai_analysis" json:"ai_analysis,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Comment is attached to a page or a block.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	PageID    *string   `db:"page_id" json:"page_id,omitempty"`
	BlockID   *string   `db:"block_id" json:"block_id,omitempty"`
	Content   string    `db:"content" json:"content"`
	Author    string    `db:"author" json:"author"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Template is a reusable blueprint for generating a page plus blocks.
type Template struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Category     string    `db:"category" json:"category"`
	TemplateData JSONMap   `db:"template_data" json:"template_data"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Event is a legacy flat calendar entry kept for backward compatibility.
type Event struct {
	ID        string    `db:"id" json:"id"`
	Date      string    `db:"date" json:"date"`
	EventText string    `db:"event_text" json:"text"`
	EventTime string    `db:"event_time" json:"time,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MarshalJSON always emits the time field, as null for untimed events.
// Sync and export clients key off the field's presence.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	out := struct {
		alias
		EventTime *string `json:"time"`
	}{alias: alias(e)}
	if e.EventTime != "" {
		out.EventTime = &e.EventTime
	}
	return json.Marshal(out)
}

// EventItem is the compact day-view shape the legacy clients consume.
type EventItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Time string `json:"time,omitempty"`
}

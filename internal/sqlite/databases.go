// File path: internal/sqlite/databases.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nicodishanthj/inkspace/internal/common/telemetry"
)

// DatabaseSpec carries caller-supplied database fields.
type DatabaseSpec struct {
	WorkspaceID string  `json:"workspace_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Schema      JSONMap `json:"schema"`
	ViewConfig  JSONMap `json:"view_config"`
}

// ListDatabases returns all databases of a workspace ordered by creation time.
func (s *Store) ListDatabases(ctx context.Context, workspaceID string) ([]Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	databases := []Database{}
	if err := s.db.SelectContext(ctx, &databases,
		`SELECT * FROM databases WHERE workspace_id = ? ORDER BY created_at, id`, workspaceID); err != nil {
		return nil, fmt.Errorf("select databases: %w", err)
	}
	return databases, nil
}

// GetDatabase retrieves a single database by id.
func (s *Store) GetDatabase(ctx context.Context, id string) (*Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getDatabase(ctx, s.db, id)
}

func (s *Store) getDatabase(ctx context.Context, q sqlx.QueryerContext, id string) (*Database, error) {
	var database Database
	if err := sqlx.GetContext(ctx, q, &database, `SELECT * FROM databases WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("database %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select database: %w", err)
	}
	return &database, nil
}

// CreateDatabase persists a new database with an explicit schema.
func (s *Store) CreateDatabase(ctx context.Context, spec DatabaseSpec) (*Database, error) {
	if strings.TrimSpace(spec.WorkspaceID) == "" {
		return nil, validationf("workspace_id required")
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, validationf("database name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getWorkspace(ctx, s.db, spec.WorkspaceID); err != nil {
		return nil, err
	}
	return s.createDatabase(ctx, spec)
}

func (s *Store) createDatabase(ctx context.Context, spec DatabaseSpec) (*Database, error) {
	icon := spec.Icon
	if icon == "" {
		icon = "📊"
	}
	schema := spec.Schema
	if schema == nil {
		schema = JSONMap{}
	}
	viewConfig := spec.ViewConfig
	if viewConfig == nil {
		viewConfig = JSONMap{}
	}
	id := newID()
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO databases (id, workspace_id, name, description, icon, schema, view_config, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, spec.WorkspaceID, spec.Name, spec.Description, icon, schema, viewConfig, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert database: %w", err)
	}
	telemetry.RecordMutation()
	return s.getDatabase(ctx, s.db, id)
}

// UpdateDatabase replaces the mutable database fields.
func (s *Store) UpdateDatabase(ctx context.Context, id string, spec DatabaseSpec) (*Database, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, validationf("database name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	schema := spec.Schema
	if schema == nil {
		schema = JSONMap{}
	}
	viewConfig := spec.ViewConfig
	if viewConfig == nil {
		viewConfig = JSONMap{}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE databases SET name = ?, description = ?, icon = ?, schema = ?, view_config = ?, updated_at = ?
                 WHERE id = ?`,
		spec.Name, spec.Description, spec.Icon, schema, viewConfig, now(), id)
	if err != nil {
		return nil, fmt.Errorf("update database: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("database %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return s.getDatabase(ctx, s.db, id)
}

// DeleteDatabase removes a database and its records in one transaction.
func (s *Store) DeleteDatabase(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getDatabase(ctx, s.db, id); err != nil {
		return err
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM database_records WHERE database_id = ?`, id); err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM databases WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete database: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	telemetry.RecordMutation()
	return nil
}

// ListRecords returns all records of a database ordered by creation time.
func (s *Store) ListRecords(ctx context.Context, databaseID string) ([]DatabaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getDatabase(ctx, s.db, databaseID); err != nil {
		return nil, err
	}
	records := []DatabaseRecord{}
	if err := s.db.SelectContext(ctx, &records,
		`SELECT * FROM database_records WHERE database_id = ? ORDER BY created_at, id`, databaseID); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	return records, nil
}

// CreateRecord appends a record to a database. Properties are accepted as
// given; the database schema is advisory and not enforced here.
func (s *Store) CreateRecord(ctx context.Context, databaseID string, properties JSONMap) (*DatabaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getDatabase(ctx, s.db, databaseID); err != nil {
		return nil, err
	}
	if properties == nil {
		properties = JSONMap{}
	}
	id := newID()
	ts := now()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO database_records (id, database_id, properties, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, databaseID, properties, ts, ts); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	telemetry.RecordMutation()
	return s.getRecord(ctx, id)
}

func (s *Store) getRecord(ctx context.Context, id string) (*DatabaseRecord, error) {
	var record DatabaseRecord
	if err := s.db.GetContext(ctx, &record, `SELECT * FROM database_records WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select record: %w", err)
	}
	return &record, nil
}

// UpdateRecord replaces a record's properties and bumps updated_at.
func (s *Store) UpdateRecord(ctx context.Context, id string, properties JSONMap) (*DatabaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if properties == nil {
		properties = JSONMap{}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE database_records SET properties = ?, updated_at = ? WHERE id = ?`, properties, now(), id)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return s.getRecord(ctx, id)
}

// DeleteRecord removes a single record by id.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM database_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	telemetry.RecordMutation()
	return nil
}

// ImportResult reports what a file import created.
type ImportResult struct {
	Database *Database `json:"database"`
	Imported int       `json:"imported"`
	Schema   JSONMap   `json:"schema"`
}

// ImportDatabase creates one database plus one record per parsed row inside
// a single transaction. The database name is the file stem.
func (s *Store) ImportDatabase(ctx context.Context, workspaceID, filename string, schema JSONMap, rows []JSONMap) (*ImportResult, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, validationf("workspace_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getWorkspace(ctx, s.db, workspaceID); err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	databaseID := newID()
	ts := now()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO databases (id, workspace_id, name, description, icon, schema, view_config, created_at, updated_at)
                         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			databaseID, workspaceID, stem, fmt.Sprintf("Imported from %s", filename), "📊",
			schema, JSONMap{}, ts, ts); err != nil {
			return fmt.Errorf("insert imported database: %w", err)
		}
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO database_records (id, database_id, properties, created_at, updated_at)
                                 VALUES (?, ?, ?, ?, ?)`,
				newID(), databaseID, row, ts, ts); err != nil {
				return fmt.Errorf("insert imported record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	telemetry.RecordMutation()
	telemetry.RecordImport(len(rows))
	database, err := s.getDatabase(ctx, s.db, databaseID)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Database: database, Imported: len(rows), Schema: schema}, nil
}

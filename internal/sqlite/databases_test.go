// File path: internal/sqlite/databases_test.go
package sqlite

import (
	"context"
	"math"
	"testing"
)

func TestDatabaseRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ws := createTestWorkspace(t, store, "WS")

	database, err := store.CreateDatabase(ctx, DatabaseSpec{
		WorkspaceID: ws.ID,
		Name:        "Tasks",
		Schema:      JSONMap{"title": map[string]interface{}{"type": "text"}},
	})
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	if database.Icon != "📊" {
		t.Fatalf("default icon not applied: %q", database.Icon)
	}

	record, err := store.CreateRecord(ctx, database.ID, JSONMap{"title": "write tests", "extra": "allowed"})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if record.Properties["extra"] != "allowed" {
		t.Fatalf("schema should not restrict record properties: %+v", record.Properties)
	}

	updated, err := store.UpdateRecord(ctx, record.ID, JSONMap{"title": "done"})
	if err != nil {
		t.Fatalf("update record: %v", err)
	}
	if updated.Properties["title"] != "done" {
		t.Fatalf("record not updated: %+v", updated.Properties)
	}

	if err := store.DeleteRecord(ctx, record.ID); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	records, err := store.ListRecords(ctx, database.ID)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("record survived delete: %+v", records)
	}
}

func TestListRecordsUnknownDatabase(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.ListRecords(context.Background(), "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteDatabaseRemovesRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ws := createTestWorkspace(t, store, "WS")
	database, err := store.CreateDatabase(ctx, DatabaseSpec{WorkspaceID: ws.ID, Name: "Tasks"})
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	if _, err := store.CreateRecord(ctx, database.ID, JSONMap{"a": "b"}); err != nil {
		t.Fatalf("create record: %v", err)
	}

	if err := store.DeleteDatabase(ctx, database.ID); err != nil {
		t.Fatalf("delete database: %v", err)
	}
	var count int
	if err := store.db.Get(&count, `SELECT COUNT(*) FROM database_records`); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 0 {
		t.Fatalf("records survived database delete: %d", count)
	}
}

func TestImportDatabase(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ws := createTestWorkspace(t, store, "WS")

	schema := JSONMap{"name": map[string]interface{}{"type": "text"}}
	rows := []JSONMap{{"name": "alpha"}, {"name": "beta"}}
	result, err := store.ImportDatabase(ctx, ws.ID, "contacts.csv", schema, rows)
	if err != nil {
		t.Fatalf("import database: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("imported = %d, want 2", result.Imported)
	}
	if result.Database.Name != "contacts" {
		t.Fatalf("database name = %q, want file stem", result.Database.Name)
	}
	if result.Database.Description != "Imported from contacts.csv" {
		t.Fatalf("unexpected description %q", result.Database.Description)
	}
	records, err := store.ListRecords(ctx, result.Database.ID)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
}

func TestImportDatabaseRollsBackOnRowFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ws := createTestWorkspace(t, store, "WS")

	// NaN is not representable in JSON, so persisting the second row fails
	// after the database row and the first record were already written.
	rows := []JSONMap{{"name": "alpha"}, {"name": math.NaN()}}
	if _, err := store.ImportDatabase(ctx, ws.ID, "broken.csv", JSONMap{}, rows); err == nil {
		t.Fatalf("expected import to fail on unencodable row")
	}

	for _, table := range []string{"databases", "database_records"} {
		var count int
		if err := store.db.Get(&count, `SELECT COUNT(*) FROM `+table); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("%d %s rows survived the rollback", count, table)
		}
	}
}

func TestImportDatabaseUnknownWorkspace(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ImportDatabase(context.Background(), "missing", "x.csv", JSONMap{}, []JSONMap{{"a": "b"}})
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

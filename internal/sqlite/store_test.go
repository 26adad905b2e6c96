// File path: internal/sqlite/store_test.go
package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenWithConfig(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestWorkspace(t *testing.T, store *Store, name string) *Workspace {
	t.Helper()
	ws, err := store.CreateWorkspace(context.Background(), WorkspaceSpec{Name: name})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	return ws
}

func TestOpenEnablesWALOutsideMigrationTx(t *testing.T) {
	store := newTestStore(t)
	var mode string
	if err := store.db.Get(&mode, `PRAGMA journal_mode`); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenSeedsDefaultWorkspace(t *testing.T) {
	store := newTestStore(t)
	workspaces, err := store.ListWorkspaces(context.Background())
	if err != nil {
		t.Fatalf("list workspaces: %v", err)
	}
	if len(workspaces) != 1 {
		t.Fatalf("expected 1 seeded workspace, got %d", len(workspaces))
	}
	if workspaces[0].Name != "My Workspace" {
		t.Fatalf("unexpected seeded workspace name %q", workspaces[0].Name)
	}
}

func TestCreateWorkspaceValidation(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.CreateWorkspace(context.Background(), WorkspaceSpec{Name: "  "}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateWorkspaceNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.UpdateWorkspace(context.Background(), "missing", WorkspaceSpec{Name: "x"})
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteWorkspaceCascades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ws := createTestWorkspace(t, store, "Doomed")

	page, err := store.CreatePage(ctx, PageSpec{WorkspaceID: ws.ID, Title: "Page"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	block, err := store.CreateBlock(ctx, BlockSpec{PageID: page.ID, Type: "text"})
	if err != nil {
		t.Fatalf("create block: %v", err)
	}
	if _, err := store.CreateComment(ctx, CommentSpec{PageID: &page.ID, Content: "page note"}); err != nil {
		t.Fatalf("create page comment: %v", err)
	}
	if _, err := store.CreateComment(ctx, CommentSpec{BlockID: &block.ID, Content: "block note"}); err != nil {
		t.Fatalf("create block comment: %v", err)
	}
	database, err := store.CreateDatabase(ctx, DatabaseSpec{WorkspaceID: ws.ID, Name: "Tasks"})
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	if _, err := store.CreateRecord(ctx, database.ID, JSONMap{"title": "task"}); err != nil {
		t.Fatalf("create record: %v", err)
	}
	if _, err := store.CreateFile(ctx, FileSpec{WorkspaceID: ws.ID, Filename: "a.txt", OriginalName: "a.txt", FilePath: "/tmp/a.txt"}); err != nil {
		t.Fatalf("create file: %v", err)
	}

	if err := store.DeleteWorkspace(ctx, ws.ID); err != nil {
		t.Fatalf("delete workspace: %v", err)
	}

	if _, err := store.GetWorkspace(ctx, ws.ID); !IsNotFound(err) {
		t.Fatalf("workspace should be gone, got %v", err)
	}
	if _, err := store.GetPage(ctx, page.ID); !IsNotFound(err) {
		t.Fatalf("page should be gone, got %v", err)
	}
	if _, err := store.GetBlock(ctx, block.ID); !IsNotFound(err) {
		t.Fatalf("block should be gone, got %v", err)
	}
	if _, err := store.GetDatabase(ctx, database.ID); !IsNotFound(err) {
		t.Fatalf("database should be gone, got %v", err)
	}
	for _, table := range []string{"comments", "database_records", "files"} {
		var count int
		if err := store.db.Get(&count, `SELECT COUNT(*) FROM `+table); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected no %s rows, got %d", table, count)
		}
	}
}

func TestDuplicateWorkspaceRemapsParents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ws := createTestWorkspace(t, store, "Original")

	root, err := store.CreatePage(ctx, PageSpec{WorkspaceID: ws.ID, Title: "Root"})
	if err != nil {
		t.Fatalf("create root page: %v", err)
	}
	child, err := store.CreatePage(ctx, PageSpec{WorkspaceID: ws.ID, ParentID: &root.ID, Title: "Child"})
	if err != nil {
		t.Fatalf("create child page: %v", err)
	}
	database, err := store.CreateDatabase(ctx, DatabaseSpec{WorkspaceID: ws.ID, Name: "Tasks"})
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	if _, err := store.CreateRecord(ctx, database.ID, JSONMap{"title": "one"}); err != nil {
		t.Fatalf("create record: %v", err)
	}

	dup, err := store.DuplicateWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("duplicate workspace: %v", err)
	}
	if dup.ID == ws.ID {
		t.Fatalf("duplicate reused the source id")
	}
	if dup.Name != "Original (Copy)" {
		t.Fatalf("unexpected copy name %q", dup.Name)
	}

	export, err := store.ExportWorkspace(ctx, dup.ID)
	if err != nil {
		t.Fatalf("export copy: %v", err)
	}
	if len(export.Pages) != 2 {
		t.Fatalf("expected 2 copied pages, got %d", len(export.Pages))
	}
	var copiedRoot, copiedChild *Page
	for i := range export.Pages {
		page := &export.Pages[i]
		if page.ID == root.ID || page.ID == child.ID {
			t.Fatalf("copied page reused a source id")
		}
		switch page.Title {
		case "Root":
			copiedRoot = page
		case "Child":
			copiedChild = page
		}
	}
	if copiedRoot == nil || copiedChild == nil {
		t.Fatalf("copied pages missing: %+v", export.Pages)
	}
	if copiedChild.ParentID == nil || *copiedChild.ParentID != copiedRoot.ID {
		t.Fatalf("child parent not remapped: %+v", copiedChild.ParentID)
	}
	if len(export.Databases) != 1 || len(export.Databases[0].Records) != 1 {
		t.Fatalf("database copy incomplete: %+v", export.Databases)
	}
}

func TestExportWorkspaceBundlesEverything(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ws := createTestWorkspace(t, store, "Bundle")
	if _, err := store.CreatePage(ctx, PageSpec{WorkspaceID: ws.ID, Title: "P"}); err != nil {
		t.Fatalf("create page: %v", err)
	}
	if _, err := store.CreateFile(ctx, FileSpec{WorkspaceID: ws.ID, Filename: "f", OriginalName: "f", FilePath: "/tmp/f"}); err != nil {
		t.Fatalf("create file: %v", err)
	}

	export, err := store.ExportWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("export workspace: %v", err)
	}
	if export.Workspace.ID != ws.ID {
		t.Fatalf("wrong workspace exported")
	}
	if len(export.Pages) != 1 || len(export.Files) != 1 {
		t.Fatalf("export incomplete: %d pages %d files", len(export.Pages), len(export.Files))
	}
}

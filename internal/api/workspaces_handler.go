// File path: internal/api/workspaces_handler.go
package api

import (
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/inkspace/internal/generate"
	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.store.ListWorkspaces(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workspaces": workspaces})
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var spec sqlite.WorkspaceSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	workspace, err := s.store.CreateWorkspace(r.Context(), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workspace)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	workspace, err := s.store.GetWorkspace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workspace)
}

func (s *Server) handleUpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var spec sqlite.WorkspaceSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	workspace, err := s.store.UpdateWorkspace(r.Context(), chi.URLParam(r, "id"), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workspace)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWorkspace(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Workspace deleted successfully"})
}

func (s *Server) handleDuplicateWorkspace(w http.ResponseWriter, r *http.Request) {
	workspace, err := s.store.DuplicateWorkspace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workspace)
}

func (s *Server) handleExportWorkspace(w http.ResponseWriter, r *http.Request) {
	export, err := s.store.ExportWorkspace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

func (s *Server) handleAnalyzeWorkspace(w http.ResponseWriter, r *http.Request) {
	export, err := s.store.ExportWorkspace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	analysis, status, err := s.complete(r.Context(), generate.KindWorkspaceAnalysis, generate.Params{
		Title:   export.Workspace.Name,
		Context: workspaceInventory(export),
	})
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"workspace_id": export.Workspace.ID,
		"analysis":     analysis,
	})
}

// workspaceInventory flattens an export into prompt-sized lines.
func workspaceInventory(export *sqlite.WorkspaceExport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pages (%d):\n", len(export.Pages))
	for _, page := range export.Pages {
		fmt.Fprintf(&b, "- %s %s (%s)\n", page.Icon, page.Title, page.PageType)
	}
	fmt.Fprintf(&b, "Databases (%d):\n", len(export.Databases))
	for _, database := range export.Databases {
		fmt.Fprintf(&b, "- %s %s: %d records\n", database.Database.Icon, database.Database.Name, len(database.Records))
	}
	fmt.Fprintf(&b, "Files (%d):\n", len(export.Files))
	for _, file := range export.Files {
		fmt.Fprintf(&b, "- %s (%s, %d bytes)\n", file.OriginalName, file.MimeType, file.FileSize)
	}
	return b.String()
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var types []string
	if raw := q.Get("types"); raw != "" {
		types = strings.Split(raw, ",")
	}
	results, err := s.store.Search(r.Context(), q.Get("workspace_id"), q.Get("q"), types)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// File path: internal/api/databases_handler.go
package api

import (
	"fmt"
	"io"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/inkspace/internal/importer"
	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

func (s *Server) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("workspace_id required"))
		return
	}
	databases, err := s.store.ListDatabases(r.Context(), workspaceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"databases": databases})
}

func (s *Server) handleCreateDatabase(w http.ResponseWriter, r *http.Request) {
	var spec sqlite.DatabaseSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	database, err := s.store.CreateDatabase(r.Context(), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, database)
}

func (s *Server) handleGetDatabase(w http.ResponseWriter, r *http.Request) {
	database, err := s.store.GetDatabase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, database)
}

func (s *Server) handleUpdateDatabase(w http.ResponseWriter, r *http.Request) {
	var spec sqlite.DatabaseSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	database, err := s.store.UpdateDatabase(r.Context(), chi.URLParam(r, "id"), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, database)
}

func (s *Server) handleDeleteDatabase(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDatabase(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Database deleted successfully"})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListRecords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

type recordRequest struct {
	Properties sqlite.JSONMap `json:"properties"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	record, err := s.store.CreateRecord(r.Context(), chi.URLParam(r, "id"), req.Properties)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	record, err := s.store.UpdateRecord(r.Context(), chi.URLParam(r, "id"), req.Properties)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Record deleted successfully"})
}

// maxImportBytes caps an import upload held in memory.
const maxImportBytes = 32 << 20

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	workspaceID := r.FormValue("workspace_id")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file field required: %w", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("read upload: %w", err))
		return
	}
	parsed, err := importer.Parse(header.Filename, data)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	result, err := s.store.ImportDatabase(r.Context(), workspaceID, header.Filename, parsed.Schema, parsed.Rows)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// File path: internal/api/pages_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/inkspace/internal/generate"
	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	workspaceID := q.Get("workspace_id")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("workspace_id required"))
		return
	}
	var parentID *string
	if parent := q.Get("parent_id"); parent != "" {
		parentID = &parent
	}
	pages, err := s.store.ListPages(r.Context(), workspaceID, parentID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pages": pages})
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var spec sqlite.PageSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	page, err := s.store.CreatePage(r.Context(), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.store.GetPage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	var spec sqlite.PageSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	page, err := s.store.UpdatePage(r.Context(), chi.URLParam(r, "id"), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	permanent := r.URL.Query().Get("permanent") == "true"
	if err := s.store.DeletePage(r.Context(), chi.URLParam(r, "id"), permanent); err != nil {
		writeStoreError(w, err)
		return
	}
	message := "Page archived successfully"
	if permanent {
		message = "Page deleted successfully"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "id")
	if _, err := s.store.GetPage(r.Context(), pageID); err != nil {
		writeStoreError(w, err)
		return
	}
	blocks, err := s.store.ListBlocks(r.Context(), pageID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"blocks": blocks})
}

func (s *Server) handleEnhancePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.store.GetPage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	content, err := json.Marshal(page.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("encode page content: %w", err))
		return
	}
	suggestion, status, err := s.complete(r.Context(), generate.KindPageEnhance, generate.Params{
		Title: page.Title,
		Text:  string(content),
	})
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"page_id":    page.ID,
		"suggestion": suggestion,
	})
}

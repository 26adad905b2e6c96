// File path: internal/api/blocks_handler.go
package api

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	var spec sqlite.BlockSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	block, err := s.store.CreateBlock(r.Context(), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (s *Server) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	var spec sqlite.BlockSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	block, err := s.store.UpdateBlock(r.Context(), chi.URLParam(r, "id"), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBlock(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Block deleted successfully"})
}

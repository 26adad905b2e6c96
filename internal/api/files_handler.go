// File path: internal/api/files_handler.go
package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/inkspace/internal/generate"
	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

// maxUploadBytes caps a file upload held in memory.
const maxUploadBytes = 64 << 20

// analysisPreviewBytes bounds how much of a text-like file feeds the
// analysis prompt.
const analysisPreviewBytes = 2000

// fileResponse decorates a stored file row with the retrieval URL clients
// fetch the payload from.
type fileResponse struct {
	*sqlite.File
	URL string `json:"url"`
}

func newFileResponse(file *sqlite.File) fileResponse {
	return fileResponse{File: file, URL: "/v1/files/" + file.ID + "/download"}
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("workspace_id required"))
		return
	}
	files, err := s.store.ListFiles(r.Context(), workspaceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]fileResponse, 0, len(files))
	for i := range files {
		out = append(out, newFileResponse(&files[i]))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": out})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	workspaceID := r.FormValue("workspace_id")
	upload, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file field required: %w", err))
		return
	}
	defer upload.Close()
	data, err := io.ReadAll(upload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("read upload: %w", err))
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			mimeType = byExt
		}
	}
	saved, err := s.blobs.Save(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	file, err := s.store.CreateFile(r.Context(), sqlite.FileSpec{
		WorkspaceID:  workspaceID,
		Filename:     saved.Filename,
		OriginalName: header.Filename,
		FilePath:     saved.Path,
		FileSize:     saved.Size,
		MimeType:     mimeType,
		FileHash:     saved.Hash,
	})
	if err != nil {
		// The blob is orphaned without its metadata row.
		_ = s.blobs.Remove(saved.Path)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFileResponse(file))
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileResponse(file))
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	blob, err := s.blobs.Open(file.FilePath)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	defer blob.Close()
	if file.MimeType != "" {
		w.Header().Set("Content-Type", file.MimeType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.FileSize))
	_, _ = io.Copy(w, blob)
}

func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	preview := ""
	if textLike(file.MimeType) {
		preview, err = s.blobs.Preview(file.FilePath, analysisPreviewBytes)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	analysis, status, err := s.complete(r.Context(), generate.KindFileAnalysis, generate.Params{
		Title:   file.OriginalName,
		Text:    preview,
		Context: fmt.Sprintf("mime type: %s, size: %d bytes, sha256: %s", file.MimeType, file.FileSize, file.FileHash),
	})
	if err != nil {
		writeError(w, status, err)
		return
	}
	updated, err := s.store.SetFileAnalysis(r.Context(), file.ID, analysis)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileResponse(updated))
}

func textLike(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") ||
		strings.Contains(mimeType, "json") ||
		strings.Contains(mimeType, "csv") ||
		strings.Contains(mimeType, "xml")
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.store.DeleteFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.blobs.Remove(file.FilePath); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

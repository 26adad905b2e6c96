// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/inkspace/internal/assets"
	"github.com/nicodishanthj/inkspace/internal/common"
	"github.com/nicodishanthj/inkspace/internal/importer"
	"github.com/nicodishanthj/inkspace/internal/llm"
	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

type Server struct {
	router   chi.Router
	store    *sqlite.Store
	blobs    *assets.Store
	provider llm.Provider
}

func NewServer(store *sqlite.Store, blobs *assets.Store, provider llm.Provider) (*Server, error) {
	logger := common.Logger()
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if provider == nil {
		provider = llm.NewProvider()
	}
	srv := &Server{
		router:   chi.NewRouter(),
		store:    store,
		blobs:    blobs,
		provider: provider,
	}
	srv.routes()
	logger.Info("api: server ready", "provider", provider.Name(), "uploads", blobs.Root())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/manifest.json", s.handleManifest)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Method(http.MethodGet, "/debug/vars", expvar.Handler())

	s.router.Route("/v1/workspaces", func(r chi.Router) {
		r.Get("/", s.handleListWorkspaces)
		r.Post("/", s.handleCreateWorkspace)
		r.Get("/{id}", s.handleGetWorkspace)
		r.Put("/{id}", s.handleUpdateWorkspace)
		r.Delete("/{id}", s.handleDeleteWorkspace)
		r.Post("/{id}/duplicate", s.handleDuplicateWorkspace)
		r.Get("/{id}/export", s.handleExportWorkspace)
		r.Post("/{id}/analyze", s.handleAnalyzeWorkspace)
	})
	s.router.Get("/v1/search", s.handleSearch)

	s.router.Route("/v1/pages", func(r chi.Router) {
		r.Get("/", s.handleListPages)
		r.Post("/", s.handleCreatePage)
		r.Get("/{id}", s.handleGetPage)
		r.Put("/{id}", s.handleUpdatePage)
		r.Delete("/{id}", s.handleDeletePage)
		r.Get("/{id}/blocks", s.handleListBlocks)
		r.Post("/{id}/enhance", s.handleEnhancePage)
	})
	s.router.Route("/v1/blocks", func(r chi.Router) {
		r.Post("/", s.handleCreateBlock)
		r.Put("/{id}", s.handleUpdateBlock)
		r.Delete("/{id}", s.handleDeleteBlock)
	})

	s.router.Route("/v1/databases", func(r chi.Router) {
		r.Get("/", s.handleListDatabases)
		r.Post("/", s.handleCreateDatabase)
		r.Get("/{id}", s.handleGetDatabase)
		r.Put("/{id}", s.handleUpdateDatabase)
		r.Delete("/{id}", s.handleDeleteDatabase)
		r.Get("/{id}/records", s.handleListRecords)
		r.Post("/{id}/records", s.handleCreateRecord)
	})
	s.router.Put("/v1/records/{id}", s.handleUpdateRecord)
	s.router.Delete("/v1/records/{id}", s.handleDeleteRecord)
	s.router.Post("/v1/import", s.handleImport)

	s.router.Route("/v1/files", func(r chi.Router) {
		r.Get("/", s.handleListFiles)
		r.Post("/", s.handleUpload)
		r.Get("/{id}", s.handleGetFile)
		r.Delete("/{id}", s.handleDeleteFile)
		r.Get("/{id}/download", s.handleDownloadFile)
		r.Post("/{id}/analyze", s.handleAnalyzeFile)
	})

	s.router.Route("/v1/templates", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Post("/", s.handleCreateTemplate)
		r.Get("/{id}", s.handleGetTemplate)
		r.Delete("/{id}", s.handleDeleteTemplate)
		r.Post("/{id}/apply", s.handleApplyTemplate)
	})

	s.router.Route("/v1/comments", func(r chi.Router) {
		r.Get("/", s.handleListComments)
		r.Post("/", s.handleCreateComment)
		r.Put("/{id}", s.handleUpdateComment)
		r.Delete("/{id}", s.handleDeleteComment)
	})

	s.router.Post("/v1/generate", s.handleGenerate)

	// Legacy calendar surface, kept at the original unprefixed paths for
	// existing clients.
	s.router.Post("/events", s.handleAddEvent)
	s.router.Get("/events", s.handleGetEvents)
	s.router.Delete("/events", s.handleDeleteEvent)
	s.router.Get("/events/range", s.handleEventRange)
	s.router.Get("/events/sync", s.handleSyncEvents)
	s.router.Post("/events/batch", s.handleBatchAddEvents)
	s.router.Delete("/events/all", s.handleDeleteAllEvents)
	s.router.Get("/export", s.handleExportEvents)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/ai-summary", s.handleDailySummary)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeStoreError maps store and import failures onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case sqlite.IsValidation(err),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrEmptyImport):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

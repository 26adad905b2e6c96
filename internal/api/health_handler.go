// File path: internal/api/health_handler.go
package api

import (
	"net/http"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountEvents(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "unhealthy",
			"error":    err.Error(),
			"database": "disconnected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "healthy",
		"api_key_configured": s.provider.Configured(),
		"events_count":       count,
		"database":           "connected",
	})
}

// handleManifest serves the progressive web app manifest the original
// frontend installs from.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":             "Inkspace",
		"short_name":       "Inkspace",
		"description":      "Workspace content store with AI-powered summaries",
		"start_url":        "/",
		"display":          "standalone",
		"orientation":      "portrait-primary",
		"theme_color":      "#3b82f6",
		"background_color": "#ffffff",
		"scope":            "/",
		"icons": []map[string]interface{}{
			{
				"src":     "data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 192 192'><rect width='192' height='192' fill='%233b82f6'/><text x='96' y='120' font-family='Arial' font-size='90' fill='white' text-anchor='middle'>🖋️</text></svg>",
				"sizes":   "192x192",
				"type":    "image/svg+xml",
				"purpose": "any maskable",
			},
			{
				"src":     "data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 512 512'><rect width='512' height='512' fill='%233b82f6'/><text x='256' y='320' font-family='Arial' font-size='240' fill='white' text-anchor='middle'>🖋️</text></svg>",
				"sizes":   "512x512",
				"type":    "image/svg+xml",
				"purpose": "any maskable",
			},
		},
		"categories": []string{"productivity", "utilities"},
		"lang":       "en-US",
		"dir":        "ltr",
	})
}

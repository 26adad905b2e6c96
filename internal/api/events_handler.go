// File path: internal/api/events_handler.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nicodishanthj/inkspace/internal/generate"
	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

// The events surface keeps the original unprefixed calendar paths and
// response shapes so pre-existing clients continue to work unchanged.

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var input sqlite.EventInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	added, day, err := s.store.AddEvent(r.Context(), input)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	message := "Event added successfully"
	if !added {
		message = "Event already exists"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": message, "events": day})
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	events, err := s.store.ListDay(r.Context(), date)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"date": date, "events": events})
}

func (s *Server) handleEventRange(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	events, err := s.store.ListRange(r.Context(), start, end)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"start_date": start,
		"end_date":   end,
		"events":     events,
	})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day, err := s.store.DeleteEvent(r.Context(), q.Get("date"), q.Get("event"), q.Get("time"), q.Get("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Event deleted successfully", "events": day})
}

func (s *Server) handleSyncEvents(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("last_sync"); raw != "" {
		parsed, err := parseSyncTimestamp(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		since = &parsed
	}
	events, err := s.store.SyncEvents(r.Context(), since)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events":         events,
		"sync_timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func parseSyncTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid last_sync timestamp %q", raw)
}

func (s *Server) handleBatchAddEvents(w http.ResponseWriter, r *http.Request) {
	var inputs []sqlite.EventInput
	if err := decodeJSON(r, &inputs); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	added, err := s.store.BatchAddEvents(r.Context(), inputs)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      fmt.Sprintf("Added %d events successfully", len(added)),
		"added_events": added,
	})
}

func (s *Server) handleDeleteAllEvents(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "DELETE_ALL" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("confirmation required"))
		return
	}
	deleted, err := s.store.DeleteAllEvents(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Deleted %d events successfully", deleted),
	})
}

func (s *Server) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := s.store.ExportEvents(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events":      events,
		"export_date": time.Now().UTC().Format(time.RFC3339Nano),
		"total_count": len(events),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	busiest := map[string]interface{}{"date": nil, "event_count": 0}
	if stats.BusiestDate != "" {
		busiest["date"] = stats.BusiestDate
		busiest["event_count"] = stats.BusiestCount
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_events":      stats.TotalEvents,
		"events_this_month": stats.EventsThisMonth,
		"busiest_day":       busiest,
	})
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	events, err := s.store.ListDay(r.Context(), date)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	lines := make([]string, 0, len(events))
	for _, event := range events {
		line := event.Text
		if event.Time != "" {
			line = fmt.Sprintf("%s at %s", event.Text, event.Time)
		}
		lines = append(lines, line)
	}
	summary, status, err := s.complete(r.Context(), generate.KindDailySummary, generate.Params{Date: date, Events: lines})
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"date": date, "summary": summary})
}

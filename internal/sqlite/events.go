// File path: internal/sqlite/events.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nicodishanthj/inkspace/internal/common/telemetry"
)

// EventInput mirrors the wire shape legacy clients post.
type EventInput struct {
	Date string `json:"date"`
	Text string `json:"event"`
	Time string `json:"time"`
}

func validEventDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return validationf("invalid date format")
	}
	return nil
}

// AddEvent inserts a calendar event unless an event with the exact
// (date, text, time-or-empty) key already exists. It reports whether a row
// was inserted and returns the full day's events either way.
func (s *Store) AddEvent(ctx context.Context, input EventInput) (bool, []EventItem, error) {
	if err := validEventDate(input.Date); err != nil {
		return false, nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return false, nil, validationf("event text required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	added, err := s.insertEventDedup(ctx, s.db, input)
	if err != nil {
		return false, nil, err
	}
	if added {
		telemetry.RecordMutation()
	}
	day, err := s.dayEvents(ctx, s.db, input.Date)
	if err != nil {
		return false, nil, err
	}
	return added, day, nil
}

func (s *Store) insertEventDedup(ctx context.Context, q sqlx.ExtContext, input EventInput) (bool, error) {
	var count int
	if err := sqlx.GetContext(ctx, q, &count,
		`SELECT COUNT(*) FROM events WHERE date = ? AND event_text = ? AND event_time = ?`,
		input.Date, input.Text, input.Time); err != nil {
		return false, fmt.Errorf("check duplicate event: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	ts := now()
	if _, err := q.ExecContext(ctx,
		`INSERT INTO events (id, date, event_text, event_time, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		newID(), input.Date, input.Text, input.Time, ts, ts); err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}
	return true, nil
}

func (s *Store) dayEvents(ctx context.Context, q sqlx.QueryerContext, date string) ([]EventItem, error) {
	rows := []Event{}
	if err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT * FROM events WHERE date = ? ORDER BY event_time, created_at`, date); err != nil {
		return nil, fmt.Errorf("select day events: %w", err)
	}
	items := make([]EventItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, EventItem{ID: row.ID, Text: row.EventText, Time: row.EventTime})
	}
	return items, nil
}

// ListDay returns the events of one calendar day ordered by time then
// creation.
func (s *Store) ListDay(ctx context.Context, date string) ([]EventItem, error) {
	if err := validEventDate(date); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dayEvents(ctx, s.db, date)
}

// ListRange returns a map with one entry for every calendar day between
// start and end inclusive; days without events map to empty lists.
func (s *Store) ListRange(ctx context.Context, startDate, endDate string) (map[string][]EventItem, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, validationf("invalid date format")
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, validationf("invalid date format")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := []Event{}
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM events WHERE date BETWEEN ? AND ? ORDER BY date, event_time, created_at`,
		startDate, endDate); err != nil {
		return nil, fmt.Errorf("select event range: %w", err)
	}
	byDate := make(map[string][]EventItem)
	for _, row := range rows {
		byDate[row.Date] = append(byDate[row.Date], EventItem{ID: row.ID, Text: row.EventText, Time: row.EventTime})
	}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if _, ok := byDate[key]; !ok {
			byDate[key] = []EventItem{}
		}
	}
	return byDate, nil
}

// DeleteEvent removes one event, matching by id when given, else by the
// exact (date, text, time) key, else by (date, text) with an empty time.
// It returns the remaining events of the day.
func (s *Store) DeleteEvent(ctx context.Context, date, text, eventTime, id string) ([]EventItem, error) {
	if id == "" {
		if err := validEventDate(date); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	var err error
	switch {
	case id != "":
		affected, err = execAffected(ctx, s.db, `DELETE FROM events WHERE id = ?`, id)
	case eventTime != "":
		affected, err = execAffected(ctx, s.db,
			`DELETE FROM events WHERE date = ? AND event_text = ? AND event_time = ?`, date, text, eventTime)
	default:
		affected, err = execAffected(ctx, s.db,
			`DELETE FROM events WHERE date = ? AND event_text = ? AND (event_time = '' OR event_time IS NULL)`, date, text)
	}
	if err != nil {
		return nil, fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("event: %w", ErrNotFound)
	}
	telemetry.RecordMutation()
	return s.dayEvents(ctx, s.db, date)
}

func execAffected(ctx context.Context, q sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SyncEvents returns every event modified strictly after since, or all
// events when since is nil, ordered by updated_at ascending.
func (s *Store) SyncEvents(ctx context.Context, since *time.Time) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := []Event{}
	var err error
	if since != nil {
		err = s.db.SelectContext(ctx, &events,
			`SELECT * FROM events WHERE updated_at > ? ORDER BY updated_at, id`, since.UTC())
	} else {
		err = s.db.SelectContext(ctx, &events, `SELECT * FROM events ORDER BY updated_at, id`)
	}
	if err != nil {
		return nil, fmt.Errorf("select sync events: %w", err)
	}
	return events, nil
}

// BatchAddEvents applies the dedup rule per item inside one transaction,
// silently skipping duplicates, and returns only the newly added events.
func (s *Store) BatchAddEvents(ctx context.Context, inputs []EventInput) ([]Event, error) {
	for _, input := range inputs {
		if err := validEventDate(input.Date); err != nil {
			return nil, err
		}
		if strings.TrimSpace(input.Text) == "" {
			return nil, validationf("event text required")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	addedIDs := []string{}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, input := range inputs {
			var count int
			if err := tx.GetContext(ctx, &count,
				`SELECT COUNT(*) FROM events WHERE date = ? AND event_text = ? AND event_time = ?`,
				input.Date, input.Text, input.Time); err != nil {
				return fmt.Errorf("check duplicate event: %w", err)
			}
			if count > 0 {
				continue
			}
			id := newID()
			ts := now()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO events (id, date, event_text, event_time, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
				id, input.Date, input.Text, input.Time, ts, ts); err != nil {
				return fmt.Errorf("insert event: %w", err)
			}
			addedIDs = append(addedIDs, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(addedIDs) == 0 {
		return []Event{}, nil
	}
	telemetry.RecordMutation()
	query, args, err := sqlx.In(`SELECT * FROM events WHERE id IN (?) ORDER BY date, event_time, created_at`, addedIDs)
	if err != nil {
		return nil, fmt.Errorf("build added query: %w", err)
	}
	added := []Event{}
	if err := s.db.SelectContext(ctx, &added, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select added events: %w", err)
	}
	return added, nil
}

// EventStats summarizes the legacy calendar table.
type EventStats struct {
	TotalEvents     int    `json:"total_events"`
	EventsThisMonth int    `json:"events_this_month"`
	BusiestDate     string `json:"busiest_date"`
	BusiestCount    int    `json:"busiest_count"`
}

// Stats computes calendar statistics: totals, current month volume and the
// busiest day.
func (s *Store) Stats(ctx context.Context) (*EventStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &EventStats{}
	if err := s.db.GetContext(ctx, &stats.TotalEvents, `SELECT COUNT(*) FROM events`); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	month := time.Now().UTC().Format("2006-01")
	if err := s.db.GetContext(ctx, &stats.EventsThisMonth,
		`SELECT COUNT(*) FROM events WHERE date LIKE ?`, month+"%"); err != nil {
		return nil, fmt.Errorf("count month events: %w", err)
	}
	var busiest struct {
		Date  string `db:"date"`
		Count int    `db:"count"`
	}
	err := s.db.GetContext(ctx, &busiest,
		`SELECT date, COUNT(*) AS count FROM events GROUP BY date ORDER BY count DESC, date LIMIT 1`)
	switch {
	case err == nil:
		stats.BusiestDate = busiest.Date
		stats.BusiestCount = busiest.Count
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("select busiest day: %w", err)
	}
	return stats, nil
}

// ExportEvents returns all events, optionally bounded to a date range,
// ordered by date then time then creation.
func (s *Store) ExportEvents(ctx context.Context, startDate, endDate string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := []Event{}
	var err error
	if startDate != "" && endDate != "" {
		if verr := validEventDate(startDate); verr != nil {
			return nil, verr
		}
		if verr := validEventDate(endDate); verr != nil {
			return nil, verr
		}
		err = s.db.SelectContext(ctx, &events,
			`SELECT * FROM events WHERE date BETWEEN ? AND ? ORDER BY date, event_time, created_at`, startDate, endDate)
	} else {
		err = s.db.SelectContext(ctx, &events, `SELECT * FROM events ORDER BY date, event_time, created_at`)
	}
	if err != nil {
		return nil, fmt.Errorf("select export events: %w", err)
	}
	return events, nil
}

// DeleteAllEvents empties the legacy events table and reports how many rows
// were removed.
func (s *Store) DeleteAllEvents(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	affected, err := execAffected(ctx, s.db, `DELETE FROM events`)
	if err != nil {
		return 0, fmt.Errorf("delete all events: %w", err)
	}
	if affected > 0 {
		telemetry.RecordMutation()
	}
	return affected, nil
}

// CountEvents reports the events table size for health checks.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

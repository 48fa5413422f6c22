package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ayusman/hologram/internal/gesture"
)

// Event is a recorded gesture-symbol transition.
type Event struct {
	ID         int64          `json:"id"`
	SessionID  string         `json:"session_id"`
	Symbol     gesture.Symbol `json:"symbol"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventRepository provides operations on gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the gesture event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append records a symbol transition for a session.
func (r *EventRepository) Append(e *Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO gesture_events (session_id, symbol, occurred_at) VALUES (?, ?, ?)`,
		e.SessionID, e.Symbol.String(), e.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert gesture event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// ListBySession returns a session's events in the order they occurred.
func (r *EventRepository) ListBySession(sessionID string) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, symbol, occurred_at FROM gesture_events
		 WHERE session_id = ? ORDER BY occurred_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var symbol string
		if err := rows.Scan(&e.ID, &e.SessionID, &symbol, &e.OccurredAt); err != nil {
			return nil, err
		}
		sym, err := gesture.ParseSymbol(symbol)
		if err != nil {
			return nil, err
		}
		e.Symbol = sym
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountBySymbol returns how many times each symbol was entered in a session.
func (r *EventRepository) CountBySymbol(sessionID string) (map[gesture.Symbol]int, error) {
	rows, err := r.db.Query(
		`SELECT symbol, COUNT(*) FROM gesture_events WHERE session_id = ? GROUP BY symbol`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[gesture.Symbol]int)
	for rows.Next() {
		var symbol string
		var n int
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, err
		}
		sym, err := gesture.ParseSymbol(symbol)
		if err != nil {
			return nil, err
		}
		counts[sym] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

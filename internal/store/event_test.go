package store

import (
	"testing"
	"time"

	"github.com/ayusman/hologram/internal/gesture"
)

func TestEventRepository_AppendAndList(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{Name: "Azizbek"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	repo := s.Events()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	symbols := []gesture.Symbol{gesture.Five, gesture.Pinch, gesture.Five, gesture.Heart}
	for i, sym := range symbols {
		e := &Event{SessionID: sess.ID, Symbol: sym, OccurredAt: base.Add(time.Duration(i) * time.Second)}
		if err := repo.Append(e); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
		if e.ID == 0 {
			t.Error("event ID should be set after append")
		}
	}

	events, err := repo.ListBySession(sess.ID)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != len(symbols) {
		t.Fatalf("expected %d events, got %d", len(symbols), len(events))
	}
	for i, e := range events {
		if e.Symbol != symbols[i] {
			t.Errorf("event %d: expected %s, got %s", i, symbols[i], e.Symbol)
		}
	}

	counts, err := repo.CountBySymbol(sess.ID)
	if err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	if counts[gesture.Five] != 2 || counts[gesture.Heart] != 1 || counts[gesture.Zero] != 0 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestEventRepository_RequiresSession(t *testing.T) {
	s := newTestStore(t)

	err := s.Events().Append(&Event{SessionID: "missing", Symbol: gesture.One})
	if err == nil {
		t.Error("expected foreign key error for unknown session")
	}
}

func TestEventRepository_EmptySession(t *testing.T) {
	s := newTestStore(t)

	events, err := s.Events().ListBySession("nobody")
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if events != nil {
		t.Errorf("expected no events, got %v", events)
	}
}

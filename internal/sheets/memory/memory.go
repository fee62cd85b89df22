// Package memory is an in-process RecordMirror, used when no spreadsheet
// is configured and in tests.
package memory

import (
	"context"
	"sync"

	"ledger/internal/core"
	"ledger/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	order []string
	rows  map[string][]string
}

var _ sheets.RecordMirror = (*Store)(nil)

func New() *Store {
	return &Store{rows: map[string][]string{}}
}

// Upsert stores the rendered row, keeping first-insertion order.
func (s *Store) Upsert(_ context.Context, rec core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.rows[rec.ID] = sheets.Row(rec)
	return nil
}

func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return nil
	}
	delete(s.rows, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns a copy of the mirrored rows in insertion order.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, append([]string(nil), s.rows[id]...))
	}
	return out
}

// Row returns the mirrored row for id.
func (s *Store) Row(id string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	return append([]string(nil), row...), ok
}

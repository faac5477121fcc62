// Package memory provides an in-process sheet fake for local development
// and worker tests, keyed the same way as the Google adapter.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
	ports "github.com/takayashoshi888/nihaokaoqing/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	order []string
	rows  map[string]core.ExpenseEntry
}

var (
	_ ports.ExpenseWriter  = (*Store)(nil)
	_ ports.ExpenseRemover = (*Store)(nil)
)

func New() *Store {
	return &Store{rows: make(map[string]core.ExpenseEntry)}
}

// Upsert stores the entry keyed by ID and returns a synthetic row reference.
func (s *Store) Upsert(_ context.Context, e core.ExpenseEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.rows[e.ID] = e

	for i, id := range s.order {
		if id == e.ID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	return "", fmt.Errorf("row bookkeeping lost entry %s", e.ID)
}

// Remove drops the row for the ID. Missing IDs are no-ops.
func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// Entries returns the stored rows in insertion order. Test helper.
func (s *Store) Entries() []core.ExpenseEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExpenseEntry, 0, len(s.rows))
	for _, id := range s.order {
		if e, ok := s.rows[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

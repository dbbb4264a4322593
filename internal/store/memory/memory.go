// Package memory keeps both collections in process memory. It backs the
// memory data backend and deterministic tests.
package memory

import (
	"context"
	"sync"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

// Store is an in-memory blob pair satisfying store.RecordBlob and
// store.CategoryBlob.
type Store struct {
	mu         sync.Mutex
	records    []core.GiftRecord
	categories []core.Category
	catsSaved  bool
}

func New() *Store {
	return &Store{}
}

// Seed pre-populates the record collection, for tests.
func Seed(records []core.GiftRecord) *Store {
	s := New()
	s.records = append(s.records, records...)
	return s
}

func (s *Store) LoadRecords(_ context.Context) ([]core.GiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.GiftRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Store) SaveRecords(_ context.Context, records []core.GiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]core.GiftRecord, len(records))
	copy(s.records, records)
	return nil
}

// LoadCategories returns nil until SaveCategories has been called once,
// matching absent storage.
func (s *Store) LoadCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.catsSaved {
		return nil, nil
	}
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Store) SaveCategories(_ context.Context, categories []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = make([]core.Category, len(categories))
	copy(s.categories, categories)
	s.catsSaved = true
	return nil
}

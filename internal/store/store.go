// Package store implements the record and category stores over
// whole-collection blob backends, mirroring the two independent keys the
// data originally lived under. Every mutation re-reads the collection,
// applies the change and writes the whole collection back; last writer wins
// and a single logical writer is assumed.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

type (
	// RecordBlob loads and saves the full record collection.
	RecordBlob interface {
		LoadRecords(ctx context.Context) ([]core.GiftRecord, error)
		SaveRecords(ctx context.Context, records []core.GiftRecord) error
	}

	// CategoryBlob loads and saves the full category collection. A nil
	// result means nothing has been persisted yet.
	CategoryBlob interface {
		LoadCategories(ctx context.Context) ([]core.Category, error)
		SaveCategories(ctx context.Context, categories []core.Category) error
	}
)

// RecordStore implements RecordRepository over any RecordBlob.
type RecordStore struct {
	blob  RecordBlob
	now   func() time.Time
	newID func() string
}

// NewRecordStore wires a record store to a blob backend.
func NewRecordStore(blob RecordBlob) *RecordStore {
	return &RecordStore{
		blob:  blob,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock overrides the timestamp source, for tests.
func (s *RecordStore) WithClock(now func() time.Time) *RecordStore {
	s.now = now
	return s
}

func (s *RecordStore) List(ctx context.Context) ([]core.GiftRecord, error) {
	return s.blob.LoadRecords(ctx)
}

func (s *RecordStore) Add(ctx context.Context, draft core.RecordDraft) (core.GiftRecord, error) {
	if err := draft.Validate(); err != nil {
		return core.GiftRecord{}, err
	}
	records, err := s.blob.LoadRecords(ctx)
	if err != nil {
		return core.GiftRecord{}, fmt.Errorf("load records: %w", err)
	}
	rec := core.NewRecord(draft, s.newID(), s.now())
	records = append(records, rec)
	if err := s.blob.SaveRecords(ctx, records); err != nil {
		return core.GiftRecord{}, fmt.Errorf("save records: %w", err)
	}
	return rec, nil
}

func (s *RecordStore) Update(ctx context.Context, id string, patch core.RecordPatch) (*core.GiftRecord, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	records, err := s.blob.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	for i, r := range records {
		if r.ID != id {
			continue
		}
		updated := core.ApplyPatch(r, patch, s.now())
		records[i] = updated
		if err := s.blob.SaveRecords(ctx, records); err != nil {
			return nil, fmt.Errorf("save records: %w", err)
		}
		return &updated, nil
	}
	return nil, nil
}

func (s *RecordStore) Delete(ctx context.Context, id string) (bool, error) {
	records, err := s.blob.LoadRecords(ctx)
	if err != nil {
		return false, fmt.Errorf("load records: %w", err)
	}
	kept := records[:0:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	if err := s.blob.SaveRecords(ctx, kept); err != nil {
		return false, fmt.Errorf("save records: %w", err)
	}
	return true, nil
}

func (s *RecordStore) Replace(ctx context.Context, records []core.GiftRecord) error {
	if err := s.blob.SaveRecords(ctx, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// CategoryStore implements CategoryRepository over any CategoryBlob.
type CategoryStore struct {
	blob  CategoryBlob
	newID func() string
}

func NewCategoryStore(blob CategoryBlob) *CategoryStore {
	return &CategoryStore{
		blob:  blob,
		newID: uuid.NewString,
	}
}

// List returns the persisted categories, or the built-in default set while
// the blob is still empty. The defaults are never written back implicitly.
func (s *CategoryStore) List(ctx context.Context) ([]core.Category, error) {
	cats, err := s.blob.LoadCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if cats == nil {
		return core.DefaultCategories(), nil
	}
	return cats, nil
}

// Add appends a new category. The first user mutation materializes the
// default set so existing picklist entries survive.
func (s *CategoryStore) Add(ctx context.Context, name, color string) (core.Category, error) {
	if strings.TrimSpace(name) == "" {
		return core.Category{}, core.ErrEmptyCategoryName
	}
	cats, err := s.List(ctx)
	if err != nil {
		return core.Category{}, err
	}
	cat := core.Category{ID: s.newID(), Name: name, Color: color}
	cats = append(cats, cat)
	if err := s.blob.SaveCategories(ctx, cats); err != nil {
		return core.Category{}, fmt.Errorf("save categories: %w", err)
	}
	return cat, nil
}

// Delete removes a category by id. Records referencing it keep the category
// name as plain text; there is deliberately no cascade.
func (s *CategoryStore) Delete(ctx context.Context, id string) (bool, error) {
	cats, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	kept := cats[:0:0]
	for _, c := range cats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(cats) {
		return false, nil
	}
	if err := s.blob.SaveCategories(ctx, kept); err != nil {
		return false, fmt.Errorf("save categories: %w", err)
	}
	return true, nil
}

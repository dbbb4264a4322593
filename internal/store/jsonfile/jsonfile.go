// Package jsonfile persists the record and category collections as two
// independent JSON files under a data directory, one serialized array per
// file. A missing or unreadable file is treated as empty storage, never as
// a fatal error.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

const (
	recordsFile    = "records.json"
	categoriesFile = "categories.json"
)

// Store is a file-backed blob pair. It satisfies store.RecordBlob and
// store.CategoryBlob.
type Store struct {
	dir string
}

// New prepares the data directory and returns a file-backed store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// LoadRecords reads the record collection. Corruption is swallowed: the
// error is logged and an empty collection is returned so the application
// keeps working.
func (s *Store) LoadRecords(ctx context.Context) ([]core.GiftRecord, error) {
	path := filepath.Join(s.dir, recordsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Failed to read records file, treating as empty",
				"path", path, "error", err)
		}
		return []core.GiftRecord{}, nil
	}
	var records []core.GiftRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.WarnContext(ctx, "Corrupt records file, treating as empty",
			"path", path, "error", err)
		return []core.GiftRecord{}, nil
	}
	if records == nil {
		records = []core.GiftRecord{}
	}
	return records, nil
}

// SaveRecords overwrites the whole record collection.
func (s *Store) SaveRecords(_ context.Context, records []core.GiftRecord) error {
	if records == nil {
		records = []core.GiftRecord{}
	}
	return s.write(recordsFile, records)
}

// LoadCategories reads the category collection. nil means nothing has been
// persisted yet, which callers resolve to the built-in defaults.
func (s *Store) LoadCategories(ctx context.Context) ([]core.Category, error) {
	path := filepath.Join(s.dir, categoriesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Failed to read categories file, falling back to defaults",
				"path", path, "error", err)
		}
		return nil, nil
	}
	var cats []core.Category
	if err := json.Unmarshal(data, &cats); err != nil {
		slog.WarnContext(ctx, "Corrupt categories file, falling back to defaults",
			"path", path, "error", err)
		return nil, nil
	}
	return cats, nil
}

// SaveCategories overwrites the whole category collection.
func (s *Store) SaveCategories(_ context.Context, categories []core.Category) error {
	if categories == nil {
		categories = []core.Category{}
	}
	return s.write(categoriesFile, categories)
}

// write serializes v and replaces the target file through a rename so a
// crash mid-write cannot leave a half-written collection behind.
func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

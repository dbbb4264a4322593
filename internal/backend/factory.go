// Package backend constructs the storage backend selected by configuration,
// so the stores can be swapped between plain JSON files, an embedded SQLite
// database and process memory without touching the callers.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
	"github.com/CHURO-MAU/okurimono-note/internal/store"
	"github.com/CHURO-MAU/okurimono-note/internal/store/jsonfile"
	"github.com/CHURO-MAU/okurimono-note/internal/store/memory"
	"github.com/CHURO-MAU/okurimono-note/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONFileBackend:
		return f.createJSONFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createJSONFileBackend(config Config) (*Result, error) {
	blobs, err := jsonfile.New(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initialize jsonfile store: %w", err)
	}
	f.logger.Info("Initialized jsonfile backend", "data_dir", config.DataDir)
	return &Result{
		Records:    store.NewRecordStore(blobs),
		Categories: store.NewCategoryStore(blobs),
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized sqlite backend", "db_path", config.SQLiteDBPath)
	return &Result{
		Records:    repo,
		Categories: categoryAdapter{repo},
		Cleanup:    repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	blobs := memory.New()
	f.logger.Info("Initialized memory backend")
	return &Result{
		Records:    store.NewRecordStore(blobs),
		Categories: store.NewCategoryStore(blobs),
	}, nil
}

// categoryAdapter exposes the SQLite repository's category methods under the
// CategoryRepository port names; the record method set already clashes with
// List on the repository itself.
type categoryAdapter struct {
	repo *storage.SQLiteRepository
}

func (a categoryAdapter) List(ctx context.Context) ([]core.Category, error) {
	return a.repo.ListCategories(ctx)
}

func (a categoryAdapter) Add(ctx context.Context, name, color string) (core.Category, error) {
	return a.repo.AddCategory(ctx, name, color)
}

func (a categoryAdapter) Delete(ctx context.Context, id string) (bool, error) {
	return a.repo.DeleteCategory(ctx, id)
}

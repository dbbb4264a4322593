package backend

import (
	"context"

	"github.com/CHURO-MAU/okurimono-note/internal/store"
)

// Result bundles the repositories a backend provides plus an optional
// cleanup function.
type Result struct {
	Records    store.RecordRepository
	Categories store.CategoryRepository
	Cleanup    CleanupFunc
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Type identifies a storage backend.
type Type string

const (
	JSONFileBackend Type = "jsonfile"
	SQLiteBackend   Type = "sqlite"
	MemoryBackend   Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is supported.
func (t Type) IsValid() bool {
	switch t {
	case JSONFileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

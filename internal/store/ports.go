package store

import (
	"context"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

// Ports implemented by every storage backend.
type (
	// RecordRepository owns the gift record collection. Update and Delete on
	// an unknown id are no-ops signaled through the return values, never
	// errors.
	RecordRepository interface {
		// List returns all persisted records; absent or corrupt storage
		// yields an empty collection.
		List(ctx context.Context) ([]core.GiftRecord, error)

		// Add assigns a fresh id, stamps createdAt/updatedAt and persists
		// the new record.
		Add(ctx context.Context, draft core.RecordDraft) (core.GiftRecord, error)

		// Update merges the patch over the stored record. It returns nil
		// when the id is unknown; id and createdAt are never changed.
		Update(ctx context.Context, id string, patch core.RecordPatch) (*core.GiftRecord, error)

		// Delete removes the record with the given id and reports whether a
		// removal occurred.
		Delete(ctx context.Context, id string) (bool, error)

		// Replace swaps the entire collection, used by snapshot import.
		Replace(ctx context.Context, records []core.GiftRecord) error
	}

	// CategoryRepository owns the category picklist. List falls back to the
	// built-in default set while nothing has been persisted.
	CategoryRepository interface {
		List(ctx context.Context) ([]core.Category, error)
		Add(ctx context.Context, name, color string) (core.Category, error)
		Delete(ctx context.Context, id string) (bool, error)
	}
)

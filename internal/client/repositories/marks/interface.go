package marks

import (
	"context"

	"lifeweeks/internal/snapshot"
)

// Repository describes CRUD operations for Mark records in the local store.
// Implementations are backed by SQLite in production and by an in-memory map
// in tests.
type Repository interface {
	// CreateOrUpdate inserts a new mark or updates an existing one by ID.
	CreateOrUpdate(ctx context.Context, m *snapshot.Mark) error

	// GetAll returns all marks in insertion order.
	GetAll(ctx context.Context) ([]snapshot.Mark, error)

	// GetByID returns a mark by its identifier, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*snapshot.Mark, error)

	// DeleteByID removes a mark if present. Deleting an absent id is a no-op.
	DeleteByID(ctx context.Context, id string) error

	// DeleteAll removes every mark.
	DeleteAll(ctx context.Context) error

	// ReplaceAll removes every mark and inserts the given ones in order.
	ReplaceAll(ctx context.Context, ms []snapshot.Mark) error
}

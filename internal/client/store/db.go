package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"lifeweeks/internal/client/migrations"
	"lifeweeks/internal/client/repositories/marks"
	"lifeweeks/internal/client/repositories/metadata"
	"lifeweeks/internal/dbx"
)

// Repositories bundles the local persistence backends the store runs on.
type Repositories struct {
	Marks    marks.Repository
	Metadata metadata.Repository

	// db is the durable handle behind the SQLite repositories, nil for the
	// in-memory backend. It lets multi-write operations run transactionally.
	db *sql.DB
}

// atomically runs fn against repositories bound to a single transaction.
// A non-nil error from fn rolls everything back. The in-memory backend has
// no transactions; there fn runs against the live repositories directly.
func (r *Repositories) atomically(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	if r.db == nil {
		return fn(ctx, r)
	}
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &Repositories{
			Marks:    marks.NewSQLiteRepository(tx),
			Metadata: metadata.NewSQLiteRepository(tx),
		})
	})
}

// RunMigrations applies the embedded goose migrations to the local database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (or creates) the local SQLite database at dsn, runs
// migrations, and returns SQLite-backed repositories plus the handle for
// closing.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repos := &Repositories{
		Marks:    marks.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
		db:       db,
	}
	return repos, db, nil
}

// NewMemoryRepositories returns in-memory backends, used by tests and as the
// degraded fallback when the durable medium cannot be opened.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Marks:    marks.NewMemoryRepository(),
		Metadata: metadata.NewMemoryRepository(),
	}
}

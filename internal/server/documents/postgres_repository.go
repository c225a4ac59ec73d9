package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lifeweeks/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*Document, error) {

	query :=
		`SELECT version, updated_at, payload FROM documents
		 WHERE user_id = $1
		 `

	doc := &Document{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&doc.Version, &doc.UpdatedAt, &doc.Payload)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return doc, nil
}

// Put performs the compare-and-set in a single upsert: the update fires only
// when the stored version matches baseVersion or force is set, and a fresh
// insert is accepted for any baseVersion since there is nothing to conflict
// with. Zero rows back means the guard rejected the write.
func (r *PostgresRepository) Put(ctx context.Context, doc *Document, baseVersion int64, force bool) error {

	query :=
		`INSERT INTO documents (user_id, version, updated_at, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET version = EXCLUDED.version,
		     updated_at = EXCLUDED.updated_at,
		     payload = EXCLUDED.payload
		 WHERE documents.version = $5 OR $6
		 RETURNING version
		 `

	var newVersion int64
	err := r.db.QueryRowContext(ctx, query,
		doc.UserID, doc.Version, doc.UpdatedAt, doc.Payload, baseVersion, force).Scan(&newVersion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrVersionConflict
		}
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

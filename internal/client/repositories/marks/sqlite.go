package marks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lifeweeks/internal/common"
	"lifeweeks/internal/dbx"
	"lifeweeks/internal/snapshot"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdate upserts a mark by id. On conflict, all user-editable columns
// are updated; the rowid (and with it insertion order) is preserved.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, m *snapshot.Mark) error {
	query := `INSERT INTO marks (id, title, kind, date, week_index, tag, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title,
				kind = excluded.kind,
				date = excluded.date,
				week_index = excluded.week_index,
				tag = excluded.tag,
				notes = excluded.notes
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Title, m.Kind, m.Date, m.WeekIndex, m.Tag, m.Notes)
	if err != nil {
		return fmt.Errorf("failed to upsert mark: %w", err)
	}
	return nil
}

// GetAll lists all marks in insertion order (rowid order).
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]snapshot.Mark, error) {
	query := `SELECT id, title, kind, date, week_index, tag, notes FROM marks ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select marks: %w", err)
	}
	defer rows.Close()

	var result []snapshot.Mark
	for rows.Next() {
		var m snapshot.Mark
		if err := rows.Scan(&m.ID, &m.Title, &m.Kind, &m.Date, &m.WeekIndex, &m.Tag, &m.Notes); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a single mark or common.ErrorNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*snapshot.Mark, error) {
	query := `SELECT id, title, kind, date, week_index, tag, notes FROM marks WHERE id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	m := &snapshot.Mark{}
	if err := row.Scan(&m.ID, &m.Title, &m.Kind, &m.Date, &m.WeekIndex, &m.Tag, &m.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return m, nil
}

// DeleteByID removes a mark. Removal of an absent id is deliberately not an
// error: deletion is idempotent.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM marks WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mark: %w", err)
	}
	return nil
}

// DeleteAll clears the marks table.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM marks`)
	if err != nil {
		return fmt.Errorf("failed to clear marks: %w", err)
	}
	return nil
}

// ReplaceAll clears the table and inserts ms in order.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, ms []snapshot.Mark) error {
	if err := r.DeleteAll(ctx); err != nil {
		return err
	}
	for i := range ms {
		if err := r.CreateOrUpdate(ctx, &ms[i]); err != nil {
			return err
		}
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/hpungsan/perch/internal/errors"
)

// Layout is one stored key-value row.
type Layout struct {
	Key       string
	Value     string
	Size      int
	UpdatedAt int64
}

// GetLayout returns the layout stored under key.
func GetLayout(ctx context.Context, db *sql.DB, key string) (*Layout, error) {
	row := db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM layouts WHERE key = ?`, key)

	var l Layout
	err := row.Scan(&l.Key, &l.Value, &l.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("layout", key)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	l.Size = len(l.Value)
	return &l, nil
}

// PutLayout inserts or replaces the layout stored under key.
func PutLayout(ctx context.Context, db *sql.DB, key, value string, updatedAt int64) error {
	query := `
		INSERT INTO layouts (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, updatedAt); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteLayout removes the layout stored under key. It reports whether a
// row existed.
func DeleteLayout(ctx context.Context, db *sql.DB, key string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM layouts WHERE key = ?`, key)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// ListLayouts returns every stored key with its size, most recently updated
// first. Values are not loaded.
func ListLayouts(ctx context.Context, db *sql.DB) ([]Layout, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT key, length(value), updated_at FROM layouts ORDER BY updated_at DESC, key`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []Layout
	for rows.Next() {
		var l Layout
		if err := rows.Scan(&l.Key, &l.Size, &l.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

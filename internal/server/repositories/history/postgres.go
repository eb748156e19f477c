// Package history provides the SQL-backed append-only history of device
// sightings. Statements are portable between PostgreSQL and SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/camfeed/internal/dbx"
	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/layout"
)

// Queries holds the statements rendered once for a table layout.
type Queries struct {
	layout   layout.Layout
	lastSeen string
	insert   string
	list     string
}

// NewQueries renders the history statements for l.
func NewQueries(l layout.Layout) *Queries {
	key := l.KeyColumn()
	return &Queries{
		layout: l,
		lastSeen: fmt.Sprintf(
			"SELECT observed_at FROM %s WHERE %s = $1 ORDER BY observed_at DESC LIMIT 1",
			l.Table, key),
		insert: fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			l.Table, l.ColumnList(), l.Placeholders()),
		list: fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s = $1 ORDER BY observed_at DESC LIMIT $2",
			l.ColumnList(), l.Table, key),
	}
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
	q  *Queries
}

// NewPostgresRepository binds q to db.
func NewPostgresRepository(db dbx.DBTX, q *Queries) *PostgresRepository {
	return &PostgresRepository{db: db, q: q}
}

func (r *PostgresRepository) LastSeen(ctx context.Context, sn string) (string, bool, error) {
	var observedAt string
	err := r.db.QueryRowContext(ctx, r.q.lastSeen, sn).Scan(&observedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("db error: %w", err)
	}
	return observedAt, true, nil
}

// Append inserts one history row. Exactly one row must be written.
func (r *PostgresRepository) Append(ctx context.Context, rec models.DeviceRecord) error {
	res, err := r.db.ExecContext(ctx, r.q.insert, r.q.layout.Args(rec)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// ListBySerial returns up to limit rows for sn, newest first.
func (r *PostgresRepository) ListBySerial(ctx context.Context, sn string, limit int) ([]models.Row, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list, sn, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	defer rows.Close()

	var result []models.Row
	for rows.Next() {
		row, err := r.q.layout.Scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

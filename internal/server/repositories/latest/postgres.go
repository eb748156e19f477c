// Package latest provides the SQL-backed latest-state relation keyed by serial
// number.
package latest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/camfeed/internal/common"
	"github.com/dmitrijs2005/camfeed/internal/dbx"
	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/layout"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
)

type Queries struct {
	layout layout.Layout
	upsert string
	get    string
}

// NewQueries renders the latest-state statements for l. The upsert never
// replaces a row with an older observation.
func NewQueries(l layout.Layout) *Queries {
	key := l.KeyColumn()

	var set []string
	for _, c := range l.Columns() {
		if c == key {
			continue
		}
		set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	return &Queries{
		layout: l,
		upsert: fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s WHERE %s.%s <= EXCLUDED.%s",
			l.Table, l.ColumnList(), l.Placeholders(), key,
			strings.Join(set, ", "),
			l.Table, schema.ObservedAtColumn, schema.ObservedAtColumn),
		get: fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s = $1",
			l.ColumnList(), l.Table, key),
	}
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
	q  *Queries
}

func NewPostgresRepository(db dbx.DBTX, q *Queries) *PostgresRepository {
	return &PostgresRepository{db: db, q: q}
}

// Upsert inserts or overwrites the row for the record's serial number. One row
// affected means the row now reflects rec; zero means a newer row was kept.
func (r *PostgresRepository) Upsert(ctx context.Context, rec models.DeviceRecord) (models.LatestOutcome, error) {
	res, err := r.db.ExecContext(ctx, r.q.upsert, r.q.layout.Args(rec)...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return models.LatestUpserted, nil
	case 0:
		return models.LatestSuperseded, nil
	default:
		return 0, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Get returns the latest-state row for sn or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, sn string) (*models.Row, error) {
	row, err := r.q.layout.Scan(r.db.QueryRowContext(ctx, r.q.get, sn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &row, nil
}

// Package layout maps a field schema onto the column layout shared by the
// history and latest-state relations.
package layout

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
	"github.com/dmitrijs2005/camfeed/internal/timex"
)

// Layout is the observed_at column followed by the schema columns, in schema
// order.
type Layout struct {
	Table  string
	Schema *schema.Schema
}

func New(table string, s *schema.Schema) (Layout, error) {
	if !schema.ValidIdentifier(table) {
		return Layout{}, fmt.Errorf("invalid table name %q", table)
	}
	if s == nil {
		return Layout{}, fmt.Errorf("table %s: nil schema", table)
	}
	return Layout{Table: table, Schema: s}, nil
}

// Columns returns every column written for a record.
func (l Layout) Columns() []string {
	return append([]string{schema.ObservedAtColumn}, l.Schema.Columns()...)
}

// KeyColumn is the natural-key column.
func (l Layout) KeyColumn() string {
	return l.Schema.Key().Column
}

// ColumnList renders the columns comma separated.
func (l Layout) ColumnList() string {
	return strings.Join(l.Columns(), ", ")
}

// Placeholders renders $1..$n for the full column list.
func (l Layout) Placeholders() string {
	n := l.Schema.Len() + 1
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ", ")
}

// Args returns the driver arguments for rec, aligned with Columns.
func (l Layout) Args(rec models.DeviceRecord) []any {
	key := l.Schema.Key().Name
	args := make([]any, 0, l.Schema.Len()+1)
	args = append(args, timex.FormatSQLTimestamp(rec.ObservedAt))
	for _, f := range l.Schema.Fields() {
		args = append(args, rec.Value(f, key))
	}
	return args
}

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Scan reads a row selected with ColumnList.
func (l Layout) Scan(sc Scanner) (models.Row, error) {
	fields := l.Schema.Fields()

	var observedAt string
	dest := make([]any, 0, len(fields)+1)
	dest = append(dest, &observedAt)
	for _, f := range fields {
		if f.Kind == schema.Integer {
			dest = append(dest, new(sql.NullInt64))
		} else {
			dest = append(dest, new(sql.NullString))
		}
	}

	if err := sc.Scan(dest...); err != nil {
		return models.Row{}, err
	}

	row := models.Row{ObservedAt: observedAt, Values: make(map[string]any, len(fields))}
	keyColumn := l.KeyColumn()
	for i, f := range fields {
		var v any
		switch d := dest[i+1].(type) {
		case *sql.NullInt64:
			if d.Valid {
				v = d.Int64
			}
		case *sql.NullString:
			if d.Valid {
				v = d.String
			}
		}
		row.Values[f.Column] = v
		if f.Column == keyColumn {
			if s, ok := v.(string); ok {
				row.SerialNumber = s
			}
		}
	}
	return row, nil
}

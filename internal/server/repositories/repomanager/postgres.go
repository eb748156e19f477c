// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and the goose migration hook used
// to bootstrap test databases.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/camfeed/internal/dbx"
	"github.com/dmitrijs2005/camfeed/internal/server/migrations"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/history"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/latest"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/layout"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends SQL repositories whose statements were
// rendered once from the configured schema and table names.
type PostgresRepositoryManager struct {
	schema  *schema.Schema
	history *history.Queries
	latest  *latest.Queries
}

// NewPostgresRepositoryManager renders the statements for s over the two tables.
func NewPostgresRepositoryManager(s *schema.Schema, historyTable, latestTable string) (*PostgresRepositoryManager, error) {
	hl, err := layout.New(historyTable, s)
	if err != nil {
		return nil, err
	}
	ll, err := layout.New(latestTable, s)
	if err != nil {
		return nil, err
	}
	return &PostgresRepositoryManager{
		schema:  s,
		history: history.NewQueries(hl),
		latest:  latest.NewQueries(ll),
	}, nil
}

func (m *PostgresRepositoryManager) Schema() *schema.Schema { return m.schema }

// History returns a history.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) History(db dbx.DBTX) history.Repository {
	return history.NewPostgresRepository(db, m.history)
}

// Latest returns a latest.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Latest(db dbx.DBTX) latest.Repository {
	return latest.NewPostgresRepository(db, m.latest)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations with the given goose dialect.
// The service never calls it; it exists for bootstrapping test databases.
func RunMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

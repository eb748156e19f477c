// Package storetest opens migrated in-memory SQLite databases for tests that
// need real SQL semantics.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/camfeed/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Open returns a fresh database carrying the camera tables. Each call gets
// its own named memory database, closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Shared-cache memory databases lock at table level; one connection keeps
	// concurrent tests from tripping SQLITE_LOCKED.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := repomanager.RunMigrations(context.Background(), db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

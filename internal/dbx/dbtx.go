// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by *sql.DB, *sql.Conn and *sql.Tx,
// and a helper that runs a function inside a transaction on a single pooled
// connection.
package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is the subset of database/sql used by our repos.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conner hands out dedicated connections. *sql.DB satisfies it.
type Conner interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// ReleaseFunc receives errors raised while giving resources back (rollback,
// connection close). They are reported, never returned in place of the
// primary error.
type ReleaseFunc func(op string, err error)

// WithTx acquires one connection from db, begins a transaction on it, runs fn
// with the transactional handle and then commits on success or rolls back on
// error/panic. The connection is returned to the pool on every exit path.
// Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, release, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db Conner, opts *sql.TxOptions, release ReleaseFunc, fn func(ctx context.Context, tx DBTX) error) (err error) {
	if release == nil {
		release = func(string, error) {}
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			release("conn close", cerr)
		}
	}()

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(tx, release)
			panic(p)
		}
		if err != nil {
			rollback(tx, release)
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

func rollback(tx *sql.Tx, release ReleaseFunc) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		release("rollback", err)
	}
}

package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// WithTx runs fn inside a transaction and stores the *sqlx.Tx in the
// context so subsequent DB method calls against ctx are routed through
// it. This is the sole concurrency/isolation primitive the warehouse
// domain relies on (spec §5): row-level locks acquired with
// `SELECT ... FOR UPDATE` inside the transaction serialize concurrent
// movement writers on the same batch.
func (db *DB) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

// getTx extracts transaction from context if present
func (db *DB) getTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

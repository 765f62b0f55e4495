package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxStarter is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxStarter interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxOption adjusts the options of a transaction started by WithTx.
type TxOption func(*pgx.TxOptions)

// Isolation sets the isolation level. The server default is read committed.
func Isolation(level pgx.TxIsoLevel) TxOption {
	return func(o *pgx.TxOptions) { o.IsoLevel = level }
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back otherwise, including when fn panics.
func WithTx(ctx context.Context, db TxStarter, fn func(tx pgx.Tx) error, opts ...TxOption) error {
	var txOpts pgx.TxOptions
	for _, opt := range opts {
		opt(&txOpts)
	}
	return pgx.BeginTxFunc(ctx, db, txOpts, fn)
}

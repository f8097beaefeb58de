package bunrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

type selectCriteria func(*bun.SelectQuery) *bun.SelectQuery

func applyCriteria(q *bun.SelectQuery, criteria ...selectCriteria) *bun.SelectQuery {
	for _, c := range criteria {
		if c != nil {
			q = c(q)
		}
	}
	return q
}

// expectRows maps a write that touched no rows to store.ErrNotFound.
func expectRows(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *bun.DB) bun.IDB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}

type txKey struct{}

// ContextWithTx stores a bun transaction for repositories to pick up.
func ContextWithTx(ctx context.Context, tx bun.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction stored by ContextWithTx.
func TxFromContext(ctx context.Context) (bun.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(bun.Tx)
	return tx, ok
}

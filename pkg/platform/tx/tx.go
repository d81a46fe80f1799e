// Package tx runs store work inside a Postgres transaction.
package tx

import (
	"context"
	"database/sql"
	"time"

	dErrors "carelink/pkg/domain-errors"
)

// DefaultTimeout bounds a transaction when the caller has no deadline.
const DefaultTimeout = 5 * time.Second

// Querier is the subset of *sql.DB and *sql.Tx used by the Postgres stores.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Run begins a transaction, takes a transaction-scoped advisory lock on
// lockKey when it is non-empty, calls fn and commits. Any error rolls back.
//
// The advisory lock serializes writers that share a key (one organization's
// listings, one contact pair) without locking whole tables.
func Run(ctx context.Context, db *sql.DB, timeout time.Duration, lockKey string, fn func(*sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if lockKey != "" {
		if _, err := sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return err
		}
	}

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

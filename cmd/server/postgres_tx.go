package main

import (
	"context"
	"database/sql"
	"time"

	contactservice "carelink/internal/contact/service"
	contactstore "carelink/internal/contact/store"
	quotaservice "carelink/internal/quota/service"
	quotastore "carelink/internal/quota/store"
	"carelink/pkg/platform/tx"
)

// contactPostgresTx serializes writers of one contact pair with an advisory
// lock; the partial unique index backs it up.
type contactPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newContactPostgresTx(db *sql.DB, timeout time.Duration) *contactPostgresTx {
	return &contactPostgresTx{db: db, timeout: timeout}
}

func (t *contactPostgresTx) RunInTx(ctx context.Context, key string, fn func(store contactservice.Store) error) error {
	return tx.Run(ctx, t.db, t.timeout, "contact:"+key, func(sqlTx *sql.Tx) error {
		return fn(contactstore.NewPostgresTx(sqlTx))
	})
}

// listingPostgresTx serializes one organization's listing writes so the
// count and the insert see the same state.
type listingPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newListingPostgresTx(db *sql.DB, timeout time.Duration) *listingPostgresTx {
	return &listingPostgresTx{db: db, timeout: timeout}
}

func (t *listingPostgresTx) RunInTx(ctx context.Context, key string, fn func(store quotaservice.Store) error) error {
	return tx.Run(ctx, t.db, t.timeout, key, func(sqlTx *sql.Tx) error {
		return fn(quotastore.NewPostgresTx(sqlTx))
	})
}

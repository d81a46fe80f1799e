package service

import (
	"context"
	"time"

	"carelink/pkg/platform/lock"
)

// StoreTx runs listing mutations that must see a consistent count. Callers
// pass the owner key so only one organization's writers are serialized.
type StoreTx interface {
	RunInTx(ctx context.Context, key string, fn func(store Store) error) error
}

// shardedTx is the in-memory StoreTx. The Postgres one lives with the server
// wiring and takes an advisory lock on the same key.
type shardedTx struct {
	locks *lock.Sharded
	store Store
}

// NewShardedTx wraps an in-memory store with per-key mutexes.
func NewShardedTx(store Store, timeout time.Duration) StoreTx {
	return &shardedTx{locks: lock.NewSharded(timeout), store: store}
}

func (t *shardedTx) RunInTx(ctx context.Context, key string, fn func(store Store) error) error {
	return t.locks.Do(ctx, key, func() error {
		return fn(t.store)
	})
}

func ownerKey(owner string) string {
	return "listings:" + owner
}

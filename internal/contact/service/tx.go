package service

import (
	"context"
	"time"

	"carelink/pkg/platform/lock"
)

// StoreTx provides a transactional boundary for contact request mutations.
// key is the unordered pair, so requests from opposite directions serialize.
type StoreTx interface {
	RunInTx(ctx context.Context, key string, fn func(store Store) error) error
}

type shardedTx struct {
	locks *lock.Sharded
	store Store
}

// NewShardedTx is the in-memory StoreTx.
func NewShardedTx(store Store, timeout time.Duration) StoreTx {
	return &shardedTx{locks: lock.NewSharded(timeout), store: store}
}

func (t *shardedTx) RunInTx(ctx context.Context, key string, fn func(store Store) error) error {
	return t.locks.Do(ctx, key, func() error {
		return fn(t.store)
	})
}

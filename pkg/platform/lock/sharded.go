// Package lock provides the in-memory counterpart of a transaction-scoped
// advisory lock, used by the in-memory stores' RunInTx.
package lock

import (
	"context"
	"sync"
	"time"

	dErrors "carelink/pkg/domain-errors"
)

// numShards spreads keys over enough mutexes that unrelated keys rarely
// contend.
const numShards = 128

const defaultTimeout = 5 * time.Second

// Sharded serializes callers that share a key.
type Sharded struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func NewSharded(timeout time.Duration) *Sharded {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Sharded{timeout: timeout}
}

// Do runs fn while holding the shard for key.
func (s *Sharded) Do(ctx context.Context, key string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := &s.shards[hash(key)%numShards]
	m.Lock()
	defer m.Unlock()

	// Check again after acquiring the lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn()
}

// hash is FNV-1a.
func hash(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

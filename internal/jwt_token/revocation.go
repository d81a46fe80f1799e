package jwttoken

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RevokedKeyPrefix namespaces revoked token ids. The issuer writes
// RevokedKeyPrefix+jti with a TTL matching the token's remaining lifetime.
const RevokedKeyPrefix = "carelink:revoked:"

// Getter is the part of go-redis the revocation list reads with.
type Getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisRevocations checks bearer token ids against a shared Redis denylist.
// It only reads; revocation happens wherever tokens are issued.
type RedisRevocations struct {
	client Getter
}

func NewRedisRevocations(client Getter) *RedisRevocations {
	return &RedisRevocations{client: client}
}

// IsTokenRevoked reports whether jti is on the denylist. A missing key means
// the token was never revoked or the entry already expired with the token.
func (r *RedisRevocations) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	err := r.client.Get(ctx, RevokedKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

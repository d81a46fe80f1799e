// Package cache keeps short-lived candidate snapshots in Redis so repeated
// searches do not rebuild them from Postgres.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"carelink/internal/discovery"
	"carelink/internal/platform/metrics"
)

const keyPrefix = "carelink:candidates:"

// Client is the part of go-redis the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisSource decorates a CandidateSource. Results may be up to ttl stale.
// Redis failures are logged and the call falls through to next, so a cache
// outage never fails a search.
type RedisSource struct {
	client  Client
	next    discovery.CandidateSource
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*RedisSource)

func WithLogger(logger *slog.Logger) Option {
	return func(s *RedisSource) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RedisSource) {
		s.metrics = m
	}
}

func NewRedisSource(client Client, next discovery.CandidateSource, ttl time.Duration, opts ...Option) *RedisSource {
	s := &RedisSource{client: client, next: next, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisSource) Candidates(ctx context.Context, kind discovery.Kind) ([]discovery.Candidate, error) {
	key := keyPrefix + string(kind)

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []discovery.Candidate
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			s.metrics.IncCandidateCache("hit")
			return cached, nil
		}
		s.logger.WarnContext(ctx, "discarding unreadable candidate snapshot", "kind", kind, "error", jsonErr)
		s.metrics.IncCandidateCache("miss")
	case errors.Is(err, redis.Nil):
		s.metrics.IncCandidateCache("miss")
	default:
		s.metrics.IncCandidateCache("error")
		s.logger.WarnContext(ctx, "candidate cache read failed", "kind", kind, "error", err)
	}

	candidates, err := s.next.Candidates(ctx, kind)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, candidates)
	return candidates, nil
}

func (s *RedisSource) store(ctx context.Context, key string, candidates []discovery.Candidate) {
	payload, err := json.Marshal(candidates)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to encode candidate snapshot", "error", err)
		return
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.metrics.IncCandidateCache("error")
		s.logger.WarnContext(ctx, "candidate cache write failed", "key", key, "error", err)
	}
}

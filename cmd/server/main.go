package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	discoverycache "carelink/internal/discovery/cache"
	jwttoken "carelink/internal/jwt_token"
	"carelink/internal/platform/config"
	"carelink/internal/platform/httpserver"
	"carelink/internal/platform/logger"
	"carelink/internal/platform/metrics"
	"carelink/internal/platform/redis"
	"carelink/pkg/platform/audit"
	"carelink/pkg/platform/audit/publisher"
	kafkastore "carelink/pkg/platform/audit/store/kafka"
)

const (
	auditBufferSize   = 1024
	auditDrainTimeout = 5 * time.Second
)

type auditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "carelink:", err)
		os.Exit(1)
	}
}

// run builds dependencies from the environment and owns the server
// lifecycle. Business logic lives in the internal service packages.
func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	tiers, err := config.LoadTierTable(cfg.TierConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	auditPublisher, closeAudit, err := buildAuditPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), auditDrainTimeout)
		defer cancel()
		closeAudit(drainCtx)
	}()

	var (
		cache   discoverycache.Client
		revoked jwttoken.Getter
	)
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = redisClient
		revoked = redisClient
		st.health["redis"] = redisClient.Health
	}

	router := newRouter(wiring{
		cfg:      cfg,
		stores:   st,
		tiers:    tiers,
		audit:    auditPublisher,
		cache:    cache,
		revoked:  revoked,
		cacheTTL: cfg.CandidateCacheTTL,
		logger:   log,
		metrics:  metrics.New(),
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting carelink", "addr", cfg.Server.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildAuditPublisher returns a nil emitter when no brokers are configured;
// audit lines are then only logged.
func buildAuditPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (auditEmitter, func(context.Context), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, func(context.Context) {}, nil
	}

	client, err := kafkastore.NewClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Kafka.CreateTopic {
		if err := kafkastore.EnsureTopic(ctx, client, cfg.Kafka.Topic, 3); err != nil {
			client.Close()
			return nil, nil, err
		}
	}

	pub := publisher.NewPublisher(kafkastore.New(client, cfg.Kafka.Topic),
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	return pub, func(ctx context.Context) {
		if err := pub.Close(ctx); err != nil {
			log.Warn("audit publisher did not drain", "error", err)
		}
		client.Close()
	}, nil
}

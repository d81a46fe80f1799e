package main

import (
	"context"
	"database/sql"
	"log/slog"

	contactservice "carelink/internal/contact/service"
	contactstore "carelink/internal/contact/store"
	messagingservice "carelink/internal/messaging/service"
	messagingstore "carelink/internal/messaging/store"
	"carelink/internal/platform/config"
	"carelink/internal/platform/postgres"
	profileservice "carelink/internal/profile/service"
	profilestore "carelink/internal/profile/store"
	quotaservice "carelink/internal/quota/service"
	quotastore "carelink/internal/quota/store"
	httptransport "carelink/internal/transport/http"
	watchlistservice "carelink/internal/watchlist/service"
	watchliststore "carelink/internal/watchlist/store"
)

// stores groups the persistence of every feature. Either all stores are
// in-memory or all are Postgres.
type stores struct {
	profiles  profileservice.Store
	contacts  contactservice.Store
	contactTx contactservice.StoreTx
	messages  messagingservice.Store
	watchlist watchlistservice.Store
	listings  quotaservice.Store
	listingTx quotaservice.StoreTx
	health    map[string]httptransport.HealthCheck
	close     func()
}

func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		return memoryStores(cfg), nil
	}

	db, err := postgres.Open(ctx, postgres.Config{
		URL:          cfg.DatabaseURL,
		MaxOpenConns: 25,
		MaxIdleConns: 5,
	})
	if err != nil {
		return nil, err
	}
	if err := postgres.ApplySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return postgresStores(db, cfg), nil
}

func memoryStores(cfg config.Config) *stores {
	contacts := contactstore.NewInMemoryStore()
	listings := quotastore.NewInMemoryStore()
	return &stores{
		profiles:  profilestore.NewInMemoryStore(),
		contacts:  contacts,
		contactTx: contactservice.NewShardedTx(contacts, cfg.TxTimeout),
		messages:  messagingstore.NewInMemoryStore(),
		watchlist: watchliststore.NewInMemoryStore(),
		listings:  listings,
		listingTx: quotaservice.NewShardedTx(listings, cfg.TxTimeout),
		health:    map[string]httptransport.HealthCheck{},
		close:     func() {},
	}
}

func postgresStores(db *sql.DB, cfg config.Config) *stores {
	return &stores{
		profiles:  profilestore.NewPostgres(db),
		contacts:  contactstore.NewPostgres(db),
		contactTx: newContactPostgresTx(db, cfg.TxTimeout),
		messages:  messagingstore.NewPostgres(db),
		watchlist: watchliststore.NewPostgres(db),
		listings:  quotastore.NewPostgres(db),
		listingTx: newListingPostgresTx(db, cfg.TxTimeout),
		health: map[string]httptransport.HealthCheck{
			"postgres": db.PingContext,
		},
		close: func() { _ = db.Close() },
	}
}

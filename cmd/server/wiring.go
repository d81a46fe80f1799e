package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	contacthandler "carelink/internal/contact/handler"
	contactservice "carelink/internal/contact/service"
	"carelink/internal/discovery"
	discoverycache "carelink/internal/discovery/cache"
	discoveryhandler "carelink/internal/discovery/handler"
	jwttoken "carelink/internal/jwt_token"
	messaginghandler "carelink/internal/messaging/handler"
	messagingservice "carelink/internal/messaging/service"
	"carelink/internal/platform/config"
	"carelink/internal/platform/metrics"
	profilehandler "carelink/internal/profile/handler"
	profileservice "carelink/internal/profile/service"
	"carelink/internal/quota"
	quotahandler "carelink/internal/quota/handler"
	quotaservice "carelink/internal/quota/service"
	httptransport "carelink/internal/transport/http"
	watchlisthandler "carelink/internal/watchlist/handler"
	watchlistservice "carelink/internal/watchlist/service"
	authmw "carelink/pkg/platform/middleware/auth"
)

// wiring is everything the router needs that main builds from the
// environment. cache, revocations and audit are optional.
type wiring struct {
	cfg      config.Config
	stores   *stores
	tiers    quota.TierTable
	audit    auditEmitter
	cache    discoverycache.Client
	revoked  jwttoken.Getter
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

func newRouter(w wiring) http.Handler {
	st, log, m := w.stores, w.logger, w.metrics

	profiles := profileservice.New(st.profiles,
		profileservice.WithLogger(log),
		profileservice.WithAuditPublisher(w.audit),
		profileservice.WithMetrics(m),
	)
	contacts := contactservice.New(st.contacts, st.contactTx,
		contactservice.WithLogger(log),
		contactservice.WithAuditPublisher(w.audit),
		contactservice.WithMetrics(m),
	)
	messages := messagingservice.New(st.messages, contacts,
		messagingservice.WithLogger(log),
		messagingservice.WithAuditPublisher(w.audit),
		messagingservice.WithMetrics(m),
	)
	watchlist := watchlistservice.New(st.watchlist, st.profiles,
		watchlistservice.WithLogger(log),
		watchlistservice.WithAuditPublisher(w.audit),
	)
	listings := quotaservice.New(st.listings, st.listingTx, st.profiles,
		quotaservice.WithLogger(log),
		quotaservice.WithAuditPublisher(w.audit),
		quotaservice.WithMetrics(m),
		quotaservice.WithTierTable(w.tiers),
	)

	var source discovery.CandidateSource = discovery.NewStoreSource(st.profiles, st.listings)
	if w.cache != nil {
		source = discoverycache.NewRedisSource(w.cache, source, w.cacheTTL,
			discoverycache.WithLogger(log),
			discoverycache.WithMetrics(m),
		)
	}
	search := discovery.NewService(source,
		discovery.WithLogger(log),
		discovery.WithMetrics(m),
	)

	jwtService := jwttoken.NewJWTService(w.cfg.Server.JWTSigningKey, w.cfg.Server.JWTIssuer, w.cfg.Server.JWTAudience)
	var revocations authmw.TokenRevocationChecker
	if w.revoked != nil {
		revocations = jwttoken.NewRedisRevocations(w.revoked)
	}
	return httptransport.NewRouter(httptransport.Deps{
		Logger:      log,
		Metrics:     m,
		Gatherer:    w.gatherer,
		Validator:   jwttoken.NewJWTServiceAdapter(jwtService),
		Revocations: revocations,
		Timeout:     w.cfg.RequestTimeout,
		Health:      st.health,
	},
		discoveryhandler.New(search, log),
		profilehandler.New(profiles, log),
		contacthandler.New(contacts, log),
		messaginghandler.New(messages, log),
		watchlisthandler.New(watchlist, log),
		quotahandler.New(listings, log),
	)
}

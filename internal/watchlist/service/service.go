package service

import (
	"context"
	"errors"
	"log/slog"

	profilemodels "carelink/internal/profile/models"
	"carelink/internal/watchlist/models"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/audit"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/requestcontext"
)

// Store persists watchlist entries. Create returns sentinel.ErrConflict for
// an existing (owner, watched) pair.
type Store interface {
	Create(ctx context.Context, e *models.Entry) error
	Find(ctx context.Context, owner, watched id.ProfileID) (*models.Entry, error)
	Delete(ctx context.Context, owner, watched id.ProfileID) error
	ListByOwner(ctx context.Context, owner id.ProfileID) ([]*models.Entry, error)
}

type ProfileLookup interface {
	FindByID(ctx context.Context, profileID id.ProfileID) (*profilemodels.Profile, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	profiles       ProfileLookup
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(store Store, profiles ProfileLookup, opts ...Option) *Service {
	s := &Service{store: store, profiles: profiles}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add watches a profile. Adding the same profile twice returns the existing
// entry.
func (s *Service) Add(ctx context.Context, owner, watched id.ProfileID) (*models.Entry, error) {
	e, err := models.NewEntry(id.NewWatchlistEntryID(), owner, watched, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.FindByID(ctx, watched); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, err
	}

	existing, err := s.store.Find(ctx, owner, watched)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, err
	}

	if err := s.store.Create(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// lost a race with an identical add
			return s.store.Find(ctx, owner, watched)
		}
		return nil, err
	}
	s.logAudit(ctx, audit.EventWatchlistAdded,
		"owner_id", owner.String(),
		"watched_id", watched.String(),
	)
	return e, nil
}

func (s *Service) Remove(ctx context.Context, owner, watched id.ProfileID) error {
	if owner.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	if err := s.store.Delete(ctx, owner, watched); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "profile is not on your watchlist")
		}
		return err
	}
	s.logAudit(ctx, audit.EventWatchlistRemoved,
		"owner_id", owner.String(),
		"watched_id", watched.String(),
	)
	return nil
}

// List returns owner's entries, newest first.
func (s *Service) List(ctx context.Context, owner id.ProfileID) ([]*models.Entry, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	return s.store.ListByOwner(ctx, owner)
}

func (s *Service) IsWatched(ctx context.Context, owner, watched id.ProfileID) (bool, error) {
	_, err := s.store.Find(ctx, owner, watched)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	}
	return false, err
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	var publisher audit.Emitter
	if s.auditPublisher != nil {
		publisher = s.auditPublisher
	}
	audit.LogAudit(ctx, s.logger, publisher, event, attrs...)
}

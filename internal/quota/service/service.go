package service

import (
	"context"
	"errors"
	"log/slog"

	"carelink/internal/platform/metrics"
	profilemodels "carelink/internal/profile/models"
	"carelink/internal/quota"
	"carelink/internal/quota/models"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/audit"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	CountActive(ctx context.Context, owner id.ProfileID) (int, error)
	CountFeatured(ctx context.Context, owner id.ProfileID) (int, error)
	ListByOwner(ctx context.Context, owner id.ProfileID) ([]*models.Listing, error)
	ListActive(ctx context.Context) ([]*models.Listing, error)
}

// OrganizationLookup resolves the owner's subscription tier.
type OrganizationLookup interface {
	FindByID(ctx context.Context, profileID id.ProfileID) (*profilemodels.Profile, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ListingService is the call site of the quota checks. Counting and inserting
// happen inside one RunInTx so concurrent requests cannot jointly exceed a
// tier limit.
type ListingService struct {
	store          Store
	tx             StoreTx
	orgs           OrganizationLookup
	tiers          quota.TierTable
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*ListingService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *ListingService) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *ListingService) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ListingService) {
		s.metrics = m
	}
}

// WithTierTable overrides the default tier limits.
func WithTierTable(t quota.TierTable) Option {
	return func(s *ListingService) {
		if t != nil {
			s.tiers = t
		}
	}
}

func New(store Store, tx StoreTx, orgs OrganizationLookup, opts ...Option) *ListingService {
	s := &ListingService{
		store: store,
		tx:    tx,
		orgs:  orgs,
		tiers: quota.DefaultTierTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateListing posts a new active listing for orgID.
//
// Errors: unauthorized without an actor, forbidden unless the actor is the
// organization, validation for a bad draft, conflict when the tier's active
// listing limit is reached.
func (s *ListingService) CreateListing(ctx context.Context, actor, orgID id.ProfileID, draft models.ListingDraft) (*models.Listing, error) {
	tier, err := s.ownerTier(ctx, actor, orgID)
	if err != nil {
		return nil, err
	}

	draft.Normalize()
	listing, err := models.NewListing(id.NewListingID(), orgID, draft, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	var active int
	err = s.tx.RunInTx(ctx, ownerKey(orgID.String()), func(store Store) error {
		active, err = store.CountActive(ctx, orgID)
		if err != nil {
			return err
		}
		if !s.tiers.CanCreateListing(tier, active) {
			return errLimitReached
		}
		return store.Create(ctx, listing)
	})
	if errors.Is(err, errLimitReached) {
		s.metrics.IncListing("blocked")
		s.logAudit(ctx, audit.EventQuotaExceeded,
			"organization_id", orgID.String(),
			"tier", string(tier),
			"kind", "active",
			"current", active,
			"limit", s.tiers.Limit(tier).MaxActiveListings,
		)
		return nil, dErrors.New(dErrors.CodeConflict, "active listing limit reached for the "+string(tier)+" plan")
	}
	if err != nil {
		return nil, translate(err)
	}

	s.metrics.IncListing("created")
	s.logAudit(ctx, audit.EventListingCreated,
		"organization_id", orgID.String(),
		"listing_id", listing.ID.String(),
	)
	return listing, nil
}

// FeatureListing promotes an active listing, subject to the featured limit.
func (s *ListingService) FeatureListing(ctx context.Context, actor id.ProfileID, listingID id.ListingID) (*models.Listing, error) {
	owner, err := s.listingOwner(ctx, listingID)
	if err != nil {
		return nil, err
	}
	tier, err := s.ownerTier(ctx, actor, owner)
	if err != nil {
		return nil, err
	}

	var (
		listing  *models.Listing
		featured int
	)
	err = s.tx.RunInTx(ctx, ownerKey(owner.String()), func(store Store) error {
		listing, err = store.FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		if err := listing.CanFeature(); err != nil {
			return err
		}
		featured, err = store.CountFeatured(ctx, owner)
		if err != nil {
			return err
		}
		if !s.tiers.CanFeature(tier, featured) {
			return errLimitReached
		}
		listing.ApplyFeature(requestcontext.Now(ctx))
		return store.Update(ctx, listing)
	})
	if errors.Is(err, errLimitReached) {
		s.metrics.IncListing("feature_blocked")
		s.logAudit(ctx, audit.EventQuotaExceeded,
			"organization_id", owner.String(),
			"tier", string(tier),
			"kind", "featured",
			"current", featured,
			"limit", s.tiers.Limit(tier).MaxFeaturedListings,
		)
		return nil, dErrors.New(dErrors.CodeConflict, "featured listing limit reached for the "+string(tier)+" plan")
	}
	if err != nil {
		return nil, translate(err)
	}

	s.metrics.IncListing("featured")
	s.logAudit(ctx, audit.EventListingFeatured,
		"organization_id", owner.String(),
		"listing_id", listingID.String(),
	)
	return listing, nil
}

// DeactivateListing frees the listing's active (and featured) slot.
func (s *ListingService) DeactivateListing(ctx context.Context, actor id.ProfileID, listingID id.ListingID) (*models.Listing, error) {
	owner, err := s.listingOwner(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(actor, owner); err != nil {
		return nil, err
	}

	var listing *models.Listing
	err = s.tx.RunInTx(ctx, ownerKey(owner.String()), func(store Store) error {
		listing, err = store.FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		if err := listing.CanDeactivate(); err != nil {
			return err
		}
		listing.ApplyDeactivate(requestcontext.Now(ctx))
		return store.Update(ctx, listing)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.metrics.IncListing("deactivated")
	s.logAudit(ctx, audit.EventListingDeactivated,
		"organization_id", owner.String(),
		"listing_id", listingID.String(),
	)
	return listing, nil
}

// Usage reports the organization's consumption of its tier.
func (s *ListingService) Usage(ctx context.Context, actor, orgID id.ProfileID) (*models.Usage, error) {
	tier, err := s.ownerTier(ctx, actor, orgID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.CountActive(ctx, orgID)
	if err != nil {
		return nil, translate(err)
	}
	featured, err := s.store.CountFeatured(ctx, orgID)
	if err != nil {
		return nil, translate(err)
	}
	limits := s.tiers.Limit(tier)
	return &models.Usage{
		Tier:                string(tier),
		ActiveListings:      active,
		FeaturedListings:    featured,
		MaxActiveListings:   limits.MaxActiveListings,
		MaxFeaturedListings: limits.MaxFeaturedListings,
		RemainingListings:   s.tiers.RemainingListings(tier, active),
		RemainingFeatured:   s.tiers.RemainingFeatured(tier, featured),
	}, nil
}

// ListByOwner returns an organization's listings, newest first.
func (s *ListingService) ListByOwner(ctx context.Context, actor, orgID id.ProfileID) ([]*models.Listing, error) {
	if err := checkOwner(actor, orgID); err != nil {
		return nil, err
	}
	listings, err := s.store.ListByOwner(ctx, orgID)
	if err != nil {
		return nil, translate(err)
	}
	return listings, nil
}

var errLimitReached = errors.New("tier limit reached")

func checkOwner(actor, owner id.ProfileID) error {
	if actor.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	if actor != owner {
		return dErrors.New(dErrors.CodeForbidden, "only the owning organization can manage its listings")
	}
	return nil
}

func (s *ListingService) ownerTier(ctx context.Context, actor, orgID id.ProfileID) (quota.Tier, error) {
	if err := checkOwner(actor, orgID); err != nil {
		return "", err
	}
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return "", err
	}
	attrs, ok := org.Organization()
	if !ok {
		return "", dErrors.New(dErrors.CodeForbidden, "only organizations can post listings")
	}
	return attrs.SubscriptionTier, nil
}

func (s *ListingService) listingOwner(ctx context.Context, listingID id.ListingID) (id.ProfileID, error) {
	listing, err := s.store.FindByID(ctx, listingID)
	if err != nil {
		return id.ProfileID{}, translate(err)
	}
	return listing.OwnerID, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "listing not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "listing already exists")
	}
	return err
}

func (s *ListingService) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	var publisher audit.Emitter
	if s.auditPublisher != nil {
		publisher = s.auditPublisher
	}
	audit.LogAudit(ctx, s.logger, publisher, event, attrs...)
}

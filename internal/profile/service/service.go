package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"carelink/internal/platform/metrics"
	"carelink/internal/profile/models"
	"carelink/internal/score"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/audit"
	"carelink/pkg/platform/sanitize"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/platform/strings"
	"carelink/pkg/requestcontext"
)

// Store is the profile persistence the service needs. Implementations live in
// internal/profile/store.
type Store interface {
	Save(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	ListByRole(ctx context.Context, role id.Role) ([]*models.Profile, error)
	UpdateProviderAttributes(ctx context.Context, profileID id.ProfileID, attrs *models.ProviderAttributes, updatedAt time.Time) error
	UpdateCareScore(ctx context.Context, profileID id.ProfileID, careScore int) error
	UpdateSubscriptionTier(ctx context.Context, profileID id.ProfileID, tier models.SubscriptionTier, updatedAt time.Time) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns provider attribute writes and therefore the denormalized care
// score. Scores are always computed here; callers never supply one.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads a profile by id.
func (s *Service) Get(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	p, err := s.store.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err, "profile not found")
	}
	return p, nil
}

// Save stores a profile created by the identity system. Provider scores are
// recomputed before the write, replacing whatever the payload carried.
func (s *Service) Save(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return dErrors.New(dErrors.CodeBadRequest, "profile is required")
	}
	if err := checkProfile(p); err != nil {
		return err
	}
	if attrs, ok := p.Provider(); ok {
		normalizeProvider(attrs)
		if err := attrs.Validate(); err != nil {
			return err
		}
		attrs.CareScore = score.ComputeScore(*attrs, score.BasicsOf(p)).Total
	}
	if err := s.store.Save(ctx, p); err != nil {
		return translate(err, "profile not found")
	}
	return nil
}

func checkProfile(p *models.Profile) error {
	_, err := models.NewProfile(p.ID, p.Role, p.DisplayName, p.City, p.Location, p.Attributes, p.CreatedAt)
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

// UpdateProviderAttributes replaces the provider payload of profileID and
// stores the recomputed care score in the same write. Verified is an operator
// fact and is kept from the stored row.
//
// Errors: forbidden unless actor owns the profile, not_found for unknown
// profiles, invalid_state for non-provider profiles, validation for bad
// values. Store transport errors are returned unmodified.
func (s *Service) UpdateProviderAttributes(ctx context.Context, actor, profileID id.ProfileID, attrs models.ProviderAttributes) (*models.Profile, score.Result, error) {
	if actor.IsNil() {
		return nil, score.Result{}, dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	if actor != profileID {
		return nil, score.Result{}, dErrors.New(dErrors.CodeForbidden, "only the owner can edit this profile")
	}

	p, err := s.store.FindByID(ctx, profileID)
	if err != nil {
		return nil, score.Result{}, translate(err, "profile not found")
	}
	current, ok := p.Provider()
	if !ok {
		return nil, score.Result{}, dErrors.New(dErrors.CodeInvalidState, "profile is not a provider")
	}

	next := attrs.Clone()
	normalizeProvider(next)
	if err := next.Validate(); err != nil {
		return nil, score.Result{}, err
	}
	next.Verified = current.Verified

	result := score.ComputeScore(*next, score.BasicsOf(p))
	next.CareScore = result.Total

	now := requestcontext.Now(ctx)
	if err := s.store.UpdateProviderAttributes(ctx, profileID, next, now); err != nil {
		return nil, score.Result{}, translate(err, "profile not found")
	}
	p.Attributes = next
	p.UpdatedAt = now

	s.metrics.IncScoreRecomputed()
	s.logAudit(ctx, audit.EventProviderAttributesUpdated,
		"profile_id", profileID.String(),
		"care_score", result.Total,
		"previous_care_score", current.CareScore,
	)
	return p, result, nil
}

// ScoreBreakdown recomputes the score of a provider for display. The stored
// column is not touched.
func (s *Service) ScoreBreakdown(ctx context.Context, profileID id.ProfileID) (score.Result, error) {
	p, err := s.store.FindByID(ctx, profileID)
	if err != nil {
		return score.Result{}, translate(err, "profile not found")
	}
	result, ok := score.Of(p)
	if !ok {
		return score.Result{}, dErrors.New(dErrors.CodeNotFound, "provider not found")
	}
	return result, nil
}

// UpdateSubscriptionTier moves an organization to another plan. Only
// operators may do this; the payment webhook layer acts as one.
func (s *Service) UpdateSubscriptionTier(ctx context.Context, actor, orgID id.ProfileID, tier models.SubscriptionTier) error {
	if !tier.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid subscription tier")
	}
	operator, err := s.store.FindByID(ctx, actor)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeForbidden, "only operators can change plans")
		}
		return err
	}
	if !operator.IsOperator() {
		return dErrors.New(dErrors.CodeForbidden, "only operators can change plans")
	}

	org, err := s.store.FindByID(ctx, orgID)
	if err != nil {
		return translate(err, "organization not found")
	}
	attrs, ok := org.Organization()
	if !ok {
		return dErrors.New(dErrors.CodeInvalidState, "profile is not an organization")
	}
	if attrs.SubscriptionTier == tier {
		return nil
	}

	if err := s.store.UpdateSubscriptionTier(ctx, orgID, tier, requestcontext.Now(ctx)); err != nil {
		return translate(err, "organization not found")
	}
	s.logAudit(ctx, audit.EventSubscriptionTierChanged,
		"organization_id", orgID.String(),
		"from", string(attrs.SubscriptionTier),
		"to", string(tier),
	)
	return nil
}

// RescoreReport summarizes a backfill run.
type RescoreReport struct {
	Scanned int `json:"scanned"`
	Changed int `json:"changed"`
}

// RescoreAll recomputes every provider's stored score, for use after a change
// to the score table. With dryRun set nothing is written.
func (s *Service) RescoreAll(ctx context.Context, dryRun bool) (RescoreReport, error) {
	providers, err := s.store.ListByRole(ctx, id.RoleProvider)
	if err != nil {
		return RescoreReport{}, err
	}

	var report RescoreReport
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return report, dErrors.Wrap(err, dErrors.CodeTimeout, "rescore interrupted")
		}
		report.Scanned++
		result, ok := score.Of(p)
		if !ok {
			continue
		}
		attrs, _ := p.Provider()
		if attrs.CareScore == result.Total {
			continue
		}
		report.Changed++
		if dryRun {
			continue
		}
		if err := s.store.UpdateCareScore(ctx, p.ID, result.Total); err != nil {
			return report, translate(err, "profile not found")
		}
		s.metrics.IncScoreRecomputed()
		s.logAudit(ctx, audit.EventScoreRecomputed,
			"profile_id", p.ID.String(),
			"from", attrs.CareScore,
			"to", result.Total,
		)
	}
	return report, nil
}

func normalizeProvider(a *models.ProviderAttributes) {
	a.Specializations = strings.NormalizeSet(sanitize.Texts(a.Specializations))
	a.Certifications = strings.NormalizeSet(sanitize.Texts(a.Certifications))
	a.Bio = sanitize.Text(a.Bio)
}

// translate maps store sentinels to coded errors. Anything else is a
// transport failure and is returned as is.
func translate(err error, notFound string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "profile has the wrong role for this change")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "profile already exists")
	}
	return err
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	var publisher audit.Emitter
	if s.auditPublisher != nil {
		publisher = s.auditPublisher
	}
	audit.LogAudit(ctx, s.logger, publisher, event, attrs...)
}

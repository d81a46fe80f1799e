package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carelink/internal/contact/models"
	"carelink/internal/platform/metrics"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/audit"
	"carelink/pkg/platform/sanitize"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/requestcontext"
)

// Store persists contact requests.
//
// Create must return sentinel.ErrConflict when another active request for the
// same unordered pair exists; the Postgres store relies on a partial unique
// index for this so the check holds across processes.
type Store interface {
	Create(ctx context.Context, r *models.ContactRequest) error
	FindByID(ctx context.Context, requestID id.ContactRequestID) (*models.ContactRequest, error)
	ListByPair(ctx context.Context, pair models.PairKey) ([]*models.ContactRequest, error)
	Update(ctx context.Context, r *models.ContactRequest) error
	ListByTarget(ctx context.Context, target id.ProfileID, status models.Status) ([]*models.ContactRequest, error)
	ListByRequester(ctx context.Context, requester id.ProfileID, status models.Status) ([]*models.ContactRequest, error)
	HasAccepted(ctx context.Context, pair models.PairKey) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the consent state machine. It is the only gate for private
// messaging: CanMessage is true iff an accepted request exists for the pair.
type Service struct {
	store          Store
	tx             StoreTx
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
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

func New(store Store, tx StoreTx, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tx:     tx,
		tracer: otel.Tracer("carelink/contact"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest opens a pending request from requester to target.
//
// Errors:
//   - conflict: self-targeted, an active request exists for the pair in either
//     direction, or target already declined a request from requester
//   - invalid_input: missing ids
//   - validation: message longer than models.MaxMessageLength
func (s *Service) CreateRequest(ctx context.Context, requester, target id.ProfileID, message string) (_ *models.ContactRequest, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.CreateRequest", trace.WithAttributes(
		attribute.String("contact.requester_id", requester.String()),
		attribute.String("contact.target_id", target.String()),
	))
	defer func() { endSpan(span, err) }()

	r, err := models.NewContactRequest(id.NewContactRequestID(), requester, target, sanitize.Text(message), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	pair := r.Pair()
	err = s.tx.RunInTx(ctx, pair.String(), func(store Store) error {
		existing, err := store.ListByPair(ctx, pair)
		if err != nil {
			return err
		}
		if err := checkSlot(existing, requester, target); err != nil {
			return err
		}
		return store.Create(ctx, r)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			err = dErrors.New(dErrors.CodeConflict, "a contact request between you is already pending")
		}
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.IncContactRequest("conflict")
		}
		return nil, err
	}

	s.metrics.IncContactRequest("created")
	s.logAudit(ctx, audit.EventContactRequested,
		"request_id", r.ID.String(),
		"requester_id", requester.String(),
		"target_id", target.String(),
	)
	return r, nil
}

// checkSlot applies the re-request policy over every request the pair has
// ever had. A rejection only blocks the rejected direction; the party who
// declined may still reach out.
func checkSlot(existing []*models.ContactRequest, requester, target id.ProfileID) error {
	for _, e := range existing {
		switch {
		case e.Status == models.StatusAccepted:
			return dErrors.New(dErrors.CodeConflict, "you are already connected")
		case e.Status == models.StatusPending:
			return dErrors.New(dErrors.CodeConflict, "a contact request between you is already pending")
		case e.RequesterID == requester && e.TargetID == target:
			return dErrors.New(dErrors.CodeConflict, "request was declined")
		}
	}
	return nil
}

// Respond lets the target accept or reject a pending request.
//
// Errors: forbidden unless actor is the target, invalid_state unless the
// request is pending, not_found for unknown ids.
func (s *Service) Respond(ctx context.Context, requestID id.ContactRequestID, actor id.ProfileID, decision models.Decision) (_ *models.ContactRequest, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Respond", trace.WithAttributes(
		attribute.String("contact.request_id", requestID.String()),
		attribute.String("contact.decision", string(decision)),
	))
	defer func() { endSpan(span, err) }()

	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	if decision != models.DecisionAccept && decision != models.DecisionReject {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "decision must be accept or reject")
	}

	current, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, translate(err)
	}

	var updated *models.ContactRequest
	err = s.tx.RunInTx(ctx, current.Pair().String(), func(store Store) error {
		r, err := store.FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := r.CanRespond(actor); err != nil {
			return err
		}
		r.ApplyDecision(decision, requestcontext.Now(ctx))
		if err := store.Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) {
			s.metrics.IncContactRequest("denied")
			s.logAudit(ctx, audit.EventContactDenied,
				"request_id", requestID.String(),
				"responder_id", actor.String(),
			)
		}
		return nil, translate(err)
	}

	event, outcome := audit.EventContactAccepted, "accepted"
	if updated.Status == models.StatusRejected {
		event, outcome = audit.EventContactRejected, "rejected"
	}
	s.metrics.IncContactRequest(outcome)
	s.logAudit(ctx, event,
		"request_id", requestID.String(),
		"requester_id", updated.RequesterID.String(),
		"target_id", updated.TargetID.String(),
	)
	return updated, nil
}

// CanMessage reports whether a and b may exchange private messages. It reads
// the store on every call; callers must not cache the answer.
func (s *Service) CanMessage(ctx context.Context, a, b id.ProfileID) (bool, error) {
	if a.IsNil() || b.IsNil() || a == b {
		return false, nil
	}
	return s.store.HasAccepted(ctx, models.NewPairKey(a, b))
}

// Get returns a request to one of its two parties.
func (s *Service) Get(ctx context.Context, actor id.ProfileID, requestID id.ContactRequestID) (*models.ContactRequest, error) {
	r, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, translate(err)
	}
	if !r.Involves(actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the requester and recipient can view this request")
	}
	return r, nil
}

// ListIncoming returns requests addressed to actor, newest first. An empty
// status lists all of them.
func (s *Service) ListIncoming(ctx context.Context, actor id.ProfileID, status models.Status) ([]*models.ContactRequest, error) {
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	return s.store.ListByTarget(ctx, actor, status)
}

// ListOutgoing returns requests actor has sent, newest first.
func (s *Service) ListOutgoing(ctx context.Context, actor id.ProfileID, status models.Status) ([]*models.ContactRequest, error) {
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	return s.store.ListByRequester(ctx, actor, status)
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "contact request not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "request was already answered")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "a contact request between you is already pending")
	}
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	var publisher audit.Emitter
	if s.auditPublisher != nil {
		publisher = s.auditPublisher
	}
	audit.LogAudit(ctx, s.logger, publisher, event, attrs...)
}

package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carelink/internal/messaging/models"
	"carelink/internal/platform/metrics"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/audit"
	"carelink/pkg/platform/sanitize"
	"carelink/pkg/requestcontext"
)

// Store persists messages.
type Store interface {
	Create(ctx context.Context, m *models.Message) error
	// ListBetween returns up to limit messages exchanged by a and b in either
	// direction, newest first.
	ListBetween(ctx context.Context, a, b id.ProfileID, limit int) ([]*models.Message, error)
}

// ConsentChecker answers whether two profiles may exchange messages. The
// contact service implements it.
type ConsentChecker interface {
	CanMessage(ctx context.Context, a, b id.ProfileID) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	consent        ConsentChecker
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

func New(store Store, consent ConsentChecker, opts ...Option) *Service {
	s := &Service{
		store:   store,
		consent: consent,
		tracer:  otel.Tracer("carelink/messaging"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send delivers a message. Consent is checked against the store on every
// call so a connection is honoured the moment it is accepted.
//
// Errors: forbidden when the pair has no accepted contact request,
// validation for empty or oversized bodies and self-messages.
func (s *Service) Send(ctx context.Context, sender, recipient id.ProfileID, body string) (_ *models.Message, err error) {
	ctx, span := s.tracer.Start(ctx, "messaging.Send", trace.WithAttributes(
		attribute.String("messaging.sender_id", sender.String()),
		attribute.String("messaging.recipient_id", recipient.String()),
	))
	defer func() { endSpan(span, err) }()

	m, err := models.NewMessage(id.NewMessageID(), sender, recipient, sanitize.Text(body), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.requireConsent(ctx, sender, recipient); err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) {
			s.metrics.IncMessage("denied")
			s.logAudit(ctx, audit.EventMessageDenied,
				"sender_id", sender.String(),
				"recipient_id", recipient.String(),
			)
		}
		return nil, err
	}

	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	s.metrics.IncMessage("sent")
	s.logAudit(ctx, audit.EventMessageSent,
		"message_id", m.ID.String(),
		"sender_id", sender.String(),
		"recipient_id", recipient.String(),
	)
	return m, nil
}

// Conversation returns the latest messages between actor and peer, newest
// first. Reading history needs the same consent as sending.
func (s *Service) Conversation(ctx context.Context, actor, peer id.ProfileID, limit int) ([]*models.Message, error) {
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	if peer.IsNil() || peer == actor {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "peer must be another profile")
	}
	if err := s.requireConsent(ctx, actor, peer); err != nil {
		return nil, err
	}
	return s.store.ListBetween(ctx, actor, peer, models.ClampLimit(limit))
}

func (s *Service) requireConsent(ctx context.Context, a, b id.ProfileID) error {
	ok, err := s.consent.CanMessage(ctx, a, b)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeForbidden, "contact request must be accepted before messaging")
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	var publisher audit.Emitter
	if s.auditPublisher != nil {
		publisher = s.auditPublisher
	}
	audit.LogAudit(ctx, s.logger, publisher, event, attrs...)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

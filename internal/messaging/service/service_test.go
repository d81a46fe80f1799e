package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	contactmodels "carelink/internal/contact/models"
	contactservice "carelink/internal/contact/service"
	contactstore "carelink/internal/contact/store"
	"carelink/internal/messaging/models"
	"carelink/internal/messaging/store"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/audit"
	"carelink/pkg/platform/audit/publisher"
	auditmemory "carelink/pkg/platform/audit/store/memory"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	contacts *contactservice.Service
	store    *store.InMemoryStore
	events   *auditmemory.InMemoryStore
	svc      *Service
	ctx      context.Context
	now      time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	requests := contactstore.NewInMemoryStore()
	s.contacts = contactservice.New(requests, contactservice.NewShardedTx(requests, time.Second))
	s.store = store.NewInMemoryStore()
	s.events = auditmemory.NewInMemoryStore()
	s.svc = New(s.store, s.contacts, WithAuditPublisher(publisher.NewPublisher(s.events)))
	s.now = time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) connect(a, b id.ProfileID, decision contactmodels.Decision) {
	r, err := s.contacts.CreateRequest(s.ctx, a, b, "hello")
	s.Require().NoError(err)
	_, err = s.contacts.Respond(s.ctx, r.ID, b, decision)
	s.Require().NoError(err)
}

func (s *ServiceSuite) lastAction() string {
	events, err := s.events.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	return events[len(events)-1].Action
}

func (s *ServiceSuite) TestSendRequiresAcceptedRequest() {
	s.Run("no request at all", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		_, err := s.svc.Send(s.ctx, a, b, "hi")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal(string(audit.EventMessageDenied), s.lastAction())
	})

	s.Run("pending request", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		_, err := s.contacts.CreateRequest(s.ctx, a, b, "hello")
		s.Require().NoError(err)

		_, err = s.svc.Send(s.ctx, a, b, "hi")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejected request", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		s.connect(a, b, contactmodels.DecisionReject)

		_, err := s.svc.Send(s.ctx, b, a, "hi")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("accepted request allows both directions", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		s.connect(a, b, contactmodels.DecisionAccept)

		m, err := s.svc.Send(s.ctx, a, b, "<b>Thanks</b> for accepting")
		s.Require().NoError(err)
		s.Equal("Thanks for accepting", m.Body)
		s.Equal(s.now, m.SentAt)
		s.Equal(string(audit.EventMessageSent), s.lastAction())

		_, err = s.svc.Send(s.ctx, b, a, "You're welcome")
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestSendValidation() {
	a, b := id.NewProfileID(), id.NewProfileID()
	s.connect(a, b, contactmodels.DecisionAccept)

	_, err := s.svc.Send(s.ctx, a, b, "<script>alert(1)</script>")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation), "markup-only body is empty after sanitizing")

	_, err = s.svc.Send(s.ctx, a, a, "note to self")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestConsentIsCheckedOnEverySend() {
	a, b := id.NewProfileID(), id.NewProfileID()
	checker := &flipChecker{}
	svc := New(s.store, checker)

	_, err := svc.Send(s.ctx, a, b, "one")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	checker.allow = true
	_, err = svc.Send(s.ctx, a, b, "two")
	s.NoError(err)

	checker.allow = false
	_, err = svc.Send(s.ctx, a, b, "three")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal(3, checker.calls)
}

func (s *ServiceSuite) TestConsentStoreFailureIsReturnedUnmodified() {
	svc := New(s.store, &flipChecker{err: sentinel.ErrUnavailable})
	_, err := svc.Send(s.ctx, id.NewProfileID(), id.NewProfileID(), "hi")
	s.ErrorIs(err, sentinel.ErrUnavailable)
	s.Empty(dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestConversation() {
	a, b, c := id.NewProfileID(), id.NewProfileID(), id.NewProfileID()
	s.connect(a, b, contactmodels.DecisionAccept)
	s.connect(a, c, contactmodels.DecisionAccept)

	for i, body := range []string{"first", "second", "third"} {
		ctx := requestcontext.WithTime(context.Background(), s.now.Add(time.Duration(i)*time.Minute))
		_, err := s.svc.Send(ctx, a, b, body)
		s.Require().NoError(err)
	}
	_, err := s.svc.Send(s.ctx, a, c, "elsewhere")
	s.Require().NoError(err)

	s.Run("newest first, scoped to the pair", func() {
		msgs, err := s.svc.Conversation(s.ctx, b, a, 0)
		s.Require().NoError(err)
		s.Require().Len(msgs, 3)
		s.Equal("third", msgs[0].Body)
		s.Equal("first", msgs[2].Body)
	})

	s.Run("limit", func() {
		msgs, err := s.svc.Conversation(s.ctx, a, b, 2)
		s.Require().NoError(err)
		s.Len(msgs, 2)
	})

	s.Run("no consent, no history", func() {
		_, err := s.svc.Conversation(s.ctx, b, c, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("peer must differ from actor", func() {
		_, err := s.svc.Conversation(s.ctx, a, a, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("actor is required", func() {
		_, err := s.svc.Conversation(s.ctx, id.ProfileID{}, a, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestClampedLimitReachesStore() {
	a, b := id.NewProfileID(), id.NewProfileID()
	spy := &limitSpy{}
	svc := New(spy, &flipChecker{allow: true})
	_, err := svc.Conversation(s.ctx, a, b, 5000)
	s.Require().NoError(err)
	s.Equal(models.MaxConversationLimit, spy.limit)
}

type flipChecker struct {
	allow bool
	err   error
	calls int
}

func (f *flipChecker) CanMessage(context.Context, id.ProfileID, id.ProfileID) (bool, error) {
	f.calls++
	return f.allow, f.err
}

type limitSpy struct {
	limit int
}

func (l *limitSpy) Create(context.Context, *models.Message) error {
	return errors.New("not used")
}

func (l *limitSpy) ListBetween(_ context.Context, _, _ id.ProfileID, limit int) ([]*models.Message, error) {
	l.limit = limit
	return nil, nil
}

package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carelink/internal/contact/models"
	"carelink/internal/contact/store"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/audit"
	"carelink/pkg/platform/audit/publisher"
	auditmemory "carelink/pkg/platform/audit/store/memory"
	"carelink/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store  *store.InMemoryStore
	events *auditmemory.InMemoryStore
	svc    *Service
	ctx    context.Context
	now    time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.events = auditmemory.NewInMemoryStore()
	s.svc = New(s.store, NewShardedTx(s.store, time.Second),
		WithAuditPublisher(publisher.NewPublisher(s.events)))
	s.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) request(requester, target id.ProfileID) *models.ContactRequest {
	r, err := s.svc.CreateRequest(s.ctx, requester, target, "Hello, are you available?")
	s.Require().NoError(err)
	return r
}

// =============================================================================
// CreateRequest
// =============================================================================

func (s *ServiceSuite) TestCreateRequest() {
	s.Run("creates a pending request", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		r := s.request(a, b)
		s.Equal(models.StatusPending, r.Status)
		s.Equal(s.now, r.CreatedAt)
		s.Nil(r.RespondedAt)

		stored, err := s.svc.Get(s.ctx, a, r.ID)
		s.Require().NoError(err)
		s.Equal(r, stored)
	})

	s.Run("self request is a conflict", func() {
		a := id.NewProfileID()
		_, err := s.svc.CreateRequest(s.ctx, a, a, "hi")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("nil ids", func() {
		_, err := s.svc.CreateRequest(s.ctx, id.ProfileID{}, id.NewProfileID(), "hi")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("message is sanitized and length checked", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		r, err := s.svc.CreateRequest(s.ctx, a, b, "<img src=x onerror=alert(1)>Hi there")
		s.Require().NoError(err)
		s.Equal("Hi there", r.Message)

		_, err = s.svc.CreateRequest(s.ctx, id.NewProfileID(), b, strings.Repeat("x", models.MaxMessageLength+1))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("second request while pending conflicts in both directions", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		s.request(a, b)

		_, err := s.svc.CreateRequest(s.ctx, a, b, "again")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		_, err = s.svc.CreateRequest(s.ctx, b, a, "reverse")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("second request after acceptance conflicts", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		r := s.request(a, b)
		_, err := s.svc.Respond(s.ctx, r.ID, b, models.DecisionAccept)
		s.Require().NoError(err)

		_, err = s.svc.CreateRequest(s.ctx, b, a, "hi")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("audit event", func() {
		s.events.Clear()
		a, b := id.NewProfileID(), id.NewProfileID()
		s.request(a, b)

		events, err := s.events.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventContactRequested), events[0].Action)
		s.Equal(audit.CategoryConsent, events[0].Category)
		s.Equal(b.String(), events[0].Attrs["target_id"])
	})
}

// Justification: the pair slot must hold under concurrent requests from
// opposite directions; exactly one insert may win.
func (s *ServiceSuite) TestConcurrentOppositeRequests() {
	a, b := id.NewProfileID(), id.NewProfileID()

	const rounds = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < rounds; i++ {
		for _, pair := range [][2]id.ProfileID{{a, b}, {b, a}} {
			wg.Add(1)
			go func(from, to id.ProfileID) {
				defer wg.Done()
				if _, err := s.svc.CreateRequest(s.ctx, from, to, "hi"); err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}(pair[0], pair[1])
		}
	}
	wg.Wait()

	s.Equal(1, created)
	all, err := s.store.ListByPair(s.ctx, models.NewPairKey(a, b))
	s.Require().NoError(err)
	s.Len(all, 1)
}

// =============================================================================
// Respond
// =============================================================================

func (s *ServiceSuite) TestRespond() {
	s.Run("target accepts", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		r := s.request(a, b)
		later := s.now.Add(time.Hour)

		updated, err := s.svc.Respond(requestcontext.WithTime(s.ctx, later), r.ID, b, models.DecisionAccept)
		s.Require().NoError(err)
		s.Equal(models.StatusAccepted, updated.Status)
		s.Require().NotNil(updated.RespondedAt)
		s.Equal(later, *updated.RespondedAt)
	})

	s.Run("requester cannot respond", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		r := s.request(a, b)
		s.events.Clear()

		_, err := s.svc.Respond(s.ctx, r.ID, a, models.DecisionAccept)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		events, _ := s.events.ListAll(s.ctx)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventContactDenied), events[0].Action)
	})

	s.Run("third party cannot respond", func() {
		r := s.request(id.NewProfileID(), id.NewProfileID())
		_, err := s.svc.Respond(s.ctx, r.ID, id.NewProfileID(), models.DecisionReject)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("terminal requests cannot change", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		r := s.request(a, b)
		_, err := s.svc.Respond(s.ctx, r.ID, b, models.DecisionReject)
		s.Require().NoError(err)

		_, err = s.svc.Respond(s.ctx, r.ID, b, models.DecisionAccept)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		stored, err := s.svc.Get(s.ctx, b, r.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, stored.Status)
	})

	s.Run("unknown request", func() {
		_, err := s.svc.Respond(s.ctx, id.NewContactRequestID(), id.NewProfileID(), models.DecisionAccept)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid decision", func() {
		a, b := id.NewProfileID(), id.NewProfileID()
		r := s.request(a, b)
		_, err := s.svc.Respond(s.ctx, r.ID, b, "maybe")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// Justification: only one of two racing responses may take effect; the loser
// sees invalid_state.
func (s *ServiceSuite) TestConcurrentResponses() {
	a, b := id.NewProfileID(), id.NewProfileID()
	r := s.request(a, b)

	var (
		wg     sync.WaitGroup
		errs   = make([]error, 2)
		choice = []models.Decision{models.DecisionAccept, models.DecisionReject}
	)
	for i := range choice {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.Respond(s.ctx, r.ID, b, choice[i])
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
			failed++
		}
	}
	s.Equal(1, failed)
}

// =============================================================================
// CanMessage
// =============================================================================

func (s *ServiceSuite) TestCanMessage() {
	a, b := id.NewProfileID(), id.NewProfileID()

	ok, err := s.svc.CanMessage(s.ctx, a, b)
	s.Require().NoError(err)
	s.False(ok, "no request yet")

	r := s.request(a, b)
	ok, _ = s.svc.CanMessage(s.ctx, a, b)
	s.False(ok, "pending does not unlock messaging")

	_, err = s.svc.Respond(s.ctx, r.ID, b, models.DecisionAccept)
	s.Require().NoError(err)

	ok, _ = s.svc.CanMessage(s.ctx, a, b)
	s.True(ok)
	ok, _ = s.svc.CanMessage(s.ctx, b, a)
	s.True(ok, "direction does not matter")

	ok, _ = s.svc.CanMessage(s.ctx, a, a)
	s.False(ok)
}

// =============================================================================
// Rejection scenario and re-request policy
// =============================================================================

func (s *ServiceSuite) TestRejectedRequest() {
	requester, target := id.NewProfileID(), id.NewProfileID()
	r := s.request(requester, target)
	_, err := s.svc.Respond(s.ctx, r.ID, target, models.DecisionReject)
	s.Require().NoError(err)

	s.Run("messaging stays locked", func() {
		ok, err := s.svc.CanMessage(s.ctx, requester, target)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("requester cannot ask again", func() {
		_, err := s.svc.CreateRequest(s.ctx, requester, target, "please")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("request was declined", err.Error())
	})

	s.Run("target may reach out later", func() {
		reverse, err := s.svc.CreateRequest(s.ctx, target, requester, "changed my mind")
		s.Require().NoError(err)
		s.Equal(models.StatusPending, reverse.Status)
	})
}

// =============================================================================
// Reads
// =============================================================================

func (s *ServiceSuite) TestReads() {
	me := id.NewProfileID()
	older := s.request(id.NewProfileID(), me)
	newer, err := s.svc.CreateRequest(requestcontext.WithTime(s.ctx, s.now.Add(time.Minute)), id.NewProfileID(), me, "hi")
	s.Require().NoError(err)
	sent := s.request(me, id.NewProfileID())
	_, err = s.svc.Respond(s.ctx, older.ID, me, models.DecisionAccept)
	s.Require().NoError(err)

	s.Run("incoming newest first", func() {
		list, err := s.svc.ListIncoming(s.ctx, me, "")
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(newer.ID, list[0].ID)
	})

	s.Run("status filter", func() {
		list, err := s.svc.ListIncoming(s.ctx, me, models.StatusPending)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(newer.ID, list[0].ID)
	})

	s.Run("outgoing", func() {
		list, err := s.svc.ListOutgoing(s.ctx, me, "")
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(sent.ID, list[0].ID)
	})

	s.Run("outsiders cannot read a request", func() {
		_, err := s.svc.Get(s.ctx, id.NewProfileID(), sent.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

package store

import (
	"context"
	"sort"
	"sync"

	"carelink/internal/contact/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

// InMemoryStore mirrors the Postgres constraints: Create rejects a second
// active request for an unordered pair, and Update only moves pending rows.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.ContactRequestID]*models.ContactRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[id.ContactRequestID]*models.ContactRequest)}
}

func clone(r *models.ContactRequest) *models.ContactRequest {
	c := *r
	if r.RespondedAt != nil {
		t := *r.RespondedAt
		c.RespondedAt = &t
	}
	return &c
}

func (s *InMemoryStore) Create(_ context.Context, r *models.ContactRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; ok {
		return sentinel.ErrConflict
	}
	pair := r.Pair()
	for _, existing := range s.requests {
		if existing.Pair() == pair && existing.Status.IsActive() {
			return sentinel.ErrConflict
		}
	}
	s.requests[r.ID] = clone(r)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.ContactRequestID) (*models.ContactRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(r), nil
}

// ListByPair returns every request ever made between the two parties,
// newest first.
func (s *InMemoryStore) ListByPair(_ context.Context, pair models.PairKey) ([]*models.ContactRequest, error) {
	return s.list(func(r *models.ContactRequest) bool { return r.Pair() == pair }), nil
}

// Update writes a decision. Only pending rows may change.
func (s *InMemoryStore) Update(_ context.Context, r *models.ContactRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requests[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Status != models.StatusPending {
		return sentinel.ErrInvalidState
	}
	s.requests[r.ID] = clone(r)
	return nil
}

func (s *InMemoryStore) ListByTarget(_ context.Context, target id.ProfileID, status models.Status) ([]*models.ContactRequest, error) {
	return s.list(func(r *models.ContactRequest) bool {
		return r.TargetID == target && (status == "" || r.Status == status)
	}), nil
}

func (s *InMemoryStore) ListByRequester(_ context.Context, requester id.ProfileID, status models.Status) ([]*models.ContactRequest, error) {
	return s.list(func(r *models.ContactRequest) bool {
		return r.RequesterID == requester && (status == "" || r.Status == status)
	}), nil
}

func (s *InMemoryStore) HasAccepted(_ context.Context, pair models.PairKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.Status == models.StatusAccepted && r.Pair() == pair {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) list(match func(*models.ContactRequest) bool) []*models.ContactRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ContactRequest
	for _, r := range s.requests {
		if match(r) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

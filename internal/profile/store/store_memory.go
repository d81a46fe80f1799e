package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"carelink/internal/profile/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in a map. Every read and write copies so
// callers cannot mutate stored state.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.ProfileID]*models.Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.ProfileID]*models.Profile)}
}

func (s *InMemoryStore) Save(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, profileID id.ProfileID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// ListByRole returns profiles of one role ordered by creation time, oldest
// first, matching the Postgres store.
func (s *InMemoryStore) ListByRole(_ context.Context, role id.Role) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Profile
	for _, p := range s.profiles {
		if p.Role == role {
			out = append(out, p.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) UpdateProviderAttributes(_ context.Context, profileID id.ProfileID, attrs *models.ProviderAttributes, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if _, isProvider := p.Provider(); !isProvider {
		return sentinel.ErrInvalidState
	}
	p.Attributes = attrs.Clone()
	p.UpdatedAt = updatedAt
	return nil
}

func (s *InMemoryStore) UpdateCareScore(_ context.Context, profileID id.ProfileID, careScore int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return sentinel.ErrNotFound
	}
	attrs, isProvider := p.Provider()
	if !isProvider {
		return sentinel.ErrInvalidState
	}
	attrs.CareScore = careScore
	return nil
}

func (s *InMemoryStore) UpdateSubscriptionTier(_ context.Context, profileID id.ProfileID, tier models.SubscriptionTier, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return sentinel.ErrNotFound
	}
	attrs, isOrg := p.Organization()
	if !isOrg {
		return sentinel.ErrInvalidState
	}
	attrs.SubscriptionTier = tier
	p.UpdatedAt = updatedAt
	return nil
}

package store

import (
	"context"
	"sort"
	"sync"

	"carelink/internal/watchlist/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

type key struct {
	owner   id.ProfileID
	watched id.ProfileID
}

type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[key]*models.Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[key]*models.Entry)}
}

func (s *InMemoryStore) Create(_ context.Context, e *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{e.OwnerID, e.WatchedID}
	if _, ok := s.entries[k]; ok {
		return sentinel.ErrConflict
	}
	c := *e
	s.entries[k] = &c
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, owner, watched id.ProfileID) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key{owner, watched}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (s *InMemoryStore) Delete(_ context.Context, owner, watched id.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{owner, watched}
	if _, ok := s.entries[k]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, k)
	return nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, owner id.ProfileID) ([]*models.Entry, error) {
	s.mu.RLock()
	var out []*models.Entry
	for k, e := range s.entries {
		if k.owner == owner {
			c := *e
			out = append(out, &c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

package store

import (
	"context"
	"sort"
	"sync"

	"carelink/internal/quota/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

// InMemoryStore keeps listings in a map. Counting and inserting are only
// atomic together when wrapped in the service's sharded RunInTx.
type InMemoryStore struct {
	mu       sync.RWMutex
	listings map[id.ListingID]*models.Listing
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{listings: make(map[id.ListingID]*models.Listing)}
}

func clone(l *models.Listing) *models.Listing {
	c := *l
	if l.Location != nil {
		loc := *l.Location
		c.Location = &loc
	}
	return &c
}

func (s *InMemoryStore) Create(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.ID]; ok {
		return sentinel.ErrConflict
	}
	s.listings[listing.ID] = clone(listing)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, listingID id.ListingID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[listingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(l), nil
}

func (s *InMemoryStore) Update(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.listings[listing.ID] = clone(listing)
	return nil
}

func (s *InMemoryStore) CountActive(_ context.Context, owner id.ProfileID) (int, error) {
	return s.count(owner, func(l *models.Listing) bool { return l.Active }), nil
}

func (s *InMemoryStore) CountFeatured(_ context.Context, owner id.ProfileID) (int, error) {
	return s.count(owner, func(l *models.Listing) bool { return l.Active && l.Featured }), nil
}

func (s *InMemoryStore) count(owner id.ProfileID, match func(*models.Listing) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.listings {
		if l.OwnerID == owner && match(l) {
			n++
		}
	}
	return n
}

// ListByOwner returns newest first.
func (s *InMemoryStore) ListByOwner(_ context.Context, owner id.ProfileID) ([]*models.Listing, error) {
	return s.list(func(l *models.Listing) bool { return l.OwnerID == owner }), nil
}

// ListActive returns every active listing, newest first.
func (s *InMemoryStore) ListActive(_ context.Context) ([]*models.Listing, error) {
	return s.list(func(l *models.Listing) bool { return l.Active }), nil
}

func (s *InMemoryStore) list(match func(*models.Listing) bool) []*models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Listing
	for _, l := range s.listings {
		if match(l) {
			out = append(out, clone(l))
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

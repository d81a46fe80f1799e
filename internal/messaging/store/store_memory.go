package store

import (
	"context"
	"sort"
	"sync"

	"carelink/internal/messaging/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	messages []*models.Message
	ids      map[id.MessageID]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{ids: make(map[id.MessageID]struct{})}
}

func (s *InMemoryStore) Create(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[m.ID]; ok {
		return sentinel.ErrConflict
	}
	c := *m
	s.messages = append(s.messages, &c)
	s.ids[m.ID] = struct{}{}
	return nil
}

// ListBetween walks the log backwards so equal SentAt values keep the most
// recent insert first.
func (s *InMemoryStore) ListBetween(_ context.Context, a, b id.ProfileID, limit int) ([]*models.Message, error) {
	s.mu.RLock()
	var out []*models.Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			c := *m
			out = append(out, &c)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

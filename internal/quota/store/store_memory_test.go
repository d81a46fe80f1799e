package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelink/internal/quota/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

func newListing(t *testing.T, owner id.ProfileID, created time.Time) *models.Listing {
	t.Helper()
	l, err := models.NewListing(id.NewListingID(), owner, models.ListingDraft{Title: "Carer"}, created)
	require.NoError(t, err)
	return l
}

func TestInMemoryStoreCounts(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	owner := id.NewProfileID()
	now := time.Now()

	a := newListing(t, owner, now)
	b := newListing(t, owner, now.Add(time.Minute))
	c := newListing(t, id.NewProfileID(), now)
	for _, l := range []*models.Listing{a, b, c} {
		require.NoError(t, s.Create(ctx, l))
	}
	assert.ErrorIs(t, s.Create(ctx, a), sentinel.ErrConflict)

	b.ApplyFeature(now)
	require.NoError(t, s.Update(ctx, b))

	active, _ := s.CountActive(ctx, owner)
	featured, _ := s.CountFeatured(ctx, owner)
	assert.Equal(t, 2, active)
	assert.Equal(t, 1, featured)

	b.ApplyDeactivate(now)
	require.NoError(t, s.Update(ctx, b))
	active, _ = s.CountActive(ctx, owner)
	featured, _ = s.CountFeatured(ctx, owner)
	assert.Equal(t, 1, active)
	assert.Equal(t, 0, featured)

	listed, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, b.ID, listed[0].ID, "newest first")

	all, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	l := newListing(t, id.NewProfileID(), time.Now())
	require.NoError(t, s.Create(ctx, l))

	l.Title = "changed after create"
	found, err := s.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carer", found.Title)

	_, err = s.FindByID(ctx, id.NewListingID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, newListing(t, id.NewProfileID(), time.Now())), sentinel.ErrNotFound)
}

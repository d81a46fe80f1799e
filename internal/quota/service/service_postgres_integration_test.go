//go:build integration

package service_test

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	profilemodels "carelink/internal/profile/models"
	profilestore "carelink/internal/profile/store"
	"carelink/internal/quota/models"
	"carelink/internal/quota/service"
	"carelink/internal/quota/store"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/tx"
	"carelink/pkg/testutil/containers"
)

// pgTx is the same adapter cmd/server wires: a transaction holding an
// advisory lock on the owner key.
type pgTx struct {
	db *sql.DB
}

func (p pgTx) RunInTx(ctx context.Context, key string, fn func(service.Store) error) error {
	return tx.Run(ctx, p.db, 5*time.Second, key, func(t *sql.Tx) error {
		return fn(store.NewPostgresTx(t))
	})
}

type QuotaPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	profiles *profilestore.PostgresStore
	svc      *service.ListingService
}

func TestQuotaPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(QuotaPostgresSuite))
}

func (s *QuotaPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.profiles = profilestore.NewPostgres(s.postgres.DB)
	s.svc = service.New(store.NewPostgres(s.postgres.DB), pgTx{db: s.postgres.DB}, s.profiles)
}

func (s *QuotaPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "listings", "profiles"))
}

func (s *QuotaPostgresSuite) org(tier profilemodels.SubscriptionTier) id.ProfileID {
	p, err := profilemodels.NewProfile(id.NewProfileID(), id.RoleSeekerOrganization, "Haus am See", "Leipzig", nil,
		&profilemodels.OrganizationAttributes{Type: profilemodels.OrganizationCareHome, SubscriptionTier: tier},
		time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.profiles.Save(context.Background(), p))
	return p.ID
}

// TestConcurrentCreatesRespectLimit races more creators than the free tier
// allows; the advisory lock must keep the count at the limit.
func (s *QuotaPostgresSuite) TestConcurrentCreatesRespectLimit() {
	ctx := context.Background()
	org := s.org(profilemodels.TierFree)
	const goroutines = 25

	var wg sync.WaitGroup
	var created, blocked atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.CreateListing(ctx, org, org, models.ListingDraft{Title: "Pflegekraft"})
			switch {
			case err == nil:
				created.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				blocked.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(2), created.Load())
	s.Equal(int32(goroutines-2), blocked.Load())

	usage, err := s.svc.Usage(ctx, org, org)
	s.Require().NoError(err)
	s.Equal(2, usage.ActiveListings)
}

func (s *QuotaPostgresSuite) TestConcurrentFeatureRespectsLimit() {
	ctx := context.Background()
	org := s.org(profilemodels.TierStandard)

	var listings []id.ListingID
	for range 6 {
		l, err := s.svc.CreateListing(ctx, org, org, models.ListingDraft{Title: "Betreuung"})
		s.Require().NoError(err)
		listings = append(listings, l.ID)
	}

	var wg sync.WaitGroup
	var featured atomic.Int32
	for _, listingID := range listings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.svc.FeatureListing(ctx, org, listingID); err == nil {
				featured.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(2), featured.Load())
}

func (s *QuotaPostgresSuite) TestUpgradeUnblocks() {
	ctx := context.Background()
	org := s.org(profilemodels.TierFree)
	for range 2 {
		_, err := s.svc.CreateListing(ctx, org, org, models.ListingDraft{Title: "Alltagshilfe"})
		s.Require().NoError(err)
	}
	_, err := s.svc.CreateListing(ctx, org, org, models.ListingDraft{Title: "Third"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	s.Require().NoError(s.profiles.UpdateSubscriptionTier(ctx, org, profilemodels.TierStandard, time.Now().UTC()))
	_, err = s.svc.CreateListing(ctx, org, org, models.ListingDraft{Title: "Third"})
	s.NoError(err)
}

package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	profilemodels "carelink/internal/profile/models"
	profilestore "carelink/internal/profile/store"
	quotamodels "carelink/internal/quota/models"
	quotastore "carelink/internal/quota/store"
	id "carelink/pkg/domain"
)

type SourceSuite struct {
	suite.Suite
	profiles *profilestore.InMemoryStore
	listings *quotastore.InMemoryStore
	source   *StoreSource
	ctx      context.Context
	now      time.Time
}

func TestSourceSuite(t *testing.T) {
	suite.Run(t, new(SourceSuite))
}

func (s *SourceSuite) SetupTest() {
	s.profiles = profilestore.NewInMemoryStore()
	s.listings = quotastore.NewInMemoryStore()
	s.source = NewStoreSource(s.profiles, s.listings)
	s.ctx = context.Background()
	s.now = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
}

func (s *SourceSuite) save(role id.Role, name string, attrs profilemodels.Attributes) *profilemodels.Profile {
	p, err := profilemodels.NewProfile(id.NewProfileID(), role, name, "Köln", nil, attrs, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.profiles.Save(s.ctx, p))
	return p
}

func (s *SourceSuite) TestProviders() {
	s.Run("stored score is used as is", func() {
		s.SetupTest()
		s.save(id.RoleProvider, "Eva", &profilemodels.ProviderAttributes{CareScore: 64, ExperienceYears: 1})

		cs, err := s.source.Candidates(s.ctx, KindProvider)
		s.Require().NoError(err)
		s.Require().Len(cs, 1)
		s.Equal(64, cs[0].CareScore)
	})

	s.Run("legacy rows without a score are recomputed", func() {
		s.SetupTest()
		s.save(id.RoleProvider, "Eva", &profilemodels.ProviderAttributes{ExperienceYears: 2})

		cs, err := s.source.Candidates(s.ctx, KindProvider)
		s.Require().NoError(err)
		s.Equal(26, cs[0].CareScore, "name 10 + city 10 + 2 years 6")
	})

	s.Run("hidden names are masked and flagged", func() {
		s.SetupTest()
		p := s.save(id.RoleProvider, "Eva Secret", &profilemodels.ProviderAttributes{})
		p.Visibility.ShowName = false
		s.Require().NoError(s.profiles.Save(s.ctx, p))

		cs, err := s.source.Candidates(s.ctx, KindProvider)
		s.Require().NoError(err)
		s.Equal(profilemodels.AnonymousName, cs[0].Name)
		s.True(cs[0].NameHidden)
	})
}

func (s *SourceSuite) TestOrganizationsAndListings() {
	premium := s.save(id.RoleSeekerOrganization, "Sonnenhof", &profilemodels.OrganizationAttributes{
		Type: profilemodels.OrganizationCareHome, SubscriptionTier: profilemodels.TierPremium,
	})
	free := s.save(id.RoleSeekerOrganization, "Klinik Nord", &profilemodels.OrganizationAttributes{
		Type: profilemodels.OrganizationHospital, SubscriptionTier: profilemodels.TierFree,
	})

	orgs, err := s.source.Candidates(s.ctx, KindOrganization)
	s.Require().NoError(err)
	s.Require().Len(orgs, 2)
	elite := map[string]bool{}
	for _, c := range orgs {
		elite[c.ID] = c.Elite
	}
	s.True(elite[premium.ID.String()])
	s.False(elite[free.ID.String()])

	featured, err := quotamodels.NewListing(id.NewListingID(), free.ID, quotamodels.ListingDraft{Title: "Night nurse"}, s.now)
	s.Require().NoError(err)
	featured.ApplyFeature(s.now)
	inactive, err := quotamodels.NewListing(id.NewListingID(), free.ID, quotamodels.ListingDraft{Title: "Old post"}, s.now)
	s.Require().NoError(err)
	inactive.ApplyDeactivate(s.now)
	s.Require().NoError(s.listings.Create(s.ctx, featured))
	s.Require().NoError(s.listings.Create(s.ctx, inactive))

	listings, err := s.source.Candidates(s.ctx, KindListing)
	s.Require().NoError(err)
	s.Require().Len(listings, 1)
	s.Equal("Night nurse", listings[0].Name)
	s.True(listings[0].Elite)
	s.Equal(profilemodels.OrganizationHospital, listings[0].CompanyType)
	s.Equal(free.ID.String(), listings[0].ProfileID)
}

func (s *SourceSuite) TestUnknownKind() {
	_, err := s.source.Candidates(s.ctx, Kind("robot"))
	s.Error(err)
}

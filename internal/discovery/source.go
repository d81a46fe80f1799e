package discovery

import (
	"context"
	"fmt"

	profilemodels "carelink/internal/profile/models"
	quotamodels "carelink/internal/quota/models"
	"carelink/internal/score"
	id "carelink/pkg/domain"
)

// CandidateSource loads every searchable candidate of one kind.
type CandidateSource interface {
	Candidates(ctx context.Context, kind Kind) ([]Candidate, error)
}

type ProfileReader interface {
	ListByRole(ctx context.Context, role id.Role) ([]*profilemodels.Profile, error)
}

type ListingReader interface {
	ListActive(ctx context.Context) ([]*quotamodels.Listing, error)
}

// StoreSource builds candidates straight from the profile and listing
// stores. Store errors are returned unmodified.
type StoreSource struct {
	profiles ProfileReader
	listings ListingReader
}

func NewStoreSource(profiles ProfileReader, listings ListingReader) *StoreSource {
	return &StoreSource{profiles: profiles, listings: listings}
}

func (s *StoreSource) Candidates(ctx context.Context, kind Kind) ([]Candidate, error) {
	switch kind {
	case KindProvider:
		return s.providers(ctx)
	case KindOrganization:
		return s.organizations(ctx)
	case KindListing:
		return s.activeListings(ctx)
	}
	return nil, fmt.Errorf("unknown candidate kind %q", kind)
}

func (s *StoreSource) providers(ctx context.Context) ([]Candidate, error) {
	profiles, err := s.profiles.ListByRole(ctx, id.RoleProvider)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		attrs, ok := p.Provider()
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Kind:            KindProvider,
			ID:              p.ID.String(),
			ProfileID:       p.ID.String(),
			Name:            p.PublicName(),
			NameHidden:      !p.Visibility.ShowName,
			City:            p.City,
			Description:     attrs.Bio,
			Specializations: attrs.Specializations,
			LanguageLevel:   attrs.LanguageLevel,
			Availability:    attrs.Availability,
			HourlyRate:      attrs.HourlyRate,
			CareScore:       careScore(p, attrs),
			Location:        p.Location,
			CreatedAt:       p.CreatedAt,
		})
	}
	return out, nil
}

// careScore trusts the stored column unless it is zero while scored fields
// are filled in, which only happens for rows written before scores were
// kept server-side.
func careScore(p *profilemodels.Profile, attrs *profilemodels.ProviderAttributes) int {
	if attrs.CareScore > 0 {
		return attrs.CareScore
	}
	return score.ComputeScore(*attrs, score.BasicsOf(p)).Total
}

func (s *StoreSource) organizations(ctx context.Context) ([]Candidate, error) {
	orgs, err := s.profiles.ListByRole(ctx, id.RoleSeekerOrganization)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(orgs))
	for _, p := range orgs {
		attrs, ok := p.Organization()
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Kind:        KindOrganization,
			ID:          p.ID.String(),
			ProfileID:   p.ID.String(),
			Name:        p.PublicName(),
			NameHidden:  !p.Visibility.ShowName,
			City:        p.City,
			Description: attrs.Description,
			CompanyType: attrs.Type,
			Elite:       attrs.SubscriptionTier.IsElite(),
			Location:    p.Location,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out, nil
}

// activeListings joins each listing with its owner so company-type filters
// apply to listings too.
func (s *StoreSource) activeListings(ctx context.Context) ([]Candidate, error) {
	listings, err := s.listings.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	orgs, err := s.profiles.ListByRole(ctx, id.RoleSeekerOrganization)
	if err != nil {
		return nil, err
	}
	companyType := make(map[id.ProfileID]profilemodels.OrganizationType, len(orgs))
	for _, p := range orgs {
		if attrs, ok := p.Organization(); ok {
			companyType[p.ID] = attrs.Type
		}
	}

	out := make([]Candidate, 0, len(listings))
	for _, l := range listings {
		out = append(out, Candidate{
			Kind:        KindListing,
			ID:          l.ID.String(),
			ProfileID:   l.OwnerID.String(),
			Name:        l.Title,
			City:        l.City,
			Description: l.Description,
			CompanyType: companyType[l.OwnerID],
			Elite:       l.Featured,
			Location:    l.Location,
			CreatedAt:   l.CreatedAt,
		})
	}
	return out, nil
}

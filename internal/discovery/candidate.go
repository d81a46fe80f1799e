// Package discovery ranks providers, organizations and listings against a
// search filter. Search itself is pure; Service adds loading, pagination and
// instrumentation around it.
package discovery

import (
	"time"

	"carelink/internal/geo"
	profilemodels "carelink/internal/profile/models"
	dErrors "carelink/pkg/domain-errors"
)

// Kind is the type of thing a candidate represents.
type Kind string

const (
	KindProvider     Kind = "provider"
	KindOrganization Kind = "organization"
	KindListing      Kind = "listing"
)

// AllKinds is the load order used when a filter does not restrict kinds.
var AllKinds = []Kind{KindProvider, KindOrganization, KindListing}

func (k Kind) IsValid() bool {
	switch k {
	case KindProvider, KindOrganization, KindListing:
		return true
	}
	return false
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kind must be provider, organization or listing")
	}
	return k, nil
}

// Candidate is the flattened, searchable view of one result. Fields that do
// not apply to a kind stay zero; a filter on such a field excludes it.
type Candidate struct {
	Kind            Kind                           `json:"kind"`
	ID              string                         `json:"id"`
	ProfileID       string                         `json:"profile_id"`
	Name            string                         `json:"name"`
	NameHidden      bool                           `json:"name_hidden,omitempty"`
	City            string                         `json:"city,omitempty"`
	Description     string                         `json:"description,omitempty"`
	Specializations []string                       `json:"specializations,omitempty"`
	LanguageLevel   profilemodels.LanguageLevel    `json:"language_level,omitempty"`
	Availability    profilemodels.AvailabilityMode `json:"availability,omitempty"`
	CompanyType     profilemodels.OrganizationType `json:"company_type,omitempty"`
	HourlyRate      *float64                       `json:"hourly_rate,omitempty"`
	CareScore       int                            `json:"care_score"`
	Elite           bool                           `json:"elite"`
	Location        *geo.Point                     `json:"location,omitempty"`
	CreatedAt       time.Time                      `json:"created_at"`
}

package models

import (
	"time"

	"carelink/internal/geo"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
)

// AnonymousName replaces the display name when the owner hides it.
const AnonymousName = "Anonymous"

// Visibility holds the owner's per-field disclosure choices.
type Visibility struct {
	ShowName  bool `json:"show_name"`
	ShowEmail bool `json:"show_email"`
	ShowPhone bool `json:"show_phone"`
}

// Profile is owned by the identity system; this engine only reads it, except
// for the provider score column.
//
// Invariants:
//   - Role is valid and matches the Attributes payload type
//     (provider → *ProviderAttributes, seeker_organization →
//     *OrganizationAttributes, seeker_relative → *RelativeAttributes,
//     operator → nil)
//   - Location, when present, is a valid WGS84 point
type Profile struct {
	ID          id.ProfileID
	Role        id.Role
	DisplayName string
	City        string
	Email       string
	Phone       string
	Location    *geo.Point
	Visibility  Visibility
	Attributes  Attributes
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProfile validates the role/payload pairing.
func NewProfile(profileID id.ProfileID, role id.Role, displayName, city string, location *geo.Point, attrs Attributes, now time.Time) (*Profile, error) {
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "profile id is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	if err := checkPayload(role, attrs); err != nil {
		return nil, err
	}
	if location != nil && !location.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "location is out of range")
	}
	return &Profile{
		ID:          profileID,
		Role:        role,
		DisplayName: displayName,
		City:        city,
		Location:    location,
		Visibility:  Visibility{ShowName: true},
		Attributes:  attrs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func checkPayload(role id.Role, attrs Attributes) error {
	ok := false
	switch role {
	case id.RoleProvider:
		_, ok = attrs.(*ProviderAttributes)
	case id.RoleSeekerOrganization:
		_, ok = attrs.(*OrganizationAttributes)
	case id.RoleSeekerRelative:
		_, ok = attrs.(*RelativeAttributes)
	case id.RoleOperator:
		ok = attrs == nil
	}
	if !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "attributes do not match role "+role.String())
	}
	return nil
}

// Provider returns the provider payload when the profile is a provider.
func (p *Profile) Provider() (*ProviderAttributes, bool) {
	a, ok := p.Attributes.(*ProviderAttributes)
	return a, ok && a != nil
}

// Organization returns the organization payload when the profile is one.
func (p *Profile) Organization() (*OrganizationAttributes, bool) {
	a, ok := p.Attributes.(*OrganizationAttributes)
	return a, ok && a != nil
}

// Relative returns the relative payload when the profile is one.
func (p *Profile) Relative() (*RelativeAttributes, bool) {
	a, ok := p.Attributes.(*RelativeAttributes)
	return a, ok && a != nil
}

// PublicName is the name shown to other users.
func (p *Profile) PublicName() string {
	if !p.Visibility.ShowName {
		return AnonymousName
	}
	return p.DisplayName
}

// PublicView returns a copy with hidden contact fields blanked.
func (p *Profile) PublicView() Profile {
	view := *p
	view.DisplayName = p.PublicName()
	if !p.Visibility.ShowEmail {
		view.Email = ""
	}
	if !p.Visibility.ShowPhone {
		view.Phone = ""
	}
	return view
}

// IsOperator reports whether the profile can act on other accounts' plans.
func (p *Profile) IsOperator() bool {
	return p.Role == id.RoleOperator
}

// Clone returns a deep copy so stores never hand out shared payloads.
func (p *Profile) Clone() *Profile {
	c := *p
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	switch a := p.Attributes.(type) {
	case *ProviderAttributes:
		c.Attributes = a.Clone()
	case *OrganizationAttributes:
		cp := *a
		c.Attributes = &cp
	case *RelativeAttributes:
		cp := *a
		if a.CareStart != nil {
			start := *a.CareStart
			cp.CareStart = &start
		}
		c.Attributes = &cp
	}
	return &c
}

package models

import (
	"time"

	dErrors "carelink/pkg/domain-errors"
)

// LanguageLevel is a CEFR proficiency level. The ordinal order A1 < ... < C2
// is what the score table relies on.
type LanguageLevel string

const (
	LanguageLevelNone LanguageLevel = ""
	LanguageLevelA1   LanguageLevel = "A1"
	LanguageLevelA2   LanguageLevel = "A2"
	LanguageLevelB1   LanguageLevel = "B1"
	LanguageLevelB2   LanguageLevel = "B2"
	LanguageLevelC1   LanguageLevel = "C1"
	LanguageLevelC2   LanguageLevel = "C2"
)

var languageOrdinals = map[LanguageLevel]int{
	LanguageLevelA1: 1,
	LanguageLevelA2: 2,
	LanguageLevelB1: 3,
	LanguageLevelB2: 4,
	LanguageLevelC1: 5,
	LanguageLevelC2: 6,
}

// ParseLanguageLevel accepts "" (not provided) or one of A1..C2.
func ParseLanguageLevel(s string) (LanguageLevel, error) {
	l := LanguageLevel(s)
	if l == LanguageLevelNone || l.IsValid() {
		return l, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid language level")
}

func (l LanguageLevel) IsValid() bool {
	_, ok := languageOrdinals[l]
	return ok
}

// Ordinal returns 1 for A1 through 6 for C2, and 0 when unset.
func (l LanguageLevel) Ordinal() int {
	return languageOrdinals[l]
}

// AvailabilityMode describes how a provider can be booked.
type AvailabilityMode string

const (
	AvailabilityNone     AvailabilityMode = ""
	AvailabilityFullTime AvailabilityMode = "full_time"
	AvailabilityPartTime AvailabilityMode = "part_time"
	AvailabilityLiveIn   AvailabilityMode = "live_in"
	AvailabilityHourly   AvailabilityMode = "hourly"
	AvailabilityFlexible AvailabilityMode = "flexible"
)

func (a AvailabilityMode) IsValid() bool {
	switch a {
	case AvailabilityFullTime, AvailabilityPartTime, AvailabilityLiveIn, AvailabilityHourly, AvailabilityFlexible:
		return true
	}
	return false
}

// ParseAvailabilityMode accepts "" (not provided) or a supported mode.
func ParseAvailabilityMode(s string) (AvailabilityMode, error) {
	a := AvailabilityMode(s)
	if a == AvailabilityNone || a.IsValid() {
		return a, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid availability mode")
}

// OrganizationType classifies care-seeking organizations.
type OrganizationType string

const (
	OrganizationCareHome        OrganizationType = "care_home"
	OrganizationHomeCareService OrganizationType = "home_care_service"
	OrganizationHospital        OrganizationType = "hospital"
	OrganizationAgency          OrganizationType = "agency"
	OrganizationOther           OrganizationType = "other"
)

func (t OrganizationType) IsValid() bool {
	switch t {
	case OrganizationCareHome, OrganizationHomeCareService, OrganizationHospital, OrganizationAgency, OrganizationOther:
		return true
	}
	return false
}

// SubscriptionTier names a paid plan. Limits live in the quota package.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierStandard SubscriptionTier = "standard"
	TierPremium  SubscriptionTier = "premium"
)

func (t SubscriptionTier) IsValid() bool {
	switch t {
	case TierFree, TierStandard, TierPremium:
		return true
	}
	return false
}

// IsElite reports tiers whose organizations and listings rank ahead of
// others in discovery.
func (t SubscriptionTier) IsElite() bool {
	return t == TierPremium
}

// ParseSubscriptionTier validates external tier input.
func ParseSubscriptionTier(s string) (SubscriptionTier, error) {
	t := SubscriptionTier(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid subscription tier")
	}
	return t, nil
}

// Attributes is the role-specific payload of a Profile. The interface is
// sealed: only the three payload types in this package implement it.
type Attributes interface {
	attributes()
}

// ProviderAttributes belong to a care provider and feed the care score.
// CareScore is denormalized and only ever written by the profile service.
type ProviderAttributes struct {
	ExperienceYears     int              `json:"experience_years"`
	LanguageLevel       LanguageLevel    `json:"language_level,omitempty"`
	Specializations     []string         `json:"specializations"`
	Certifications      []string         `json:"certifications"`
	Bio                 string           `json:"bio"`
	HourlyRate          *float64         `json:"hourly_rate,omitempty"`
	Availability        AvailabilityMode `json:"availability,omitempty"`
	ICUExperience       bool             `json:"icu_experience"`
	PediatricExperience bool             `json:"pediatric_experience"`
	Verified            bool             `json:"verified"`
	CareScore           int              `json:"care_score"`
}

// OrganizationAttributes belong to a care-seeking organization.
type OrganizationAttributes struct {
	Type             OrganizationType `json:"type"`
	EmployeeCount    int              `json:"employee_count"`
	FoundedYear      int              `json:"founded_year,omitempty"`
	Description      string           `json:"description"`
	Verified         bool             `json:"verified"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier"`
}

// RelativeAttributes belong to a relative seeking care for a family member.
type RelativeAttributes struct {
	CareNeeds string     `json:"care_needs"`
	CareStart *time.Time `json:"care_start,omitempty"`
}

func (*ProviderAttributes) attributes()     {}
func (*OrganizationAttributes) attributes() {}
func (*RelativeAttributes) attributes()     {}

// Validate checks the provider payload for values no UI should produce.
func (a *ProviderAttributes) Validate() error {
	if a.ExperienceYears < 0 || a.ExperienceYears > 80 {
		return dErrors.New(dErrors.CodeValidation, "experience_years must be between 0 and 80")
	}
	if a.LanguageLevel != LanguageLevelNone && !a.LanguageLevel.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid language level")
	}
	if a.Availability != AvailabilityNone && !a.Availability.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid availability mode")
	}
	if a.HourlyRate != nil && *a.HourlyRate < 0 {
		return dErrors.New(dErrors.CodeValidation, "hourly_rate cannot be negative")
	}
	return nil
}

// HasHourlyRate reports a positive rate; a zero rate counts as unset.
func (a *ProviderAttributes) HasHourlyRate() bool {
	return a.HourlyRate != nil && *a.HourlyRate > 0
}

// Clone deep-copies the slices and the rate pointer.
func (a *ProviderAttributes) Clone() *ProviderAttributes {
	c := *a
	c.Specializations = append([]string(nil), a.Specializations...)
	c.Certifications = append([]string(nil), a.Certifications...)
	if a.HourlyRate != nil {
		r := *a.HourlyRate
		c.HourlyRate = &r
	}
	return &c
}

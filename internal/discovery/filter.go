package discovery

import (
	"strings"

	"carelink/internal/geo"
	profilemodels "carelink/internal/profile/models"
	dErrors "carelink/pkg/domain-errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Radius restricts results to a great-circle distance from Center.
type Radius struct {
	Center geo.Point `json:"center"`
	Km     float64   `json:"km"`
}

// Filter is a discovery query. Every field is optional; set fields AND
// together. Pointer fields distinguish "not set" from zero.
type Filter struct {
	Text          string                         `json:"text,omitempty"`
	Kinds         []Kind                         `json:"kinds,omitempty"`
	City          string                         `json:"city,omitempty"`
	LanguageLevel profilemodels.LanguageLevel    `json:"language_level,omitempty"`
	Availability  profilemodels.AvailabilityMode `json:"availability,omitempty"`
	CompanyType   profilemodels.OrganizationType `json:"company_type,omitempty"`
	MinHourlyRate *float64                       `json:"min_hourly_rate,omitempty"`
	MaxHourlyRate *float64                       `json:"max_hourly_rate,omitempty"`
	MinCareScore  int                            `json:"min_care_score,omitempty"`
	Box           *geo.BoundingBox               `json:"box,omitempty"`
	Radius        *Radius                        `json:"radius,omitempty"`
	Page          int                            `json:"page,omitempty"`
	PageSize      int                            `json:"page_size,omitempty"`
}

// Validate rejects enum values no client should send. Ranges are never
// rejected; Normalize repairs them.
func (f Filter) Validate() error {
	for _, k := range f.Kinds {
		if _, err := ParseKind(string(k)); err != nil {
			return err
		}
	}
	if f.LanguageLevel != profilemodels.LanguageLevelNone && !f.LanguageLevel.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid language level")
	}
	if f.Availability != profilemodels.AvailabilityNone && !f.Availability.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid availability mode")
	}
	if f.CompanyType != "" && !f.CompanyType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid company type")
	}
	if f.Radius != nil && !f.Radius.Center.Valid() {
		return dErrors.New(dErrors.CodeInvalidInput, "radius center is out of range")
	}
	return nil
}

// Normalize returns a copy with swapped ranges, clamped paging and trimmed
// text. It never fails.
func (f Filter) Normalize() Filter {
	f.Text = strings.TrimSpace(f.Text)
	f.City = strings.TrimSpace(f.City)

	if f.MinHourlyRate != nil && f.MaxHourlyRate != nil && *f.MinHourlyRate > *f.MaxHourlyRate {
		f.MinHourlyRate, f.MaxHourlyRate = f.MaxHourlyRate, f.MinHourlyRate
	}
	if f.MinCareScore < 0 {
		f.MinCareScore = 0
	}
	if f.Box != nil {
		box := f.Box.Normalize()
		f.Box = &box
	}
	if f.Radius != nil && f.Radius.Km < 0 {
		r := *f.Radius
		r.Km = 0
		f.Radius = &r
	}

	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = DefaultPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}

	if len(f.Kinds) > 0 {
		seen := make(map[Kind]bool, len(f.Kinds))
		kinds := make([]Kind, 0, len(f.Kinds))
		for _, k := range f.Kinds {
			if !seen[k] {
				seen[k] = true
				kinds = append(kinds, k)
			}
		}
		f.Kinds = kinds
	}
	return f
}

// kinds returns the kinds to load, in AllKinds order.
func (f Filter) kinds() []Kind {
	if len(f.Kinds) == 0 {
		return AllKinds
	}
	want := make(map[Kind]bool, len(f.Kinds))
	for _, k := range f.Kinds {
		want[k] = true
	}
	out := make([]Kind, 0, len(want))
	for _, k := range AllKinds {
		if want[k] {
			out = append(out, k)
		}
	}
	return out
}

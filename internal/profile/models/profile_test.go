package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelink/internal/geo"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
)

func TestNewProfile(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("role and payload must agree", func(t *testing.T) {
		_, err := NewProfile(id.NewProfileID(), id.RoleProvider, "Anna", "Berlin", nil, &OrganizationAttributes{}, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewProfile(id.NewProfileID(), id.RoleOperator, "Ops", "", nil, &ProviderAttributes{}, now)
		require.Error(t, err)
	})

	t.Run("each role accepts its own payload", func(t *testing.T) {
		cases := []struct {
			role  id.Role
			attrs Attributes
		}{
			{id.RoleProvider, &ProviderAttributes{}},
			{id.RoleSeekerOrganization, &OrganizationAttributes{SubscriptionTier: TierFree}},
			{id.RoleSeekerRelative, &RelativeAttributes{}},
			{id.RoleOperator, nil},
		}
		for _, tc := range cases {
			p, err := NewProfile(id.NewProfileID(), tc.role, "n", "c", nil, tc.attrs, now)
			require.NoError(t, err, tc.role)
			assert.Equal(t, now, p.CreatedAt)
		}
	})

	t.Run("rejects out-of-range location", func(t *testing.T) {
		_, err := NewProfile(id.NewProfileID(), id.RoleSeekerRelative, "n", "c", &geo.Point{Lat: 100}, &RelativeAttributes{}, now)
		require.Error(t, err)
	})

	t.Run("accessors return the typed payload", func(t *testing.T) {
		p, err := NewProfile(id.NewProfileID(), id.RoleProvider, "Anna", "Berlin", nil, &ProviderAttributes{ExperienceYears: 3}, now)
		require.NoError(t, err)
		attrs, ok := p.Provider()
		require.True(t, ok)
		assert.Equal(t, 3, attrs.ExperienceYears)
		_, ok = p.Organization()
		assert.False(t, ok)
	})
}

func TestPublicView(t *testing.T) {
	p := &Profile{
		DisplayName: "Anna Schmidt",
		Email:       "anna@example.org",
		Phone:       "+49 30 1234",
		Visibility:  Visibility{ShowName: false, ShowEmail: true},
	}
	view := p.PublicView()
	assert.Equal(t, AnonymousName, view.DisplayName)
	assert.Equal(t, "anna@example.org", view.Email)
	assert.Empty(t, view.Phone)
	assert.Equal(t, "Anna Schmidt", p.DisplayName, "original is not mutated")
}

func TestProviderAttributesValidate(t *testing.T) {
	negative := -1.0
	cases := map[string]ProviderAttributes{
		"negative experience": {ExperienceYears: -1},
		"bad language":        {LanguageLevel: "D1"},
		"bad availability":    {Availability: "sometimes"},
		"negative rate":       {HourlyRate: &negative},
	}
	for name, attrs := range cases {
		t.Run(name, func(t *testing.T) {
			err := attrs.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	zero := 0.0
	a := ProviderAttributes{HourlyRate: &zero}
	require.NoError(t, a.Validate())
	assert.False(t, a.HasHourlyRate())
}

func TestLanguageLevel(t *testing.T) {
	assert.Equal(t, 0, LanguageLevelNone.Ordinal())
	assert.Less(t, LanguageLevelA1.Ordinal(), LanguageLevelC2.Ordinal())

	l, err := ParseLanguageLevel("")
	require.NoError(t, err)
	assert.Equal(t, LanguageLevelNone, l)

	_, err = ParseLanguageLevel("c2")
	require.Error(t, err)
}

func TestClone(t *testing.T) {
	rate := 30.0
	p, err := NewProfile(id.NewProfileID(), id.RoleProvider, "Anna", "Berlin", &geo.Point{Lat: 52.5, Lng: 13.4},
		&ProviderAttributes{Specializations: []string{"ICU"}, HourlyRate: &rate}, time.Now())
	require.NoError(t, err)

	c := p.Clone()
	c.Location.Lat = 0
	attrs, _ := c.Provider()
	attrs.Specializations[0] = "changed"
	*attrs.HourlyRate = 1

	orig, _ := p.Provider()
	assert.Equal(t, 52.5, p.Location.Lat)
	assert.Equal(t, "ICU", orig.Specializations[0])
	assert.Equal(t, 30.0, *orig.HourlyRate)
}

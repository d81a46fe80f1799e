// Package score computes the 0–100 care score shown on provider profiles and
// used as the main discovery ranking key.
//
// ComputeScore is pure and deterministic. It is monotonic: completing or
// improving any single input never lowers the total. The profile service is
// the only writer of the denormalized care_score column and always calls this
// function itself; a score supplied by a client is never trusted.
package score

import (
	"math"

	"carelink/internal/profile/models"
	"carelink/pkg/platform/strings"
)

// Category maxima. They sum to 100.
const (
	MaxName            = 10.0
	MaxCity            = 10.0
	MaxExperience      = 15.0
	MaxLanguage        = 15.0
	MaxSpecializations = 15.0
	MaxCertifications  = 10.0
	MaxBio             = 10.0
	MaxAvailability    = 5.0
	MaxHourlyRate      = 5.0
	MaxExperienceFlag  = 2.5
)

// Labels used in the breakdown.
const (
	LabelName            = "Display name"
	LabelCity            = "City"
	LabelExperience      = "Experience"
	LabelLanguage        = "Language level"
	LabelSpecializations = "Specializations"
	LabelCertifications  = "Certifications"
	LabelBio             = "Bio"
	LabelAvailability    = "Availability"
	LabelHourlyRate      = "Hourly rate"
	LabelICU             = "ICU experience"
	LabelPediatric       = "Pediatric experience"
)

var languagePoints = map[models.LanguageLevel]float64{
	models.LanguageLevelA1: 3,
	models.LanguageLevelA2: 6,
	models.LanguageLevelB1: 9,
	models.LanguageLevelB2: 12,
	models.LanguageLevelC1: 14,
	models.LanguageLevelC2: 15,
}

// ProfileBasics are the generic profile fields that count toward the score.
type ProfileBasics struct {
	DisplayName string
	City        string
}

// BasicsOf extracts the scored generic fields from a profile.
func BasicsOf(p *models.Profile) ProfileBasics {
	return ProfileBasics{DisplayName: p.DisplayName, City: p.City}
}

// Item is one line of the breakdown.
type Item struct {
	Label     string  `json:"label"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
	Satisfied bool    `json:"satisfied"`
}

// Result is the rounded total plus the per-category breakdown.
type Result struct {
	Total     int     `json:"total"`
	Raw       float64 `json:"raw"`
	Breakdown []Item  `json:"breakdown"`
}

// ComputeScore scores a provider profile snapshot. Every input is optional
// and falls into its zero-point branch when missing.
func ComputeScore(attrs models.ProviderAttributes, basics ProfileBasics) Result {
	items := []Item{
		binary(LabelName, MaxName, strings.RuneLen(basics.DisplayName) > 0),
		binary(LabelCity, MaxCity, strings.RuneLen(basics.City) > 0),
		capped(LabelExperience, MaxExperience, float64(max(attrs.ExperienceYears, 0))*3),
		capped(LabelLanguage, MaxLanguage, languagePoints[attrs.LanguageLevel]),
		capped(LabelSpecializations, MaxSpecializations, float64(len(strings.NormalizeSet(attrs.Specializations)))*5),
		capped(LabelCertifications, MaxCertifications, float64(len(strings.NormalizeSet(attrs.Certifications)))*2.5),
		capped(LabelBio, MaxBio, bioPoints(attrs.Bio)),
		binary(LabelAvailability, MaxAvailability, attrs.Availability != models.AvailabilityNone),
		binary(LabelHourlyRate, MaxHourlyRate, attrs.HasHourlyRate()),
		binary(LabelICU, MaxExperienceFlag, attrs.ICUExperience),
		binary(LabelPediatric, MaxExperienceFlag, attrs.PediatricExperience),
	}

	var raw float64
	for _, it := range items {
		raw += it.Points
	}
	return Result{
		Total:     clamp(int(math.Round(raw)), 0, 100),
		Raw:       raw,
		Breakdown: items,
	}
}

// Of scores a provider profile. ok is false for non-provider profiles.
func Of(p *models.Profile) (Result, bool) {
	attrs, ok := p.Provider()
	if !ok {
		return Result{}, false
	}
	return ComputeScore(*attrs, BasicsOf(p)), true
}

func bioPoints(bio string) float64 {
	n := strings.RuneLen(bio)
	switch {
	case n >= 100:
		return 10
	case n >= 50:
		return 7
	case n > 0:
		return 3
	}
	return 0
}

func binary(label string, maxPoints float64, ok bool) Item {
	it := Item{Label: label, MaxPoints: maxPoints, Satisfied: ok}
	if ok {
		it.Points = maxPoints
	}
	return it
}

func capped(label string, maxPoints, points float64) Item {
	points = math.Min(maxPoints, math.Max(0, points))
	return Item{Label: label, Points: points, MaxPoints: maxPoints, Satisfied: points >= maxPoints}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

package discovery

import (
	"slices"
	"strings"

	"carelink/internal/geo"
	textutil "carelink/pkg/platform/strings"
)

// Search returns the candidates matching every set predicate of f, ranked by
// elite first, then care score, then newest. The sort is stable, so equal
// keys keep their input order. candidates is not modified.
func Search(candidates []Candidate, f Filter) []Candidate {
	f = f.Normalize()

	var kinds map[Kind]bool
	if len(f.Kinds) > 0 {
		kinds = make(map[Kind]bool, len(f.Kinds))
		for _, k := range f.Kinds {
			kinds[k] = true
		}
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if kinds != nil && !kinds[c.Kind] {
			continue
		}
		if matches(c, f) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, compareRank)
	return out
}

func compareRank(a, b Candidate) int {
	if a.Elite != b.Elite {
		if a.Elite {
			return -1
		}
		return 1
	}
	if a.CareScore != b.CareScore {
		return b.CareScore - a.CareScore
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

func matches(c Candidate, f Filter) bool {
	if f.Text != "" && !matchesText(c, f.Text) {
		return false
	}
	if f.City != "" && !strings.EqualFold(strings.TrimSpace(c.City), f.City) {
		return false
	}
	if f.LanguageLevel != "" && c.LanguageLevel != f.LanguageLevel {
		return false
	}
	if f.Availability != "" && c.Availability != f.Availability {
		return false
	}
	if f.CompanyType != "" && c.CompanyType != f.CompanyType {
		return false
	}
	if f.MinHourlyRate != nil || f.MaxHourlyRate != nil {
		if c.HourlyRate == nil {
			return false
		}
		if f.MinHourlyRate != nil && *c.HourlyRate < *f.MinHourlyRate {
			return false
		}
		if f.MaxHourlyRate != nil && *c.HourlyRate > *f.MaxHourlyRate {
			return false
		}
	}
	if f.MinCareScore > 0 && c.CareScore < f.MinCareScore {
		return false
	}
	if f.Box != nil && !geo.InBoundingBoxPtr(c.Location, *f.Box) {
		return false
	}
	if f.Radius != nil && !geo.WithinRadiusPtr(c.Location, f.Radius.Center, f.Radius.Km) {
		return false
	}
	return true
}

// matchesText is a case-insensitive substring match on the public name,
// specializations and description. A hidden name is not searchable.
func matchesText(c Candidate, text string) bool {
	if !c.NameHidden && textutil.ContainsFold(c.Name, text) {
		return true
	}
	return textutil.ContainsFold(c.Description, text) ||
		textutil.AnyContainsFold(c.Specializations, text)
}

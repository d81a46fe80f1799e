// Package quota holds the tier limits for organization listings and the pure
// checks against them. Counting listings is the store's job; callers must run
// the count and the insert in one transaction (see service.ListingService).
package quota

import (
	"fmt"

	profilemodels "carelink/internal/profile/models"
)

type Tier = profilemodels.SubscriptionTier

// Limits caps how many listings an organization may keep active and how many
// of those may be featured.
type Limits struct {
	MaxActiveListings   int `yaml:"max_active_listings" json:"max_active_listings"`
	MaxFeaturedListings int `yaml:"max_featured_listings" json:"max_featured_listings"`
}

// TierTable maps every tier to its limits. It is read-only configuration.
type TierTable map[Tier]Limits

// DefaultTierTable is used when no tier file is configured.
func DefaultTierTable() TierTable {
	return TierTable{
		profilemodels.TierFree:     {MaxActiveListings: 2, MaxFeaturedListings: 0},
		profilemodels.TierStandard: {MaxActiveListings: 10, MaxFeaturedListings: 2},
		profilemodels.TierPremium:  {MaxActiveListings: 50, MaxFeaturedListings: 10},
	}
}

// Validate rejects tables a typo in a tier file could produce.
func (t TierTable) Validate() error {
	if _, ok := t[profilemodels.TierFree]; !ok {
		return fmt.Errorf("tier table must define %q", profilemodels.TierFree)
	}
	for tier, l := range t {
		if !tier.IsValid() {
			return fmt.Errorf("unknown tier %q", tier)
		}
		if l.MaxActiveListings < 0 || l.MaxFeaturedListings < 0 {
			return fmt.Errorf("tier %q: limits cannot be negative", tier)
		}
		if l.MaxFeaturedListings > l.MaxActiveListings {
			return fmt.Errorf("tier %q: max_featured_listings exceeds max_active_listings", tier)
		}
	}
	return nil
}

// Limit returns the limits for tier. Unknown or empty tiers get free limits.
func (t TierTable) Limit(tier Tier) Limits {
	if l, ok := t[tier]; ok {
		return l
	}
	return t[profilemodels.TierFree]
}

func (t TierTable) CanCreateListing(tier Tier, currentActive int) bool {
	return currentActive < t.Limit(tier).MaxActiveListings
}

func (t TierTable) CanFeature(tier Tier, currentFeatured int) bool {
	return currentFeatured < t.Limit(tier).MaxFeaturedListings
}

func (t TierTable) RemainingListings(tier Tier, currentActive int) int {
	return max(0, t.Limit(tier).MaxActiveListings-currentActive)
}

func (t TierTable) RemainingFeatured(tier Tier, currentFeatured int) int {
	return max(0, t.Limit(tier).MaxFeaturedListings-currentFeatured)
}

var defaults = DefaultTierTable()

// CanCreateListing checks against the default tier table.
func CanCreateListing(tier Tier, currentActive int) bool {
	return defaults.CanCreateListing(tier, currentActive)
}

// CanFeature checks against the default tier table.
func CanFeature(tier Tier, currentFeatured int) bool {
	return defaults.CanFeature(tier, currentFeatured)
}

func RemainingListings(tier Tier, currentActive int) int {
	return defaults.RemainingListings(tier, currentActive)
}

func RemainingFeatured(tier Tier, currentFeatured int) int {
	return defaults.RemainingFeatured(tier, currentFeatured)
}

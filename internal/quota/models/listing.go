package models

import (
	"time"

	"carelink/internal/geo"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/sanitize"
	"carelink/pkg/platform/strings"
)

const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 5000
)

// Listing is a job posting by an organization. Only active listings count
// toward the tier limit; featured listings are a subset of active ones.
//
// Invariants:
//   - Featured implies Active
//   - OwnerID never changes
type Listing struct {
	ID          id.ListingID `json:"id"`
	OwnerID     id.ProfileID `json:"owner_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	City        string       `json:"city"`
	Location    *geo.Point   `json:"location,omitempty"`
	Active      bool         `json:"active"`
	Featured    bool         `json:"featured"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ListingDraft is the caller-supplied part of a new listing.
type ListingDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	City        string     `json:"city"`
	Location    *geo.Point `json:"location,omitempty"`
}

// Normalize strips markup and surrounding whitespace.
func (d *ListingDraft) Normalize() {
	d.Title = sanitize.Text(d.Title)
	d.Description = sanitize.Text(d.Description)
	d.City = sanitize.Text(d.City)
}

func (d *ListingDraft) Validate() error {
	if d.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if strings.RuneLen(d.Title) > MaxTitleLength {
		return dErrors.New(dErrors.CodeValidation, "title is too long")
	}
	if strings.RuneLen(d.Description) > MaxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description is too long")
	}
	if d.Location != nil && !d.Location.Valid() {
		return dErrors.New(dErrors.CodeValidation, "location is out of range")
	}
	return nil
}

// NewListing builds an active, unfeatured listing.
func NewListing(listingID id.ListingID, owner id.ProfileID, draft ListingDraft, now time.Time) (*Listing, error) {
	if listingID.IsNil() || owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing and owner ids are required")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return &Listing{
		ID:          listingID,
		OwnerID:     owner,
		Title:       draft.Title,
		Description: draft.Description,
		City:        draft.City,
		Location:    draft.Location,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanFeature reports whether the listing itself may be promoted. The tier
// limit is checked separately.
func (l *Listing) CanFeature() error {
	if !l.Active {
		return dErrors.New(dErrors.CodeInvalidState, "only active listings can be featured")
	}
	if l.Featured {
		return dErrors.New(dErrors.CodeInvalidState, "listing is already featured")
	}
	return nil
}

func (l *Listing) ApplyFeature(now time.Time) {
	l.Featured = true
	l.UpdatedAt = now
}

func (l *Listing) CanDeactivate() error {
	if !l.Active {
		return dErrors.New(dErrors.CodeInvalidState, "listing is already inactive")
	}
	return nil
}

// ApplyDeactivate also drops the featured flag so the slot is freed.
func (l *Listing) ApplyDeactivate(now time.Time) {
	l.Active = false
	l.Featured = false
	l.UpdatedAt = now
}

// Usage is an organization's current consumption of its tier.
type Usage struct {
	Tier                string `json:"tier"`
	ActiveListings      int    `json:"active_listings"`
	FeaturedListings    int    `json:"featured_listings"`
	MaxActiveListings   int    `json:"max_active_listings"`
	MaxFeaturedListings int    `json:"max_featured_listings"`
	RemainingListings   int    `json:"remaining_listings"`
	RemainingFeatured   int    `json:"remaining_featured"`
}

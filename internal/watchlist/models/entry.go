package models

import (
	"time"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
)

// Entry records that Owner keeps an eye on Watched. (Owner, Watched) is
// unique.
type Entry struct {
	ID        id.WatchlistEntryID `json:"id"`
	OwnerID   id.ProfileID        `json:"owner_id"`
	WatchedID id.ProfileID        `json:"watched_id"`
	CreatedAt time.Time           `json:"created_at"`
}

func NewEntry(entryID id.WatchlistEntryID, owner, watched id.ProfileID, now time.Time) (*Entry, error) {
	if owner.IsNil() || watched.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner and watched profile are required")
	}
	if owner == watched {
		return nil, dErrors.New(dErrors.CodeValidation, "cannot watch your own profile")
	}
	return &Entry{ID: entryID, OwnerID: owner, WatchedID: watched, CreatedAt: now}, nil
}

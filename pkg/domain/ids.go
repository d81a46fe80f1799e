package domain

import (
	"github.com/google/uuid"

	dErrors "carelink/pkg/domain-errors"
)

// Typed identifiers keep profile, request, listing and message IDs from being
// mixed up at compile time. All of them are UUIDs on the wire and in storage.
type (
	ProfileID        uuid.UUID
	ContactRequestID uuid.UUID
	ListingID        uuid.UUID
	MessageID        uuid.UUID
	WatchlistEntryID uuid.UUID
)

func (id ProfileID) String() string        { return uuid.UUID(id).String() }
func (id ContactRequestID) String() string { return uuid.UUID(id).String() }
func (id ListingID) String() string        { return uuid.UUID(id).String() }
func (id MessageID) String() string        { return uuid.UUID(id).String() }
func (id WatchlistEntryID) String() string { return uuid.UUID(id).String() }

func (id ProfileID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ContactRequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ListingID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id WatchlistEntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps the canonical UUID string form in JSON payloads.
func (id ProfileID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id ContactRequestID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ListingID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id MessageID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id WatchlistEntryID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ProfileID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ContactRequestID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ListingID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MessageID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *WatchlistEntryID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewProfileID and friends mint random (v4) identifiers.
func NewProfileID() ProfileID               { return ProfileID(uuid.New()) }
func NewContactRequestID() ContactRequestID { return ContactRequestID(uuid.New()) }
func NewListingID() ListingID               { return ListingID(uuid.New()) }
func NewMessageID() MessageID               { return MessageID(uuid.New()) }
func NewWatchlistEntryID() WatchlistEntryID { return WatchlistEntryID(uuid.New()) }

// ParseProfileID parses external input into a ProfileID.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseProfileID(s string) (ProfileID, error) {
	u, err := parseUUID(s, "profile id")
	return ProfileID(u), err
}

func ParseContactRequestID(s string) (ContactRequestID, error) {
	u, err := parseUUID(s, "contact request id")
	return ContactRequestID(u), err
}

func ParseListingID(s string) (ListingID, error) {
	u, err := parseUUID(s, "listing id")
	return ListingID(u), err
}

func ParseMessageID(s string) (MessageID, error) {
	u, err := parseUUID(s, "message id")
	return MessageID(u), err
}

func ParseWatchlistEntryID(s string) (WatchlistEntryID, error) {
	u, err := parseUUID(s, "watchlist entry id")
	return WatchlistEntryID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

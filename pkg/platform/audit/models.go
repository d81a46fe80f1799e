package audit

import (
	"context"
	"time"

	id "carelink/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention.
type EventCategory string

const (
	// CategoryConsent covers contact-request lifecycle changes. These are the
	// record of who agreed to be contacted by whom.
	CategoryConsent EventCategory = "consent"

	// CategorySecurity covers denied actions: messaging without consent,
	// responding to someone else's request, acting on another org's plan.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory     `json:"category"`
	Timestamp time.Time         `json:"timestamp"`
	ActorID   id.ProfileID      `json:"actor_id"`
	Action    string            `json:"action"`
	RequestID string            `json:"request_id,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	// Contact request events
	EventContactRequested AuditEvent = "contact_request_created"
	EventContactAccepted  AuditEvent = "contact_request_accepted"
	EventContactRejected  AuditEvent = "contact_request_rejected"
	EventContactDenied    AuditEvent = "contact_request_denied"

	// Messaging events
	EventMessageSent   AuditEvent = "message_sent"
	EventMessageDenied AuditEvent = "message_denied"

	// Profile events
	EventProviderAttributesUpdated AuditEvent = "provider_attributes_updated"
	EventScoreRecomputed           AuditEvent = "care_score_recomputed"
	EventSubscriptionTierChanged   AuditEvent = "subscription_tier_changed"

	// Listing / quota events
	EventListingCreated     AuditEvent = "listing_created"
	EventListingFeatured    AuditEvent = "listing_featured"
	EventListingDeactivated AuditEvent = "listing_deactivated"
	EventQuotaExceeded      AuditEvent = "listing_quota_exceeded"

	// Watchlist events
	EventWatchlistAdded   AuditEvent = "watchlist_added"
	EventWatchlistRemoved AuditEvent = "watchlist_removed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventContactRequested: CategoryConsent,
	EventContactAccepted:  CategoryConsent,
	EventContactRejected:  CategoryConsent,

	EventContactDenied:           CategorySecurity,
	EventMessageDenied:           CategorySecurity,
	EventSubscriptionTierChanged: CategorySecurity,
	EventQuotaExceeded:           CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

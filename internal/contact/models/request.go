// Package models holds the contact request aggregate: a directional proposal
// between two profiles whose acceptance is the only thing that unlocks private
// messaging.
package models

import (
	"time"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/strings"
)

// MaxMessageLength is measured in runes after sanitizing.
const MaxMessageLength = 1000

// Status is the lifecycle state of a request. Accepted and rejected are
// terminal; nothing re-enters pending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsActive reports statuses that occupy the pair's single active slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusAccepted
}

// ParseStatus accepts "" (no filter) or a known status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st == "" || st.IsValid() {
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status")
}

// Decision is the target's answer to a pending request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if d != DecisionAccept && d != DecisionReject {
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be accept or reject")
	}
	return d, nil
}

// PairKey identifies the unordered pair {A, B}. PairKey(a, b) == PairKey(b, a).
type PairKey struct {
	Low  id.ProfileID
	High id.ProfileID
}

func NewPairKey(a, b id.ProfileID) PairKey {
	if a.String() <= b.String() {
		return PairKey{Low: a, High: b}
	}
	return PairKey{Low: b, High: a}
}

func (k PairKey) String() string {
	return k.Low.String() + ":" + k.High.String()
}

// ContactRequest is created by the requester and answered only by the target.
//
// Invariants:
//   - RequesterID != TargetID
//   - RespondedAt is set iff Status is terminal
//   - terminal requests never change again
type ContactRequest struct {
	ID          id.ContactRequestID `json:"id"`
	RequesterID id.ProfileID        `json:"requester_id"`
	TargetID    id.ProfileID        `json:"target_id"`
	Message     string              `json:"message"`
	Status      Status              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	RespondedAt *time.Time          `json:"responded_at,omitempty"`
}

// NewContactRequest builds a pending request. The message must already be
// sanitized.
func NewContactRequest(requestID id.ContactRequestID, requester, target id.ProfileID, message string, now time.Time) (*ContactRequest, error) {
	if requestID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request id is required")
	}
	if requester.IsNil() || target.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "requester and target are required")
	}
	if requester == target {
		return nil, dErrors.New(dErrors.CodeConflict, "cannot send a contact request to yourself")
	}
	if strings.RuneLen(message) > MaxMessageLength {
		return nil, dErrors.New(dErrors.CodeValidation, "message is too long")
	}
	return &ContactRequest{
		ID:          requestID,
		RequesterID: requester,
		TargetID:    target,
		Message:     message,
		Status:      StatusPending,
		CreatedAt:   now,
	}, nil
}

func (r *ContactRequest) Pair() PairKey {
	return NewPairKey(r.RequesterID, r.TargetID)
}

// Involves reports whether p is one of the two parties.
func (r *ContactRequest) Involves(p id.ProfileID) bool {
	return r.RequesterID == p || r.TargetID == p
}

// CanRespond checks that actor may answer the request now.
func (r *ContactRequest) CanRespond(actor id.ProfileID) error {
	if actor != r.TargetID {
		return dErrors.New(dErrors.CodeForbidden, "only the recipient can respond to this request")
	}
	if r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvalidState, "request was already "+string(r.Status))
	}
	return nil
}

// ApplyDecision moves a pending request to its terminal state.
// Callers must check CanRespond first.
func (r *ContactRequest) ApplyDecision(d Decision, now time.Time) {
	if d == DecisionAccept {
		r.Status = StatusAccepted
	} else {
		r.Status = StatusRejected
	}
	r.RespondedAt = &now
}

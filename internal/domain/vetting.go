package domain

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationStatusSubmitted   ApplicationStatus = "Submitted"
	ApplicationStatusUnderReview ApplicationStatus = "UnderReview"
	ApplicationStatusApproved    ApplicationStatus = "Approved"
	ApplicationStatusDenied      ApplicationStatus = "Denied"
	ApplicationStatusOnHold      ApplicationStatus = "OnHold"
	ApplicationStatusWithdrawn   ApplicationStatus = "Withdrawn"
)

// ApplicationStatuses is the closed set of vetting statuses.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusSubmitted,
	ApplicationStatusUnderReview,
	ApplicationStatusApproved,
	ApplicationStatusDenied,
	ApplicationStatusOnHold,
	ApplicationStatusWithdrawn,
}

// ParseApplicationStatus returns the matching status for s, or false when s
// is not one of the six known statuses.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	for _, st := range ApplicationStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// legalTransitions is the authoritative transition table. Approved, Denied
// and Withdrawn are terminal: they have no entry.
var legalTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusSubmitted: {
		ApplicationStatusUnderReview,
		ApplicationStatusWithdrawn,
	},
	ApplicationStatusUnderReview: {
		ApplicationStatusApproved,
		ApplicationStatusDenied,
		ApplicationStatusOnHold,
		ApplicationStatusWithdrawn,
	},
	ApplicationStatusOnHold: {
		ApplicationStatusUnderReview,
		ApplicationStatusDenied,
		ApplicationStatusWithdrawn,
	},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s ApplicationStatus) Terminal() bool {
	return len(legalTransitions[s]) == 0
}

// RequiresReasoning reports whether a transition into the status must carry a
// non-empty reasoning text.
func (s ApplicationStatus) RequiresReasoning() bool {
	return s == ApplicationStatusDenied || s == ApplicationStatusOnHold
}

// Code maps the application status to the member-level vetting status code.
func (s ApplicationStatus) Code() VettingStatusCode {
	switch s {
	case ApplicationStatusSubmitted:
		return VettingCodeSubmitted
	case ApplicationStatusUnderReview:
		return VettingCodeUnderReview
	case ApplicationStatusApproved:
		return VettingCodeApproved
	case ApplicationStatusDenied:
		return VettingCodeDenied
	case ApplicationStatusOnHold:
		return VettingCodeOnHold
	case ApplicationStatusWithdrawn:
		return VettingCodeWithdrawn
	}
	return VettingCodeNone
}

// VettingApplication holds one member's questionnaire and review state.
// Questionnaire answers are immutable after submission.
type VettingApplication struct {
	ID          uuid.UUID         `json:"id"`
	MemberID    uuid.UUID         `json:"member_id"`
	Answers     string            `json:"answers"`
	Status      ApplicationStatus `json:"status"`
	SubmittedAt time.Time         `json:"submitted_at"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy  *uuid.UUID        `json:"reviewed_by,omitempty"`
	AdminNotes  string            `json:"admin_notes,omitempty"`
}

// VettingAuditEntry is an append-only record of one accepted status change.
// Entries are never updated or deleted.
type VettingAuditEntry struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	Action        string    `json:"action"`
	OldValue      string    `json:"old_value"`
	NewValue      string    `json:"new_value"`
	Note          string    `json:"note,omitempty"`
	PerformedBy   uuid.UUID `json:"performed_by"`
	CreatedAt     time.Time `json:"created_at"`
}

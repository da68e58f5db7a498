package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Concluded reports whether the event ended strictly before now.
func (e Event) Concluded(now time.Time) bool {
	return e.EndsAt.Before(now)
}

type ParticipationType string

const (
	ParticipationTypeRSVP   ParticipationType = "RSVP"
	ParticipationTypeTicket ParticipationType = "Ticket"
)

var participationTypeLabels = map[ParticipationType]string{
	ParticipationTypeRSVP:   "RSVP",
	ParticipationTypeTicket: "Ticket",
}

func (t ParticipationType) Label() string {
	if label, ok := participationTypeLabels[t]; ok {
		return label
	}
	return "Unknown"
}

// ParseParticipationType returns the matching type for s, or false when s is
// not RSVP or Ticket.
func ParseParticipationType(s string) (ParticipationType, bool) {
	t := ParticipationType(s)
	_, ok := participationTypeLabels[t]
	return t, ok
}

type ParticipationStatus string

const (
	ParticipationStatusActive     ParticipationStatus = "Active"
	ParticipationStatusCancelled  ParticipationStatus = "Cancelled"
	ParticipationStatusRefunded   ParticipationStatus = "Refunded"
	ParticipationStatusWaitlisted ParticipationStatus = "Waitlisted"
)

var participationStatusLabels = map[ParticipationStatus]string{
	ParticipationStatusActive:     "Active",
	ParticipationStatusCancelled:  "Cancelled",
	ParticipationStatusRefunded:   "Refunded",
	ParticipationStatusWaitlisted: "Waitlisted",
}

func (s ParticipationStatus) Label() string {
	if label, ok := participationStatusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// EventParticipation links a member to an event. A Cancelled or Refunded
// participation always carries CancelledAt and CancelReason.
type EventParticipation struct {
	ID           uuid.UUID           `json:"id"`
	MemberID     uuid.UUID           `json:"member_id"`
	EventID      uuid.UUID           `json:"event_id"`
	Type         ParticipationType   `json:"type"`
	Status       ParticipationStatus `json:"status"`
	Metadata     string              `json:"metadata,omitempty"`
	RegisteredAt time.Time           `json:"registered_at"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
}

// PaidAmount extracts the paid amount from the free-form metadata payload.
// Returns nil when the metadata is empty, malformed, or has no amount; a bad
// payload must never fail the caller.
func (p EventParticipation) PaidAmount() *float64 {
	if p.Metadata == "" {
		return nil
	}
	var meta struct {
		PaidAmount *float64 `json:"paidAmount"`
	}
	if err := json.Unmarshal([]byte(p.Metadata), &meta); err != nil {
		return nil
	}
	return meta.PaidAmount
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/security"
)

type VettingService interface {
	SubmitApplication(ctx context.Context, memberID uuid.UUID, answers string) (*domain.VettingApplication, error)
	ChangeStatus(ctx context.Context, applicationID uuid.UUID, targetStatus, reasoning string, actorID uuid.UUID) (*domain.VettingApplication, error)
	Approve(ctx context.Context, applicationID uuid.UUID, reasoning string, actorID uuid.UUID) (*domain.VettingApplication, error)
	Deny(ctx context.Context, applicationID uuid.UUID, reasoning string, actorID uuid.UUID) (*domain.VettingApplication, error)
	GetApplication(ctx context.Context, applicationID uuid.UUID, actorID uuid.UUID) (*ApplicationDetails, error)
	GetApplicationByMember(ctx context.Context, memberID uuid.UUID, actorID uuid.UUID) (*ApplicationDetails, error)
}

type MemberService interface {
	GetMemberDetails(ctx context.Context, memberID uuid.UUID) (*MemberDetails, error)
	GetEventHistory(ctx context.Context, memberID uuid.UUID, page, pageSize int32) (*EventHistoryPage, error)
	GetIncidents(ctx context.Context, memberID uuid.UUID) ([]IncidentView, error)
	GetNotes(ctx context.Context, memberID uuid.UUID) ([]NoteView, error)
	CreateNote(ctx context.Context, memberID uuid.UUID, content, noteType string, authorID uuid.UUID) (*NoteView, error)
	ArchiveNote(ctx context.Context, noteID uuid.UUID, actorID uuid.UUID) error
}

type AdminService interface {
	SearchMembers(ctx context.Context, filter MemberSearchInput, page, pageSize int32) (*MemberSearchPage, error)
	UpdateMember(ctx context.Context, memberID uuid.UUID, input UpdateMemberInput, actorID uuid.UUID) error
	UpdateMemberStatus(ctx context.Context, memberID uuid.UUID, isActive bool, reason string, actorID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, memberID uuid.UUID, role string, actorID uuid.UUID) error
}

type EventService interface {
	RegisterForEvent(ctx context.Context, memberID, eventID uuid.UUID, participationType, metadata string) (*domain.EventParticipation, error)
	CancelParticipation(ctx context.Context, participationID uuid.UUID, reason string, actorID uuid.UUID) error
}

type IncidentService interface {
	ReportIncident(ctx context.Context, reporterID uuid.UUID, input ReportIncidentInput) (*domain.SafetyIncident, error)
}

type EmailService interface {
	SendApplicationReceived(ctx context.Context, email, name string) error
	SendVettingStatusNotification(ctx context.Context, email, name string, status domain.ApplicationStatus, reasoning string) error
	SendAccountStatusNotification(ctx context.Context, email, name string, isActive bool, reason string) error
	SendStaleReviewReminder(ctx context.Context, email, name string, pendingCount int) error
}

// ApplicationDetails combines an application with its audit trail for the
// admin review page.
type ApplicationDetails struct {
	Application domain.VettingApplication  `json:"application"`
	AuditTrail  []domain.VettingAuditEntry `json:"audit_trail"`
}

// MemberDetails is the admin view of one member: identity fields plus
// participation counts derived from event history.
type MemberDetails struct {
	ID                    uuid.UUID  `json:"id"`
	SceneName             string     `json:"scene_name"`
	LegalName             string     `json:"legal_name"`
	LegalNameDecryptError bool       `json:"legal_name_decrypt_error,omitempty"`
	Email                 string     `json:"email"`
	Pronouns              string     `json:"pronouns,omitempty"`
	Role                  domain.Role `json:"role"`
	IsActive              bool       `json:"is_active"`
	VettingStatus         string     `json:"vetting_status"`
	ActiveRegistrations   int32      `json:"active_registrations"`
	TotalEventsRegistered int32      `json:"total_events_registered"`
	TotalEventsAttended   int32      `json:"total_events_attended"`
	LastEventAttended     *time.Time `json:"last_event_attended,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty"`
}

// EventHistoryItem is one participation annotated with display labels and an
// optional paid amount parsed from the participation metadata.
type EventHistoryItem struct {
	ParticipationID  uuid.UUID  `json:"participation_id"`
	EventID          uuid.UUID  `json:"event_id"`
	EventName        string     `json:"event_name"`
	EventStartsAt    time.Time  `json:"event_starts_at"`
	EventEndsAt      time.Time  `json:"event_ends_at"`
	RegistrationType string     `json:"registration_type"`
	Status           string     `json:"status"`
	PaidAmount       *float64   `json:"paid_amount,omitempty"`
	RegisteredAt     time.Time  `json:"registered_at"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CancelReason     string     `json:"cancel_reason,omitempty"`
}

type EventHistoryPage struct {
	Items      []EventHistoryItem `json:"items"`
	TotalCount int32              `json:"total_count"`
	Page       int32              `json:"page"`
	PageSize   int32              `json:"page_size"`
}

// IncidentView carries the decrypted incident fields; each sensitive field
// records whether decryption failed instead of dropping the whole row.
type IncidentView struct {
	ID              uuid.UUID          `json:"id"`
	ReporterID      uuid.UUID          `json:"reporter_id"`
	CoordinatorID   *uuid.UUID         `json:"coordinator_id,omitempty"`
	InvolvedParties security.Plaintext `json:"involved_parties"`
	Witnesses       security.Plaintext `json:"witnesses"`
	Description     security.Plaintext `json:"description"`
	OccurredAt      time.Time          `json:"occurred_at"`
	ReportedAt      time.Time          `json:"reported_at"`
}

type NoteView struct {
	ID         uuid.UUID       `json:"id"`
	MemberID   uuid.UUID       `json:"member_id"`
	Type       domain.NoteType `json:"type"`
	Content    string          `json:"content"`
	AuthorName string          `json:"author_name"`
	CreatedAt  time.Time       `json:"created_at"`
}

type MemberSearchInput struct {
	Query         string
	Role          string
	IsActive      *bool
	VettingStatus *int32
}

type MemberSummary struct {
	ID            uuid.UUID   `json:"id"`
	SceneName     string      `json:"scene_name"`
	Email         string      `json:"email"`
	Role          domain.Role `json:"role"`
	IsActive      bool        `json:"is_active"`
	VettingStatus string      `json:"vetting_status"`
	CreatedAt     time.Time   `json:"created_at"`
	LastLoginAt   *time.Time  `json:"last_login_at,omitempty"`
}

type MemberSearchPage struct {
	Items      []MemberSummary `json:"items"`
	TotalCount int32           `json:"total_count"`
	Page       int32           `json:"page"`
	PageSize   int32           `json:"page_size"`
}

// UpdateMemberInput carries profile updates; nil fields are left unchanged.
type UpdateMemberInput struct {
	SceneName *string
	LegalName *string
	Email     *string
	Pronouns  *string
}

type ReportIncidentInput struct {
	InvolvedParties string
	Witnesses       string
	Description     string
	OccurredAt      time.Time
}

const (
	defaultPageSize int32 = 20
	maxPageSize     int32 = 100
)

// clampPaging normalizes pagination parameters: page < 1 becomes 1, pageSize
// < 1 becomes the default, and pageSize is capped.
func clampPaging(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

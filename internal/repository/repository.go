package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/domain"
)

// ErrNotFound is returned by Get-style methods when no row matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate")

// MemberSearchFilter narrows a member search. Zero values mean "no filter".
// Role is matched case-sensitively and exactly; Query matches scene name or
// email as a case-insensitive substring.
type MemberSearchFilter struct {
	Query         string
	Role          domain.Role
	IsActive      *bool
	VettingStatus *domain.VettingStatusCode
}

// ParticipationWithEvent pairs a participation row with its event.
type ParticipationWithEvent struct {
	Participation domain.EventParticipation
	Event         domain.Event
}

type MemberRepository interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	Update(ctx context.Context, m *domain.Member) error
	UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) error
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	UpdateVettingStatus(ctx context.Context, id uuid.UUID, code domain.VettingStatusCode) error
	Search(ctx context.Context, filter MemberSearchFilter, page, pageSize int32) ([]domain.Member, int32, error)
	IsSceneNameTaken(ctx context.Context, sceneName string, excludeID uuid.UUID) (bool, error)
	ListAdmins(ctx context.Context) ([]domain.Member, error)
}

type VettingRepository interface {
	CreateApplication(ctx context.Context, app *domain.VettingApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VettingApplication, error)
	GetByMember(ctx context.Context, memberID uuid.UUID) (*domain.VettingApplication, error)
	UpdateStatus(ctx context.Context, app *domain.VettingApplication) error
	AppendAudit(ctx context.Context, entry *domain.VettingAuditEntry) error
	ListAudit(ctx context.Context, applicationID uuid.UUID) ([]domain.VettingAuditEntry, error)
	ListStale(ctx context.Context, status domain.ApplicationStatus, olderThan time.Time) ([]domain.VettingApplication, error)
}

type ParticipationRepository interface {
	Create(ctx context.Context, p *domain.EventParticipation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EventParticipation, error)
	Cancel(ctx context.Context, id uuid.UUID, status domain.ParticipationStatus, cancelledAt time.Time, reason string) error
	HasActive(ctx context.Context, memberID, eventID uuid.UUID) (bool, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]ParticipationWithEvent, error)
	ListHistoryByMember(ctx context.Context, memberID uuid.UUID, limit, offset int32) ([]ParticipationWithEvent, int32, error)
	ListWaitlistedForConcludedEvents(ctx context.Context, now time.Time) ([]domain.EventParticipation, error)
}

type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.SafetyIncident) error
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]domain.SafetyIncident, error)
}

type NoteRepository interface {
	Create(ctx context.Context, note *domain.UserNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserNote, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]domain.UserNote, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

// Store aggregates the repositories behind one unit-of-work boundary.
// WithinTx runs fn against a Store bound to a single database transaction;
// an error from fn rolls everything back.
type Store interface {
	Members() MemberRepository
	Vetting() VettingRepository
	Participations() ParticipationRepository
	Events() EventRepository
	Incidents() IncidentRepository
	Notes() NoteRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}

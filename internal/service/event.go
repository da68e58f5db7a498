package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/logger"
	"community-backend/internal/repository"
)

type eventService struct {
	store repository.Store
}

func NewEventService(store repository.Store) EventService {
	return &eventService{store: store}
}

func (s *eventService) RegisterForEvent(ctx context.Context, memberID, eventID uuid.UUID, participationType, metadata string) (*domain.EventParticipation, error) {
	pType, ok := domain.ParseParticipationType(participationType)
	if !ok {
		return nil, ValidationError("unknown participation type %q: must be RSVP or Ticket", participationType)
	}

	if _, err := s.store.Members().GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s not found", memberID)
		}
		return nil, InternalError("event.RegisterForEvent", err)
	}
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("event %s not found", eventID)
		}
		return nil, InternalError("event.RegisterForEvent", err)
	}
	if event.Concluded(time.Now().UTC()) {
		return nil, ValidationError("event %q has already concluded", event.Name)
	}

	active, err := s.store.Participations().HasActive(ctx, memberID, eventID)
	if err != nil {
		return nil, InternalError("event.RegisterForEvent", err)
	}
	if active {
		return nil, ConflictError("member already has an active registration for this event")
	}

	participation := &domain.EventParticipation{
		MemberID: memberID,
		EventID:  eventID,
		Type:     pType,
		Status:   domain.ParticipationStatusActive,
		Metadata: metadata,
	}
	if err := s.store.Participations().Create(ctx, participation); err != nil {
		return nil, InternalError("event.RegisterForEvent", err)
	}

	logger.Info("event registration created",
		"member_id", memberID, "event_id", eventID, "type", pType)
	return participation, nil
}

// CancelParticipation moves an Active or Waitlisted participation to
// Cancelled. The cancellation timestamp and reason are written with the
// status so the stored row always carries them.
func (s *eventService) CancelParticipation(ctx context.Context, participationID uuid.UUID, reason string, actorID uuid.UUID) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ValidationError("a cancellation reason is required")
	}

	participation, err := s.store.Participations().GetByID(ctx, participationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError("participation %s not found", participationID)
		}
		return InternalError("event.CancelParticipation", err)
	}

	if participation.MemberID != actorID {
		actor, err := s.store.Members().GetByID(ctx, actorID)
		if err != nil || !actor.Role.AdminCapable() {
			return UnauthorizedError("only the registrant or an administrator may cancel a registration")
		}
	}

	switch participation.Status {
	case domain.ParticipationStatusActive, domain.ParticipationStatusWaitlisted:
	default:
		return ValidationError("participation is already %s", participation.Status)
	}

	if err := s.store.Participations().Cancel(ctx, participationID,
		domain.ParticipationStatusCancelled, time.Now().UTC(), reason); err != nil {
		return InternalError("event.CancelParticipation", err)
	}

	logger.Info("participation cancelled", "participation_id", participationID, "actor_id", actorID)
	return nil
}

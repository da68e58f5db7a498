package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"community-backend/internal/domain"
	"community-backend/internal/repository"
)

func TestEventService_RegisterForEvent(t *testing.T) {
	store := newMockStore()
	svc := NewEventService(store)
	ctx := context.Background()

	memberID := uuid.New()
	eventID := uuid.New()
	event := &domain.Event{ID: eventID, Name: "Rope 101", EndsAt: time.Now().Add(48 * time.Hour)}

	store.members.On("GetByID", ctx, memberID).Return(&domain.Member{ID: memberID}, nil).Once()
	store.events.On("GetByID", ctx, eventID).Return(event, nil).Once()
	store.participations.On("HasActive", ctx, memberID, eventID).Return(false, nil).Once()
	store.participations.On("Create", ctx, mock.MatchedBy(func(p *domain.EventParticipation) bool {
		return p.MemberID == memberID && p.EventID == eventID &&
			p.Type == domain.ParticipationTypeTicket &&
			p.Status == domain.ParticipationStatusActive &&
			p.Metadata == `{"paidAmount": 30}`
	})).Return(nil).Once()

	p, err := svc.RegisterForEvent(ctx, memberID, eventID, "Ticket", `{"paidAmount": 30}`)
	assert.NoError(t, err)
	assert.Equal(t, domain.ParticipationStatusActive, p.Status)
	store.assertExpectations(t)
}

func TestEventService_RegisterForEvent_UnknownType(t *testing.T) {
	store := newMockStore()
	svc := NewEventService(store)

	_, err := svc.RegisterForEvent(context.Background(), uuid.New(), uuid.New(), "Walkin", "")
	assert.Equal(t, KindValidation, KindOf(err))
	store.members.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestEventService_RegisterForEvent_ConcludedEvent(t *testing.T) {
	store := newMockStore()
	svc := NewEventService(store)
	ctx := context.Background()

	memberID := uuid.New()
	eventID := uuid.New()
	event := &domain.Event{ID: eventID, Name: "Past Social", EndsAt: time.Now().Add(-time.Hour)}

	store.members.On("GetByID", ctx, memberID).Return(&domain.Member{ID: memberID}, nil).Once()
	store.events.On("GetByID", ctx, eventID).Return(event, nil).Once()

	_, err := svc.RegisterForEvent(ctx, memberID, eventID, "RSVP", "")
	assert.Equal(t, KindValidation, KindOf(err))
	store.participations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEventService_RegisterForEvent_DuplicateRegistration(t *testing.T) {
	store := newMockStore()
	svc := NewEventService(store)
	ctx := context.Background()

	memberID := uuid.New()
	eventID := uuid.New()
	event := &domain.Event{ID: eventID, EndsAt: time.Now().Add(time.Hour)}

	store.members.On("GetByID", ctx, memberID).Return(&domain.Member{ID: memberID}, nil).Once()
	store.events.On("GetByID", ctx, eventID).Return(event, nil).Once()
	store.participations.On("HasActive", ctx, memberID, eventID).Return(true, nil).Once()

	_, err := svc.RegisterForEvent(ctx, memberID, eventID, "RSVP", "")
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestEventService_CancelParticipation(t *testing.T) {
	store := newMockStore()
	svc := NewEventService(store)
	ctx := context.Background()

	memberID := uuid.New()
	participationID := uuid.New()
	participation := &domain.EventParticipation{
		ID:       participationID,
		MemberID: memberID,
		Status:   domain.ParticipationStatusActive,
	}

	store.participations.On("GetByID", ctx, participationID).Return(participation, nil).Once()
	store.participations.On("Cancel", ctx, participationID, domain.ParticipationStatusCancelled,
		mock.AnythingOfType("time.Time"), "schedule conflict").Return(nil).Once()

	assert.NoError(t, svc.CancelParticipation(ctx, participationID, "schedule conflict", memberID))
	store.assertExpectations(t)
}

func TestEventService_CancelParticipation_ReasonRequired(t *testing.T) {
	store := newMockStore()
	svc := NewEventService(store)

	err := svc.CancelParticipation(context.Background(), uuid.New(), "   ", uuid.New())
	assert.Equal(t, KindValidation, KindOf(err))
	store.participations.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestEventService_CancelParticipation_OnlyRegistrantOrAdmin(t *testing.T) {
	ctx := context.Background()
	participationID := uuid.New()
	registrantID := uuid.New()
	participation := &domain.EventParticipation{
		ID:       participationID,
		MemberID: registrantID,
		Status:   domain.ParticipationStatusWaitlisted,
	}

	t.Run("AdminMayCancel", func(t *testing.T) {
		store := newMockStore()
		svc := NewEventService(store)
		adminID := uuid.New()
		store.participations.On("GetByID", ctx, participationID).Return(participation, nil).Once()
		store.members.On("GetByID", ctx, adminID).Return(adminMember(adminID), nil).Once()
		store.participations.On("Cancel", ctx, participationID, domain.ParticipationStatusCancelled,
			mock.AnythingOfType("time.Time"), "no-show").Return(nil).Once()

		assert.NoError(t, svc.CancelParticipation(ctx, participationID, "no-show", adminID))
	})

	t.Run("StrangerDenied", func(t *testing.T) {
		store := newMockStore()
		svc := NewEventService(store)
		strangerID := uuid.New()
		store.participations.On("GetByID", ctx, participationID).Return(participation, nil).Once()
		store.members.On("GetByID", ctx, strangerID).Return(&domain.Member{ID: strangerID, Role: domain.RoleMember}, nil).Once()

		err := svc.CancelParticipation(ctx, participationID, "nope", strangerID)
		assert.Equal(t, KindUnauthorized, KindOf(err))
	})
}

func TestEventService_CancelParticipation_AlreadyCancelled(t *testing.T) {
	store := newMockStore()
	svc := NewEventService(store)
	ctx := context.Background()

	memberID := uuid.New()
	participationID := uuid.New()
	participation := &domain.EventParticipation{
		ID:       participationID,
		MemberID: memberID,
		Status:   domain.ParticipationStatusCancelled,
	}

	store.participations.On("GetByID", ctx, participationID).Return(participation, nil).Once()

	err := svc.CancelParticipation(ctx, participationID, "again", memberID)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "already Cancelled")
	store.participations.AssertNotCalled(t, "Cancel",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEventService_CancelParticipation_NotFound(t *testing.T) {
	store := newMockStore()
	svc := NewEventService(store)
	ctx := context.Background()

	participationID := uuid.New()
	store.participations.On("GetByID", ctx, participationID).Return(nil, repository.ErrNotFound).Once()

	err := svc.CancelParticipation(ctx, participationID, "reason", uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}

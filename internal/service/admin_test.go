package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"community-backend/internal/domain"
	"community-backend/internal/repository"
)

func TestAdminService_SearchMembers(t *testing.T) {
	store := newMockStore()
	svc := NewAdminService(store, &fakeEncryptor{}, new(MockEmailService))
	ctx := context.Background()

	active := true
	members := []domain.Member{
		{ID: uuid.New(), SceneName: "Raven", Role: domain.RoleVettedMember, IsActive: true, VettingStatus: domain.VettingCodeApproved},
	}
	store.members.On("Search", ctx, mock.MatchedBy(func(f repository.MemberSearchFilter) bool {
		return f.Query == "rav" && f.Role == domain.RoleVettedMember && f.IsActive != nil && *f.IsActive
	}), int32(1), int32(20)).Return(members, int32(1), nil).Once()

	page, err := svc.SearchMembers(ctx, MemberSearchInput{Query: " rav ", Role: "VettedMember", IsActive: &active}, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), page.TotalCount)
	if assert.Len(t, page.Items, 1) {
		assert.Equal(t, "Approved", page.Items[0].VettingStatus)
	}
}

func TestAdminService_SearchMembers_UnknownRole(t *testing.T) {
	store := newMockStore()
	svc := NewAdminService(store, &fakeEncryptor{}, new(MockEmailService))

	_, err := svc.SearchMembers(context.Background(), MemberSearchInput{Role: "Wizard"}, 1, 20)
	assert.Equal(t, KindValidation, KindOf(err))
	store.members.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminService_UpdateMember_SceneNameConflict(t *testing.T) {
	store := newMockStore()
	svc := NewAdminService(store, &fakeEncryptor{}, new(MockEmailService))
	ctx := context.Background()

	actorID := uuid.New()
	memberID := uuid.New()
	member := &domain.Member{ID: memberID, SceneName: "Raven"}
	newName := "Shadow"

	store.members.On("GetByID", ctx, actorID).Return(adminMember(actorID), nil).Once()
	store.members.On("GetByID", ctx, memberID).Return(member, nil).Once()
	store.members.On("IsSceneNameTaken", ctx, "Shadow", memberID).Return(true, nil).Once()

	err := svc.UpdateMember(ctx, memberID, UpdateMemberInput{SceneName: &newName}, actorID)
	assert.Equal(t, KindConflict, KindOf(err))
	store.members.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAdminService_UpdateMember_EncryptsLegalName(t *testing.T) {
	store := newMockStore()
	svc := NewAdminService(store, &fakeEncryptor{}, new(MockEmailService))
	ctx := context.Background()

	actorID := uuid.New()
	memberID := uuid.New()
	member := &domain.Member{ID: memberID, SceneName: "Raven", Email: "raven@test.com"}
	legalName := "Jane Doe"
	pronouns := " she/her "

	store.members.On("GetByID", ctx, actorID).Return(adminMember(actorID), nil).Once()
	store.members.On("GetByID", ctx, memberID).Return(member, nil).Once()
	store.members.On("Update", ctx, mock.MatchedBy(func(m *domain.Member) bool {
		return m.EncryptedLegalName == "enc:Jane Doe" && m.Pronouns == "she/her"
	})).Return(nil).Once()

	err := svc.UpdateMember(ctx, memberID, UpdateMemberInput{LegalName: &legalName, Pronouns: &pronouns}, actorID)
	assert.NoError(t, err)
	store.assertExpectations(t)
}

func TestAdminService_UpdateMember_InvalidEmail(t *testing.T) {
	store := newMockStore()
	svc := NewAdminService(store, &fakeEncryptor{}, new(MockEmailService))
	ctx := context.Background()

	actorID := uuid.New()
	memberID := uuid.New()
	bad := "not-an-email"

	store.members.On("GetByID", ctx, actorID).Return(adminMember(actorID), nil).Once()
	store.members.On("GetByID", ctx, memberID).Return(&domain.Member{ID: memberID}, nil).Once()

	err := svc.UpdateMember(ctx, memberID, UpdateMemberInput{Email: &bad}, actorID)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAdminService_UpdateMember_NonAdmin(t *testing.T) {
	store := newMockStore()
	svc := NewAdminService(store, &fakeEncryptor{}, new(MockEmailService))
	ctx := context.Background()

	actorID := uuid.New()
	store.members.On("GetByID", ctx, actorID).Return(&domain.Member{ID: actorID, Role: domain.RoleTeacher}, nil).Once()

	err := svc.UpdateMember(ctx, uuid.New(), UpdateMemberInput{}, actorID)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestAdminService_UpdateMemberStatus(t *testing.T) {
	store := newMockStore()
	emailSvc := new(MockEmailService)
	svc := NewAdminService(store, &fakeEncryptor{}, emailSvc)
	ctx := context.Background()

	actorID := uuid.New()
	memberID := uuid.New()
	member := &domain.Member{ID: memberID, SceneName: "Raven", Email: "raven@test.com", IsActive: true}

	store.members.On("GetByID", ctx, actorID).Return(adminMember(actorID), nil).Once()
	store.members.On("GetByID", ctx, memberID).Return(member, nil).Once()
	store.members.On("UpdateActive", ctx, memberID, false).Return(nil).Once()
	store.notes.On("Create", ctx, mock.MatchedBy(func(n *domain.UserNote) bool {
		return n.MemberID == memberID &&
			n.AuthorID == actorID &&
			n.Type == domain.NoteTypeStatusChange &&
			n.Content == "Account status changed from ACTIVE to INACTIVE. Reason: code of conduct violation"
	})).Return(nil).Once()
	emailSvc.On("SendAccountStatusNotification", ctx, "raven@test.com", "Raven", false, "code of conduct violation").Return(nil).Once()

	err := svc.UpdateMemberStatus(ctx, memberID, false, "code of conduct violation", actorID)
	assert.NoError(t, err)
	store.assertExpectations(t)
	emailSvc.AssertExpectations(t)
}

func TestAdminService_UpdateMemberStatus_NoReason(t *testing.T) {
	store := newMockStore()
	emailSvc := new(MockEmailService)
	svc := NewAdminService(store, &fakeEncryptor{}, emailSvc)
	ctx := context.Background()

	actorID := uuid.New()
	memberID := uuid.New()
	member := &domain.Member{ID: memberID, SceneName: "Raven", Email: "raven@test.com", IsActive: false}

	store.members.On("GetByID", ctx, actorID).Return(adminMember(actorID), nil).Once()
	store.members.On("GetByID", ctx, memberID).Return(member, nil).Once()
	store.members.On("UpdateActive", ctx, memberID, true).Return(nil).Once()
	store.notes.On("Create", ctx, mock.MatchedBy(func(n *domain.UserNote) bool {
		return n.Content == "Account status changed from INACTIVE to ACTIVE."
	})).Return(nil).Once()
	emailSvc.On("SendAccountStatusNotification", ctx, "raven@test.com", "Raven", true, "").Return(nil).Once()

	err := svc.UpdateMemberStatus(ctx, memberID, true, "  ", actorID)
	assert.NoError(t, err)
}

func TestAdminService_UpdateMemberStatus_TxFailureSkipsEmail(t *testing.T) {
	store := newMockStore()
	emailSvc := new(MockEmailService)
	svc := NewAdminService(store, &fakeEncryptor{}, emailSvc)
	ctx := context.Background()

	actorID := uuid.New()
	memberID := uuid.New()

	store.members.On("GetByID", ctx, actorID).Return(adminMember(actorID), nil).Once()
	store.members.On("GetByID", ctx, memberID).Return(&domain.Member{ID: memberID, Email: "x@test.com"}, nil).Once()
	store.txErr = assert.AnError

	err := svc.UpdateMemberStatus(ctx, memberID, false, "reason", actorID)
	assert.Equal(t, KindInternal, KindOf(err))
	emailSvc.AssertNotCalled(t, "SendAccountStatusNotification",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminService_UpdateMemberRole(t *testing.T) {
	store := newMockStore()
	svc := NewAdminService(store, &fakeEncryptor{}, new(MockEmailService))
	ctx := context.Background()

	actorID := uuid.New()
	memberID := uuid.New()

	store.members.On("GetByID", ctx, actorID).Return(adminMember(actorID), nil).Once()
	store.members.On("UpdateRole", ctx, memberID, domain.RoleSafetyTeam).Return(nil).Once()

	assert.NoError(t, svc.UpdateMemberRole(ctx, memberID, "SafetyTeam", actorID))
}

func TestAdminService_UpdateMemberRole_Invalid(t *testing.T) {
	store := newMockStore()
	svc := NewAdminService(store, &fakeEncryptor{}, new(MockEmailService))
	ctx := context.Background()

	actorID := uuid.New()
	store.members.On("GetByID", ctx, actorID).Return(adminMember(actorID), nil).Twice()

	err := svc.UpdateMemberRole(ctx, uuid.New(), "Wizard", actorID)
	assert.Equal(t, KindValidation, KindOf(err))

	store.members.On("UpdateRole", ctx, mock.Anything, domain.RoleMember).Return(repository.ErrNotFound).Once()
	err = svc.UpdateMemberRole(ctx, uuid.New(), "Member", actorID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

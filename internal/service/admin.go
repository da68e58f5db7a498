package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/logger"
	"community-backend/internal/repository"
	"community-backend/internal/security"
)

type adminService struct {
	store     repository.Store
	encryptor security.Encryptor
	emailSvc  EmailService
}

func NewAdminService(store repository.Store, encryptor security.Encryptor, emailSvc EmailService) AdminService {
	return &adminService{store: store, encryptor: encryptor, emailSvc: emailSvc}
}

func (s *adminService) requireAdmin(ctx context.Context, actorID uuid.UUID) (*domain.Member, error) {
	actor, err := s.store.Members().GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UnauthorizedError("caller is not a known member")
		}
		return nil, InternalError("admin.requireAdmin", err)
	}
	if !actor.Role.AdminCapable() {
		return nil, UnauthorizedError("role %s may not manage members", actor.Role)
	}
	return actor, nil
}

func (s *adminService) SearchMembers(ctx context.Context, filter MemberSearchInput, page, pageSize int32) (*MemberSearchPage, error) {
	page, pageSize = clampPaging(page, pageSize)

	repoFilter := repository.MemberSearchFilter{
		Query:    strings.TrimSpace(filter.Query),
		IsActive: filter.IsActive,
	}
	if filter.Role != "" {
		role, ok := domain.ParseRole(filter.Role)
		if !ok {
			return nil, ValidationError("unknown role %q", filter.Role)
		}
		repoFilter.Role = role
	}
	if filter.VettingStatus != nil {
		code := domain.VettingStatusCode(*filter.VettingStatus)
		repoFilter.VettingStatus = &code
	}

	members, total, err := s.store.Members().Search(ctx, repoFilter, page, pageSize)
	if err != nil {
		return nil, InternalError("admin.SearchMembers", err)
	}

	result := &MemberSearchPage{
		Items:      make([]MemberSummary, 0, len(members)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for _, m := range members {
		result.Items = append(result.Items, MemberSummary{
			ID:            m.ID,
			SceneName:     m.SceneName,
			Email:         m.Email,
			Role:          m.Role,
			IsActive:      m.IsActive,
			VettingStatus: m.VettingStatus.Label(),
			CreatedAt:     m.CreatedAt,
			LastLoginAt:   m.LastLoginAt,
		})
	}
	return result, nil
}

func (s *adminService) UpdateMember(ctx context.Context, memberID uuid.UUID, input UpdateMemberInput, actorID uuid.UUID) error {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	member, err := s.store.Members().GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError("member %s not found", memberID)
		}
		return InternalError("admin.UpdateMember", err)
	}

	if input.SceneName != nil {
		sceneName := strings.TrimSpace(*input.SceneName)
		if sceneName == "" {
			return ValidationError("scene name must not be empty")
		}
		taken, err := s.store.Members().IsSceneNameTaken(ctx, sceneName, memberID)
		if err != nil {
			return InternalError("admin.UpdateMember", err)
		}
		if taken {
			return ConflictError("scene name %q is already taken", sceneName)
		}
		member.SceneName = sceneName
	}
	if input.LegalName != nil {
		encrypted, err := s.encryptor.Encrypt(*input.LegalName)
		if err != nil {
			return InternalError("admin.UpdateMember", err)
		}
		member.EncryptedLegalName = encrypted
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" || !strings.Contains(email, "@") {
			return ValidationError("invalid email address")
		}
		member.Email = email
	}
	if input.Pronouns != nil {
		member.Pronouns = strings.TrimSpace(*input.Pronouns)
	}

	if err := s.store.Members().Update(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ConflictError("scene name %q is already taken", member.SceneName)
		}
		return InternalError("admin.UpdateMember", err)
	}

	logger.Info("member profile updated", "member_id", memberID, "actor_id", actorID)
	return nil
}

// UpdateMemberStatus flips the active flag and records a StatusChange note.
// Both writes commit in one transaction; the original system saved them
// separately, which could strand a status change without its note.
func (s *adminService) UpdateMemberStatus(ctx context.Context, memberID uuid.UUID, isActive bool, reason string, actorID uuid.UUID) error {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	member, err := s.store.Members().GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError("member %s not found", memberID)
		}
		return InternalError("admin.UpdateMemberStatus", err)
	}

	content := fmt.Sprintf("Account status changed from %s to %s.",
		statusWord(member.IsActive), statusWord(isActive))
	reason = strings.TrimSpace(reason)
	if reason != "" {
		content += " Reason: " + reason
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Members().UpdateActive(ctx, memberID, isActive); err != nil {
			return err
		}
		return tx.Notes().Create(ctx, &domain.UserNote{
			MemberID: memberID,
			AuthorID: actorID,
			Type:     domain.NoteTypeStatusChange,
			Content:  content,
		})
	})
	if err != nil {
		return InternalError("admin.UpdateMemberStatus", err)
	}

	logger.Info("member status changed", "member_id", memberID, "is_active", isActive, "actor_id", actorID)

	notifyBestEffort("account status notification", func() error {
		return s.emailSvc.SendAccountStatusNotification(ctx, member.Email, member.SceneName, isActive, reason)
	})
	return nil
}

func statusWord(isActive bool) string {
	if isActive {
		return "ACTIVE"
	}
	return "INACTIVE"
}

func (s *adminService) UpdateMemberRole(ctx context.Context, memberID uuid.UUID, role string, actorID uuid.UUID) error {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	parsed, ok := domain.ParseRole(role)
	if !ok {
		return ValidationError("unknown role %q", role)
	}

	if err := s.store.Members().UpdateRole(ctx, memberID, parsed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError("member %s not found", memberID)
		}
		return InternalError("admin.UpdateMemberRole", err)
	}

	logger.Info("member role changed", "member_id", memberID, "role", parsed, "actor_id", actorID)
	return nil
}

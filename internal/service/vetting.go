package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/logger"
	"community-backend/internal/repository"
)

type vettingService struct {
	store    repository.Store
	emailSvc EmailService
}

func NewVettingService(store repository.Store, emailSvc EmailService) VettingService {
	return &vettingService{store: store, emailSvc: emailSvc}
}

func (s *vettingService) SubmitApplication(ctx context.Context, memberID uuid.UUID, answers string) (*domain.VettingApplication, error) {
	member, err := s.store.Members().GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s not found", memberID)
		}
		return nil, InternalError("vetting.SubmitApplication", err)
	}

	if strings.TrimSpace(answers) == "" {
		return nil, ValidationError("questionnaire answers are required")
	}

	if _, err := s.store.Vetting().GetByMember(ctx, memberID); err == nil {
		return nil, ConflictError("member %s already has a vetting application", memberID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, InternalError("vetting.SubmitApplication", err)
	}

	app := &domain.VettingApplication{
		MemberID: memberID,
		Answers:  answers,
		Status:   domain.ApplicationStatusSubmitted,
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Vetting().CreateApplication(ctx, app); err != nil {
			return err
		}
		return tx.Members().UpdateVettingStatus(ctx, memberID, domain.VettingCodeSubmitted)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ConflictError("member %s already has a vetting application", memberID)
		}
		return nil, InternalError("vetting.SubmitApplication", err)
	}

	notifyBestEffort("application received", func() error {
		return s.emailSvc.SendApplicationReceived(ctx, member.Email, member.SceneName)
	})

	return app, nil
}

// ChangeStatus validates and applies one vetting status transition. The
// status update, the audit entry, and (on approval) the role grant all
// commit in one transaction; the applicant email goes out only after commit
// and never fails the operation.
func (s *vettingService) ChangeStatus(ctx context.Context, applicationID uuid.UUID, targetStatus, reasoning string, actorID uuid.UUID) (*domain.VettingApplication, error) {
	actor, err := s.store.Members().GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UnauthorizedError("caller is not a known member")
		}
		return nil, InternalError("vetting.ChangeStatus", err)
	}
	if !actor.Role.AdminCapable() {
		return nil, UnauthorizedError("role %s may not review vetting applications", actor.Role)
	}

	target, ok := domain.ParseApplicationStatus(targetStatus)
	if !ok {
		return nil, ValidationError("unknown vetting status %q", targetStatus)
	}
	reasoning = strings.TrimSpace(reasoning)
	if target.RequiresReasoning() && reasoning == "" {
		return nil, ValidationError("reasoning is required when moving an application to %s", target)
	}

	app, err := s.store.Vetting().GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("vetting application %s not found", applicationID)
		}
		return nil, InternalError("vetting.ChangeStatus", err)
	}
	if !domain.CanTransition(app.Status, target) {
		return nil, ValidationError("cannot move application from %s to %s", app.Status, target)
	}

	previous := app.Status
	now := time.Now().UTC()
	app.Status = target
	app.ReviewedAt = &now
	app.ReviewedBy = &actorID
	if reasoning != "" {
		app.AdminNotes = reasoning
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Vetting().UpdateStatus(ctx, app); err != nil {
			return err
		}
		entry := &domain.VettingAuditEntry{
			ApplicationID: app.ID,
			Action:        "StatusChange",
			OldValue:      string(previous),
			NewValue:      string(target),
			Note:          reasoning,
			PerformedBy:   actorID,
		}
		if err := tx.Vetting().AppendAudit(ctx, entry); err != nil {
			return err
		}
		if err := tx.Members().UpdateVettingStatus(ctx, app.MemberID, target.Code()); err != nil {
			return err
		}
		if target == domain.ApplicationStatusApproved {
			return grantVettedRole(ctx, tx, app.MemberID)
		}
		return nil
	})
	if err != nil {
		return nil, InternalError("vetting.ChangeStatus", err)
	}

	logger.Info("vetting status changed",
		"application_id", app.ID, "from", previous, "to", target, "actor_id", actorID)

	if applicant, err := s.store.Members().GetByID(ctx, app.MemberID); err == nil {
		notifyBestEffort("vetting status notification", func() error {
			return s.emailSvc.SendVettingStatusNotification(ctx, applicant.Email, applicant.SceneName, target, reasoning)
		})
	} else {
		logger.Warn("skipping vetting status notification", "member_id", app.MemberID, "error", err)
	}

	return app, nil
}

// grantVettedRole promotes the member to VettedMember. Members already
// holding an elevated role keep it.
func grantVettedRole(ctx context.Context, tx repository.Store, memberID uuid.UUID) error {
	member, err := tx.Members().GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("load member for role grant: %w", err)
	}
	switch member.Role {
	case domain.RoleMember, domain.RoleGuest:
		return tx.Members().UpdateRole(ctx, memberID, domain.RoleVettedMember)
	}
	return nil
}

func (s *vettingService) Approve(ctx context.Context, applicationID uuid.UUID, reasoning string, actorID uuid.UUID) (*domain.VettingApplication, error) {
	return s.ChangeStatus(ctx, applicationID, string(domain.ApplicationStatusApproved), reasoning, actorID)
}

func (s *vettingService) Deny(ctx context.Context, applicationID uuid.UUID, reasoning string, actorID uuid.UUID) (*domain.VettingApplication, error) {
	return s.ChangeStatus(ctx, applicationID, string(domain.ApplicationStatusDenied), reasoning, actorID)
}

func (s *vettingService) GetApplication(ctx context.Context, applicationID uuid.UUID, actorID uuid.UUID) (*ApplicationDetails, error) {
	actor, err := s.store.Members().GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UnauthorizedError("caller is not a known member")
		}
		return nil, InternalError("vetting.GetApplication", err)
	}
	if !actor.Role.AdminCapable() {
		return nil, UnauthorizedError("role %s may not view vetting applications", actor.Role)
	}

	app, err := s.store.Vetting().GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("vetting application %s not found", applicationID)
		}
		return nil, InternalError("vetting.GetApplication", err)
	}
	trail, err := s.store.Vetting().ListAudit(ctx, applicationID)
	if err != nil {
		return nil, InternalError("vetting.GetApplication", err)
	}
	return &ApplicationDetails{Application: *app, AuditTrail: trail}, nil
}

// GetApplicationByMember looks up a member's vetting application by the
// member ID rather than the application ID.
func (s *vettingService) GetApplicationByMember(ctx context.Context, memberID uuid.UUID, actorID uuid.UUID) (*ApplicationDetails, error) {
	actor, err := s.store.Members().GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UnauthorizedError("caller is not a known member")
		}
		return nil, InternalError("vetting.GetApplicationByMember", err)
	}
	if !actor.Role.AdminCapable() {
		return nil, UnauthorizedError("role %s may not view vetting applications", actor.Role)
	}

	app, err := s.store.Vetting().GetByMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s has no vetting application", memberID)
		}
		return nil, InternalError("vetting.GetApplicationByMember", err)
	}
	trail, err := s.store.Vetting().ListAudit(ctx, app.ID)
	if err != nil {
		return nil, InternalError("vetting.GetApplicationByMember", err)
	}
	return &ApplicationDetails{Application: *app, AuditTrail: trail}, nil
}

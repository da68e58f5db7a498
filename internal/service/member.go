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
	"community-backend/internal/security"
)

type memberService struct {
	store     repository.Store
	encryptor security.Encryptor
}

func NewMemberService(store repository.Store, encryptor security.Encryptor) MemberService {
	return &memberService{store: store, encryptor: encryptor}
}

func (s *memberService) GetMemberDetails(ctx context.Context, memberID uuid.UUID) (*MemberDetails, error) {
	member, err := s.store.Members().GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s not found", memberID)
		}
		return nil, InternalError("member.GetMemberDetails", err)
	}

	participations, err := s.store.Participations().ListByMember(ctx, memberID)
	if err != nil {
		return nil, InternalError("member.GetMemberDetails", err)
	}

	legalName := security.DecryptBestEffort(s.encryptor, member.EncryptedLegalName)
	if legalName.Failed {
		logger.Warn("legal name decryption failed", "member_id", memberID)
	}

	details := &MemberDetails{
		ID:                    member.ID,
		SceneName:             member.SceneName,
		LegalName:             legalName.Value,
		LegalNameDecryptError: legalName.Failed,
		Email:                 member.Email,
		Pronouns:              member.Pronouns,
		Role:                  member.Role,
		IsActive:              member.IsActive,
		VettingStatus:         member.VettingStatus.Label(),
		CreatedAt:             member.CreatedAt,
		LastLoginAt:           member.LastLoginAt,
	}

	now := time.Now().UTC()
	for _, item := range participations {
		details.TotalEventsRegistered++
		if item.Participation.Status != domain.ParticipationStatusActive {
			continue
		}
		details.ActiveRegistrations++
		if item.Event.Concluded(now) {
			details.TotalEventsAttended++
			if details.LastEventAttended == nil || item.Event.EndsAt.After(*details.LastEventAttended) {
				end := item.Event.EndsAt
				details.LastEventAttended = &end
			}
		}
	}

	return details, nil
}

func (s *memberService) GetEventHistory(ctx context.Context, memberID uuid.UUID, page, pageSize int32) (*EventHistoryPage, error) {
	page, pageSize = clampPaging(page, pageSize)

	if _, err := s.store.Members().GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s not found", memberID)
		}
		return nil, InternalError("member.GetEventHistory", err)
	}

	items, total, err := s.store.Participations().ListHistoryByMember(ctx, memberID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, InternalError("member.GetEventHistory", err)
	}

	result := &EventHistoryPage{
		Items:      make([]EventHistoryItem, 0, len(items)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for _, item := range items {
		p := item.Participation
		result.Items = append(result.Items, EventHistoryItem{
			ParticipationID:  p.ID,
			EventID:          item.Event.ID,
			EventName:        item.Event.Name,
			EventStartsAt:    item.Event.StartsAt,
			EventEndsAt:      item.Event.EndsAt,
			RegistrationType: p.Type.Label(),
			Status:           p.Status.Label(),
			PaidAmount:       p.PaidAmount(),
			RegisteredAt:     p.RegisteredAt,
			CancelledAt:      p.CancelledAt,
			CancelReason:     p.CancelReason,
		})
	}
	return result, nil
}

func (s *memberService) GetIncidents(ctx context.Context, memberID uuid.UUID) ([]IncidentView, error) {
	if _, err := s.store.Members().GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s not found", memberID)
		}
		return nil, InternalError("member.GetIncidents", err)
	}

	incidents, err := s.store.Incidents().ListByMember(ctx, memberID)
	if err != nil {
		return nil, InternalError("member.GetIncidents", err)
	}

	views := make([]IncidentView, 0, len(incidents))
	for _, incident := range incidents {
		view := IncidentView{
			ID:              incident.ID,
			ReporterID:      incident.ReporterID,
			CoordinatorID:   incident.CoordinatorID,
			InvolvedParties: security.DecryptBestEffort(s.encryptor, incident.EncryptedInvolvedParties),
			Witnesses:       security.DecryptBestEffort(s.encryptor, incident.EncryptedWitnesses),
			Description:     security.DecryptBestEffort(s.encryptor, incident.EncryptedDescription),
			OccurredAt:      incident.OccurredAt,
			ReportedAt:      incident.ReportedAt,
		}
		if view.InvolvedParties.Failed || view.Witnesses.Failed || view.Description.Failed {
			logger.Warn("incident field decryption failed", "incident_id", incident.ID)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *memberService) GetNotes(ctx context.Context, memberID uuid.UUID) ([]NoteView, error) {
	if _, err := s.store.Members().GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s not found", memberID)
		}
		return nil, InternalError("member.GetNotes", err)
	}

	notes, err := s.store.Notes().ListByMember(ctx, memberID)
	if err != nil {
		return nil, InternalError("member.GetNotes", err)
	}

	// Resolve each distinct author once; a missing author record degrades to
	// "Unknown" rather than failing the list.
	authorNames := map[uuid.UUID]string{}
	views := make([]NoteView, 0, len(notes))
	for _, note := range notes {
		name, ok := authorNames[note.AuthorID]
		if !ok {
			name = "Unknown"
			if author, err := s.store.Members().GetByID(ctx, note.AuthorID); err == nil {
				name = author.SceneName
			}
			authorNames[note.AuthorID] = name
		}
		views = append(views, NoteView{
			ID:         note.ID,
			MemberID:   note.MemberID,
			Type:       note.Type,
			Content:    note.Content,
			AuthorName: name,
			CreatedAt:  note.CreatedAt,
		})
	}
	return views, nil
}

func (s *memberService) CreateNote(ctx context.Context, memberID uuid.UUID, content, noteType string, authorID uuid.UUID) (*NoteView, error) {
	parsedType, err := domain.ParseNoteType(noteType)
	if err != nil {
		return nil, ValidationError("%s", err.Error())
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ValidationError("note content must not be empty")
	}

	if _, err := s.store.Members().GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s not found", memberID)
		}
		return nil, InternalError("member.CreateNote", err)
	}

	note := &domain.UserNote{
		MemberID: memberID,
		AuthorID: authorID,
		Type:     parsedType,
		Content:  content,
	}
	if err := s.store.Notes().Create(ctx, note); err != nil {
		return nil, InternalError("member.CreateNote", err)
	}

	authorName := "Unknown"
	if author, err := s.store.Members().GetByID(ctx, authorID); err == nil {
		authorName = author.SceneName
	}
	return &NoteView{
		ID:         note.ID,
		MemberID:   note.MemberID,
		Type:       note.Type,
		Content:    note.Content,
		AuthorName: authorName,
		CreatedAt:  note.CreatedAt,
	}, nil
}

// ArchiveNote soft-archives a note. Only the author or an admin-capable
// member may archive.
func (s *memberService) ArchiveNote(ctx context.Context, noteID uuid.UUID, actorID uuid.UUID) error {
	note, err := s.store.Notes().GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError("note %s not found", noteID)
		}
		return InternalError("member.ArchiveNote", err)
	}

	if note.AuthorID != actorID {
		actor, err := s.store.Members().GetByID(ctx, actorID)
		if err != nil || !actor.Role.AdminCapable() {
			return UnauthorizedError("only the author or an administrator may archive a note")
		}
	}

	if err := s.store.Notes().Archive(ctx, noteID); err != nil {
		return InternalError("member.ArchiveNote", err)
	}
	return nil
}

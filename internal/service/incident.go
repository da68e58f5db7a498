package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/logger"
	"community-backend/internal/repository"
	"community-backend/internal/security"
)

type incidentService struct {
	store     repository.Store
	encryptor security.Encryptor
}

func NewIncidentService(store repository.Store, encryptor security.Encryptor) IncidentService {
	return &incidentService{store: store, encryptor: encryptor}
}

// ReportIncident stores a new safety incident with its sensitive fields
// encrypted at rest. Encryption failures abort the report; a safety record
// must never be stored half in the clear.
func (s *incidentService) ReportIncident(ctx context.Context, reporterID uuid.UUID, input ReportIncidentInput) (*domain.SafetyIncident, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, ValidationError("incident description must not be empty")
	}

	if _, err := s.store.Members().GetByID(ctx, reporterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("member %s not found", reporterID)
		}
		return nil, InternalError("incident.ReportIncident", err)
	}

	encInvolved, err := s.encryptor.Encrypt(input.InvolvedParties)
	if err != nil {
		return nil, InternalError("incident.ReportIncident", err)
	}
	encWitnesses, err := s.encryptor.Encrypt(input.Witnesses)
	if err != nil {
		return nil, InternalError("incident.ReportIncident", err)
	}
	encDescription, err := s.encryptor.Encrypt(input.Description)
	if err != nil {
		return nil, InternalError("incident.ReportIncident", err)
	}

	incident := &domain.SafetyIncident{
		ReporterID:               reporterID,
		EncryptedInvolvedParties: encInvolved,
		EncryptedWitnesses:       encWitnesses,
		EncryptedDescription:     encDescription,
		OccurredAt:               input.OccurredAt,
	}
	if err := s.store.Incidents().Create(ctx, incident); err != nil {
		return nil, InternalError("incident.ReportIncident", err)
	}

	logger.Info("safety incident reported", "incident_id", incident.ID, "reporter_id", reporterID)
	return incident, nil
}

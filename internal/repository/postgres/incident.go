package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/repository"
)

type incidentRepository struct {
	db DBTX
}

func NewIncidentRepository(db DBTX) repository.IncidentRepository {
	return &incidentRepository{db: db}
}

func (r *incidentRepository) Create(ctx context.Context, incident *domain.SafetyIncident) error {
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	incident.ReportedAt = time.Now().UTC()
	query := `INSERT INTO safety_incidents (id, reporter_id, coordinator_id, encrypted_involved_parties, encrypted_witnesses, encrypted_description, occurred_at, reported_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, incident.ID, incident.ReporterID, incident.CoordinatorID,
		incident.EncryptedInvolvedParties, incident.EncryptedWitnesses, incident.EncryptedDescription,
		incident.OccurredAt, incident.ReportedAt)
	return err
}

// ListByMember returns incidents the member reported or is assigned to
// coordinate, newest first.
func (r *incidentRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]domain.SafetyIncident, error) {
	query := `SELECT id, reporter_id, coordinator_id, encrypted_involved_parties, encrypted_witnesses, encrypted_description, occurred_at, reported_at
	          FROM safety_incidents
	          WHERE reporter_id = $1 OR coordinator_id = $1
	          ORDER BY reported_at DESC`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []domain.SafetyIncident
	for rows.Next() {
		var i domain.SafetyIncident
		var coordinator uuid.NullUUID
		if err := rows.Scan(&i.ID, &i.ReporterID, &coordinator, &i.EncryptedInvolvedParties,
			&i.EncryptedWitnesses, &i.EncryptedDescription, &i.OccurredAt, &i.ReportedAt); err != nil {
			return nil, err
		}
		if coordinator.Valid {
			id := coordinator.UUID
			i.CoordinatorID = &id
		}
		incidents = append(incidents, i)
	}
	return incidents, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/repository"
)

const applicationColumns = `id, member_id, answers, status, submitted_at, reviewed_at, reviewed_by, COALESCE(admin_notes, '')`

type vettingRepository struct {
	db DBTX
}

func NewVettingRepository(db DBTX) repository.VettingRepository {
	return &vettingRepository{db: db}
}

func scanApplication(row interface{ Scan(...any) error }) (*domain.VettingApplication, error) {
	app := &domain.VettingApplication{}
	var reviewedAt sql.NullTime
	var reviewedBy uuid.NullUUID
	err := row.Scan(&app.ID, &app.MemberID, &app.Answers, &app.Status, &app.SubmittedAt,
		&reviewedAt, &reviewedBy, &app.AdminNotes)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		app.ReviewedAt = &reviewedAt.Time
	}
	if reviewedBy.Valid {
		id := reviewedBy.UUID
		app.ReviewedBy = &id
	}
	return app, nil
}

func (r *vettingRepository) CreateApplication(ctx context.Context, app *domain.VettingApplication) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	app.SubmittedAt = time.Now().UTC()
	query := `INSERT INTO vetting_applications (id, member_id, answers, status, submitted_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, app.ID, app.MemberID, app.Answers, app.Status, app.SubmittedAt)
	return mapError(err)
}

func (r *vettingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VettingApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM vetting_applications WHERE id = $1`
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return app, err
}

func (r *vettingRepository) GetByMember(ctx context.Context, memberID uuid.UUID) (*domain.VettingApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM vetting_applications WHERE member_id = $1`
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, memberID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return app, err
}

// UpdateStatus persists the review state only; questionnaire answers are
// immutable after submission.
func (r *vettingRepository) UpdateStatus(ctx context.Context, app *domain.VettingApplication) error {
	query := `UPDATE vetting_applications SET status=$1, reviewed_at=$2, reviewed_by=$3, admin_notes=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, app.Status, app.ReviewedAt, app.ReviewedBy, app.AdminNotes, app.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *vettingRepository) AppendAudit(ctx context.Context, entry *domain.VettingAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()
	query := `INSERT INTO vetting_audit_log (id, application_id, action, old_value, new_value, note, performed_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.ApplicationID, entry.Action,
		entry.OldValue, entry.NewValue, entry.Note, entry.PerformedBy, entry.CreatedAt)
	return err
}

func (r *vettingRepository) ListAudit(ctx context.Context, applicationID uuid.UUID) ([]domain.VettingAuditEntry, error) {
	query := `SELECT id, application_id, action, old_value, new_value, COALESCE(note, ''), performed_by, created_at
	          FROM vetting_audit_log WHERE application_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.VettingAuditEntry
	for rows.Next() {
		var e domain.VettingAuditEntry
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.Action, &e.OldValue, &e.NewValue,
			&e.Note, &e.PerformedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *vettingRepository) ListStale(ctx context.Context, status domain.ApplicationStatus, olderThan time.Time) ([]domain.VettingApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM vetting_applications
	          WHERE status = $1 AND COALESCE(reviewed_at, submitted_at) < $2
	          ORDER BY submitted_at ASC`
	rows, err := r.db.QueryContext(ctx, query, status, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.VettingApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

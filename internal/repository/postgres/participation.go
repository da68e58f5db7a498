package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/logger"
	"community-backend/internal/repository"
)

const participationColumns = `p.id, p.member_id, p.event_id, p.type, p.status, COALESCE(p.metadata, ''), p.registered_at, p.cancelled_at, COALESCE(p.cancel_reason, '')`

type participationRepository struct {
	db DBTX
}

func NewParticipationRepository(db DBTX) repository.ParticipationRepository {
	return &participationRepository{db: db}
}

func scanParticipation(row interface{ Scan(...any) error }) (*domain.EventParticipation, error) {
	p := &domain.EventParticipation{}
	var cancelledAt sql.NullTime
	err := row.Scan(&p.ID, &p.MemberID, &p.EventID, &p.Type, &p.Status, &p.Metadata,
		&p.RegisteredAt, &cancelledAt, &p.CancelReason)
	if err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		p.CancelledAt = &cancelledAt.Time
	}
	return p, nil
}

func (r *participationRepository) Create(ctx context.Context, p *domain.EventParticipation) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.RegisteredAt = time.Now().UTC()
	query := `INSERT INTO event_participations (id, member_id, event_id, type, status, metadata, registered_at)
	          VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.MemberID, p.EventID, p.Type, p.Status, p.Metadata, p.RegisteredAt)
	return err
}

func (r *participationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EventParticipation, error) {
	query := `SELECT ` + participationColumns + ` FROM event_participations p WHERE p.id = $1`
	p, err := scanParticipation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

// Cancel stamps the cancellation timestamp and reason together with the
// status so a Cancelled or Refunded row can never miss them.
func (r *participationRepository) Cancel(ctx context.Context, id uuid.UUID, status domain.ParticipationStatus, cancelledAt time.Time, reason string) error {
	query := `UPDATE event_participations SET status=$1, cancelled_at=$2, cancel_reason=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, status, cancelledAt, reason, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *participationRepository) HasActive(ctx context.Context, memberID, eventID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM event_participations WHERE member_id = $1 AND event_id = $2 AND status = $3)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, memberID, eventID, domain.ParticipationStatusActive).Scan(&exists)
	return exists, err
}

func (r *participationRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]repository.ParticipationWithEvent, error) {
	query := `SELECT ` + participationColumns + `, e.id, e.name, e.starts_at, e.ends_at
	          FROM event_participations p
	          JOIN events e ON e.id = p.event_id
	          WHERE p.member_id = $1`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectParticipations(rows)
}

func (r *participationRepository) ListHistoryByMember(ctx context.Context, memberID uuid.UUID, limit, offset int32) ([]repository.ParticipationWithEvent, int32, error) {
	logger.EnterMethod("participationRepository.ListHistoryByMember", "memberID", memberID, "limit", limit, "offset", offset)

	var total int32
	countQuery := `SELECT COUNT(*) FROM event_participations WHERE member_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, memberID).Scan(&total); err != nil {
		logger.ExitMethodWithError("participationRepository.ListHistoryByMember", err)
		return nil, 0, err
	}

	query := `SELECT ` + participationColumns + `, e.id, e.name, e.starts_at, e.ends_at
	          FROM event_participations p
	          JOIN events e ON e.id = p.event_id
	          WHERE p.member_id = $1
	          ORDER BY e.starts_at DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, memberID, limit, offset)
	if err != nil {
		logger.ExitMethodWithError("participationRepository.ListHistoryByMember", err)
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectParticipations(rows)
	if err != nil {
		return nil, 0, err
	}
	logger.ExitMethod("participationRepository.ListHistoryByMember", "count", len(items), "total", total)
	return items, total, nil
}

func (r *participationRepository) ListWaitlistedForConcludedEvents(ctx context.Context, now time.Time) ([]domain.EventParticipation, error) {
	query := `SELECT ` + participationColumns + `
	          FROM event_participations p
	          JOIN events e ON e.id = p.event_id
	          WHERE p.status = $1 AND e.ends_at < $2`
	rows, err := r.db.QueryContext(ctx, query, domain.ParticipationStatusWaitlisted, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.EventParticipation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func collectParticipations(rows *sql.Rows) ([]repository.ParticipationWithEvent, error) {
	var items []repository.ParticipationWithEvent
	for rows.Next() {
		var item repository.ParticipationWithEvent
		p := &item.Participation
		e := &item.Event
		var cancelledAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.MemberID, &p.EventID, &p.Type, &p.Status, &p.Metadata,
			&p.RegisteredAt, &cancelledAt, &p.CancelReason,
			&e.ID, &e.Name, &e.StartsAt, &e.EndsAt); err != nil {
			return nil, err
		}
		if cancelledAt.Valid {
			p.CancelledAt = &cancelledAt.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type eventRepository struct {
	db DBTX
}

func NewEventRepository(db DBTX) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	query := `INSERT INTO events (id, name, starts_at, ends_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.Name, e.StartsAt, e.EndsAt)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := `SELECT id, name, starts_at, ends_at FROM events WHERE id = $1`
	e := &domain.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.StartsAt, &e.EndsAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"community-backend/internal/repository"
)

// uniqueViolation is the postgres error code for unique-constraint failures.
const uniqueViolation = "23505"

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

// DBTX is the subset of database/sql used by the repositories, satisfied by
// both *sql.DB and *sql.Tx so the same repository code runs inside and
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db             *sql.DB // nil when the store is bound to a transaction
	members        repository.MemberRepository
	vetting        repository.VettingRepository
	participations repository.ParticipationRepository
	events         repository.EventRepository
	incidents      repository.IncidentRepository
	notes          repository.NoteRepository
}

func NewStore(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(dbtx DBTX) *Store {
	return &Store{
		members:        NewMemberRepository(dbtx),
		vetting:        NewVettingRepository(dbtx),
		participations: NewParticipationRepository(dbtx),
		events:         NewEventRepository(dbtx),
		incidents:      NewIncidentRepository(dbtx),
		notes:          NewNoteRepository(dbtx),
	}
}

func (s *Store) Members() repository.MemberRepository              { return s.members }
func (s *Store) Vetting() repository.VettingRepository             { return s.vetting }
func (s *Store) Participations() repository.ParticipationRepository { return s.participations }
func (s *Store) Events() repository.EventRepository                { return s.events }
func (s *Store) Incidents() repository.IncidentRepository          { return s.incidents }
func (s *Store) Notes() repository.NoteRepository                  { return s.notes }

// WithinTx runs fn against a store bound to a single transaction. The
// transaction commits only when fn returns nil. Calling WithinTx on a store
// that is already transactional reuses the open transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(newStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

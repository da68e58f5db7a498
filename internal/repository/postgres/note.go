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

type noteRepository struct {
	db DBTX
}

func NewNoteRepository(db DBTX) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.UserNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt = time.Now().UTC()
	query := `INSERT INTO user_notes (id, member_id, author_id, type, content, archived, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, note.ID, note.MemberID, note.AuthorID,
		note.Type, note.Content, note.Archived, note.CreatedAt)
	return err
}

func (r *noteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserNote, error) {
	query := `SELECT id, member_id, author_id, type, content, archived, created_at FROM user_notes WHERE id = $1`
	n := &domain.UserNote{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.MemberID, &n.AuthorID,
		&n.Type, &n.Content, &n.Archived, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListByMember returns non-archived notes, newest first.
func (r *noteRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]domain.UserNote, error) {
	query := `SELECT id, member_id, author_id, type, content, archived, created_at
	          FROM user_notes WHERE member_id = $1 AND archived = FALSE
	          ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.UserNote
	for rows.Next() {
		var n domain.UserNote
		if err := rows.Scan(&n.ID, &n.MemberID, &n.AuthorID, &n.Type, &n.Content, &n.Archived, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Archive soft-deletes a note. Notes are never removed from storage.
func (r *noteRepository) Archive(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE user_notes SET archived = TRUE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"community-backend/internal/domain"
	"community-backend/internal/repository"
)

func TestStore_WithinTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()
	memberID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vetting_applications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE members SET vetting_status=\\$1").
		WithArgs(domain.VettingCodeSubmitted, sqlmock.AnyArg(), memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = store.WithinTx(ctx, func(tx repository.Store) error {
		app := &domain.VettingApplication{MemberID: memberID, Answers: "{}", Status: domain.ApplicationStatusSubmitted}
		if err := tx.Vetting().CreateApplication(ctx, app); err != nil {
			return err
		}
		return tx.Members().UpdateVettingStatus(ctx, memberID, domain.VettingCodeSubmitted)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vetting_applications").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = store.WithinTx(ctx, func(tx repository.Store) error {
		app := &domain.VettingApplication{MemberID: uuid.New(), Answers: "{}", Status: domain.ApplicationStatusSubmitted}
		return tx.Vetting().CreateApplication(ctx, app)
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_NestedReusesTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()
	noteID := uuid.New()

	// A single BEGIN/COMMIT pair even when fn nests WithinTx.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_notes SET archived = TRUE").
		WithArgs(noteID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.WithinTx(ctx, func(inner repository.Store) error {
			return inner.Notes().Archive(ctx, noteID)
		})
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

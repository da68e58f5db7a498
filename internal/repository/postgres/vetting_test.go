package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"community-backend/internal/domain"
	"community-backend/internal/repository"
)

func TestVettingRepository_CreateApplication_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewVettingRepository(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO vetting_applications").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "vetting_applications_member_id_key"})

	app := &domain.VettingApplication{MemberID: uuid.New(), Answers: "{}", Status: domain.ApplicationStatusSubmitted}
	err = repo.CreateApplication(ctx, app)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVettingRepository_UpdateStatus_DoesNotTouchAnswers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewVettingRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	reviewer := uuid.New()
	app := &domain.VettingApplication{
		ID:         uuid.New(),
		Status:     domain.ApplicationStatusUnderReview,
		ReviewedAt: &now,
		ReviewedBy: &reviewer,
		AdminNotes: "looks promising",
	}

	mock.ExpectExec("UPDATE vetting_applications SET status=\\$1, reviewed_at=\\$2, reviewed_by=\\$3, admin_notes=\\$4 WHERE id=\\$5").
		WithArgs(app.Status, app.ReviewedAt, app.ReviewedBy, app.AdminNotes, app.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateStatus(ctx, app))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVettingRepository_ListStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewVettingRepository(db)
	ctx := context.Background()

	cutoff := time.Now().AddDate(0, 0, -14)
	appID := uuid.New()
	rows := sqlmock.NewRows([]string{
		"id", "member_id", "answers", "status", "submitted_at", "reviewed_at", "reviewed_by", "admin_notes",
	}).AddRow(appID, uuid.New(), "{}", "Submitted", time.Now().AddDate(0, 0, -30), nil, nil, "")

	mock.ExpectQuery("SELECT (.+) FROM vetting_applications\\s+WHERE status = \\$1 AND COALESCE\\(reviewed_at, submitted_at\\) < \\$2").
		WithArgs(domain.ApplicationStatusSubmitted, cutoff).
		WillReturnRows(rows)

	apps, err := repo.ListStale(ctx, domain.ApplicationStatusSubmitted, cutoff)
	assert.NoError(t, err)
	if assert.Len(t, apps, 1) {
		assert.Equal(t, appID, apps[0].ID)
		assert.Nil(t, apps[0].ReviewedAt)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

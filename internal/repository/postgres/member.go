package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/logger"
	"community-backend/internal/repository"
)

const memberColumns = `id, scene_name, encrypted_legal_name, email, COALESCE(pronouns, ''), role, is_active, vetting_status, created_at, updated_at, last_login_at`

type memberRepository struct {
	db DBTX
}

func NewMemberRepository(db DBTX) repository.MemberRepository {
	return &memberRepository{db: db}
}

func scanMember(row interface{ Scan(...any) error }) (*domain.Member, error) {
	m := &domain.Member{}
	var lastLogin sql.NullTime
	err := row.Scan(&m.ID, &m.SceneName, &m.EncryptedLegalName, &m.Email, &m.Pronouns,
		&m.Role, &m.IsActive, &m.VettingStatus, &m.CreatedAt, &m.UpdatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		m.LastLoginAt = &lastLogin.Time
	}
	return m, nil
}

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	query := `INSERT INTO members (id, scene_name, encrypted_legal_name, email, pronouns, role, is_active, vetting_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.SceneName, m.EncryptedLegalName, m.Email,
		m.Pronouns, m.Role, m.IsActive, m.VettingStatus, m.CreatedAt, m.UpdatedAt)
	return mapError(err)
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	m, err := scanMember(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return m, err
}

func (r *memberRepository) Update(ctx context.Context, m *domain.Member) error {
	m.UpdatedAt = time.Now().UTC()
	query := `UPDATE members SET scene_name=$1, encrypted_legal_name=$2, email=$3, pronouns=$4, updated_at=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, m.SceneName, m.EncryptedLegalName, m.Email, m.Pronouns, m.UpdatedAt, m.ID)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

func (r *memberRepository) UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE members SET is_active=$1, updated_at=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, isActive, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *memberRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	query := `UPDATE members SET role=$1, updated_at=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, role, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *memberRepository) UpdateVettingStatus(ctx context.Context, id uuid.UUID, code domain.VettingStatusCode) error {
	query := `UPDATE members SET vetting_status=$1, updated_at=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, code, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *memberRepository) Search(ctx context.Context, filter repository.MemberSearchFilter, page, pageSize int32) ([]domain.Member, int32, error) {
	logger.EnterMethod("memberRepository.Search", "query", filter.Query, "role", filter.Role)

	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		where = append(where, fmt.Sprintf("(scene_name ILIKE %s OR email ILIKE %s)", p, p))
	}
	if filter.Role != "" {
		// Exact, case-sensitive match on the stored role.
		where = append(where, fmt.Sprintf("role = %s", arg(string(filter.Role))))
	}
	if filter.IsActive != nil {
		where = append(where, fmt.Sprintf("is_active = %s", arg(*filter.IsActive)))
	}
	if filter.VettingStatus != nil {
		where = append(where, fmt.Sprintf("vetting_status = %s", arg(*filter.VettingStatus)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int32
	countQuery := `SELECT COUNT(*) FROM members WHERE ` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		logger.ExitMethodWithError("memberRepository.Search", err)
		return nil, 0, err
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE ` + whereClause +
		` ORDER BY scene_name ASC LIMIT ` + arg(pageSize) + ` OFFSET ` + arg((page-1)*pageSize)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("memberRepository.Search", err)
		return nil, 0, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, *m)
	}
	logger.ExitMethod("memberRepository.Search", "count", len(members), "total", total)
	return members, total, rows.Err()
}

func (r *memberRepository) IsSceneNameTaken(ctx context.Context, sceneName string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE LOWER(scene_name) = LOWER($1) AND id <> $2)`
	var taken bool
	err := r.db.QueryRowContext(ctx, query, sceneName, excludeID).Scan(&taken)
	return taken, err
}

func (r *memberRepository) ListAdmins(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE role = $1 AND is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query, domain.RoleAdministrator)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

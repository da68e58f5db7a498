package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"community-backend/internal/domain"
	"community-backend/internal/repository"
)

// mockStore aggregates the repository mocks behind the Store interface.
// WithinTx runs fn against the same store so expectations set on the mocks
// cover both transactional and direct calls.
type mockStore struct {
	members        *MockMemberRepo
	vetting        *MockVettingRepo
	participations *MockParticipationRepo
	events         *MockEventRepo
	incidents      *MockIncidentRepo
	notes          *MockNoteRepo
	txErr          error
}

func newMockStore() *mockStore {
	return &mockStore{
		members:        new(MockMemberRepo),
		vetting:        new(MockVettingRepo),
		participations: new(MockParticipationRepo),
		events:         new(MockEventRepo),
		incidents:      new(MockIncidentRepo),
		notes:          new(MockNoteRepo),
	}
}

func (s *mockStore) Members() repository.MemberRepository               { return s.members }
func (s *mockStore) Vetting() repository.VettingRepository              { return s.vetting }
func (s *mockStore) Participations() repository.ParticipationRepository { return s.participations }
func (s *mockStore) Events() repository.EventRepository                 { return s.events }
func (s *mockStore) Incidents() repository.IncidentRepository           { return s.incidents }
func (s *mockStore) Notes() repository.NoteRepository                   { return s.notes }

func (s *mockStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	return fn(s)
}

func (s *mockStore) assertExpectations(t mock.TestingT) {
	s.members.AssertExpectations(t)
	s.vetting.AssertExpectations(t)
	s.participations.AssertExpectations(t)
	s.events.AssertExpectations(t)
	s.incidents.AssertExpectations(t)
	s.notes.AssertExpectations(t)
}

type MockMemberRepo struct{ mock.Mock }

func (m *MockMemberRepo) Create(ctx context.Context, member *domain.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepo) Update(ctx context.Context, member *domain.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepo) UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	return m.Called(ctx, id, isActive).Error(0)
}

func (m *MockMemberRepo) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockMemberRepo) UpdateVettingStatus(ctx context.Context, id uuid.UUID, code domain.VettingStatusCode) error {
	return m.Called(ctx, id, code).Error(0)
}

func (m *MockMemberRepo) Search(ctx context.Context, filter repository.MemberSearchFilter, page, pageSize int32) ([]domain.Member, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	var members []domain.Member
	if args.Get(0) != nil {
		members = args.Get(0).([]domain.Member)
	}
	return members, args.Get(1).(int32), args.Error(2)
}

func (m *MockMemberRepo) IsSceneNameTaken(ctx context.Context, sceneName string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, sceneName, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepo) ListAdmins(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

type MockVettingRepo struct{ mock.Mock }

func (m *MockVettingRepo) CreateApplication(ctx context.Context, app *domain.VettingApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockVettingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.VettingApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VettingApplication), args.Error(1)
}

func (m *MockVettingRepo) GetByMember(ctx context.Context, memberID uuid.UUID) (*domain.VettingApplication, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VettingApplication), args.Error(1)
}

func (m *MockVettingRepo) UpdateStatus(ctx context.Context, app *domain.VettingApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockVettingRepo) AppendAudit(ctx context.Context, entry *domain.VettingAuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockVettingRepo) ListAudit(ctx context.Context, applicationID uuid.UUID) ([]domain.VettingAuditEntry, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VettingAuditEntry), args.Error(1)
}

func (m *MockVettingRepo) ListStale(ctx context.Context, status domain.ApplicationStatus, olderThan time.Time) ([]domain.VettingApplication, error) {
	args := m.Called(ctx, status, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VettingApplication), args.Error(1)
}

type MockParticipationRepo struct{ mock.Mock }

func (m *MockParticipationRepo) Create(ctx context.Context, p *domain.EventParticipation) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockParticipationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EventParticipation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventParticipation), args.Error(1)
}

func (m *MockParticipationRepo) Cancel(ctx context.Context, id uuid.UUID, status domain.ParticipationStatus, cancelledAt time.Time, reason string) error {
	return m.Called(ctx, id, status, cancelledAt, reason).Error(0)
}

func (m *MockParticipationRepo) HasActive(ctx context.Context, memberID, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, memberID, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipationRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]repository.ParticipationWithEvent, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ParticipationWithEvent), args.Error(1)
}

func (m *MockParticipationRepo) ListHistoryByMember(ctx context.Context, memberID uuid.UUID, limit, offset int32) ([]repository.ParticipationWithEvent, int32, error) {
	args := m.Called(ctx, memberID, limit, offset)
	var items []repository.ParticipationWithEvent
	if args.Get(0) != nil {
		items = args.Get(0).([]repository.ParticipationWithEvent)
	}
	return items, args.Get(1).(int32), args.Error(2)
}

func (m *MockParticipationRepo) ListWaitlistedForConcludedEvents(ctx context.Context, now time.Time) ([]domain.EventParticipation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EventParticipation), args.Error(1)
}

type MockEventRepo struct{ mock.Mock }

func (m *MockEventRepo) Create(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

type MockIncidentRepo struct{ mock.Mock }

func (m *MockIncidentRepo) Create(ctx context.Context, incident *domain.SafetyIncident) error {
	return m.Called(ctx, incident).Error(0)
}

func (m *MockIncidentRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]domain.SafetyIncident, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SafetyIncident), args.Error(1)
}

type MockNoteRepo struct{ mock.Mock }

func (m *MockNoteRepo) Create(ctx context.Context, note *domain.UserNote) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserNote), args.Error(1)
}

func (m *MockNoteRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]domain.UserNote, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserNote), args.Error(1)
}

func (m *MockNoteRepo) Archive(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) SendApplicationReceived(ctx context.Context, email, name string) error {
	return m.Called(ctx, email, name).Error(0)
}

func (m *MockEmailService) SendVettingStatusNotification(ctx context.Context, email, name string, status domain.ApplicationStatus, reasoning string) error {
	return m.Called(ctx, email, name, status, reasoning).Error(0)
}

func (m *MockEmailService) SendAccountStatusNotification(ctx context.Context, email, name string, isActive bool, reason string) error {
	return m.Called(ctx, email, name, isActive, reason).Error(0)
}

func (m *MockEmailService) SendStaleReviewReminder(ctx context.Context, email, name string, pendingCount int) error {
	return m.Called(ctx, email, name, pendingCount).Error(0)
}

// fakeEncryptor is a reversible stand-in for the AEAD encryptor.
type fakeEncryptor struct {
	failEncrypt bool
}

func (f *fakeEncryptor) Encrypt(plaintext string) (string, error) {
	if f.failEncrypt {
		return "", errEncryptFailed
	}
	return "enc:" + plaintext, nil
}

func (f *fakeEncryptor) Decrypt(ciphertext string) (string, error) {
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", errDecryptFailed
	}
	return ciphertext[4:], nil
}

var (
	errEncryptFailed = mockError("encrypt failed")
	errDecryptFailed = mockError("decrypt failed")
)

type mockError string

func (e mockError) Error() string { return string(e) }

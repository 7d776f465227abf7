package service

import (
	"context"
	"errors"
	"io"
	"time"

	"coachtrack/internal/domain"
	"coachtrack/internal/notify"
	"coachtrack/internal/repository"
	"coachtrack/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time checks that the mocks satisfy their interfaces.
var (
	_ repository.UserRepository          = (*mockUserRepo)(nil)
	_ repository.DailyRecordRepository   = (*mockDailyRepo)(nil)
	_ repository.WeeklyRecordRepository  = (*mockWeeklyRepo)(nil)
	_ repository.CheckinRepository       = (*mockCheckinRepo)(nil)
	_ repository.PhotoSetRepository      = (*mockPhotoSetRepo)(nil)
	_ repository.PlanRepository          = (*mockPlanRepo)(nil)
	_ repository.PowerliftingRepository  = (*mockPowerliftingRepo)(nil)
	_ repository.QuestionnaireRepository = (*mockQuestionnaireRepo)(nil)
	_ storage.FileStorage                = (*mockStorage)(nil)
	_ notify.Notifier                    = (*mockNotifier)(nil)
)

var errNotImplemented = errors.New("not implemented in mock")

type mockUserRepo struct {
	GetByEmailFunc          func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFunc             func(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetClientsByCoachIDFunc func(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCheckinDatesFunc     func(ctx context.Context, clientID primitive.ObjectID, last, next *time.Time) error
	SetCoachForClientFunc   func(ctx context.Context, clientID, coachID primitive.ObjectID) error
	AddClientIDToCoachFunc  func(ctx context.Context, coachID, clientID primitive.ObjectID) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errNotImplemented
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, errNotImplemented
}
func (m *mockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}
func (m *mockUserRepo) AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error {
	if m.AddClientIDToCoachFunc != nil {
		return m.AddClientIDToCoachFunc(ctx, coachID, clientID)
	}
	return nil
}
func (m *mockUserRepo) SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error {
	if m.SetCoachForClientFunc != nil {
		return m.SetCoachForClientFunc(ctx, clientID, coachID)
	}
	return nil
}
func (m *mockUserRepo) GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if m.GetClientsByCoachIDFunc != nil {
		return m.GetClientsByCoachIDFunc(ctx, coachID)
	}
	return nil, nil
}
func (m *mockUserRepo) ListActiveClients(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (m *mockUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return nil, nil
}
func (m *mockUserRepo) ListAll(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (m *mockUserRepo) SetCheckinDates(ctx context.Context, clientID primitive.ObjectID, last, next *time.Time) error {
	if m.SetCheckinDatesFunc != nil {
		return m.SetCheckinDatesFunc(ctx, clientID, last, next)
	}
	return nil
}
func (m *mockUserRepo) SetWaterTarget(ctx context.Context, clientID primitive.ObjectID, liters *float64) error {
	return nil
}

type mockDailyRepo struct {
	CreateFunc           func(ctx context.Context, rec *domain.DailyRecord) (primitive.ObjectID, error)
	GetByUserAndDateFunc func(ctx context.Context, userID primitive.ObjectID, date string) (*domain.DailyRecord, error)
	UpdateFunc           func(ctx context.Context, rec *domain.DailyRecord) error
	ListRecentFunc       func(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.DailyRecord, error)
}

func (m *mockDailyRepo) Create(ctx context.Context, rec *domain.DailyRecord) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return primitive.NewObjectID(), nil
}
func (m *mockDailyRepo) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.DailyRecord, error) {
	if m.GetByUserAndDateFunc != nil {
		return m.GetByUserAndDateFunc(ctx, userID, date)
	}
	return nil, repository.ErrNotFound
}
func (m *mockDailyRepo) Update(ctx context.Context, rec *domain.DailyRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rec)
	}
	return nil
}
func (m *mockDailyRepo) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.DailyRecord, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, userID, limit)
	}
	return nil, nil
}

type mockWeeklyRepo struct {
	CreateFunc        func(ctx context.Context, rec *domain.WeeklyRecord) (primitive.ObjectID, error)
	ExistsForWeekFunc func(ctx context.Context, userID primitive.ObjectID, week string) (bool, error)
}

func (m *mockWeeklyRepo) Create(ctx context.Context, rec *domain.WeeklyRecord) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return primitive.NewObjectID(), nil
}
func (m *mockWeeklyRepo) ExistsForWeek(ctx context.Context, userID primitive.ObjectID, week string) (bool, error) {
	if m.ExistsForWeekFunc != nil {
		return m.ExistsForWeekFunc(ctx, userID, week)
	}
	return false, nil
}
func (m *mockWeeklyRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.WeeklyRecord, error) {
	return nil, nil
}

type mockCheckinRepo struct {
	CreateFunc     func(ctx context.Context, rec *domain.CheckinRecord) (primitive.ObjectID, error)
	GetByIDFunc    func(ctx context.Context, id primitive.ObjectID) (*domain.CheckinRecord, error)
	UpdateFunc     func(ctx context.Context, rec *domain.CheckinRecord) error
	DeleteFunc     func(ctx context.Context, id, coachID primitive.ObjectID) error
	ListByUserFunc func(ctx context.Context, userID primitive.ObjectID) ([]domain.CheckinRecord, error)
}

func (m *mockCheckinRepo) Create(ctx context.Context, rec *domain.CheckinRecord) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return primitive.NewObjectID(), nil
}
func (m *mockCheckinRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CheckinRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockCheckinRepo) Update(ctx context.Context, rec *domain.CheckinRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rec)
	}
	return nil
}
func (m *mockCheckinRepo) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, coachID)
	}
	return nil
}
func (m *mockCheckinRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.CheckinRecord, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

type mockPhotoSetRepo struct {
	CreateFunc        func(ctx context.Context, set *domain.PhotoSet) (primitive.ObjectID, error)
	ExistsForWeekFunc func(ctx context.Context, userID primitive.ObjectID, week string) (bool, error)
}

func (m *mockPhotoSetRepo) Create(ctx context.Context, set *domain.PhotoSet) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, set)
	}
	return primitive.NewObjectID(), nil
}
func (m *mockPhotoSetRepo) ExistsForWeek(ctx context.Context, userID primitive.ObjectID, week string) (bool, error) {
	if m.ExistsForWeekFunc != nil {
		return m.ExistsForWeekFunc(ctx, userID, week)
	}
	return false, nil
}
func (m *mockPhotoSetRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PhotoSet, error) {
	return nil, nil
}
func (m *mockPhotoSetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PhotoSet, error) {
	return nil, repository.ErrNotFound
}

type mockPlanRepo struct {
	CreateFunc func(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
}

func (m *mockPlanRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, plan)
	}
	return primitive.NewObjectID(), nil
}
func (m *mockPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	return nil, repository.ErrNotFound
}
func (m *mockPlanRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	return nil, nil
}

type mockPowerliftingRepo struct{}

func (m *mockPowerliftingRepo) Create(ctx context.Context, entry *domain.PowerliftingEntry) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}
func (m *mockPowerliftingRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PowerliftingEntry, error) {
	return nil, nil
}

type mockQuestionnaireRepo struct {
	CreateFunc func(ctx context.Context, q *domain.Questionnaire) (primitive.ObjectID, error)
}

func (m *mockQuestionnaireRepo) Create(ctx context.Context, q *domain.Questionnaire) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, q)
	}
	return primitive.NewObjectID(), nil
}
func (m *mockQuestionnaireRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Questionnaire, error) {
	return nil, repository.ErrNotFound
}

// mockStorage records uploads so tests can assert no storage write happened
// before validation failed.
type mockStorage struct {
	Uploaded  []string
	Deleted   []string
	UploadErr error
}

func (m *mockStorage) Upload(ctx context.Context, objectKey string, contentType string, size int64, body io.Reader) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	m.Uploaded = append(m.Uploaded, objectKey)
	return nil
}
func (m *mockStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.example.com/" + objectKey, nil
}
func (m *mockStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.Deleted = append(m.Deleted, objectKey)
	return nil
}

type mockNotifier struct {
	Sent []string
}

func (m *mockNotifier) NotifyUser(ctx context.Context, userID string, n notify.Notification) error {
	m.Sent = append(m.Sent, userID)
	return nil
}
func (m *mockNotifier) NotifyRole(ctx context.Context, role string, n notify.Notification) error {
	return nil
}
func (m *mockNotifier) NotifyAll(ctx context.Context, n notify.Notification) error { return nil }

package repository

import (
	"context"
	"time"

	"coachtrack/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error
	SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error
	GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	ListActiveClients(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
	SetCheckinDates(ctx context.Context, clientID primitive.ObjectID, last, next *time.Time) error
	SetWaterTarget(ctx context.Context, clientID primitive.ObjectID, liters *float64) error
}

// DailyRecordRepository stores one record per user per civil day.
type DailyRecordRepository interface {
	// Create returns ErrConflict if a record for the user and date exists.
	Create(ctx context.Context, rec *domain.DailyRecord) (primitive.ObjectID, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.DailyRecord, error)
	Update(ctx context.Context, rec *domain.DailyRecord) error
	// ListRecent returns up to limit records ordered by date descending.
	ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.DailyRecord, error)
}

// WeeklyRecordRepository stores one write-once record per user per ISO week.
type WeeklyRecordRepository interface {
	// Create returns ErrConflict if a record for the user and week exists.
	Create(ctx context.Context, rec *domain.WeeklyRecord) (primitive.ObjectID, error)
	ExistsForWeek(ctx context.Context, userID primitive.ObjectID, week string) (bool, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.WeeklyRecord, error)
}

// CheckinRepository stores coach-authored assessments.
type CheckinRepository interface {
	Create(ctx context.Context, rec *domain.CheckinRecord) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CheckinRecord, error)
	Update(ctx context.Context, rec *domain.CheckinRecord) error
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error
	// ListByUser returns check-ins ordered by date descending.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.CheckinRecord, error)
}

// PhotoSetRepository stores one photo batch per user per ISO week.
type PhotoSetRepository interface {
	// Create returns ErrConflict if a set for the user and week exists.
	Create(ctx context.Context, set *domain.PhotoSet) (primitive.ObjectID, error)
	ExistsForWeek(ctx context.Context, userID primitive.ObjectID, week string) (bool, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PhotoSet, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PhotoSet, error)
}

// PlanRepository stores plan-document metadata.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
}

// PowerliftingRepository stores lift entries.
type PowerliftingRepository interface {
	Create(ctx context.Context, entry *domain.PowerliftingEntry) (primitive.ObjectID, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PowerliftingEntry, error)
}

// QuestionnaireRepository stores the write-once intake form.
type QuestionnaireRepository interface {
	// Create returns ErrConflict if the user already submitted one.
	Create(ctx context.Context, q *domain.Questionnaire) (primitive.ObjectID, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Questionnaire, error)
}

package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"coachtrack/internal/domain"
	"coachtrack/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type coachServiceDeps struct {
	users    *mockUserRepo
	daily    *mockDailyRepo
	weekly   *mockWeeklyRepo
	checkins *mockCheckinRepo
	photos   *mockPhotoSetRepo
	plans    *mockPlanRepo
	storage  *mockStorage
	notifier *mockNotifier
}

func newTestCoachService(d coachServiceDeps) CoachService {
	if d.users == nil {
		d.users = &mockUserRepo{}
	}
	if d.daily == nil {
		d.daily = &mockDailyRepo{}
	}
	if d.weekly == nil {
		d.weekly = &mockWeeklyRepo{}
	}
	if d.checkins == nil {
		d.checkins = &mockCheckinRepo{}
	}
	if d.photos == nil {
		d.photos = &mockPhotoSetRepo{}
	}
	if d.plans == nil {
		d.plans = &mockPlanRepo{}
	}
	if d.storage == nil {
		d.storage = &mockStorage{}
	}
	if d.notifier == nil {
		d.notifier = &mockNotifier{}
	}
	svc := NewCoachService(
		d.users, d.daily, d.weekly, d.checkins, d.photos, d.plans,
		d.storage, d.notifier, testUploads, 7, time.UTC,
	).(*coachService)
	svc.now = func() time.Time { return svcNow }
	return svc
}

// usersWithClient wires a mockUserRepo holding one coach and one managed client.
func usersWithClient(coach, client *domain.User) *mockUserRepo {
	return &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			switch id {
			case coach.ID:
				return coach, nil
			case client.ID:
				return client, nil
			}
			return nil, repository.ErrNotFound
		},
	}
}

func coachUser() *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleCoach, Active: true}
}

func clientOf(coach *domain.User) *domain.User {
	return &domain.User{
		ID:      primitive.NewObjectID(),
		Role:    domain.RoleClient,
		Active:  true,
		CoachID: &coach.ID,
	}
}

func TestAddClientByEmailAssignsCoach(t *testing.T) {
	coach := coachUser()
	client := &domain.User{ID: primitive.NewObjectID(), Email: "jo@example.com", Role: domain.RoleClient, Active: true}

	var setCoachCalled, addClientCalled bool
	users := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return client, nil
		},
		SetCoachForClientFunc: func(ctx context.Context, clientID, coachID primitive.ObjectID) error {
			setCoachCalled = true
			assert.Equal(t, client.ID, clientID)
			assert.Equal(t, coach.ID, coachID)
			return nil
		},
		AddClientIDToCoachFunc: func(ctx context.Context, coachID, clientID primitive.ObjectID) error {
			addClientCalled = true
			return nil
		},
	}
	svc := newTestCoachService(coachServiceDeps{users: users})

	got, err := svc.AddClientByEmail(context.Background(), coach.ID, "jo@example.com")
	require.NoError(t, err)
	assert.True(t, setCoachCalled)
	assert.True(t, addClientCalled)
	require.NotNil(t, got.CoachID)
	assert.Equal(t, coach.ID, *got.CoachID)
	assert.Empty(t, got.PasswordHash)
}

func TestAddClientByEmailRejectsNonClient(t *testing.T) {
	users := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleCoach}, nil
		},
	}
	svc := newTestCoachService(coachServiceDeps{users: users})

	_, err := svc.AddClientByEmail(context.Background(), primitive.NewObjectID(), "other@example.com")
	assert.ErrorIs(t, err, ErrClientNotRole)
}

func TestAddClientByEmailRejectsAlreadyAssigned(t *testing.T) {
	otherCoach := primitive.NewObjectID()
	users := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient, CoachID: &otherCoach}, nil
		},
	}
	svc := newTestCoachService(coachServiceDeps{users: users})

	_, err := svc.AddClientByEmail(context.Background(), primitive.NewObjectID(), "taken@example.com")
	assert.ErrorIs(t, err, ErrClientAlreadyAssigned)
}

func TestGetDashboardFlagsLapsedClients(t *testing.T) {
	coach := coachUser()
	lapsed := clientOf(coach)
	fresh := clientOf(coach)

	workout := false
	users := &mockUserRepo{
		GetClientsByCoachIDFunc: func(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
			return []domain.User{*lapsed, *fresh}, nil
		},
	}
	daily := &mockDailyRepo{
		ListRecentFunc: func(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.DailyRecord, error) {
			if userID == lapsed.ID {
				// Last record six days ago, no workout.
				return []domain.DailyRecord{{
					UserID:  userID,
					Date:    domain.DateKey(svcNow.AddDate(0, 0, -6), time.UTC),
					Workout: &workout,
				}}, nil
			}
			w := true
			return []domain.DailyRecord{{
				UserID:  userID,
				Date:    domain.DateKey(svcNow, time.UTC),
				Workout: &w,
			}}, nil
		},
	}
	svc := newTestCoachService(coachServiceDeps{users: users, daily: daily})

	rows, err := svc.GetDashboard(context.Background(), coach.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Inactive)
	assert.True(t, rows[0].WorkoutLapsed)
	assert.False(t, rows[1].Inactive)
	assert.False(t, rows[1].WorkoutLapsed)
}

func TestGetDashboardDegradesRowOnFetchFailure(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)

	users := &mockUserRepo{
		GetClientsByCoachIDFunc: func(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
			return []domain.User{*client}, nil
		},
	}
	daily := &mockDailyRepo{
		ListRecentFunc: func(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.DailyRecord, error) {
			return nil, repository.ErrUpdateFailed
		},
	}
	svc := newTestCoachService(coachServiceDeps{users: users, daily: daily})

	rows, err := svc.GetDashboard(context.Background(), coach.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Metrics.Empty())
	assert.False(t, rows[0].Inactive)
}

func TestGetClientDailyRejectsForeignClient(t *testing.T) {
	coach := coachUser()
	otherCoachID := primitive.NewObjectID()
	foreign := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient, CoachID: &otherCoachID}

	svc := newTestCoachService(coachServiceDeps{users: usersWithClient(coach, foreign)})

	_, err := svc.GetClientDaily(context.Background(), coach.ID, foreign.ID, 7)
	assert.ErrorIs(t, err, ErrNotYourClient)
}

func TestGetClientDailyAdminBypassesOwnership(t *testing.T) {
	admin := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleAdmin, Active: true}
	otherCoachID := primitive.NewObjectID()
	client := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient, CoachID: &otherCoachID}

	svc := newTestCoachService(coachServiceDeps{users: usersWithClient(admin, client)})

	_, err := svc.GetClientDaily(context.Background(), admin.ID, client.ID, 7)
	assert.NoError(t, err)
}

func TestCreateCheckinRefreshesCachedDates(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)

	var gotLast, gotNext *time.Time
	users := usersWithClient(coach, client)
	users.SetCheckinDatesFunc = func(ctx context.Context, clientID primitive.ObjectID, last, next *time.Time) error {
		gotLast, gotNext = last, next
		return nil
	}
	svc := newTestCoachService(coachServiceDeps{users: users})

	_, err := svc.CreateCheckin(context.Background(), coach.ID, client.ID, CheckinInput{Date: "2026-08-28"})
	require.NoError(t, err)
	require.NotNil(t, gotLast)
	require.NotNil(t, gotNext)
	assert.Equal(t, "2026-08-28", domain.DateKey(*gotLast, time.UTC))
	assert.Equal(t, gotLast.Add(DefaultCheckinInterval), *gotNext)
}

func TestCreateCheckinHonorsExplicitNextDate(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)

	var gotNext *time.Time
	users := usersWithClient(coach, client)
	users.SetCheckinDatesFunc = func(ctx context.Context, clientID primitive.ObjectID, last, next *time.Time) error {
		gotNext = next
		return nil
	}
	svc := newTestCoachService(coachServiceDeps{users: users})

	override := svcNow.AddDate(0, 0, 21)
	_, err := svc.CreateCheckin(context.Background(), coach.ID, client.ID, CheckinInput{
		Date:          "2026-08-28",
		NextCheckinAt: &override,
	})
	require.NoError(t, err)
	require.NotNil(t, gotNext)
	assert.Equal(t, override, *gotNext)
}

func TestCreateCheckinRejectsBadDate(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)
	svc := newTestCoachService(coachServiceDeps{users: usersWithClient(coach, client)})

	_, err := svc.CreateCheckin(context.Background(), coach.ID, client.ID, CheckinInput{Date: "28/08/2026"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDeleteCheckinRecomputesDatesFromRemaining(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)

	rec := &domain.CheckinRecord{
		ID:      primitive.NewObjectID(),
		UserID:  client.ID,
		CoachID: coach.ID,
		Date:    "2026-08-28",
	}
	var gotLast *time.Time
	users := usersWithClient(coach, client)
	users.SetCheckinDatesFunc = func(ctx context.Context, clientID primitive.ObjectID, last, next *time.Time) error {
		gotLast = last
		return nil
	}
	checkins := &mockCheckinRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*domain.CheckinRecord, error) {
			return rec, nil
		},
		ListByUserFunc: func(ctx context.Context, userID primitive.ObjectID) ([]domain.CheckinRecord, error) {
			return []domain.CheckinRecord{{UserID: client.ID, Date: "2026-08-14"}}, nil
		},
	}
	svc := newTestCoachService(coachServiceDeps{users: users, checkins: checkins})

	err := svc.DeleteCheckin(context.Background(), coach.ID, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, gotLast)
	assert.Equal(t, "2026-08-14", domain.DateKey(*gotLast, time.UTC))
}

func TestUploadPlanRejectsNonPDFBeforeStorage(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)
	store := &mockStorage{}
	svc := newTestCoachService(coachServiceDeps{users: usersWithClient(coach, client), storage: store})

	_, err := svc.UploadPlan(context.Background(), coach.ID, client.ID, PlanUpload{
		Title:       "Block 1",
		FileName:    "block1.docx",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Size:        1024,
		Body:        bytes.NewReader([]byte("doc")),
	})
	assert.ErrorIs(t, err, ErrInvalidPlanType)
	assert.Empty(t, store.Uploaded)
}

func TestUploadPlanStoresPDF(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)
	store := &mockStorage{}
	svc := newTestCoachService(coachServiceDeps{users: usersWithClient(coach, client), storage: store})

	plan, err := svc.UploadPlan(context.Background(), coach.ID, client.ID, PlanUpload{
		Title:       "Block 1",
		FileName:    "block1.pdf",
		ContentType: "application/pdf",
		Size:        1024,
		Body:        bytes.NewReader([]byte("%PDF")),
	})
	require.NoError(t, err)
	assert.Len(t, store.Uploaded, 1)
	assert.Equal(t, "Block 1", plan.Title)
	assert.Contains(t, plan.ObjectKey, "plans/"+client.ID.Hex())
}

func TestNotifyClientTargetsClientID(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)
	notifier := &mockNotifier{}
	svc := newTestCoachService(coachServiceDeps{users: usersWithClient(coach, client), notifier: notifier})

	err := svc.NotifyClient(context.Background(), coach.ID, client.ID, "Check in", "Time for your weekly update.", "")
	require.NoError(t, err)
	require.Len(t, notifier.Sent, 1)
	assert.Equal(t, client.ID.Hex(), notifier.Sent[0])
}

func TestSetClientWaterTargetRejectsNonPositive(t *testing.T) {
	coach := coachUser()
	client := clientOf(coach)
	svc := newTestCoachService(coachServiceDeps{users: usersWithClient(coach, client)})

	bad := -1.5
	err := svc.SetClientWaterTarget(context.Background(), coach.ID, client.ID, &bad)
	assert.Error(t, err)
}

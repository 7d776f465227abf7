package service

import (
	"context"
	"errors"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"coachtrack/internal/config"
	"coachtrack/internal/domain"
	"coachtrack/internal/metrics"
	"coachtrack/internal/notify"
	"coachtrack/internal/repository"
	"coachtrack/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound        = errors.New("client not found")
	ErrClientNotRole         = errors.New("user is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a coach")
	ErrNotYourClient         = errors.New("client is not managed by this coach")
	ErrCheckinNotFound       = errors.New("check-in not found")
	ErrInvalidPlanType       = errors.New("plan must be a PDF document")
	ErrPlanTooLarge          = errors.New("plan exceeds the maximum allowed size")
	ErrInvalidDate           = errors.New("invalid date, expected YYYY-MM-DD")
)

// DefaultCheckinInterval is used for the cached next-check-in date when the
// coach does not schedule one explicitly.
const DefaultCheckinInterval = 14 * 24 * time.Hour

// CheckinInput carries the coach-editable fields of a check-in.
type CheckinInput struct {
	Date        string
	Weight      *float64
	MuscleMass  *float64
	FatMass     *float64
	VisceralFat *float64
	Comment     string
	PrivateNote string
	// NextCheckinAt overrides the default follow-up date.
	NextCheckinAt *time.Time
}

// PlanUpload is a validated plan document upload.
type PlanUpload struct {
	Title       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ClientOverview is one dashboard row: the client plus the derived metrics
// and threshold flags the coach filters on.
type ClientOverview struct {
	Client          domain.User      `json:"client"`
	Metrics         metrics.Snapshot `json:"metrics"`
	Inactive        bool             `json:"inactive"`
	WorkoutLapsed   bool             `json:"workoutLapsed"`
	DietLapsed      bool             `json:"dietLapsed"`
	HydrationLapsed bool             `json:"hydrationLapsed"`
}

type CoachService interface {
	// Roster
	AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetDashboard(ctx context.Context, coachID primitive.ObjectID) ([]ClientOverview, error)

	// Client data, coach view
	GetClientDaily(ctx context.Context, coachID, clientID primitive.ObjectID, limit int) ([]domain.DailyRecord, error)
	GetClientWeekly(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.WeeklyRecord, error)
	GetClientPhotoSets(ctx context.Context, coachID, clientID primitive.ObjectID) ([]PhotoSetDetails, error)
	GetClientCheckins(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.CheckinRecord, error)

	// Check-in management
	CreateCheckin(ctx context.Context, coachID, clientID primitive.ObjectID, input CheckinInput) (*domain.CheckinRecord, error)
	UpdateCheckin(ctx context.Context, coachID, checkinID primitive.ObjectID, input CheckinInput) (*domain.CheckinRecord, error)
	DeleteCheckin(ctx context.Context, coachID, checkinID primitive.ObjectID) error

	// Plans
	UploadPlan(ctx context.Context, coachID, clientID primitive.ObjectID, upload PlanUpload) (*domain.Plan, error)

	// Manual push
	NotifyClient(ctx context.Context, coachID, clientID primitive.ObjectID, title, message, url string) error

	// Water target
	SetClientWaterTarget(ctx context.Context, coachID, clientID primitive.ObjectID, liters *float64) error
}

// coachService implements the CoachService interface.
type coachService struct {
	userRepo     repository.UserRepository
	dailyRepo    repository.DailyRecordRepository
	weeklyRepo   repository.WeeklyRecordRepository
	checkinRepo  repository.CheckinRepository
	photoSetRepo repository.PhotoSetRepository
	planRepo     repository.PlanRepository
	fileStorage  storage.FileStorage
	notifier     notify.Notifier
	uploads      config.UploadsConfig
	historyLimit int
	loc          *time.Location
	now          func() time.Time
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(
	userRepo repository.UserRepository,
	dailyRepo repository.DailyRecordRepository,
	weeklyRepo repository.WeeklyRecordRepository,
	checkinRepo repository.CheckinRepository,
	photoSetRepo repository.PhotoSetRepository,
	planRepo repository.PlanRepository,
	fileStorage storage.FileStorage,
	notifier notify.Notifier,
	uploads config.UploadsConfig,
	historyLimit int,
	loc *time.Location,
) CoachService {
	if historyLimit <= 0 || historyLimit > MaxDailyHistoryLimit {
		historyLimit = MaxDailyHistoryLimit
	}
	return &coachService{
		userRepo:     userRepo,
		dailyRepo:    dailyRepo,
		weeklyRepo:   weeklyRepo,
		checkinRepo:  checkinRepo,
		photoSetRepo: photoSetRepo,
		planRepo:     planRepo,
		fileStorage:  fileStorage,
		notifier:     notifier,
		uploads:      uploads,
		historyLimit: historyLimit,
		loc:          loc,
		now:          time.Now,
	}
}

// === Roster ===

// AddClientByEmail associates an existing client user with the coach.
func (s *coachService) AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}
	if client.CoachID != nil && *client.CoachID != coachID {
		return nil, ErrClientAlreadyAssigned
	}

	if err := s.userRepo.SetCoachForClient(ctx, client.ID, coachID); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddClientIDToCoach(ctx, coachID, client.ID); err != nil {
		return nil, err
	}

	client.CoachID = &coachID
	client.PasswordHash = ""
	return client, nil
}

// GetDashboard builds one overview row per managed client. A failed metrics
// fetch for one client degrades that row to empty metrics instead of failing
// the whole dashboard.
func (s *coachService) GetDashboard(ctx context.Context, coachID primitive.ObjectID) ([]ClientOverview, error) {
	clients, err := s.userRepo.GetClientsByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	overviews := make([]ClientOverview, 0, len(clients))
	for _, client := range clients {
		client.PasswordHash = ""

		records, err := s.dailyRepo.ListRecent(ctx, client.ID, s.historyLimit)
		if err != nil {
			log.Printf("WARN: dashboard: failed to fetch daily records for client %s: %v", client.ID.Hex(), err)
			records = nil
		}

		snap := metrics.Compute(records, client.WaterTargetLiters, now, s.loc)
		overviews = append(overviews, ClientOverview{
			Client:          client,
			Metrics:         snap,
			Inactive:        snap.Inactive(),
			WorkoutLapsed:   snap.WorkoutLapsed(),
			DietLapsed:      snap.DietLapsed(),
			HydrationLapsed: snap.HydrationLapsed(),
		})
	}
	return overviews, nil
}

// authorizeClient verifies the coach manages the client (admins pass).
func (s *coachService) authorizeClient(ctx context.Context, coachID, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}

	coach, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if coach.IsAdmin() {
		return client, nil
	}
	if client.CoachID == nil || *client.CoachID != coachID {
		return nil, ErrNotYourClient
	}
	return client, nil
}

// === Client Data, Coach View ===

func (s *coachService) GetClientDaily(ctx context.Context, coachID, clientID primitive.ObjectID, limit int) ([]domain.DailyRecord, error) {
	if _, err := s.authorizeClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxDailyHistoryLimit {
		limit = s.historyLimit
	}
	return s.dailyRepo.ListRecent(ctx, clientID, limit)
}

func (s *coachService) GetClientWeekly(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.WeeklyRecord, error) {
	if _, err := s.authorizeClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}
	return s.weeklyRepo.ListByUser(ctx, clientID)
}

func (s *coachService) GetClientPhotoSets(ctx context.Context, coachID, clientID primitive.ObjectID) ([]PhotoSetDetails, error) {
	if _, err := s.authorizeClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}

	sets, err := s.photoSetRepo.ListByUser(ctx, clientID)
	if err != nil {
		return nil, err
	}
	details := make([]PhotoSetDetails, 0, len(sets))
	for _, set := range sets {
		d := PhotoSetDetails{PhotoSet: set, PhotoURLs: make([]string, 0, len(set.Photos))}
		for _, ph := range set.Photos {
			url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, ph.ObjectKey, storage.DefaultPresignedURLExpiry)
			if err != nil {
				url = ""
			}
			d.PhotoURLs = append(d.PhotoURLs, url)
		}
		details = append(details, d)
	}
	return details, nil
}

// GetClientCheckins returns all check-ins including private notes.
func (s *coachService) GetClientCheckins(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.CheckinRecord, error) {
	if _, err := s.authorizeClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}
	return s.checkinRepo.ListByUser(ctx, clientID)
}

// === Check-In Management ===

// CreateCheckin records an assessment and refreshes the client's cached
// last/next check-in dates.
func (s *coachService) CreateCheckin(ctx context.Context, coachID, clientID primitive.ObjectID, input CheckinInput) (*domain.CheckinRecord, error) {
	if _, err := s.authorizeClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}

	date := input.Date
	if date == "" {
		date = domain.DateKey(s.now(), s.loc)
	}
	day, err := domain.ParseDateKey(date, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	rec := &domain.CheckinRecord{
		UserID:      clientID,
		CoachID:     coachID,
		Date:        date,
		Weight:      input.Weight,
		MuscleMass:  input.MuscleMass,
		FatMass:     input.FatMass,
		VisceralFat: input.VisceralFat,
		Comment:     input.Comment,
		PrivateNote: input.PrivateNote,
	}
	if _, err := s.checkinRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	next := day.Add(DefaultCheckinInterval)
	if input.NextCheckinAt != nil {
		next = *input.NextCheckinAt
	}
	if err := s.userRepo.SetCheckinDates(ctx, clientID, &day, &next); err != nil {
		log.Printf("WARN: failed to refresh check-in dates for client %s: %v", clientID.Hex(), err)
	}
	return rec, nil
}

func (s *coachService) UpdateCheckin(ctx context.Context, coachID, checkinID primitive.ObjectID, input CheckinInput) (*domain.CheckinRecord, error) {
	rec, err := s.checkinRepo.GetByID(ctx, checkinID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCheckinNotFound
		}
		return nil, err
	}
	if _, err := s.authorizeClient(ctx, coachID, rec.UserID); err != nil {
		return nil, err
	}

	if input.Date != "" {
		if _, err := domain.ParseDateKey(input.Date, s.loc); err != nil {
			return nil, ErrInvalidDate
		}
		rec.Date = input.Date
	}
	rec.Weight = input.Weight
	rec.MuscleMass = input.MuscleMass
	rec.FatMass = input.FatMass
	rec.VisceralFat = input.VisceralFat
	rec.Comment = input.Comment
	rec.PrivateNote = input.PrivateNote
	rec.CoachID = coachID

	if err := s.checkinRepo.Update(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCheckinNotFound
		}
		return nil, err
	}
	return rec, nil
}

// DeleteCheckin removes an assessment and recomputes the cached dates from
// the client's remaining check-ins.
func (s *coachService) DeleteCheckin(ctx context.Context, coachID, checkinID primitive.ObjectID) error {
	rec, err := s.checkinRepo.GetByID(ctx, checkinID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCheckinNotFound
		}
		return err
	}
	if _, err := s.authorizeClient(ctx, coachID, rec.UserID); err != nil {
		return err
	}

	if err := s.checkinRepo.Delete(ctx, checkinID, rec.CoachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCheckinNotFound
		}
		return err
	}

	remaining, err := s.checkinRepo.ListByUser(ctx, rec.UserID)
	if err != nil {
		log.Printf("WARN: failed to recompute check-in dates for client %s: %v", rec.UserID.Hex(), err)
		return nil
	}
	var last, next *time.Time
	if len(remaining) > 0 {
		if day, err := domain.ParseDateKey(remaining[0].Date, s.loc); err == nil {
			n := day.Add(DefaultCheckinInterval)
			last, next = &day, &n
		}
	}
	if err := s.userRepo.SetCheckinDates(ctx, rec.UserID, last, next); err != nil {
		log.Printf("WARN: failed to refresh check-in dates for client %s: %v", rec.UserID.Hex(), err)
	}
	return nil
}

// === Plans ===

func (s *coachService) UploadPlan(ctx context.Context, coachID, clientID primitive.ObjectID, upload PlanUpload) (*domain.Plan, error) {
	if _, err := s.authorizeClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}

	if !strings.EqualFold(upload.ContentType, "application/pdf") {
		return nil, ErrInvalidPlanType
	}
	if upload.Size <= 0 || upload.Size > s.uploads.MaxPlanSizeMB*1024*1024 {
		return nil, ErrPlanTooLarge
	}

	objectKey := path.Join("plans", clientID.Hex(), uuid.NewString()+".pdf")
	if err := s.fileStorage.Upload(ctx, objectKey, upload.ContentType, upload.Size, upload.Body); err != nil {
		return nil, err
	}

	title := upload.Title
	if title == "" {
		title = upload.FileName
	}
	plan := &domain.Plan{
		UserID:      clientID,
		CoachID:     coachID,
		Title:       title,
		ObjectKey:   objectKey,
		ContentType: upload.ContentType,
		Size:        upload.Size,
	}
	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		_ = s.fileStorage.DeleteObject(ctx, objectKey)
		return nil, err
	}
	return plan, nil
}

// === Manual Push ===

func (s *coachService) NotifyClient(ctx context.Context, coachID, clientID primitive.ObjectID, title, message, url string) error {
	if _, err := s.authorizeClient(ctx, coachID, clientID); err != nil {
		return err
	}
	return s.notifier.NotifyUser(ctx, clientID.Hex(), notify.Notification{
		Title:   title,
		Message: message,
		URL:     url,
	})
}

// === Water Target ===

func (s *coachService) SetClientWaterTarget(ctx context.Context, coachID, clientID primitive.ObjectID, liters *float64) error {
	if _, err := s.authorizeClient(ctx, coachID, clientID); err != nil {
		return err
	}
	if liters != nil && *liters <= 0 {
		return errors.New("water target must be positive")
	}
	return s.userRepo.SetWaterTarget(ctx, clientID, liters)
}

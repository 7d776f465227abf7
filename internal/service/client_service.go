package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"coachtrack/internal/config"
	"coachtrack/internal/domain"
	"coachtrack/internal/repository"
	"coachtrack/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrDailyAlreadyExists     = errors.New("a daily record for this date already exists")
	ErrDailyNotFound          = errors.New("daily record not found")
	ErrEditWindowClosed       = errors.New("the edit window for this record has closed")
	ErrWeeklyAlreadyExists    = errors.New("a weekly record for this week already exists")
	ErrPhotoSetAlreadyExists  = errors.New("a photo set for this week already exists")
	ErrTooManyPhotos          = errors.New("too many photos in one batch")
	ErrEmptyPhotoBatch        = errors.New("photo batch is empty")
	ErrInvalidPhotoType       = errors.New("photo content type must be an image")
	ErrPhotoTooLarge          = errors.New("photo exceeds the maximum allowed size")
	ErrInvalidCoverIndex      = errors.New("cover index is out of range")
	ErrQuestionnaireExists    = errors.New("questionnaire has already been submitted")
	ErrQuestionnaireNotFound  = errors.New("questionnaire not found")
	ErrHistoryLimitOutOfRange = errors.New("history limit must be between 1 and 30")
)

// MaxDailyHistoryLimit caps how many records a history query may request.
const MaxDailyHistoryLimit = 30

// DailyInput carries the client-editable fields of a daily record.
type DailyInput struct {
	Weight        *float64
	WaterLiters   *float64
	Steps         *int
	Workout       *bool
	DietCompliant *bool
	Notes         string
}

// WeeklyInput carries the reflection fields of a weekly record.
type WeeklyInput struct {
	Wins        string
	Struggles   string
	Energy      string
	Adjustments string
}

// PhotoUpload is one file in a photo batch, validated before any storage write.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// QuestionnaireInput carries the intake form fields.
type QuestionnaireInput struct {
	Goals        string
	Injuries     string
	Experience   string
	Availability string
}

// PhotoSetDetails is a photo set enriched with presigned view URLs.
type PhotoSetDetails struct {
	domain.PhotoSet
	PhotoURLs []string `json:"photoUrls"`
}

// PlanDetails is a plan enriched with a presigned download URL.
type PlanDetails struct {
	domain.Plan
	DownloadURL string `json:"downloadUrl"`
}

type ClientService interface {
	// Daily records
	SubmitDaily(ctx context.Context, clientID primitive.ObjectID, input DailyInput) (*domain.DailyRecord, error)
	UpdateDaily(ctx context.Context, clientID primitive.ObjectID, date string, input DailyInput) (*domain.DailyRecord, error)
	GetRecentDaily(ctx context.Context, clientID primitive.ObjectID, limit int) ([]domain.DailyRecord, error)

	// Weekly records
	SubmitWeekly(ctx context.Context, clientID primitive.ObjectID, input WeeklyInput) (*domain.WeeklyRecord, error)
	ListWeekly(ctx context.Context, clientID primitive.ObjectID) ([]domain.WeeklyRecord, error)

	// Progress photos
	UploadPhotoSet(ctx context.Context, clientID primitive.ObjectID, photos []PhotoUpload, coverIndex int) (*domain.PhotoSet, error)
	ListPhotoSets(ctx context.Context, clientID primitive.ObjectID) ([]PhotoSetDetails, error)

	// Coach-authored material, client view
	ListCheckins(ctx context.Context, clientID primitive.ObjectID) ([]domain.CheckinRecord, error)
	ListPlans(ctx context.Context, clientID primitive.ObjectID) ([]PlanDetails, error)

	// Powerlifting log
	AddPowerliftingEntry(ctx context.Context, clientID primitive.ObjectID, lift string, weightKg float64, reps int) (*domain.PowerliftingEntry, error)
	ListPowerlifting(ctx context.Context, clientID primitive.ObjectID) ([]domain.PowerliftingEntry, error)

	// Intake questionnaire
	SubmitQuestionnaire(ctx context.Context, clientID primitive.ObjectID, input QuestionnaireInput) (*domain.Questionnaire, error)
	GetQuestionnaire(ctx context.Context, clientID primitive.ObjectID) (*domain.Questionnaire, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	dailyRepo         repository.DailyRecordRepository
	weeklyRepo        repository.WeeklyRecordRepository
	checkinRepo       repository.CheckinRepository
	photoSetRepo      repository.PhotoSetRepository
	planRepo          repository.PlanRepository
	powerliftingRepo  repository.PowerliftingRepository
	questionnaireRepo repository.QuestionnaireRepository
	fileStorage       storage.FileStorage
	uploads           config.UploadsConfig
	loc               *time.Location
	now               func() time.Time
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	dailyRepo repository.DailyRecordRepository,
	weeklyRepo repository.WeeklyRecordRepository,
	checkinRepo repository.CheckinRepository,
	photoSetRepo repository.PhotoSetRepository,
	planRepo repository.PlanRepository,
	powerliftingRepo repository.PowerliftingRepository,
	questionnaireRepo repository.QuestionnaireRepository,
	fileStorage storage.FileStorage,
	uploads config.UploadsConfig,
	loc *time.Location,
) ClientService {
	return &clientService{
		dailyRepo:         dailyRepo,
		weeklyRepo:        weeklyRepo,
		checkinRepo:       checkinRepo,
		photoSetRepo:      photoSetRepo,
		planRepo:          planRepo,
		powerliftingRepo:  powerliftingRepo,
		questionnaireRepo: questionnaireRepo,
		fileStorage:       fileStorage,
		uploads:           uploads,
		loc:               loc,
		now:               time.Now,
	}
}

// === Daily Records ===

// SubmitDaily creates today's record. One record per civil day; a second
// submission for the same day is a conflict.
func (s *clientService) SubmitDaily(ctx context.Context, clientID primitive.ObjectID, input DailyInput) (*domain.DailyRecord, error) {
	rec := &domain.DailyRecord{
		UserID:        clientID,
		Date:          domain.DateKey(s.now(), s.loc),
		Weight:        input.Weight,
		WaterLiters:   input.WaterLiters,
		Steps:         input.Steps,
		Workout:       input.Workout,
		DietCompliant: input.DietCompliant,
		Notes:         input.Notes,
	}

	if _, err := s.dailyRepo.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDailyAlreadyExists
		}
		return nil, err
	}
	return rec, nil
}

// UpdateDaily edits an existing record. Records are immutable once the
// edit window (2 hours from creation) has passed.
func (s *clientService) UpdateDaily(ctx context.Context, clientID primitive.ObjectID, date string, input DailyInput) (*domain.DailyRecord, error) {
	rec, err := s.dailyRepo.GetByUserAndDate(ctx, clientID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDailyNotFound
		}
		return nil, err
	}

	if !rec.Editable(s.now()) {
		return nil, ErrEditWindowClosed
	}

	rec.Weight = input.Weight
	rec.WaterLiters = input.WaterLiters
	rec.Steps = input.Steps
	rec.Workout = input.Workout
	rec.DietCompliant = input.DietCompliant
	rec.Notes = input.Notes

	if err := s.dailyRepo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *clientService) GetRecentDaily(ctx context.Context, clientID primitive.ObjectID, limit int) ([]domain.DailyRecord, error) {
	if limit <= 0 || limit > MaxDailyHistoryLimit {
		return nil, ErrHistoryLimitOutOfRange
	}
	return s.dailyRepo.ListRecent(ctx, clientID, limit)
}

// === Weekly Records ===

// SubmitWeekly creates the reflection for the current ISO week. Write-once.
func (s *clientService) SubmitWeekly(ctx context.Context, clientID primitive.ObjectID, input WeeklyInput) (*domain.WeeklyRecord, error) {
	rec := &domain.WeeklyRecord{
		UserID:      clientID,
		Week:        domain.WeekKey(s.now(), s.loc),
		Wins:        input.Wins,
		Struggles:   input.Struggles,
		Energy:      input.Energy,
		Adjustments: input.Adjustments,
	}

	if _, err := s.weeklyRepo.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrWeeklyAlreadyExists
		}
		return nil, err
	}
	return rec, nil
}

func (s *clientService) ListWeekly(ctx context.Context, clientID primitive.ObjectID) ([]domain.WeeklyRecord, error) {
	return s.weeklyRepo.ListByUser(ctx, clientID)
}

// === Progress Photos ===

// UploadPhotoSet validates the whole batch, checks the one-set-per-week
// invariant, and only then writes to object storage.
func (s *clientService) UploadPhotoSet(ctx context.Context, clientID primitive.ObjectID, photos []PhotoUpload, coverIndex int) (*domain.PhotoSet, error) {
	if len(photos) == 0 {
		return nil, ErrEmptyPhotoBatch
	}
	if len(photos) > s.uploads.MaxPhotosPerSet {
		return nil, ErrTooManyPhotos
	}
	if coverIndex < 0 || coverIndex >= len(photos) {
		return nil, ErrInvalidCoverIndex
	}
	maxSize := s.uploads.MaxPhotoSizeMB * 1024 * 1024
	for _, p := range photos {
		if !strings.HasPrefix(strings.ToLower(p.ContentType), "image/") {
			return nil, ErrInvalidPhotoType
		}
		if p.Size <= 0 || p.Size > maxSize {
			return nil, ErrPhotoTooLarge
		}
	}

	week := domain.WeekKey(s.now(), s.loc)
	exists, err := s.photoSetRepo.ExistsForWeek(ctx, clientID, week)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhotoSetAlreadyExists
	}

	set := &domain.PhotoSet{
		UserID:     clientID,
		Week:       week,
		CoverIndex: coverIndex,
		Photos:     make([]domain.Photo, 0, len(photos)),
	}

	for _, p := range photos {
		ext := ""
		if parts := strings.Split(p.ContentType, "/"); len(parts) == 2 {
			ext = "." + parts[1]
		}
		objectKey := path.Join("photos", clientID.Hex(), week, uuid.NewString()+ext)

		if err := s.fileStorage.Upload(ctx, objectKey, p.ContentType, p.Size, p.Body); err != nil {
			return nil, fmt.Errorf("failed to store photo %q: %w", p.FileName, err)
		}
		set.Photos = append(set.Photos, domain.Photo{
			ObjectKey:   objectKey,
			FileName:    p.FileName,
			ContentType: p.ContentType,
			Size:        p.Size,
		})
	}

	if _, err := s.photoSetRepo.Create(ctx, set); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost a race with a concurrent upload for the same week;
			// remove the objects we just wrote.
			for _, ph := range set.Photos {
				_ = s.fileStorage.DeleteObject(ctx, ph.ObjectKey)
			}
			return nil, ErrPhotoSetAlreadyExists
		}
		return nil, err
	}
	return set, nil
}

func (s *clientService) ListPhotoSets(ctx context.Context, clientID primitive.ObjectID) ([]PhotoSetDetails, error) {
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
				// A missing URL degrades the view, it does not fail it.
				url = ""
			}
			d.PhotoURLs = append(d.PhotoURLs, url)
		}
		details = append(details, d)
	}
	return details, nil
}

// === Coach-Authored Material ===

// ListCheckins returns the client's check-ins with coach-only notes stripped.
func (s *clientService) ListCheckins(ctx context.Context, clientID primitive.ObjectID) ([]domain.CheckinRecord, error) {
	records, err := s.checkinRepo.ListByUser(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].PrivateNote = ""
	}
	return records, nil
}

func (s *clientService) ListPlans(ctx context.Context, clientID primitive.ObjectID) ([]PlanDetails, error) {
	plans, err := s.planRepo.ListByUser(ctx, clientID)
	if err != nil {
		return nil, err
	}

	details := make([]PlanDetails, 0, len(plans))
	for _, plan := range plans {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, plan.ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			url = ""
		}
		details = append(details, PlanDetails{Plan: plan, DownloadURL: url})
	}
	return details, nil
}

// === Powerlifting Log ===

func (s *clientService) AddPowerliftingEntry(ctx context.Context, clientID primitive.ObjectID, lift string, weightKg float64, reps int) (*domain.PowerliftingEntry, error) {
	if lift == "" || weightKg <= 0 || reps <= 0 {
		return nil, errors.New("lift, weight and reps are required")
	}
	entry := &domain.PowerliftingEntry{
		UserID:   clientID,
		Lift:     strings.ToLower(lift),
		WeightKg: weightKg,
		Reps:     reps,
		Date:     domain.DateKey(s.now(), s.loc),
	}
	if _, err := s.powerliftingRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *clientService) ListPowerlifting(ctx context.Context, clientID primitive.ObjectID) ([]domain.PowerliftingEntry, error) {
	return s.powerliftingRepo.ListByUser(ctx, clientID)
}

// === Intake Questionnaire ===

func (s *clientService) SubmitQuestionnaire(ctx context.Context, clientID primitive.ObjectID, input QuestionnaireInput) (*domain.Questionnaire, error) {
	q := &domain.Questionnaire{
		UserID:       clientID,
		Goals:        input.Goals,
		Injuries:     input.Injuries,
		Experience:   input.Experience,
		Availability: input.Availability,
	}
	if _, err := s.questionnaireRepo.Create(ctx, q); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrQuestionnaireExists
		}
		return nil, err
	}
	return q, nil
}

func (s *clientService) GetQuestionnaire(ctx context.Context, clientID primitive.ObjectID) (*domain.Questionnaire, error) {
	q, err := s.questionnaireRepo.GetByUser(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionnaireNotFound
		}
		return nil, err
	}
	return q, nil
}

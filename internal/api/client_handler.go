package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"coachtrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- DTOs ---

type DailyRequest struct {
	Weight        *float64 `json:"weight" binding:"omitempty,gt=0"`
	WaterLiters   *float64 `json:"waterLiters" binding:"omitempty,gte=0"`
	Steps         *int     `json:"steps" binding:"omitempty,gte=0"`
	Workout       *bool    `json:"workout"`
	DietCompliant *bool    `json:"dietCompliant"`
	Notes         string   `json:"notes"`
}

type WeeklyRequest struct {
	Wins        string `json:"wins"`
	Struggles   string `json:"struggles"`
	Energy      string `json:"energy"`
	Adjustments string `json:"adjustments"`
}

type PowerliftingRequest struct {
	Lift     string  `json:"lift" binding:"required"`
	WeightKg float64 `json:"weightKg" binding:"required,gt=0"`
	Reps     int     `json:"reps" binding:"required,gt=0"`
}

type QuestionnaireRequest struct {
	Goals        string `json:"goals" binding:"required"`
	Injuries     string `json:"injuries"`
	Experience   string `json:"experience"`
	Availability string `json:"availability"`
}

func (r DailyRequest) toInput() service.DailyInput {
	return service.DailyInput{
		Weight:        r.Weight,
		WaterLiters:   r.WaterLiters,
		Steps:         r.Steps,
		Workout:       r.Workout,
		DietCompliant: r.DietCompliant,
		Notes:         r.Notes,
	}
}

// clientIDFromToken resolves the authenticated client's ObjectID.
func clientIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- Daily Records ---

// SubmitDaily godoc
// @Summary Submit today's daily record
// @Description Creates the daily feedback record for the current day. One per day.
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param daily body DailyRequest true "Daily feedback"
// @Success 201 {object} domain.DailyRecord
// @Failure 409 {object} gin.H "A record for today already exists"
// @Router /client/daily [post]
func (h *ClientHandler) SubmitDaily(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	var req DailyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	rec, err := h.clientService.SubmitDaily(c.Request.Context(), clientID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrDailyAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to submit daily record.")
		}
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// UpdateDaily godoc
// @Summary Update a daily record within its edit window
// @Description Edits are only accepted for 2 hours after the record was created.
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "Record date (YYYY-MM-DD)"
// @Param daily body DailyRequest true "Daily feedback"
// @Success 200 {object} domain.DailyRecord
// @Failure 403 {object} gin.H "Edit window has closed"
// @Failure 404 {object} gin.H "No record for that date"
// @Router /client/daily/{date} [put]
func (h *ClientHandler) UpdateDaily(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	var req DailyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	rec, err := h.clientService.UpdateDaily(c.Request.Context(), clientID, c.Param("date"), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrDailyNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrEditWindowClosed) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update daily record.")
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetDailyHistory godoc
// @Summary Get my recent daily records
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of records, 1-30 (default 7)"
// @Success 200 {array} domain.DailyRecord
// @Router /client/daily [get]
func (h *ClientHandler) GetDailyHistory(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	limit := 7
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid limit parameter.")
			return
		}
		limit = parsed
	}

	records, err := h.clientService.GetRecentDaily(c.Request.Context(), clientID, limit)
	if err != nil {
		if errors.Is(err, service.ErrHistoryLimitOutOfRange) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve daily records.")
		}
		return
	}
	c.JSON(http.StatusOK, records)
}

// --- Weekly Records ---

// SubmitWeekly godoc
// @Summary Submit this week's reflection
// @Description Creates the weekly reflection for the current ISO week. Write-once.
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param weekly body WeeklyRequest true "Weekly reflection"
// @Success 201 {object} domain.WeeklyRecord
// @Failure 409 {object} gin.H "A reflection for this week already exists"
// @Router /client/weekly [post]
func (h *ClientHandler) SubmitWeekly(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	var req WeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	rec, err := h.clientService.SubmitWeekly(c.Request.Context(), clientID, service.WeeklyInput{
		Wins:        req.Wins,
		Struggles:   req.Struggles,
		Energy:      req.Energy,
		Adjustments: req.Adjustments,
	})
	if err != nil {
		if errors.Is(err, service.ErrWeeklyAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to submit weekly reflection.")
		}
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *ClientHandler) GetWeeklyHistory(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	records, err := h.clientService.ListWeekly(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve weekly reflections.")
		return
	}
	c.JSON(http.StatusOK, records)
}

// --- Progress Photos ---

// UploadPhotos godoc
// @Summary Upload this week's progress photo set
// @Description Multipart upload, field "photos" (max 4 image files) plus optional
// @Description "coverIndex". One set per ISO week; the whole batch is validated
// @Description before anything is stored.
// @Tags Client
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} domain.PhotoSet
// @Failure 400 {object} gin.H "Invalid batch (count, type, size, cover index)"
// @Failure 409 {object} gin.H "A photo set for this week already exists"
// @Router /client/photos [post]
func (h *ClientHandler) UploadPhotos(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	files := form.File["photos"]

	coverIndex := 0
	if raw := c.PostForm("coverIndex"); raw != "" {
		coverIndex, err = strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid coverIndex value.")
			return
		}
	}

	photos := make([]service.PhotoUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Could not read file %q.", fh.Filename))
			return
		}
		defer f.Close()
		photos = append(photos, service.PhotoUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}

	set, err := h.clientService.UploadPhotoSet(c.Request.Context(), clientID, photos, coverIndex)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoSetAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrEmptyPhotoBatch),
			errors.Is(err, service.ErrTooManyPhotos),
			errors.Is(err, service.ErrInvalidPhotoType),
			errors.Is(err, service.ErrPhotoTooLarge),
			errors.Is(err, service.ErrInvalidCoverIndex):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to upload photos.")
		}
		return
	}
	c.JSON(http.StatusCreated, set)
}

func (h *ClientHandler) GetPhotoSets(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	sets, err := h.clientService.ListPhotoSets(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve photo sets.")
		return
	}
	if sets == nil {
		c.JSON(http.StatusOK, []service.PhotoSetDetails{})
		return
	}
	c.JSON(http.StatusOK, sets)
}

// --- Coach-Authored Material ---

// GetMyCheckins returns the client's check-ins; coach-only notes are stripped
// by the service.
func (h *ClientHandler) GetMyCheckins(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	records, err := h.clientService.ListCheckins(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve check-ins.")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *ClientHandler) GetMyPlans(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	plans, err := h.clientService.ListPlans(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}
	if plans == nil {
		c.JSON(http.StatusOK, []service.PlanDetails{})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// --- Powerlifting Log ---

func (h *ClientHandler) AddPowerliftingEntry(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	var req PowerliftingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	entry, err := h.clientService.AddPowerliftingEntry(c.Request.Context(), clientID, req.Lift, req.WeightKg, req.Reps)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *ClientHandler) GetPowerliftingLog(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	entries, err := h.clientService.ListPowerlifting(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve powerlifting log.")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// --- Intake Questionnaire ---

// SubmitQuestionnaire godoc
// @Summary Submit the intake questionnaire
// @Description One questionnaire per user. Write-once.
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionnaire body QuestionnaireRequest true "Intake answers"
// @Success 201 {object} domain.Questionnaire
// @Failure 409 {object} gin.H "Questionnaire already submitted"
// @Router /client/questionnaire [post]
func (h *ClientHandler) SubmitQuestionnaire(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	var req QuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	q, err := h.clientService.SubmitQuestionnaire(c.Request.Context(), clientID, service.QuestionnaireInput{
		Goals:        req.Goals,
		Injuries:     req.Injuries,
		Experience:   req.Experience,
		Availability: req.Availability,
	})
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to submit questionnaire.")
		}
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *ClientHandler) GetQuestionnaire(c *gin.Context) {
	clientID, ok := clientIDFromToken(c)
	if !ok {
		return
	}

	q, err := h.clientService.GetQuestionnaire(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve questionnaire.")
		}
		return
	}
	c.JSON(http.StatusOK, q)
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"coachtrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CoachHandler struct {
	coachService service.CoachService
}

func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- DTOs ---

type AddClientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CheckinRequest struct {
	Date          string     `json:"date"` // YYYY-MM-DD, defaults to today
	Weight        *float64   `json:"weight" binding:"omitempty,gt=0"`
	MuscleMass    *float64   `json:"muscleMass" binding:"omitempty,gt=0"`
	FatMass       *float64   `json:"fatMass" binding:"omitempty,gte=0"`
	VisceralFat   *float64   `json:"visceralFat" binding:"omitempty,gte=0"`
	Comment       string     `json:"comment"`
	PrivateNote   string     `json:"privateNote"`
	NextCheckinAt *time.Time `json:"nextCheckinAt"`
}

type NotifyRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
	URL      string `json:"url"`
}

type WaterTargetRequest struct {
	// Liters per day; null clears the override so the derived target applies.
	Liters *float64 `json:"liters" binding:"omitempty,gt=0"`
}

func (r CheckinRequest) toInput() service.CheckinInput {
	return service.CheckinInput{
		Date:          r.Date,
		Weight:        r.Weight,
		MuscleMass:    r.MuscleMass,
		FatMass:       r.FatMass,
		VisceralFat:   r.VisceralFat,
		Comment:       r.Comment,
		PrivateNote:   r.PrivateNote,
		NextCheckinAt: r.NextCheckinAt,
	}
}

// coachIDFromToken resolves the authenticated coach's (or admin's) ObjectID.
func coachIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid coach ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func clientIDFromParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// mapCoachError translates coach-service errors to HTTP codes. Returns false
// when the error was not recognized and the caller should 500.
func mapCoachError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientNotRole):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrClientAlreadyAssigned):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotYourClient):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCheckinNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		return false
	}
	return true
}

// --- Roster ---

// AddClient godoc
// @Summary Attach an existing client to my roster
// @Description Looks up a registered client by email and assigns them to the coach.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body AddClientRequest true "Client email"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "No user with that email"
// @Failure 409 {object} gin.H "Client already assigned to another coach"
// @Router /coach/clients [post]
func (h *CoachHandler) AddClient(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}

	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.coachService.AddClientByEmail(c.Request.Context(), coachID, req.Email)
	if err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetDashboard godoc
// @Summary Get my client dashboard
// @Description One row per managed client: profile, derived metrics and the
// @Description inactivity/workout/diet/hydration flags.
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ClientOverview
// @Router /coach/clients [get]
func (h *CoachHandler) GetDashboard(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}

	rows, err := h.coachService.GetDashboard(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build dashboard.")
		return
	}
	if rows == nil {
		c.JSON(http.StatusOK, []service.ClientOverview{})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// --- Client Data, Coach View ---

func (h *CoachHandler) GetClientDaily(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	clientID, ok := clientIDFromParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid limit parameter.")
			return
		}
		limit = parsed
	}

	records, err := h.coachService.GetClientDaily(c.Request.Context(), coachID, clientID, limit)
	if err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve daily records.")
		}
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *CoachHandler) GetClientWeekly(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	clientID, ok := clientIDFromParam(c)
	if !ok {
		return
	}

	records, err := h.coachService.GetClientWeekly(c.Request.Context(), coachID, clientID)
	if err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve weekly reflections.")
		}
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *CoachHandler) GetClientPhotoSets(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	clientID, ok := clientIDFromParam(c)
	if !ok {
		return
	}

	sets, err := h.coachService.GetClientPhotoSets(c.Request.Context(), coachID, clientID)
	if err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve photo sets.")
		}
		return
	}
	c.JSON(http.StatusOK, sets)
}

// GetClientCheckins includes the coach-only private notes.
func (h *CoachHandler) GetClientCheckins(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	clientID, ok := clientIDFromParam(c)
	if !ok {
		return
	}

	records, err := h.coachService.GetClientCheckins(c.Request.Context(), coachID, clientID)
	if err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve check-ins.")
		}
		return
	}
	c.JSON(http.StatusOK, records)
}

// --- Check-In Management ---

// CreateCheckin godoc
// @Summary Record a body-composition check-in for a client
// @Description Also refreshes the client's cached last/next check-in dates.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Param checkin body CheckinRequest true "Check-in data"
// @Success 201 {object} domain.CheckinRecord
// @Failure 403 {object} gin.H "Client not managed by this coach"
// @Router /coach/clients/{clientId}/checkins [post]
func (h *CoachHandler) CreateCheckin(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	clientID, ok := clientIDFromParam(c)
	if !ok {
		return
	}

	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	rec, err := h.coachService.CreateCheckin(c.Request.Context(), coachID, clientID, req.toInput())
	if err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to record check-in.")
		}
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *CoachHandler) UpdateCheckin(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	checkinID, err := primitive.ObjectIDFromHex(c.Param("checkinId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid check-in ID format.")
		return
	}

	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	rec, err := h.coachService.UpdateCheckin(c.Request.Context(), coachID, checkinID, req.toInput())
	if err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to update check-in.")
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *CoachHandler) DeleteCheckin(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	checkinID, err := primitive.ObjectIDFromHex(c.Param("checkinId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid check-in ID format.")
		return
	}

	if err := h.coachService.DeleteCheckin(c.Request.Context(), coachID, checkinID); err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete check-in.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Plans ---

// UploadPlan godoc
// @Summary Upload a plan document for a client
// @Description Multipart upload, field "plan" (PDF only) plus optional "title".
// @Tags Coach
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Success 201 {object} domain.Plan
// @Failure 400 {object} gin.H "Not a PDF or file too large"
// @Router /coach/clients/{clientId}/plans [post]
func (h *CoachHandler) UploadPlan(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	clientID, ok := clientIDFromParam(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("plan")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Missing plan file: "+err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read plan file.")
		return
	}
	defer f.Close()

	plan, err := h.coachService.UploadPlan(c.Request.Context(), coachID, clientID, service.PlanUpload{
		Title:       c.PostForm("title"),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlanType), errors.Is(err, service.ErrPlanTooLarge):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			if !mapCoachError(c, err) {
				abortWithError(c, http.StatusInternalServerError, "Failed to upload plan.")
			}
		}
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// --- Manual Push ---

// NotifyClient godoc
// @Summary Send a push notification to one of my clients
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notification body NotifyRequest true "Notification content"
// @Success 202 {object} gin.H "Notification accepted for delivery"
// @Failure 403 {object} gin.H "Client not managed by this coach"
// @Router /coach/notify [post]
func (h *CoachHandler) NotifyClient(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}

	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	if err := h.coachService.NotifyClient(c.Request.Context(), coachID, clientID, req.Title, req.Message, req.URL); err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to send notification.")
		}
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

// --- Water Target ---

func (h *CoachHandler) SetWaterTarget(c *gin.Context) {
	coachID, ok := coachIDFromToken(c)
	if !ok {
		return
	}
	clientID, ok := clientIDFromParam(c)
	if !ok {
		return
	}

	var req WaterTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.coachService.SetClientWaterTarget(c.Request.Context(), coachID, clientID, req.Liters); err != nil {
		if !mapCoachError(c, err) {
			abortWithError(c, http.StatusInternalServerError, "Failed to set water target.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

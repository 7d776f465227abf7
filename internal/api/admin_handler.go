package api

import (
	"net/http"

	"coachtrack/internal/jobs"
	"coachtrack/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the operational endpoints: manual scan triggers and
// the user listing.
type AdminHandler struct {
	scanner  *jobs.Scanner
	userRepo repository.UserRepository
}

func NewAdminHandler(scanner *jobs.Scanner, userRepo repository.UserRepository) *AdminHandler {
	return &AdminHandler{scanner: scanner, userRepo: userRepo}
}

// ScanResultResponse is the per-user outcome of a manual scan run.
type ScanResultResponse struct {
	UserID  string `json:"userId,omitempty"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ScanReportResponse struct {
	Scan    string               `json:"scan"`
	Sent    int                  `json:"sent"`
	Skipped int                  `json:"skipped"`
	Failed  int                  `json:"failed"`
	Results []ScanResultResponse `json:"results"`
}

// TriggerScan godoc
// @Summary Run a reminder scan immediately
// @Description Runs the named scan (inactivity, workout, diet, hydration,
// @Description weekly, checkin-due, coach-summary) and returns its report.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param scan path string true "Scan name"
// @Success 200 {object} ScanReportResponse
// @Failure 400 {object} gin.H "Unknown scan name"
// @Router /admin/jobs/{scan} [post]
func (h *AdminHandler) TriggerScan(c *gin.Context) {
	report, err := h.scanner.Run(c.Request.Context(), c.Param("scan"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	sent, skipped, failed := report.Counts()
	resp := ScanReportResponse{
		Scan:    report.Scan,
		Sent:    sent,
		Skipped: skipped,
		Failed:  failed,
		Results: make([]ScanResultResponse, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		r := ScanResultResponse{
			UserID:  res.UserID,
			Outcome: string(res.Outcome),
			Reason:  res.Reason,
		}
		if res.Err != nil {
			r.Error = res.Err.Error()
		}
		resp.Results = append(resp.Results, r)
	}
	c.JSON(http.StatusOK, resp)
}

// ListUsers godoc
// @Summary List all users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list users.")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, MapUserToResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

package api

import (
	"net/http"

	"coachtrack/internal/domain"
	"coachtrack/internal/jobs"
	"coachtrack/internal/repository"
	"coachtrack/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	clientService service.ClientService,
	coachService service.CoachService,
	scanner *jobs.Scanner,
	userRepo repository.UserRepository,
) {

	authHandler := NewAuthHandler(authService)
	clientHandler := NewClientHandler(clientService)
	coachHandler := NewCoachHandler(coachService)
	adminHandler := NewAdminHandler(scanner, userRepo)

	authMiddleware := AuthMiddleware(jwtSecret)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Client Routes ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			// Daily feedback
			clientGroup.POST("/daily", clientHandler.SubmitDaily)
			clientGroup.PUT("/daily/:date", clientHandler.UpdateDaily)
			clientGroup.GET("/daily", clientHandler.GetDailyHistory)

			// Weekly reflection
			clientGroup.POST("/weekly", clientHandler.SubmitWeekly)
			clientGroup.GET("/weekly", clientHandler.GetWeeklyHistory)

			// Progress photos
			clientGroup.POST("/photos", clientHandler.UploadPhotos)
			clientGroup.GET("/photos", clientHandler.GetPhotoSets)

			// Coach-authored material
			clientGroup.GET("/checkins", clientHandler.GetMyCheckins)
			clientGroup.GET("/plans", clientHandler.GetMyPlans)

			// Powerlifting log
			clientGroup.POST("/powerlifting", clientHandler.AddPowerliftingEntry)
			clientGroup.GET("/powerlifting", clientHandler.GetPowerliftingLog)

			// Intake questionnaire
			clientGroup.POST("/questionnaire", clientHandler.SubmitQuestionnaire)
			clientGroup.GET("/questionnaire", clientHandler.GetQuestionnaire)
		}

		// --- Coach Routes (admins may also use them) ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach, domain.RoleAdmin))
		{
			// Roster and dashboard
			coachGroup.POST("/clients", coachHandler.AddClient)
			coachGroup.GET("/clients", coachHandler.GetDashboard)

			// Client data, coach view
			coachGroup.GET("/clients/:clientId/daily", coachHandler.GetClientDaily)
			coachGroup.GET("/clients/:clientId/weekly", coachHandler.GetClientWeekly)
			coachGroup.GET("/clients/:clientId/photos", coachHandler.GetClientPhotoSets)
			coachGroup.GET("/clients/:clientId/checkins", coachHandler.GetClientCheckins)

			// Check-in management
			coachGroup.POST("/clients/:clientId/checkins", coachHandler.CreateCheckin)
			coachGroup.PUT("/checkins/:checkinId", coachHandler.UpdateCheckin)
			coachGroup.DELETE("/checkins/:checkinId", coachHandler.DeleteCheckin)

			// Plans
			coachGroup.POST("/clients/:clientId/plans", coachHandler.UploadPlan)

			// Water target override
			coachGroup.PUT("/clients/:clientId/water-target", coachHandler.SetWaterTarget)

			// Manual push
			coachGroup.POST("/notify", coachHandler.NotifyClient)
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/jobs/:scan", adminHandler.TriggerScan)
			adminGroup.GET("/users", adminHandler.ListUsers)
		}
	}
}

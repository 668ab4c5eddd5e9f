// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/config"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/handlers"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/middleware"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/services"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	userService := services.NewUserService(db, storageService)
	offerService := services.NewOfferService(db)
	applicationService := services.NewApplicationService(db, notificationService)
	agreementService := services.NewAgreementService(db, storageService, notificationService)
	chatService := services.NewChatService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	offerHandler := handlers.NewOfferHandler(offerService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	internshipHandler := handlers.NewInternshipHandler(agreementService)
	chatHandler := handlers.NewChatHandler(chatService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id", middleware.OptionalAuth(), userHandler.GetUser)

			// Authenticated user routes
			protected := users.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.POST("/cv", middleware.UploadRateLimit(),
					middleware.RoleRequired(models.UserTypeIntern), userHandler.UploadCV)
				protected.GET("/:id/cv/:filename", userHandler.DownloadCV)
				protected.POST("/devices", userHandler.RegisterDevice)
			}
		}

		// Offer routes
		offers := v1.Group("/offers")
		{
			offers.GET("", middleware.OptionalAuth(), offerHandler.SearchOffers)
			offers.GET("/:id", middleware.OptionalAuth(), offerHandler.GetOffer)

			// Company-only routes
			protected := offers.Group("")
			protected.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserTypeCompany))
			{
				protected.POST("", offerHandler.CreateOffer)
				protected.DELETE("/:id", offerHandler.DeleteOffer)
			}
		}

		// Application routes
		applications := v1.Group("/applications")
		applications.Use(middleware.AuthRequired())
		{
			applications.POST("", middleware.RoleRequired(models.UserTypeIntern), applicationHandler.Apply)
			applications.GET("", applicationHandler.GetApplications)
			applications.GET("/statistics", applicationHandler.GetStatistics)
			applications.GET("/:id", applicationHandler.GetApplication)
			applications.PUT("/:id/accept", middleware.RoleRequired(models.UserTypeCompany), applicationHandler.AcceptApplication)
			applications.PUT("/:id/deny", middleware.RoleRequired(models.UserTypeCompany), applicationHandler.DenyApplication)
		}

		// Internship routes: the agreement approval sequence
		internships := v1.Group("/internships")
		internships.Use(middleware.AuthRequired())
		{
			internships.GET("", internshipHandler.GetInternships)
			internships.GET("/:id", internshipHandler.GetInternship)
			internships.POST("/:id/agreement", middleware.UploadRateLimit(), internshipHandler.UploadAgreement)
			internships.GET("/:id/agreement/:filename", internshipHandler.DownloadAgreement)
			internships.PUT("/:id/submit", middleware.RoleRequired(models.UserTypeIntern), internshipHandler.Submit)
			internships.PUT("/:id/accept", middleware.RoleRequired(models.UserTypeInstitution), internshipHandler.Accept)
			internships.PUT("/:id/refuse", middleware.RoleRequired(models.UserTypeInstitution), internshipHandler.Refuse)
			internships.PUT("/:id/finalize", middleware.RoleRequired(models.UserTypeInstitution), internshipHandler.Finalize)
		}

		// Chat routes
		chats := v1.Group("/chats")
		chats.Use(middleware.AuthRequired())
		{
			chats.POST("", chatHandler.OpenChat)
			chats.GET("", chatHandler.GetChats)
			chats.POST("/:id/messages", chatHandler.SendMessage)
			chats.GET("/:id/messages", chatHandler.GetMessages)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}
	}

	return r
}

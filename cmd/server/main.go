package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-admin-api/internal/config"
	"github.com/yukikurage/timesheet-admin-api/internal/constants"
	"github.com/yukikurage/timesheet-admin-api/internal/database"
	"github.com/yukikurage/timesheet-admin-api/internal/handlers"
	"github.com/yukikurage/timesheet-admin-api/internal/middleware"
	"github.com/yukikurage/timesheet-admin-api/internal/notify"
	"github.com/yukikurage/timesheet-admin-api/internal/repository"
	"github.com/yukikurage/timesheet-admin-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()
	r.Use(middleware.RequestID())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Decision notices go to Slack only when a webhook is configured
	var notifier notify.Notifier = notify.Nop{}
	if cfg.SlackWebhookURL != "" {
		notifier = notify.NewSlackNotifier(cfg.SlackWebhookURL)
		log.Println("Slack decision notices enabled")
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration)
	authService := services.NewAuthService(userRepo)
	approvalService := services.NewApprovalService(timesheetRepo, userRepo, notifier)
	peopleService := services.NewPeopleService(userRepo, projectRepo, timesheetRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Timesheet Admin API is running",
		})
	})

	handlers.RegisterRoutes(r, handlers.Routes{
		Auth:      handlers.NewAuthHandler(authService, tokenService),
		Approvals: handlers.NewApprovalHandler(approvalService, cfg.Location()),
		People:    handlers.NewPeopleHandler(peopleService),
		Tokens:    tokenService,
		Users:     userRepo,
	})

	// Start server
	addr := ":" + cfg.ServerPort
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package router

import (
	"database/sql"
	"net/http"

	"github.com/daabouladam6/gymnastika-crm/internal/handlers"
	"github.com/daabouladam6/gymnastika-crm/internal/middleware"
	"github.com/daabouladam6/gymnastika-crm/internal/notify"
	"github.com/daabouladam6/gymnastika-crm/internal/repositories"
	"github.com/daabouladam6/gymnastika-crm/internal/services"
	"github.com/daabouladam6/gymnastika-crm/internal/trainers"

	"github.com/gin-gonic/gin"
)

// Dependencies carries the shared infrastructure the HTTP layer needs but
// does not own: the notification stack and the trainer directory.
type Dependencies struct {
	Notifier  notify.Sender
	WhatsApp  notify.Channel
	Directory *trainers.Directory
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, deps Dependencies) {
	// Initialize Repositories
	customerRepo := repositories.NewCustomerRepository(db)
	reminderRepo := repositories.NewReminderRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, db)
	customerService := services.NewCustomerService(customerRepo, db, deps.Notifier, deps.Directory)
	reminderService := services.NewReminderService(reminderRepo, db)
	broadcastService := services.NewBroadcastService(deps.WhatsApp, customerRepo)
	backupService := services.NewBackupService(customerRepo, reminderRepo, userRepo)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	whatsAppHandler := handlers.NewWhatsAppHandler(broadcastService)
	trainerHandler := handlers.NewTrainerHandler(deps.Directory)
	backupHandler := handlers.NewBackupHandler(backupService)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupReminderRoutes(authenticated, reminderHandler)
		SetupWhatsAppRoutes(authenticated, whatsAppHandler)
		SetupBackupRoutes(authenticated, backupHandler)
		SetupTrainerRoutes(authenticated, trainerHandler)
	}
}

package router

import (
	"github.com/daabouladam6/gymnastika-crm/internal/handlers"
	"github.com/daabouladam6/gymnastika-crm/internal/middleware"
	"github.com/daabouladam6/gymnastika-crm/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterUser)
		authRoutes.POST("/login", authHandler.LoginUser)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/logout", authHandler.LogoutUser)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupCustomerRoutes sets up the customer routes. Permanent deletion of an
// archived customer is restricted to admins.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/archived", customerHandler.GetArchivedCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.PUT("/:id", customerHandler.UpdateCustomer)
		customerRoutes.DELETE("/:id", customerHandler.ArchiveCustomer)
		customerRoutes.POST("/:id/restore", customerHandler.UnarchiveCustomer)
		customerRoutes.DELETE("/:id/permanent",
			middleware.RoleAuthMiddleware(models.RoleAdmin),
			customerHandler.DeleteArchivedCustomer)
	}
}

// SetupReminderRoutes sets up the ad hoc follow-up reminder routes.
func SetupReminderRoutes(authenticatedGroup *gin.RouterGroup, reminderHandler *handlers.ReminderHandler) {
	reminderRoutes := authenticatedGroup.Group("/reminders")
	{
		reminderRoutes.POST("", reminderHandler.CreateReminder)
		reminderRoutes.GET("", reminderHandler.GetReminders)
		reminderRoutes.GET("/customer/:id", reminderHandler.GetRemindersByCustomer)
		reminderRoutes.PUT("/:id", reminderHandler.UpdateReminder)
		reminderRoutes.POST("/:id/complete", reminderHandler.CompleteReminder)
		reminderRoutes.DELETE("/:id", reminderHandler.DeleteReminder)
	}
}

// SetupWhatsAppRoutes sets up the WhatsApp messaging routes. Broadcasts to
// whole segments are restricted to admins.
func SetupWhatsAppRoutes(authenticatedGroup *gin.RouterGroup, whatsAppHandler *handlers.WhatsAppHandler) {
	whatsAppRoutes := authenticatedGroup.Group("/whatsapp")
	{
		whatsAppRoutes.GET("/status", whatsAppHandler.Status)
		whatsAppRoutes.POST("/send", whatsAppHandler.SendMessage)
		whatsAppRoutes.POST("/send-to-customer", whatsAppHandler.SendToCustomer)
		whatsAppRoutes.POST("/test", whatsAppHandler.SendMessage)
		whatsAppRoutes.POST("/broadcast",
			middleware.RoleAuthMiddleware(models.RoleAdmin),
			whatsAppHandler.Broadcast)
	}
}

// SetupBackupRoutes sets up the data export routes. Full dumps expose every
// customer and user record, so both are admin only.
func SetupBackupRoutes(authenticatedGroup *gin.RouterGroup, backupHandler *handlers.BackupHandler) {
	backupRoutes := authenticatedGroup.Group("/backup", middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		backupRoutes.GET("", backupHandler.Export)
		backupRoutes.GET("/preview", backupHandler.Preview)
	}
}

// SetupTrainerRoutes sets up the trainer directory routes.
func SetupTrainerRoutes(authenticatedGroup *gin.RouterGroup, trainerHandler *handlers.TrainerHandler) {
	trainerRoutes := authenticatedGroup.Group("/trainers")
	{
		trainerRoutes.GET("", trainerHandler.ListTrainers)
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/database"
	"github.com/daabouladam6/gymnastika-crm/internal/notify"
	"github.com/daabouladam6/gymnastika-crm/internal/repositories"
	"github.com/daabouladam6/gymnastika-crm/internal/router"
	"github.com/daabouladam6/gymnastika-crm/internal/scheduler"
	"github.com/daabouladam6/gymnastika-crm/internal/trainers"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	utils.InitLogger()

	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "gymnastika")
	dbPassword := utils.Getenv("DB_PASSWORD", "gymnastika")
	dbName := utils.Getenv("DB_NAME", "gymnastika_crm")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")

	if err := database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	db := database.GetDB()
	defer db.Close()

	emailChannel := notify.NewEmailChannel(notify.EmailConfig{
		Host:        utils.Getenv("SMTP_HOST", "smtp.gmail.com"),
		Port:        utils.Getenv("SMTP_PORT", "465"),
		Username:    utils.Getenv("SMTP_USER", ""),
		Password:    utils.Getenv("SMTP_PASS", ""),
		From:        utils.Getenv("SMTP_FROM", utils.Getenv("SMTP_USER", "")),
		FromName:    utils.Getenv("SMTP_FROM_NAME", "Gymnastika"),
		ImplicitTLS: utils.Getenv("SMTP_PORT", "465") == "465",
	})
	whatsAppChannel := notify.NewWhatsAppChannel(notify.WhatsAppConfig{
		PhoneNumberID:      utils.Getenv("WHATSAPP_PHONE_NUMBER_ID", ""),
		AccessToken:        utils.Getenv("WHATSAPP_ACCESS_TOKEN", ""),
		DefaultCountryCode: utils.Getenv("WHATSAPP_COUNTRY_CODE", "961"),
	})

	directory := trainers.Default()
	notifier := notify.NewNotifier(emailChannel, whatsAppChannel, directory, 30*time.Second)

	customerRepo := repositories.NewCustomerRepository(db)
	reminderRepo := repositories.NewReminderRepository(db)
	engine := scheduler.NewEngine(customerRepo, reminderRepo, notifier)

	pollMinutes, err := strconv.Atoi(utils.Getenv("REMINDER_POLL_MINUTES", "30"))
	if err != nil || pollMinutes <= 0 {
		pollMinutes = 30
	}
	driver := scheduler.NewDriver(engine, scheduler.SystemClock(), scheduler.DriverConfig{
		PollInterval: time.Duration(pollMinutes) * time.Minute,
	})

	driverCtx, stopDriver := context.WithCancel(context.Background())
	driver.Start(driverCtx)

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())
	ginEngine.Use(utils.GinLogger())

	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	ginEngine.Use(cors.New(corsConfig))

	router.Setup(ginEngine, db, router.Dependencies{
		Notifier:  notifier,
		WhatsApp:  whatsAppChannel,
		Directory: directory,
	})

	port := utils.Getenv("PORT", "8080")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: ginEngine,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.LogInfo("Shutting down server")

	stopDriver()
	driver.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
	utils.LogInfo("Server exited")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/eventreg-be/internal/api"
	"github.com/isdelr/eventreg-be/internal/auth"
	"github.com/isdelr/eventreg-be/internal/config"
	"github.com/isdelr/eventreg-be/internal/database"
	"github.com/isdelr/eventreg-be/internal/logger"
	"github.com/isdelr/eventreg-be/internal/maintenance"
	"github.com/isdelr/eventreg-be/internal/media"
	"github.com/isdelr/eventreg-be/internal/notify"
	"github.com/isdelr/eventreg-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Ensure the media directory for event images exists
	images, err := media.NewStore(cfg.MediaPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.MediaPath).Msg("Failed to create media directory")
	}

	// Set up services
	activityService := services.NewActivityService(db)
	userService := services.NewUserService(db, activityService)
	eventService := services.NewEventService(db, images, activityService)
	registrationService := services.NewRegistrationService(db, eventService, activityService)

	if cfg.AdminUsername != "" {
		admin, err := userService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Str("username", cfg.AdminUsername).Msg("Failed to bootstrap administrator")
		}
		log.Info().Str("user_id", admin.ID).Str("username", admin.Username).Msg("Administrator account ready")
	}

	// Set up and run the background activity pruner
	scheduler, err := maintenance.NewScheduler(activityService, cfg.ActivityPruneSchedule, cfg.ActivityRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure activity pruning")
	}
	scheduler.Start()

	notifier := notify.NewSMTPNotifier(cfg.SMTP)
	if cfg.SMTP.Host == "" {
		log.Warn().Msg("SMTP_HOST not set; contact messages will not be emailed")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)

	// Set up router
	router := api.NewRouter(
		api.Options{AllowedOrigins: cfg.AllowedOrigins, SecureCookies: cfg.IsProduction()},
		tokens, userService, eventService, registrationService, activityService, notifier,
	)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

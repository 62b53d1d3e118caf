// Package main initializes and starts the corpdesk HTTP server, setting up
// configuration, logging, database connections, repositories, services,
// the file store, and handlers.
package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/corpdesk/corpdesk/internal/config"
	"github.com/corpdesk/corpdesk/internal/db"
	"github.com/corpdesk/corpdesk/internal/filestore"
	"github.com/corpdesk/corpdesk/internal/logger"
	"github.com/corpdesk/corpdesk/internal/repository"
	"github.com/corpdesk/corpdesk/internal/server/handler/http"
	"github.com/corpdesk/corpdesk/internal/service"
	"github.com/corpdesk/corpdesk/internal/token"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL. Without a DSN the server still starts and
	// answers 503 on every data operation.
	var database *sql.DB
	if options.DatabaseDSN == "" {
		zapLogger.Warn("no database configured, running in degraded mode")
	} else {
		var err error
		database, err = db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
	}
	if database != nil {
		defer database.Close()
		// Reap temp-category uploads nothing ever claimed.
		db.StartTempFileCleaner(ctx, database,
			time.Hour,
			24*time.Hour,
			zapLogger,
		)
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(database)
	registrationRepo := repository.NewPostgresRegistrationRepository(database)
	catalogRepo := repository.NewPostgresCatalogRepository(database)
	settingsRepo := repository.NewPostgresSettingsRepository(database)
	fileRepo := repository.NewPostgresFileRepository(database)

	// Initialize the file store and business-logic services.
	tokens := token.NewManager([]byte(options.TokenSecret), 24*time.Hour)
	store := filestore.New(options.UploadsDir, options.BaseURL, fileRepo, zapLogger)
	authService := service.NewAuthService(userRepo, tokens)
	registrationService := service.NewRegistrationService(registrationRepo, store, zapLogger)
	catalogService := service.NewCatalogService(catalogRepo)
	settingsService := service.NewSettingsService(settingsRepo)

	// Seed the first admin account.
	if database != nil {
		if err := authService.SeedAdmin(ctx, options.AdminEmail, options.AdminPassword); err != nil {
			zapLogger.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService, Log: zapLogger}
	registrationHandler := &http.RegistrationHandler{Registrations: registrationService, Log: zapLogger}
	catalogHandler := &http.CatalogHandler{Catalog: catalogService, Log: zapLogger}
	settingsHandler := &http.SettingsHandler{Settings: settingsService, Log: zapLogger}
	fileHandler := &http.FileHandler{Files: store, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, registrationHandler, catalogHandler,
		settingsHandler, fileHandler, tokens, options.UploadsDir, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	go func() {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		if err := server.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	// Shut down cleanly on SIGINT/SIGTERM.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

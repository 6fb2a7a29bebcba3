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

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/onyxdrift/backend/internal/ai"
	"github.com/onyxdrift/backend/internal/auth"
	"github.com/onyxdrift/backend/internal/handlers"
	"github.com/onyxdrift/backend/internal/media"
	"github.com/onyxdrift/backend/internal/metrics"
	"github.com/onyxdrift/backend/internal/presence"
	"github.com/onyxdrift/backend/internal/router"
	"github.com/onyxdrift/backend/internal/validators"
	"github.com/onyxdrift/backend/pkg/config"
	"github.com/onyxdrift/backend/pkg/firebase"
	"github.com/onyxdrift/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, cfg.Env)
	if !cfg.EnvFileLoaded {
		log.Info("no .env file found, using process environment")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run wires the server and blocks until SIGINT or SIGTERM. Every store opened
// here is closed before it returns.
func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	// Firebase is optional; local email/password sessions work without it
	var identity auth.Verifier
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return fmt.Errorf("initialize firebase: %w", err)
		}
		identity = firebase.NewVerifier(firebaseApp.AuthClient)
		log.Info("firebase login enabled")
	} else {
		log.Warn("FIREBASE_CREDENTIALS_PATH not set, firebase login disabled")
	}

	directory := presence.NewRedisDirectory(db.Redis)
	// a single node owns every connection, so presence left by a previous run is stale
	if err := directory.Reset(ctx); err != nil {
		return fmt.Errorf("reset presence: %w", err)
	}

	mediaStore, err := media.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, log)
	if err != nil {
		return fmt.Errorf("initialize media storage: %w", err)
	}
	captions, err := ai.NewCaptionGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		return fmt.Errorf("initialize caption generator: %w", err)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(log)

	router.SetupMiddleware(e, cfg, log)
	hub, err := router.SetupRoutes(ctx, e, cfg, router.Services{
		Mongo:    db.Mongo.Database(cfg.MongoDatabase),
		Postgres: db.Postgres,
		Presence: directory,
		Tokens:   auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Identity: identity,
		Media:    mediaStore,
		Captions: captions,
	}, log)
	if err != nil {
		return fmt.Errorf("set up routes: %w", err)
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	hub.Shutdown(shutdownCtx)
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", zap.Error(err))
	}
	return runErr
}

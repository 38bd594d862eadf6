package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"eventgate/config"
	_ "eventgate/docs"
	authadapter "eventgate/internal/adapters/auth"
	emailadapter "eventgate/internal/adapters/email"
	delivery "eventgate/internal/delivery/http"
	"eventgate/internal/delivery/http/controllers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/repository/postgres"
	"eventgate/internal/services"
)

// @title EventGate API
// @version 1.0
// @description Event check-in backend: registrations, QR check-in/check-out, visitor logs, and attendance reporting.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	checkinRepo := postgres.NewCheckinRepository(db)
	visitorLogRepo := postgres.NewVisitorLogRepository(db)
	attendanceStore := postgres.NewAttendanceStore(db)

	// Adapters
	jwtAuthority := authadapter.NewJWTAuthority(cfg.JWTSecret)
	hasher := authadapter.NewBcryptHasher(12)
	mailer, err := emailadapter.NewMailer(cfg.Mailer)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	authService := services.NewAuthService(userRepo, hasher, jwtAuthority, cfg.TokenExpiry)
	eventService := services.NewEventService(eventRepo, 5*time.Second)
	registrationService := services.NewRegistrationService(registrationRepo, eventRepo, emailService, logger)
	attendanceService := services.NewAttendanceService(registrationRepo, eventRepo, checkinRepo, attendanceStore, nil)
	reportService := services.NewReportService(eventRepo, visitorLogRepo, nil)

	// Scan rate limiter: Redis-backed when configured, in-memory otherwise.
	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = middleware.NewRedisLimiter(rdb, cfg.ScanRateLimit, time.Second)
		logger.Info("scan rate limiter using redis", "addr", cfg.RedisAddr)
	} else {
		limiter = middleware.NewMemoryLimiter(float64(cfg.ScanRateLimit), cfg.ScanRateBurst)
	}

	metrics := middleware.NewMetrics()

	router := delivery.NewRouter(delivery.RouterDeps{
		Logger:       logger,
		Verifier:     jwtAuthority,
		Metrics:      metrics,
		ScanLimiter:  limiter,
		Auth:         controllers.NewAuthController(logger, authService),
		Events:       controllers.NewEventController(logger, eventService),
		Registration: controllers.NewRegistrationController(logger, registrationService),
		Checkins:     controllers.NewCheckinController(logger, attendanceService, registrationService, checkinRepo),
		Reports:      controllers.NewReportController(logger, reportService),
	})

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}

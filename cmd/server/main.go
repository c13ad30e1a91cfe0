package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/database"
	"github.com/autogestion/autogestion-backend/internal/handler"
	"github.com/autogestion/autogestion-backend/internal/logger"
	"github.com/autogestion/autogestion-backend/internal/middleware"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/autogestion/autogestion-backend/internal/router"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/autogestion/autogestion-backend/internal/validator"
	"github.com/autogestion/autogestion-backend/internal/worker"
	"github.com/rs/zerolog"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Setup("error", "pretty")
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log = logger.WithRollbar(log, cfg.RollbarToken, cfg.AppEnv, version)
	defer logger.Flush()

	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("env", cfg.AppEnv).
		Str("version", version).
		Msg("Starting Autogestión Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	admissionStore := repository.NewPgAdmissionStore(pool, cfg.AdmissionLockTimeout)
	offeringRepo := repository.NewOfferingRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	careerRepo := repository.NewCareerRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	availabilityService := service.NewAvailabilityService(rdb, admissionStore, cfg, log)
	admissionService := service.NewAdmissionService(admissionStore, availabilityService, cfg, log)
	offeringService := service.NewOfferingService(offeringRepo, availabilityService, log)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, offeringRepo)
	attendanceService := service.NewAttendanceService(attendanceRepo, offeringRepo, log)
	careerService := service.NewCareerService(careerRepo)
	subjectService := service.NewSubjectService(subjectRepo, log)
	studentService := service.NewStudentService(studentRepo, authService)
	staffService := service.NewStaffService(staffRepo, roleRepo, authService)
	roleService := service.NewRoleService(roleRepo)
	dashboardService := service.NewDashboardService(dashboardRepo, enrollmentRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentService, staffService, log),
		StudentPortal: handler.NewStudentPortalHandler(offeringService, admissionService, availabilityService, enrollmentService, attendanceService),
		StudentMgmt:   handler.NewStudentManagementHandler(studentService, authService),
		Enrollment:    handler.NewEnrollmentHandler(admissionService, enrollmentService, offeringService),
		Offering:      handler.NewOfferingHandler(offeringService),
		Attendance:    handler.NewAttendanceHandler(attendanceService),
		Career:        handler.NewCareerHandler(careerService),
		Subject:       handler.NewSubjectHandler(subjectService),
		Staff:         handler.NewStaffHandler(staffService),
		Role:          handler.NewRoleHandler(roleService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		Monitor:       handler.NewMonitorHandler(offeringService, availabilityService, enrollmentService, log),
		System:        handler.NewSystemHandler(pool, rdb, log),
		WS:            handler.NewWSHandler(availabilityService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	availabilityWorker := worker.NewAvailabilityWorker(rdb, offeringRepo, availabilityService, log)
	go func() {
		defer close(workerDone)
		availabilityWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, middleware.NewRedisCounter(rdb), log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the worker; it flushes its pending batch on the way out.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Availability worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avelar/clinic-api/internal/config"
	appointmenthandler "github.com/avelar/clinic-api/internal/handler/appointment"
	authhandler "github.com/avelar/clinic-api/internal/handler/auth"
	patienthandler "github.com/avelar/clinic-api/internal/handler/patient"
	paymenthandler "github.com/avelar/clinic-api/internal/handler/payment"
	reporthandler "github.com/avelar/clinic-api/internal/handler/report"
	sessionhandler "github.com/avelar/clinic-api/internal/handler/session"
	specialtyhandler "github.com/avelar/clinic-api/internal/handler/specialty"
	staffhandler "github.com/avelar/clinic-api/internal/handler/staff"
	subscriptionhandler "github.com/avelar/clinic-api/internal/handler/subscription"
	tenanthandler "github.com/avelar/clinic-api/internal/handler/tenant"
	"github.com/avelar/clinic-api/internal/middleware"
	"github.com/avelar/clinic-api/internal/repository/postgres"
	"github.com/avelar/clinic-api/internal/router"
	appointmentsvc "github.com/avelar/clinic-api/internal/service/appointment"
	authsvc "github.com/avelar/clinic-api/internal/service/auth"
	patientsvc "github.com/avelar/clinic-api/internal/service/patient"
	paymentsvc "github.com/avelar/clinic-api/internal/service/payment"
	reportsvc "github.com/avelar/clinic-api/internal/service/report"
	sessionsvc "github.com/avelar/clinic-api/internal/service/session"
	specialtysvc "github.com/avelar/clinic-api/internal/service/specialty"
	staffsvc "github.com/avelar/clinic-api/internal/service/staff"
	subscriptionsvc "github.com/avelar/clinic-api/internal/service/subscription"
	tenantsvc "github.com/avelar/clinic-api/internal/service/tenant"
	"github.com/avelar/clinic-api/pkg/auth"
	"github.com/avelar/clinic-api/pkg/logger"
	"github.com/avelar/clinic-api/pkg/metrics"
	"github.com/avelar/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Pretty:  cfg.Log.Pretty,
		Service: "clinic-api",
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("clinic")

	tenantRepo := postgres.NewTenantRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	specialtyRepo := postgres.NewSpecialtyRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	refreshExpiry := time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour
	authService := authsvc.NewService(tenantRepo, tokenRepo, subscriptionRepo, jwtSvc, hasher, cfg.Subscription.TrialDays, refreshExpiry, log)
	specialtyService := specialtysvc.NewService(specialtyRepo)
	staffService := staffsvc.NewService(staffRepo, specialtyRepo)
	patientService := patientsvc.NewService(patientRepo, log)
	appointmentService := appointmentsvc.NewService(appointmentRepo, patientRepo, staffRepo, log, m)
	sessionService := sessionsvc.NewService(sessionRepo, appointmentRepo, patientRepo, log)
	paymentService := paymentsvc.NewService(paymentRepo, patientRepo, log)
	subscriptionService := subscriptionsvc.NewService(subscriptionRepo, log)
	tenantService := tenantsvc.NewService(tenantRepo, log)
	reportService := reportsvc.NewService(reportRepo)

	authMw := middleware.NewAuthMiddleware(jwtSvc)
	gate := middleware.NewSubscriptionGate(subscriptionRepo, cfg.Subscription.CacheTTL, cfg.Subscription.CacheInterval)

	r := router.NewRouter(
		db,
		authMw,
		gate,
		authhandler.NewHandler(authService),
		specialtyhandler.NewHandler(specialtyService),
		staffhandler.NewHandler(staffService),
		patienthandler.NewHandler(patientService),
		appointmenthandler.NewHandler(appointmentService, sessionService),
		sessionhandler.NewHandler(sessionService),
		paymenthandler.NewHandler(paymentService),
		subscriptionhandler.NewHandler(subscriptionService, gate),
		tenanthandler.NewHandler(tenantService),
		reporthandler.NewHandler(reportService),
		log,
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "clinic_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

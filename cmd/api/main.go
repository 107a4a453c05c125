package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hospitalms/hospital-api/internal/authz"
	"github.com/hospitalms/hospital-api/internal/catalog"
	"github.com/hospitalms/hospital-api/internal/config"
	"github.com/hospitalms/hospital-api/internal/email"
	"github.com/hospitalms/hospital-api/internal/handler"
	authHandler "github.com/hospitalms/hospital-api/internal/handler/auth"
	dischargeHandler "github.com/hospitalms/hospital-api/internal/handler/discharge"
	diseaseHandler "github.com/hospitalms/hospital-api/internal/handler/disease"
	doctorHandler "github.com/hospitalms/hospital-api/internal/handler/doctor"
	patientHandler "github.com/hospitalms/hospital-api/internal/handler/patient"
	treatmentHandler "github.com/hospitalms/hospital-api/internal/handler/treatment"
	userHandler "github.com/hospitalms/hospital-api/internal/handler/user"
	"github.com/hospitalms/hospital-api/internal/middleware"
	"github.com/hospitalms/hospital-api/internal/repository/postgres"
	"github.com/hospitalms/hospital-api/internal/router"
	authService "github.com/hospitalms/hospital-api/internal/service/auth"
	diseaseService "github.com/hospitalms/hospital-api/internal/service/disease"
	doctorService "github.com/hospitalms/hospital-api/internal/service/doctor"
	patientService "github.com/hospitalms/hospital-api/internal/service/patient"
	treatmentService "github.com/hospitalms/hospital-api/internal/service/treatment"
	userService "github.com/hospitalms/hospital-api/internal/service/user"
	"github.com/hospitalms/hospital-api/pkg/auth"
	"github.com/hospitalms/hospital-api/pkg/logger"
	"github.com/hospitalms/hospital-api/pkg/messaging/redis"
	"github.com/hospitalms/hospital-api/pkg/metrics"
	"github.com/hospitalms/hospital-api/pkg/security"
	"github.com/hospitalms/hospital-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	diseaseRepo := postgres.NewDiseaseRepository(db)
	treatmentRepo := postgres.NewTreatmentRepository(db)
	dischargeRepo := postgres.NewDischargeRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.New("hospital_api")
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	validationMode := catalog.ParseMode(cfg.Treatment.ValidationMode)

	// Services
	notifier := email.NewSMTPService(cfg.SMTP, appLogger)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	userSvc := userService.NewService(userRepo, doctorRepo, patientRepo, hasher)
	doctorSvc := doctorService.NewService(doctorRepo, userRepo, patientRepo)
	diseaseSvc := diseaseService.NewService(diseaseRepo)
	patientSvc := patientService.NewService(patientRepo, dischargeRepo, diseaseRepo, m)
	treatmentSvc := treatmentService.NewService(treatmentRepo, patientRepo, validationMode, notifier, m)

	if err := diseaseSvc.Seed(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed disease catalog")
	}

	// Middleware and handlers
	policy := authz.NewPolicy()
	authMiddleware := middleware.NewAuthMiddleware(authSvc, doctorRepo, policy)

	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	userH := userHandler.NewHandler(userSvc, outboxRepo)
	doctorH := doctorHandler.NewHandler(doctorSvc, userSvc, outboxRepo)
	patientH := patientHandler.NewHandler(patientSvc, policy, outboxRepo)
	diseaseH := diseaseHandler.NewHandler(diseaseSvc)
	treatmentH := treatmentHandler.NewHandler(treatmentSvc, policy, outboxRepo)
	dischargeH := dischargeHandler.NewHandler(patientSvc)

	r := router.NewRouter(
		authMiddleware,
		authH,
		userH,
		doctorH,
		patientH,
		diseaseH,
		treatmentH,
		dischargeH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(100),
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "hospital_api_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Outbox processor publishes mutation events to Redis. The API can
	// run without it, so a broker failure is non-fatal.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, &appLogger.ZL)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to Redis, outbox processing disabled")
	} else {
		defer broker.Close()
		processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		}, appLogger, m)
		go processor.Start(ctx)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suhailma1ik/KinCashBackend/internal/application/usecase"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
	"github.com/suhailma1ik/KinCashBackend/internal/infrastructure/config"
	"github.com/suhailma1ik/KinCashBackend/internal/infrastructure/kafka"
	pgstore "github.com/suhailma1ik/KinCashBackend/internal/infrastructure/persistence/postgres"
	"github.com/suhailma1ik/KinCashBackend/internal/infrastructure/scheduler"
	"github.com/suhailma1ik/KinCashBackend/internal/presentation/rest"
	"github.com/suhailma1ik/KinCashBackend/pkg/auth"
	pkgkafka "github.com/suhailma1ik/KinCashBackend/pkg/kafka"
	"github.com/suhailma1ik/KinCashBackend/pkg/observability"
	pkgpostgres "github.com/suhailma1ik/KinCashBackend/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting kincash-lending", "http_port", cfg.HTTPPort)

	meterProvider, metricsHandler, err := observability.InitMetrics()
	if err != nil {
		logger.Warn("failed to initialize metrics, continuing without them", "error", err)
	} else {
		defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(dbCfg.DSN(), "file://internal/infrastructure/persistence/postgres/migrations"); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Infrastructure adapters.
	store := pgstore.NewStore(pool)
	producer := pkgkafka.NewProducer(pkgkafka.Config{Brokers: cfg.Kafka.Brokers})
	defer producer.Close()
	publisher := kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger)
	clock := port.SystemClock()

	// Use cases.
	createUC := usecase.NewCreateLoanUseCase(store.Repos().Loans, clock)
	activateUC := usecase.NewActivateLoanUseCase(store, publisher, clock, logger)
	statusUC := usecase.NewLoanStatusUseCase(store, publisher, clock, logger)
	getUC := usecase.NewGetLoanUseCase(store.Repos().Loans, store.Repos().Installments)
	recordUC := usecase.NewRecordPaymentUseCase(store, publisher, clock, logger)
	pendingUC := usecase.NewMarkInstallmentPendingUseCase(store, publisher, clock, logger)
	confirmUC := usecase.NewConfirmInstallmentPaymentUseCase(store, publisher, clock, logger)
	paidUC := usecase.NewMarkInstallmentPaidUseCase(store, publisher, clock, logger)
	sweepUC := usecase.NewOverdueSweepUseCase(store, publisher, logger)

	// Scheduled overdue sweep.
	sched, err := scheduler.New(sweepUC, cfg.SweepCron, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// JWT validation.
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:     cfg.JWTSecret,
		Issuer:     "kincash",
		Expiration: 24 * time.Hour,
	})
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// HTTP routes. Health and metrics stay outside the auth middleware.
	apiMux := http.NewServeMux()
	rest.NewLoanHandler(createUC, activateUC, statusUC, getUC, logger).RegisterRoutes(apiMux)
	rest.NewPaymentHandler(recordUC, pendingUC, confirmUC, paidUC, logger).RegisterRoutes(apiMux)
	rest.NewSweepHandler(sweepUC, logger).RegisterRoutes(apiMux)

	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, func(ctx context.Context) error {
		return pkgpostgres.HealthCheck(ctx, pool)
	}).RegisterRoutes(mux)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	mux.Handle("/api/", auth.Middleware(jwtSvc)(apiMux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("kincash-lending stopped")
}

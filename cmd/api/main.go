package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/auth"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/config"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/dashboard"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/database"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/http/handler"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/http/middleware"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/http/router"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/jobs"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/logger"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/service"
	"go.uber.org/zap"
)

// @title Tracura Budget API
// @version 1.0
// @description Production budget tracking API for phases, departments, expenses and approval workflows

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
	}

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(db)
	phaseRepo := repository.NewPhaseRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	tempApproverRepo := repository.NewTempApproverRepository(db)
	extensionRepo := repository.NewExtensionRequestRepository(db)
	phaseChangeRepo := repository.NewPhaseChangeRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Dashboard state
	stores := dashboard.NewManager()
	broadcaster := dashboard.NewBroadcaster()

	// Initialize services
	aggregatorService := service.NewAggregatorService(projectRepo, phaseRepo, expenseRepo, extensionRepo, log)
	dashboardService := service.NewDashboardService(aggregatorService, projectRepo, userRepo, tempApproverRepo, stores, broadcaster, log)
	projectService := service.NewProjectService(projectRepo, phaseRepo, userRepo, phaseChangeRepo, stores, log)
	departmentService := service.NewDepartmentService(departmentRepo, phaseRepo, log)
	expenseService := service.NewExpenseService(expenseRepo, projectRepo, tempApproverRepo, stores, broadcaster, log)
	delegationService := service.NewDelegationService(tempApproverRepo, projectRepo, stores, log)
	extensionService := service.NewExtensionService(extensionRepo, phaseRepo, projectRepo, phaseChangeRepo, stores, log)

	// Initialize handlers
	projectHandler := handler.NewProjectHandler(projectService, log)
	departmentHandler := handler.NewDepartmentHandler(departmentService, log)
	expenseHandler := handler.NewExpenseHandler(expenseService, log)
	delegationHandler := handler.NewDelegationHandler(delegationService, log)
	extensionHandler := handler.NewExtensionHandler(extensionService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	if cfg.Jobs.ReconcileEnabled {
		reconcileJob := jobs.NewReconcileJob(extensionRepo, phaseRepo, tempApproverRepo, log, cfg.Jobs.ReconcileTimeoutDuration())
		if err := scheduler.AddJob(jobs.ReconcileJobName, cfg.Jobs.ReconcileCron, reconcileJob.Run); err != nil {
			return fmt.Errorf("failed to schedule reconcile job: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Router
	rt := router.NewRouter(
		cfg, log, db,
		authMiddleware, rateLimiter,
		projectHandler, departmentHandler, expenseHandler,
		delegationHandler, extensionHandler, dashboardHandler,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/auth"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/config"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/database"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/http/handler"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	projectHandler    *handler.ProjectHandler
	departmentHandler *handler.DepartmentHandler
	expenseHandler    *handler.ExpenseHandler
	delegationHandler *handler.DelegationHandler
	extensionHandler  *handler.ExtensionHandler
	dashboardHandler  *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	projectHandler *handler.ProjectHandler,
	departmentHandler *handler.DepartmentHandler,
	expenseHandler *handler.ExpenseHandler,
	delegationHandler *handler.DelegationHandler,
	extensionHandler *handler.ExtensionHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		projectHandler:    projectHandler,
		departmentHandler: departmentHandler,
		expenseHandler:    expenseHandler,
		delegationHandler: delegationHandler,
		extensionHandler:  extensionHandler,
		dashboardHandler:  dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Projects, phases, membership
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Post("/", rt.projectHandler.Create)
				r.Get("/{id}", rt.projectHandler.Get)
				r.Put("/{id}/suspended", rt.projectHandler.SetSuspended)
				r.Post("/{id}/phases", rt.projectHandler.CreatePhase)
				r.Post("/{id}/members", rt.projectHandler.AddTeamMember)
				r.Delete("/{id}/members/{userId}", rt.projectHandler.RemoveTeamMember)

				// Expenses
				r.Get("/{id}/expenses", rt.expenseHandler.List)
				r.Post("/{id}/expenses", rt.expenseHandler.Create)

				// Delegation
				r.Get("/{id}/delegation", rt.delegationHandler.History)
				r.Post("/{id}/delegation", rt.delegationHandler.Delegate)

				// Dashboard
				r.Get("/{id}/dashboard", rt.dashboardHandler.Get)
				r.Post("/{id}/dashboard/refresh", rt.dashboardHandler.Refresh)
			})

			// Phases
			r.Route("/phases", func(r chi.Router) {
				r.Put("/{id}/enabled", rt.projectHandler.SetPhaseEnabled)
				r.Get("/{id}/departments", rt.departmentHandler.List)
				r.Post("/{id}/departments", rt.departmentHandler.Create)
				r.Get("/{id}/extensions", rt.extensionHandler.List)
				r.Post("/{id}/extensions", rt.extensionHandler.Create)
			})

			// Departments and line items
			r.Route("/departments", func(r chi.Router) {
				r.Delete("/{id}", rt.departmentHandler.Delete)
				r.Put("/{id}/line-items", rt.departmentHandler.SetLineItems)
			})

			// Expense decisions
			r.Post("/expenses/{id}/decision", rt.expenseHandler.Decide)

			// Delegation records
			r.Route("/delegations", func(r chi.Router) {
				r.Get("/{id}", rt.delegationHandler.Get)
				r.Put("/{id}", rt.delegationHandler.SaveDetails)
				r.Post("/{id}/decision", rt.delegationHandler.Decide)
			})

			// Extension resolutions
			r.Post("/extensions/{id}/resolution", rt.extensionHandler.Resolve)
		})
	})

	return r
}

package rest

import (
	"context"
	"net/http"
	"time"

	"observador-backend/application/commands/bus"
	"observador-backend/application/ports"
	querybus "observador-backend/application/queries/bus"
	"observador-backend/interfaces/http/rest/handlers"
	"observador-backend/interfaces/http/rest/middleware"
	"observador-backend/pkg/auth"
	"observador-backend/pkg/common"
	pkgerrors "observador-backend/pkg/errors"
	"observador-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// readyTimeout bounds the storage ping behind /ready
const readyTimeout = 3 * time.Second

// Options selects the optional parts of the HTTP surface
type Options struct {
	Debug         bool
	EnableMetrics bool
	EnableCORS    bool
	CORSOrigins   []string
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	jwt        *auth.JWTService
	agents     ports.AgentRepository
	limiter    auth.RateLimiter
	collector  *observability.Collector
	ready      func(context.Context) error
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance. A nil collector serves no
// /metrics endpoint.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	jwt *auth.JWTService,
	agents ports.AgentRepository,
	limiter auth.RateLimiter,
	collector *observability.Collector,
	ready func(context.Context) error,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		jwt:        jwt,
		agents:     agents,
		limiter:    limiter,
		collector:  collector,
		ready:      ready,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	errs := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errs.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.EnableMetrics && rt.collector != nil {
		router.Use(rt.collector.Middleware)
	}
	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.APIKeyHeader},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck(errs))
	if rt.opts.EnableMetrics && rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	systemHandler := handlers.NewSystemHandler(rt.queryBus, errs, rt.logger)
	entityHandler := handlers.NewEntityHandler(rt.commandBus, errs, rt.logger)
	entryHandler := handlers.NewEntryHandler(rt.commandBus, rt.queryBus, errs, rt.logger)
	agentHandler := handlers.NewAgentHandler(rt.commandBus, rt.queryBus, errs, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rt.limiter, errs, rt.logger))
		r.Use(middleware.Authenticate(rt.jwt, rt.limiter, errs, rt.logger))

		r.Route("/system", func(r chi.Router) {
			r.Get("/graph", systemHandler.GetGraph)
			r.Get("/interpretation", systemHandler.GetInterpretation)
			r.Get("/trends", systemHandler.GetTrends)
			r.Get("/coherence", systemHandler.GetCoherence)
			r.Get("/energy-flow", systemHandler.GetEnergyFlow)
		})

		r.Post("/projects", entityHandler.SaveProject)
		r.Post("/relationships", entityHandler.SaveRelationship)
		r.Post("/intentions", entityHandler.SaveIntention)
		r.Post("/manifestations", entityHandler.SaveManifestation)

		r.Post("/entries", entryHandler.SaveEntry)
		r.Get("/entries/stats", entryHandler.GetStatistics)

		r.Route("/agents", func(r chi.Router) {
			r.Post("/projects", agentHandler.RegisterProject)
			r.Get("/projects", agentHandler.ListProjects)
			r.Get("/dashboard", agentHandler.GetDashboard)
		})
	})

	router.Route("/webhooks", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rt.limiter, errs, rt.logger))
		r.Use(middleware.AuthenticateAPIKey(rt.agents, rt.limiter, errs, rt.logger))
		r.Post("/agent-decisions", agentHandler.RecordDecision)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck answers 503 while the storage backend is unreachable
func (rt *Router) readinessCheck(errs *pkgerrors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if rt.ready != nil {
			ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
			defer cancel()
			if err := rt.ready(ctx); err != nil {
				rt.logger.Warn("Readiness check failed", zap.Error(err))
				errs.HandleStatus(w, req, http.StatusServiceUnavailable, "Storage unavailable")
				return
			}
		}
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

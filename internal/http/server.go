package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liftctl/liftctl/internal/broadcaster"
	"github.com/liftctl/liftctl/internal/constants"
	"github.com/liftctl/liftctl/internal/dispatcher"
	"github.com/liftctl/liftctl/internal/domain"
	"github.com/liftctl/liftctl/internal/infra/config"
	"github.com/liftctl/liftctl/internal/infra/health"
	"github.com/liftctl/liftctl/internal/infra/logging"
	"github.com/liftctl/liftctl/internal/infra/observability"
)

// Server represents the HTTP server binding the dispatcher and the
// websocket broadcaster hub to the versioned REST API (§6).
type Server struct {
	dispatcher    *dispatcher.Dispatcher
	hub           *broadcaster.Hub
	httpServer    *http.Server
	cfg           *config.Config
	logger        *slog.Logger
	healthService *health.HealthService
	telemetry     *observability.TelemetryProvider
}

// NewServer creates a new instance of Server with versioned API and middleware.
func NewServer(cfg *config.Config, port int, d *dispatcher.Dispatcher, hub *broadcaster.Hub) *Server {
	s := &Server{
		dispatcher:    d,
		hub:           hub,
		cfg:           cfg,
		logger:        slog.With(slog.String("component", constants.ComponentHTTPServer)),
		healthService: health.NewHealthService(30 * time.Second),
	}

	s.setupHealthChecks(d)

	if obsCfg, err := observability.LoadObservabilityConfig(); err != nil {
		s.logger.Warn("observability config load failed, tracing disabled", slog.String("error", err.Error()))
	} else if tp, err := observability.NewTelemetryProvider(obsCfg, s.logger); err != nil {
		s.logger.Warn("telemetry provider init failed, tracing disabled", slog.String("error", err.Error()))
	} else {
		s.telemetry = tp
	}

	addr := fmt.Sprintf(":%d", port)
	v1Handlers := NewV1Handlers(d, cfg, s.logger)
	rateLimiter := NewRateLimitMiddleware(cfg.RateLimitRPM, s.logger)

	middlewareChain := ChainMiddleware(
		RequestIDMiddleware(),
		LoggingMiddleware(s.logger),
		RecoveryMiddleware(s.logger),
		CORSMiddleware(),
		SecurityHeadersMiddleware(),
		rateLimiter.Handler(),
		s.telemetryMiddleware(),
	)

	mux := http.NewServeMux()

	// === V1 API ROUTES ===
	mux.HandleFunc("/v1", v1Handlers.APIInfoHandler)
	mux.HandleFunc("/v1/hall-calls", v1Handlers.HallCallHandler)
	mux.HandleFunc("/v1/cars/", v1Handlers.CarCallHandler)
	mux.HandleFunc("/v1/status", v1Handlers.StatusHandler)
	mux.HandleFunc("/v1/building/reconfigure", v1Handlers.BuildingReconfigureHandler)
	mux.HandleFunc("/v1/ws", hub.ServeHTTP)

	// === AMBIENT OPERATIONAL BOUNDARY ===
	mux.HandleFunc("/healthz", s.livenessHandler)
	mux.HandleFunc("/readyz", s.readinessHandler)
	mux.HandleFunc("/health/detailed", s.detailedHealthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// === LEGACY ROUTES (thin aliases for simple existing clients) ===
	mux.HandleFunc("/floor", s.legacyFloorHandler)
	mux.HandleFunc("/ws/status", hub.ServeHTTP)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      middlewareChain(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// telemetryMiddleware wraps requests in an OpenTelemetry span when the
// telemetry provider initialized successfully, covering submit_hall_call,
// submit_car_call, and reconfigure_building at the HTTP boundary (§2 domain
// stack). It is a pass-through if telemetry failed to initialize.
func (s *Server) telemetryMiddleware() Middleware {
	if s.telemetry == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.telemetry.TelemetryMiddleware()
}

// setupHealthChecks initializes and registers health check components,
// generalizing the teacher's manager-backed checker to the dispatcher's
// fleet.
func (s *Server) setupHealthChecks(d *dispatcher.Dispatcher) {
	s.healthService.Register(health.NewSystemResourceChecker(85.0, 1000))
	s.healthService.Register(health.NewLivenessChecker())

	dispatcherHealthChecker := health.NewComponentHealthChecker("dispatcher", func(ctx context.Context) (bool, string, map[string]interface{}) {
		cars := d.Cars()
		if len(cars) == 0 {
			return true, "fleet ready for car creation", map[string]interface{}{
				"car_count":    0,
				"system_state": "initial_setup",
			}
		}

		healthy := 0
		for _, c := range cars {
			if h, ok := c.GetHealthMetrics()["is_healthy"].(bool); ok && h {
				healthy++
			}
		}

		details := map[string]interface{}{
			"total_cars":   len(cars),
			"healthy_cars": healthy,
			"health_ratio": float64(healthy) / float64(len(cars)),
		}

		if healthy == 0 {
			return false, "no healthy cars", details
		}
		if float64(healthy)/float64(len(cars)) < 0.5 {
			return false, "less than 50% of cars are healthy", details
		}
		return true, "dispatcher and cars are healthy", details
	})
	s.healthService.Register(dispatcherHealthChecker)

	readinessChecker := health.NewReadinessChecker(dispatcherHealthChecker)
	s.healthService.Register(readinessChecker)

	s.logger.Info("health checks initialized", slog.Int("registered_checkers", 4))
}

func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.healthService.Check(r.Context(), "liveness")
	if err != nil {
		http.Error(w, "Liveness check failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Status == health.StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.healthService.Check(r.Context(), "readiness")
	if err != nil {
		http.Error(w, "Readiness check failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Status == health.StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) detailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	overallStatus, results := s.healthService.GetOverallStatus(r.Context())

	response := map[string]interface{}{
		"status":    string(overallStatus),
		"timestamp": time.Now(),
		"checks":    results,
		"summary": map[string]interface{}{
			"total_checks":     len(results),
			"healthy_checks":   countChecksWithStatus(results, health.StatusHealthy),
			"degraded_checks":  countChecksWithStatus(results, health.StatusDegraded),
			"unhealthy_checks": countChecksWithStatus(results, health.StatusUnhealthy),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	var statusCode int
	switch overallStatus {
	case health.StatusUnhealthy:
		statusCode = http.StatusServiceUnavailable
	default:
		statusCode = http.StatusOK
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func countChecksWithStatus(results map[string]health.CheckResult, status health.Status) int {
	count := 0
	for _, result := range results {
		if result.Status == status {
			count++
		}
	}
	return count
}

// legacyFloorHandler is a thin alias over the hall call submission,
// accepting the pre-dispatcher {from, to} shape and deriving direction
// from the two floors, for backward compatibility with simple clients
// (kept the way the teacher keeps a legacy route set alongside v1).
func (s *Server) legacyFloorHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logging.NewContextWithCorrelation(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	dir := domain.DirectionUp
	if body.To < body.From {
		dir = domain.DirectionDown
	}

	assigned, err := s.dispatcher.SubmitHallCall(ctx, body.From, dir)
	if err != nil {
		s.logger.ErrorContext(ctx, "legacy floor request failed", slog.String("error", err.Error()))
		statusCode := http.StatusInternalServerError
		if domainErr, ok := err.(*domain.DomainError); ok && domainErr.Type == domain.ErrTypeValidation {
			statusCode = http.StatusBadRequest
		}
		http.Error(w, "elevator request failed", statusCode)
		return
	}

	if err := s.dispatcher.SubmitCarCallByID(assigned.ID, body.To); err != nil {
		s.logger.WarnContext(ctx, "legacy floor request could not queue destination call",
			slog.String("error", err.Error()))
	}

	response := fmt.Sprintf("car %s received request: from %d to %d", assigned.Name(), body.From, body.To)
	w.Header().Set("Content-Type", constants.ContentTypeTextPlain)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(response)); err != nil {
		s.logger.ErrorContext(ctx, "failed to write response", slog.String("error", err.Error()))
	}
}

// GetHandler returns the HTTP handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.hub.Shutdown()
	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			s.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	return s.httpServer.Shutdown(ctx)
}

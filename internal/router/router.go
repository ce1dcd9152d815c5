package router

import (
	"net/http"
	"time"

	"cinehub/internal/config"
	"cinehub/internal/metrics"
	"cinehub/internal/middleware"
	"cinehub/internal/response"
	"cinehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(
	cfg *config.Config,
	serviceCollection *services.ServiceCollection,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responseBuilder.WriteError(w, req, services.NewNotFoundError("Route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		err := services.NewBusinessError("Method not allowed", "METHOD_NOT_ALLOWED")
		err.StatusCode = http.StatusMethodNotAllowed
		responseBuilder.WriteError(w, req, err)
	})

	if cfg.Monitoring.EnableMetrics {
		r.Use(middleware.Metrics)
	}

	// ===============================
	// MONITORING
	// ===============================

	SetupMonitoringRoutes(r, cfg, serviceCollection, responseBuilder)

	// ===============================
	// API V1
	// ===============================

	AddAPIv1Routes(r.PathPrefix("/api/v1").Subrouter(), serviceCollection, authMiddleware, responseBuilder, logger)

	return middleware.Chain(r,
		middleware.RequestID(logger),
		middleware.StructuredLogging(middleware.DefaultLoggingConfig()),
		middleware.Recovery(responseBuilder),
		middleware.SecureHeaders,
		middleware.CORS(cfg.Server.AllowedOrigin),
	)
}

// SetupMonitoringRoutes adds health probes and the Prometheus endpoint
func SetupMonitoringRoutes(r *mux.Router, cfg *config.Config, serviceCollection *services.ServiceCollection, responseBuilder *response.Builder) {
	// Liveness only; never touches dependencies
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		responseBuilder.WriteSuccess(w, req, map[string]string{
			"status": "alive",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/health", HealthHandler(serviceCollection, responseBuilder)).Methods(http.MethodGet)

	if cfg.Monitoring.EnableMetrics {
		r.Handle(cfg.Monitoring.MetricsPath, metrics.Handler()).Methods(http.MethodGet)
	}
}

// HealthHandler reports dependency health, answering 503 when the store is down
func HealthHandler(serviceCollection *services.ServiceCollection, responseBuilder *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := serviceCollection.HealthCheck(r.Context())

		status := http.StatusOK
		if health.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
		}

		resp := responseBuilder.Success(r.Context(), health)
		resp.Success = status == http.StatusOK
		responseBuilder.WriteJSON(w, r, resp, status)
	}
}

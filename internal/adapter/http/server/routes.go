package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Temutjin2k/crowdguard/docs"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

const defaultRateLimit = 5

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	mux, routes, m := a.mux, a.routes, a.m

	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux)
	setupMetricsRoute(mux)

	limit := a.cfg.Server.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}

	// Dashboard
	mux.HandleFunc("GET /v1/dashboard", routes.dashboard.GetDashboard)             // Latest snapshot
	mux.HandleFunc("POST /v1/dashboard/refresh", routes.dashboard.Refresh)         // Force a refresh
	mux.HandleFunc("GET /v1/dashboard/history", routes.dashboard.GetHistory)       // Persisted snapshot summaries
	mux.HandleFunc("GET /v1/zones", routes.dashboard.GetZones)                     // Predicted zones
	mux.HandleFunc("GET /v1/recommendations", routes.dashboard.GetRecommendations) // Recommended positions
	mux.HandleFunc("GET /v1/redirections", routes.dashboard.GetRedirections)       // Redirection plans

	// Dispatch
	mux.Handle("POST /v1/deployments", m.RequireRoles(routes.dashboard.ConfirmDeployment, types.RoleDispatcher))                   // Confirm a position
	mux.Handle("PUT /v1/redirections/{id}/status", m.RequireRoles(routes.dashboard.UpdateRedirectionStatus, types.RoleDispatcher)) // Change plan status

	// Hotspots
	mux.HandleFunc("GET /v1/hotspots/predict", routes.hotspot.Predict)            // Predicted hotspots
	mux.HandleFunc("GET /v1/hotspots/samples", routes.hotspot.Samples)            // Reference samples
	mux.Handle("POST /v1/hotspots/live", m.RateLimit(limit, routes.hotspot.Live)) // Live hotspots around a location
	mux.Handle("GET /ws/live", m.RateLimit(limit, routes.live.HandleWebSocket))   // Live tracker websocket

	// Location services
	mux.Handle("GET /v1/services/nearby", m.RateLimit(limit, routes.nearby.Search)) // Nearby emergency services
	mux.Handle("POST /v1/travel/path", m.RateLimit(limit, routes.travel.Path))      // Crowd-annotated travel path

	// Simulation grid
	mux.HandleFunc("POST /v1/grid/path", routes.grid.Routes)   // Grid routes
	mux.HandleFunc("GET /v1/placement", routes.grid.Placement) // Unit placement
}

// setupSwaggerRoutes serves the registered OpenAPI document and Swagger UI
func setupSwaggerRoutes(mux *http.ServeMux) {
	swaggerURL := httpSwagger.InstanceName(docs.InstanceName)
	mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}

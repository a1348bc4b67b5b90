package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/crowdguard/config"
	"github.com/Temutjin2k/crowdguard/internal/adapter/http/handler"
	"github.com/Temutjin2k/crowdguard/internal/adapter/http/middleware"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
)

const serverIPAddress = "%s:%s"

// Services are the domain services behind the monitor API.
type Services struct {
	Dashboard handler.DashboardService
	Hotspots  handler.HotspotService
	Nearby    handler.NearbyService
	Travel    handler.TravelService
	Grid      handler.GridService
	LiveFeed  handler.LiveFeed
	Conns     handler.ConnRegistry
	Tokens    middleware.TokenValidator
}

type API struct {
	mux     *http.ServeMux
	server  *http.Server
	routes  *handlers
	m       *middleware.Middleware
	handler http.Handler

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health    *handler.Health
	dashboard *handler.Dashboard
	hotspot   *handler.Hotspot
	live      *handler.Live
	nearby    *handler.Nearby
	travel    *handler.Travel
	grid      *handler.Grid
}

func New(cfg config.Config, s Services, log logger.Logger) (*API, error) {
	if s.Dashboard == nil || s.Hotspots == nil || s.Nearby == nil || s.Travel == nil || s.Grid == nil {
		return nil, errors.New("all monitor services are required")
	}
	if s.LiveFeed == nil || s.Conns == nil {
		return nil, errors.New("live feed and connection registry are required")
	}

	routes := &handlers{
		health:    handler.NewHealth(cfg.Mode.String(), cfg.Version, log),
		dashboard: handler.NewDashboard(s.Dashboard, log),
		hotspot:   handler.NewHotspot(s.Hotspots, log),
		live:      handler.NewLive(s.LiveFeed, s.Conns, cfg.Server.AllowedOrigins, log),
		nearby:    handler.NewNearby(s.Nearby, log),
		travel:    handler.NewTravel(s.Travel, log),
		grid:      handler.NewGrid(s.Grid, log),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(s.Tokens, log),
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Server.Port),
		cfg:    cfg,
		log:    log,
	}

	api.setupRoutes()
	api.handler = api.withMiddleware()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return api, nil
}

// Handler returns the fully wrapped router.
func (a *API) Handler() http.Handler {
	return a.handler
}

func (a *API) Stop(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	metrics := a.m.Metrics(a.cfg.Mode.String(), a.mux)
	cors := a.m.CORS(a.cfg.Server.AllowedOrigins)
	return a.m.Recover(a.m.RequestID(metrics(a.m.Logging(cors(a.m.Auth(a.mux))))))
}

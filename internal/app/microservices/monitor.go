package microservices

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Temutjin2k/crowdguard/config"
	"github.com/Temutjin2k/crowdguard/internal/adapter/http/server"
	"github.com/Temutjin2k/crowdguard/internal/adapter/locationiq"
	repo "github.com/Temutjin2k/crowdguard/internal/adapter/postgres"
	"github.com/Temutjin2k/crowdguard/internal/adapter/rabbit"
	"github.com/Temutjin2k/crowdguard/internal/adapter/upstream"
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/service/auth"
	"github.com/Temutjin2k/crowdguard/internal/service/crowdgrid"
	"github.com/Temutjin2k/crowdguard/internal/service/dashboard"
	"github.com/Temutjin2k/crowdguard/internal/service/hotspot"
	"github.com/Temutjin2k/crowdguard/internal/service/nearby"
	"github.com/Temutjin2k/crowdguard/internal/service/planner"
	"github.com/Temutjin2k/crowdguard/internal/service/simulation"
	"github.com/Temutjin2k/crowdguard/internal/service/travel"
	"github.com/Temutjin2k/crowdguard/migrations"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/postgres"
	rabbitpkg "github.com/Temutjin2k/crowdguard/pkg/rabbit"
	"github.com/Temutjin2k/crowdguard/pkg/trm"
	ws "github.com/Temutjin2k/crowdguard/pkg/wsHub"
)

// MonitorService serves the dashboard API, keeps the snapshot fresh, pushes live
// hotspots and consumes simulation frames.
type MonitorService struct {
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbitpkg.RabbitMQ
	httpServer *server.API

	dashboard *dashboard.Service
	feed      *hotspot.LiveFeed
	hub       *ws.ConnectionHub
	frames    *rabbit.FrameBroker
	store     *simulation.Store

	cfg config.Config
	log logger.Logger
}

func NewMonitor(ctx context.Context, cfg config.Config, log logger.Logger) (*MonitorService, error) {
	ctx = wrap.WithAction(ctx, "monitor_init")

	if err := postgres.Migrate(cfg.Database.GetDSN(), migrations.FS); err != nil {
		log.Error(ctx, "failed to apply migrations", err)
		return nil, err
	}

	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		return nil, err
	}

	rabbitMQ, err := rabbitpkg.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "failed to connect to rabbitmq", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	s := &MonitorService{
		postgresDB: postgresDB,
		rabbitMQ:   rabbitMQ,
		cfg:        cfg,
		log:        log,
	}

	service := cfg.Mode.String()
	dispatch := rabbit.NewDispatchBroker(rabbitMQ, service)
	frames := rabbit.NewFrameBroker(rabbitMQ, service, log)
	if err := s.setupBrokers(ctx, dispatch, frames); err != nil {
		return nil, err
	}

	upstreamAPI := upstream.New(upstream.Config{
		BaseURL:  cfg.Upstream.BaseURL,
		Timeout:  cfg.Upstream.Timeout,
		RetryMax: cfg.Upstream.RetryMax,
	})
	geocoder := locationiq.New(locationiq.Config{
		APIKey:   cfg.ExternalAPI.LocationIQAPIKey,
		BaseURL:  cfg.ExternalAPI.LocationIQBaseURL,
		Timeout:  cfg.Upstream.Timeout,
		RetryMax: cfg.Upstream.RetryMax,
	})

	pool := postgresDB.Pool
	dashboardService := dashboard.New(dashboard.Deps{
		Planner:      planner.New(planner.DefaultRules()),
		Upstream:     upstreamAPI,
		Snapshots:    repo.NewSnapshotRepo(pool),
		Deployments:  repo.NewDeploymentRepo(pool),
		Redirections: repo.NewRedirectionRepo(pool),
		Dispatch:     dispatch,
		TxManager:    trm.New(pool),
		Logger:       log,
	}, cfg.Dashboard.RefreshInterval)

	store := simulation.NewStore()
	origin := models.Location{Lat: cfg.Dashboard.OriginLat, Lng: cfg.Dashboard.OriginLng}

	hotspotService := hotspot.New(upstreamAPI, store, cfg.Dashboard.ZoneBlocks, log)
	hub := ws.NewConnHub(log)
	feed := hotspot.NewLiveFeed(hotspotService, hub, hotspot.FeedConfig{
		Interval: cfg.Dashboard.LiveInterval,
		Origin:   origin,
		Blocks:   cfg.Dashboard.ZoneBlocks,
	}, log)

	httpServer, err := server.New(cfg, server.Services{
		Dashboard: dashboardService,
		Hotspots:  hotspotService,
		Nearby:    nearby.New(upstreamAPI, repo.NewServiceRepo(pool), log),
		Travel:    travel.New(upstreamAPI, geocoder, dashboardService, cfg.Dashboard.PathSegments, log),
		Grid:      crowdgrid.New(store, log),
		LiveFeed:  feed,
		Conns:     hub,
		Tokens:    auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL),
	}, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		s.close(ctx)
		return nil, err
	}

	s.httpServer = httpServer
	s.dashboard = dashboardService
	s.feed = feed
	s.hub = hub
	s.frames = frames
	s.store = store
	return s, nil
}

type brokerSetup interface {
	Setup() error
}

// setupBrokers declares the exchanges of every broker. On failure the connections
// held by s are closed.
func (s *MonitorService) setupBrokers(ctx context.Context, brokers ...brokerSetup) error {
	for _, b := range brokers {
		if err := b.Setup(); err != nil {
			s.log.Error(ctx, "failed to declare exchange", err)
			s.close(ctx)
			return err
		}
	}
	return nil
}

func (s *MonitorService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	if err := s.dashboard.Restore(ctx); err != nil {
		s.log.Warn(ctx, "could not restore last snapshot", "error", err.Error())
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(3)
	go func() {
		defer wg.Done()
		s.dashboard.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		s.feed.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := s.frames.ConsumeFrames(ctx, s.onFrame); err != nil {
			errCh <- fmt.Errorf("frame consumer: %w", err)
		}
	}()

	s.httpServer.Run(ctx, errCh)
	defer func() {
		cancel()
		s.close(context.Background())
		wg.Wait()
		s.log.Info(context.Background(), "monitor service closed")
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "monitor service started", "port", s.cfg.Server.Port, "upstream", s.cfg.Upstream.BaseURL != "")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

// onFrame keeps the newest frame for grid queries and pushes its zone summary to live clients.
func (s *MonitorService) onFrame(ctx context.Context, frame models.Frame) error {
	s.store.Put(frame)
	s.feed.BroadcastFrame(ctx, frame)
	return nil
}

func (s *MonitorService) close(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.hub != nil {
		s.hub.Close()
	}

	if s.rabbitMQ != nil {
		if err := s.rabbitMQ.Close(ctx); err != nil {
			s.log.Warn(ctx, "failed to close rabbitmq connection", "error", err.Error())
		}
	}

	if s.postgresDB != nil && s.postgresDB.Pool != nil {
		s.postgresDB.Pool.Close()
	}
}

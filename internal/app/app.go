package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/crowdguard/config"
	"github.com/Temutjin2k/crowdguard/internal/app/microservices"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
)

var ErrInvalidMode = errors.New("invalid mode")

// Service is one runnable crowdguard process. Start blocks until shutdown.
type Service interface {
	Start(ctx context.Context) error
}

type constructor func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error)

var services = map[types.ServiceMode]constructor{
	types.MonitorService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewMonitor(ctx, cfg, log)
	},
	types.SimulationService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewSimulation(ctx, cfg, log)
	},
}

type App struct {
	mode    types.ServiceMode
	service Service
	log     logger.Logger
}

// NewApplication connects the dependencies of the service selected by cfg.Mode.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	build, ok := services[cfg.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, cfg.Mode)
	}

	service, err := build(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init %s: %w", cfg.Mode, err)
	}

	return &App{
		mode:    cfg.Mode,
		service: service,
		log:     log,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info(ctx, "starting service", "mode", a.mode.String())
	return a.service.Start(ctx)
}

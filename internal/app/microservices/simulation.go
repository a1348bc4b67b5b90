package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Temutjin2k/crowdguard/config"
	"github.com/Temutjin2k/crowdguard/internal/adapter/rabbit"
	"github.com/Temutjin2k/crowdguard/internal/service/simulation"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	rabbitpkg "github.com/Temutjin2k/crowdguard/pkg/rabbit"
)

// SimulationService steps a crowd simulation and publishes every frame to crowd_topic.
type SimulationService struct {
	rabbitMQ *rabbitpkg.RabbitMQ
	runner   *simulation.Runner

	cfg config.Config
	log logger.Logger
}

func NewSimulation(ctx context.Context, cfg config.Config, log logger.Logger) (*SimulationService, error) {
	ctx = wrap.WithAction(ctx, "simulation_init")

	sim, err := simulation.New(simulation.Config{
		GridSize:      cfg.Simulation.GridSize,
		People:        cfg.Simulation.People,
		ObstacleRatio: cfg.Simulation.ObstacleRatio,
		Seed:          cfg.Simulation.Seed,
	})
	if err != nil {
		log.Error(ctx, "invalid simulation settings", err)
		return nil, err
	}

	rabbitMQ, err := rabbitpkg.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "failed to connect to rabbitmq", err)
		return nil, err
	}

	frames := rabbit.NewFrameBroker(rabbitMQ, cfg.Mode.String(), log)
	if err := frames.Setup(); err != nil {
		log.Error(ctx, "failed to declare crowd exchange", err)
		if cerr := rabbitMQ.Close(ctx); cerr != nil {
			log.Warn(ctx, "failed to close rabbitmq connection", "error", cerr.Error())
		}
		return nil, err
	}

	return &SimulationService{
		rabbitMQ: rabbitMQ,
		runner:   simulation.NewRunner(sim, frames, cfg.Simulation.StepInterval, cfg.Simulation.MaxSteps, log),
		cfg:      cfg,
		log:      log,
	}, nil
}

func (s *SimulationService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		if err := s.rabbitMQ.Close(context.Background()); err != nil {
			s.log.Warn(context.Background(), "failed to close rabbitmq connection", "error", err.Error())
		}
		s.log.Info(context.Background(), "simulation service closed")
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.runner.Run(ctx)
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "simulation service started")

	select {
	case err := <-errCh:
		return err
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

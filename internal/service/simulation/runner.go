package simulation

import (
	"context"
	"time"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
)

const DefaultStepInterval = time.Second

type FramePublisher interface {
	PublishFrame(ctx context.Context, frame models.Frame) error
}

// Runner steps a simulation on a fixed interval and publishes every frame.
type Runner struct {
	sim       *Simulation
	publisher FramePublisher
	interval  time.Duration
	maxSteps  int
	l         logger.Logger
}

// NewRunner creates a runner. maxSteps <= 0 runs until the context is cancelled.
func NewRunner(sim *Simulation, publisher FramePublisher, interval time.Duration, maxSteps int, l logger.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultStepInterval
	}
	return &Runner{
		sim:       sim,
		publisher: publisher,
		interval:  interval,
		maxSteps:  maxSteps,
		l:         l,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	ctx = wrap.WithSimID(ctx, r.sim.ID())
	r.l.Info(ctx, "simulation started", "grid_size", r.sim.Size(), "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.l.Info(ctx, "simulation stopped", "steps", r.sim.Steps())
			return nil
		case <-ticker.C:
			r.sim.Step()
			metrics.SimulationSteps.Inc()

			frame := r.sim.Frame()
			stepCtx := wrap.WithAction(ctx, types.ActionSimulationStep)
			if err := r.publisher.PublishFrame(stepCtx, frame); err != nil {
				// a lost frame is superseded by the next one
				r.l.Error(wrap.ErrorCtx(stepCtx, err), "failed to publish frame", err, "step", frame.Step)
			}

			if r.maxSteps > 0 && r.sim.Steps() >= r.maxSteps {
				r.l.Info(ctx, "simulation finished", "steps", r.sim.Steps())
				return nil
			}
		}
	}
}

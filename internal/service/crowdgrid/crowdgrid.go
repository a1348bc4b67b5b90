// Package crowdgrid answers route and unit placement queries on simulation grids.
package crowdgrid

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/pathfinding"
	"github.com/Temutjin2k/crowdguard/internal/service/placement"
	"github.com/Temutjin2k/crowdguard/internal/service/simulation"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
)

const (
	// PlacementSigma is the blur applied to frame heat before placing units.
	PlacementSigma = 2.0
	MaxUnits       = 20
)

type FrameSource interface {
	Latest() (*models.Frame, bool)
}

type Service struct {
	frames FrameSource
	l      logger.Logger
}

func New(frames FrameSource, l logger.Logger) *Service {
	return &Service{
		frames: frames,
		l:      l,
	}
}

// Routes finds alternative routes between start and goal. With no rows the latest
// simulation frame is used as the grid.
func (s *Service) Routes(ctx context.Context, rows [][]int8, start, goal models.Point) (*models.GridRoutes, error) {
	const op = "Service.Routes"
	ctx = wrap.WithAction(ctx, "grid_routes")

	out := &models.GridRoutes{}

	var grid pathfinding.Grid
	if len(rows) > 0 {
		g, err := pathfinding.FromRows(rows)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		grid = g
	} else {
		frame, err := s.latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		grid = pathfinding.FromFrame(frame)
		out.SimID, out.Step = frame.SimID, frame.Step
	}

	paths, err := pathfinding.FindAlternatives(start, goal, grid)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	out.Paths = paths

	s.l.Debug(ctx, "grid routes found", "routes", len(paths), "grid_size", grid.Size)
	return out, nil
}

// Placement proposes positions for units emergency units on the blurred heat of the
// latest simulation frame.
func (s *Service) Placement(ctx context.Context, units int) (*models.UnitPlacement, error) {
	const op = "Service.Placement"
	ctx = wrap.WithAction(ctx, "unit_placement")

	frame, err := s.latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ctx = wrap.WithSimID(ctx, frame.SimID)

	heat := simulation.Blur(frame.Heat, frame.Size, PlacementSigma)
	placements := placement.Plan(heat, frame.Size, units)

	s.l.Debug(ctx, "units placed", "requested", units, "placed", len(placements), "step", frame.Step)

	return &models.UnitPlacement{
		SimID:      frame.SimID,
		Step:       frame.Step,
		Units:      units,
		Placements: placements,
	}, nil
}

func (s *Service) latest(ctx context.Context) (*models.Frame, error) {
	if s.frames == nil {
		return nil, wrap.Error(ctx, types.ErrNoFrame)
	}
	frame, ok := s.frames.Latest()
	if !ok {
		return nil, wrap.Error(ctx, types.ErrNoFrame)
	}
	return frame, nil
}

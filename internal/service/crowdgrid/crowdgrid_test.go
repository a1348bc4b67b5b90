package crowdgrid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/simulation"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
)

func TestRoutesOnGivenGrid(t *testing.T) {
	svc := New(nil, logger.Nop())

	rows := [][]int8{
		{0, 0, 0},
		{0, -1, 0},
		{0, 0, 0},
	}
	got, err := svc.Routes(context.Background(), rows, models.Point{X: 0, Y: 0}, models.Point{X: 2, Y: 2})
	require.NoError(t, err)
	require.NotEmpty(t, got.Paths)
	assert.Empty(t, got.SimID)

	first := got.Paths[0]
	assert.Equal(t, models.Point{X: 0, Y: 0}, first.Path[0])
	assert.Equal(t, models.Point{X: 2, Y: 2}, first.Path[len(first.Path)-1])
	assert.NotContains(t, first.Path, models.Point{X: 1, Y: 1})
}

func TestRoutesRejectsBadGrid(t *testing.T) {
	svc := New(nil, logger.Nop())

	_, err := svc.Routes(context.Background(), [][]int8{{0, 0}, {0}}, models.Point{}, models.Point{X: 1, Y: 1})
	assert.ErrorIs(t, err, types.ErrInvalidGrid)
}

func TestRoutesWithoutFrame(t *testing.T) {
	svc := New(simulation.NewStore(), logger.Nop())

	_, err := svc.Routes(context.Background(), nil, models.Point{}, models.Point{X: 1, Y: 1})
	assert.ErrorIs(t, err, types.ErrNoFrame)

	_, err = New(nil, logger.Nop()).Placement(context.Background(), 3)
	assert.ErrorIs(t, err, types.ErrNoFrame)
}

func TestRoutesOnLatestFrame(t *testing.T) {
	sim, err := simulation.New(simulation.Config{GridSize: 20, People: 10, ObstacleRatio: 0.001, Seed: 7})
	require.NoError(t, err)
	sim.Step()

	store := simulation.NewStore()
	store.Put(sim.Frame())

	frame, _ := store.Latest()
	start, goal := firstEmpty(frame, false), firstEmpty(frame, true)

	got, err := New(store, logger.Nop()).Routes(context.Background(), nil, start, goal)
	require.NoError(t, err)
	assert.Equal(t, sim.ID(), got.SimID)
	assert.Equal(t, 1, got.Step)
	assert.NotEmpty(t, got.Paths)
}

func TestPlacementOnLatestFrame(t *testing.T) {
	sim, err := simulation.New(simulation.Config{GridSize: 50, People: 100, Seed: 1})
	require.NoError(t, err)
	for range 30 {
		sim.Step()
	}

	store := simulation.NewStore()
	store.Put(sim.Frame())

	got, err := New(store, logger.Nop()).Placement(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Units)
	assert.Equal(t, 30, got.Step)
	assert.LessOrEqual(t, len(got.Placements), 4)
	for _, p := range got.Placements {
		assert.GreaterOrEqual(t, p.Resources, 1.0)
		assert.LessOrEqual(t, p.Resources, 10.0)
	}
}

// firstEmpty scans from the top-left corner, or from the bottom-right when reverse is set.
func firstEmpty(f *models.Frame, reverse bool) models.Point {
	n := f.Size * f.Size
	for k := range n {
		i := k
		if reverse {
			i = n - 1 - k
		}
		if f.Cells[i] == models.CellEmpty {
			return models.Point{X: i / f.Size, Y: i % f.Size}
		}
	}
	return models.Point{}
}

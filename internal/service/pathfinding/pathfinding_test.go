package pathfinding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

func emptyGrid(n int) Grid {
	return Grid{Size: n, Cells: make([]int8, n*n)}
}

func pt(x, y int) models.Point { return models.Point{X: x, Y: y} }

// wallGrid has an obstacle column at y=2 with a gap on the bottom row.
func wallGrid() Grid {
	g := emptyGrid(5)
	for x := 0; x < 4; x++ {
		g.Cells[x*5+2] = models.CellObstacle
	}
	return g
}

func TestFromRows(t *testing.T) {
	g, err := FromRows([][]int8{{0, 1}, {-1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Size)
	assert.Equal(t, []int8{0, 1, -1, 0}, g.Cells)

	_, err = FromRows([][]int8{{0, 1}, {0}})
	assert.ErrorIs(t, err, types.ErrInvalidGrid)

	_, err = FromRows([][]int8{{0, 5}, {0, 0}})
	assert.ErrorIs(t, err, types.ErrInvalidGrid)

	_, err = FromRows(nil)
	assert.ErrorIs(t, err, types.ErrInvalidGrid)
}

func TestDensityGrid(t *testing.T) {
	g := emptyGrid(7)
	g.Cells[3*7+3] = models.CellPerson
	g.Cells[0] = models.CellObstacle

	d := DensityGrid(g, 3)

	assert.Equal(t, -1.0, d[0])
	assert.InDelta(t, 4.0, d[3*7+3], 1e-9)
	assert.InDelta(t, 3.0, d[3*7+4], 1e-9)
	assert.InDelta(t, 1.0+(3-math.Sqrt2), d[4*7+4], 1e-9)
	assert.InDelta(t, 1.0, d[3*7+6], 1e-9)
	assert.InDelta(t, 1.0, d[6*7+6], 1e-9)
}

func TestDensityGridIsCapped(t *testing.T) {
	g := emptyGrid(5)
	for i := range g.Cells {
		g.Cells[i] = models.CellPerson
	}
	for _, v := range DensityGrid(g, 3) {
		assert.LessOrEqual(t, v, 12.0)
	}
	assert.Equal(t, 12.0, DensityGrid(g, 3)[12])
}

func TestFindPathStraight(t *testing.T) {
	g := emptyGrid(5)
	p, err := FindPath(pt(0, 0), pt(0, 4), g, DensityGrid(g, 3), math.Sqrt2)
	require.NoError(t, err)

	assert.Equal(t, []models.Point{pt(0, 0), pt(0, 1), pt(0, 2), pt(0, 3), pt(0, 4)}, p.Path)
	assert.InDelta(t, 4.0, p.Cost, 1e-9)
	assert.Positive(t, p.Explored)
}

func TestFindPathDiagonal(t *testing.T) {
	g := emptyGrid(5)
	p, err := FindPath(pt(0, 0), pt(4, 4), g, DensityGrid(g, 3), math.Sqrt2)
	require.NoError(t, err)

	assert.Len(t, p.Path, 5)
	assert.InDelta(t, 4*math.Sqrt2, p.Cost, 1e-9)
}

func TestFindPathAroundWall(t *testing.T) {
	g := wallGrid()
	p, err := FindPath(pt(0, 0), pt(0, 4), g, DensityGrid(g, 3), math.Sqrt2)
	require.NoError(t, err)

	assert.Equal(t, pt(0, 0), p.Path[0])
	assert.Equal(t, pt(0, 4), p.Path[len(p.Path)-1])
	assert.Contains(t, p.Path, pt(4, 2))
	for i, c := range p.Path {
		assert.True(t, g.walkable(c), "cell %v is blocked", c)
		if i > 0 {
			prev := p.Path[i-1]
			assert.LessOrEqual(t, abs(c.X-prev.X), 1)
			assert.LessOrEqual(t, abs(c.Y-prev.Y), 1)
		}
	}
}

func TestFindPathAvoidsCrowd(t *testing.T) {
	g := emptyGrid(9)
	g.Cells[4*9+4] = models.CellPerson

	p, err := FindPath(pt(4, 0), pt(4, 8), g, DensityGrid(g, 3), math.Sqrt2)
	require.NoError(t, err)
	assert.NotContains(t, p.Path, pt(4, 4))
}

func TestFindPathInvalidEndpoints(t *testing.T) {
	g := wallGrid()
	d := DensityGrid(g, 3)

	_, err := FindPath(pt(0, 2), pt(0, 4), g, d, math.Sqrt2)
	assert.ErrorIs(t, err, types.ErrNoPath)

	_, err = FindPath(pt(0, 0), pt(9, 9), g, d, math.Sqrt2)
	assert.ErrorIs(t, err, types.ErrNoPath)

	_, err = FindPath(pt(-1, 0), pt(0, 4), g, d, math.Sqrt2)
	assert.ErrorIs(t, err, types.ErrNoPath)
}

func TestFindPathUnreachable(t *testing.T) {
	g := wallGrid()
	g.Cells[4*5+2] = models.CellObstacle

	p, err := FindPath(pt(0, 0), pt(0, 4), g, DensityGrid(g, 3), math.Sqrt2)
	assert.ErrorIs(t, err, types.ErrNoPath)
	assert.Empty(t, p.Path)
	assert.Equal(t, 10, p.Explored)
}

func TestFindAlternatives(t *testing.T) {
	g := emptyGrid(12)
	for x := 3; x < 9; x++ {
		g.Cells[x*12+6] = models.CellPerson
	}

	paths, err := FindAlternatives(pt(6, 0), pt(6, 11), g)
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	assert.LessOrEqual(t, len(paths), 3)
	assert.Equal(t, StrategyDensityAvoiding, paths[0].Strategy)

	for i, p := range paths {
		assert.Equal(t, pt(6, 0), p.Path[0])
		assert.Equal(t, pt(6, 11), p.Path[len(p.Path)-1])
		assert.NotEmpty(t, p.Smoothed)
		for j := range i {
			assert.NotEqual(t, paths[j].Path, p.Path)
		}
	}
}

func TestFindAlternativesInvalidStart(t *testing.T) {
	_, err := FindAlternatives(pt(-1, 0), pt(2, 2), emptyGrid(3))
	assert.ErrorIs(t, err, types.ErrNoPath)
}

func TestSmoothOpenGrid(t *testing.T) {
	g := emptyGrid(5)
	path := []models.Point{pt(0, 0), pt(0, 1), pt(1, 2), pt(0, 3), pt(0, 4)}
	assert.Equal(t, []models.Point{pt(0, 0), pt(0, 4)}, Smooth(path, g))
}

func TestSmoothKeepsCorners(t *testing.T) {
	g := wallGrid()
	p, err := FindPath(pt(0, 0), pt(0, 4), g, DensityGrid(g, 3), math.Sqrt2)
	require.NoError(t, err)

	smoothed := Smooth(p.Path, g)
	assert.Less(t, len(smoothed), len(p.Path))
	assert.Equal(t, p.Path[0], smoothed[0])
	assert.Equal(t, p.Path[len(p.Path)-1], smoothed[len(smoothed)-1])
	for i := 1; i < len(smoothed); i++ {
		assert.True(t, LineOfSight(smoothed[i-1], smoothed[i], g))
	}
}

func TestSmoothShortPath(t *testing.T) {
	path := []models.Point{pt(0, 0), pt(1, 1)}
	out := Smooth(path, emptyGrid(3))
	assert.Equal(t, path, out)
	out[0] = pt(2, 2)
	assert.Equal(t, pt(0, 0), path[0])
}

func TestLineOfSight(t *testing.T) {
	g := wallGrid()
	assert.False(t, LineOfSight(pt(0, 0), pt(0, 4), g))
	assert.True(t, LineOfSight(pt(4, 0), pt(4, 4), g))
	assert.False(t, LineOfSight(pt(0, 0), pt(5, 5), g))
	assert.True(t, LineOfSight(pt(1, 1), pt(1, 1), g))
}

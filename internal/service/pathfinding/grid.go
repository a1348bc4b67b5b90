package pathfinding

import (
	"fmt"
	"math"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

const (
	DefaultInfluenceRadius = 3
	maxDensity             = 12.0
	// densityObstacle marks cells that cannot be entered.
	densityObstacle = -1.0
)

// Grid is a square occupancy grid, row-major.
type Grid struct {
	Size  int
	Cells []int8
}

// FromFrame builds a grid over the cells of a simulation frame.
func FromFrame(f *models.Frame) Grid {
	return Grid{Size: f.Size, Cells: f.Cells}
}

// FromRows builds a grid from a square matrix of cell values.
func FromRows(rows [][]int8) (Grid, error) {
	n := len(rows)
	if n == 0 {
		return Grid{}, fmt.Errorf("%w: empty grid", types.ErrInvalidGrid)
	}

	g := Grid{Size: n, Cells: make([]int8, 0, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return Grid{}, fmt.Errorf("%w: row %d has %d cells, want %d", types.ErrInvalidGrid, i, len(row), n)
		}
		for j, c := range row {
			if c != models.CellEmpty && c != models.CellPerson && c != models.CellObstacle {
				return Grid{}, fmt.Errorf("%w: unknown cell value %d at (%d,%d)", types.ErrInvalidGrid, c, i, j)
			}
		}
		g.Cells = append(g.Cells, row...)
	}
	return g, nil
}

func (g Grid) inside(p models.Point) bool {
	return p.X >= 0 && p.X < g.Size && p.Y >= 0 && p.Y < g.Size
}

// walkable reports whether p is inside the grid and not an obstacle.
func (g Grid) walkable(p models.Point) bool {
	return g.inside(p) && g.Cells[p.X*g.Size+p.Y] != models.CellObstacle
}

// DensityGrid turns occupancy into a movement cost per cell. Every free cell costs 1
// plus 3 for each person standing on it, fading linearly to 0 at radius cells away.
// Costs are capped at 12; obstacles get -1.
func DensityGrid(g Grid, radius int) []float64 {
	if radius <= 0 {
		radius = DefaultInfluenceRadius
	}
	r := float64(radius)

	people := make([]models.Point, 0)
	for i, c := range g.Cells {
		if c == models.CellPerson {
			people = append(people, models.Point{X: i / g.Size, Y: i % g.Size})
		}
	}

	density := make([]float64, len(g.Cells))
	for i := range density {
		density[i] = 1
		if g.Cells[i] == models.CellObstacle {
			density[i] = densityObstacle
		}
	}

	for _, p := range people {
		for x := max(0, p.X-radius); x <= min(g.Size-1, p.X+radius); x++ {
			for y := max(0, p.Y-radius); y <= min(g.Size-1, p.Y+radius); y++ {
				idx := x*g.Size + y
				if density[idx] == densityObstacle {
					continue
				}
				d := math.Hypot(float64(x-p.X), float64(y-p.Y))
				if d <= r {
					density[idx] += (r - d) / r * 3
				}
			}
		}
	}

	for i, v := range density {
		density[i] = min(v, maxDensity)
	}
	return density
}

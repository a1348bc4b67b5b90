package pathfinding

import (
	"container/heap"
	"fmt"
	"math"
	"slices"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

const (
	StrategyDensityAvoiding = "Density Avoiding"
	StrategyEdgePreferring  = "Edge Preferring"
	StrategyDirectRoute     = "Direct Route"

	// edgeBand is how many cells from the border count as "near the edge".
	edgeBand     = 2
	edgeDiscount = 0.7
	directCost   = 1.1
)

var directions = [8][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// FindPath runs an 8-directional A* from start to goal. A step into a cell costs its
// density, times diagonalCost for diagonal moves.
func FindPath(start, goal models.Point, g Grid, density []float64, diagonalCost float64) (models.GridPath, error) {
	if !g.walkable(start) {
		return models.GridPath{}, fmt.Errorf("%w: invalid start (%d,%d)", types.ErrNoPath, start.X, start.Y)
	}
	if !g.walkable(goal) {
		return models.GridPath{}, fmt.Errorf("%w: invalid goal (%d,%d)", types.ErrNoPath, goal.X, goal.Y)
	}
	if len(density) != len(g.Cells) {
		return models.GridPath{}, fmt.Errorf("%w: density grid does not match the grid", types.ErrInvalidGrid)
	}

	n := g.Size
	index := func(p models.Point) int { return p.X*n + p.Y }

	gScore := make([]float64, len(g.Cells))
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	cameFrom := make([]int, len(g.Cells))
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	closed := make([]bool, len(g.Cells))

	open := &openSet{}
	gScore[index(start)] = 0
	heap.Push(open, &node{p: start, f: heuristic(start, goal)})

	explored := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		ci := index(cur.p)
		if closed[ci] {
			continue
		}
		closed[ci] = true
		explored++

		if cur.p == goal {
			return models.GridPath{
				Path:     reconstruct(cameFrom, ci, n),
				Cost:     gScore[ci],
				Explored: explored,
			}, nil
		}

		for _, d := range directions {
			next := models.Point{X: cur.p.X + d[0], Y: cur.p.Y + d[1]}
			if !g.walkable(next) {
				continue
			}
			ni := index(next)
			if closed[ni] {
				continue
			}

			step := 1.0
			if d[0] != 0 && d[1] != 0 {
				step = diagonalCost
			}
			tentative := gScore[ci] + step*density[ni]
			if tentative < gScore[ni] {
				gScore[ni] = tentative
				cameFrom[ni] = ci
				heap.Push(open, &node{p: next, f: tentative + heuristic(next, goal)})
			}
		}
	}

	return models.GridPath{Explored: explored}, types.ErrNoPath
}

// FindAlternatives finds up to three distinct routes with different strategies.
func FindAlternatives(start, goal models.Point, g Grid) ([]models.GridPath, error) {
	density := DensityGrid(g, DefaultInfluenceRadius)

	first, err := FindPath(start, goal, g, density, math.Sqrt2)
	if err != nil {
		return nil, err
	}
	first.Strategy = StrategyDensityAvoiding
	paths := []models.GridPath{first}

	edge := slices.Clone(density)
	for i, v := range edge {
		if v == densityObstacle {
			continue
		}
		x, y := i/g.Size, i%g.Size
		if min(x, y, g.Size-1-x, g.Size-1-y) <= edgeBand {
			edge[i] = v * edgeDiscount
		}
	}
	if p, err := FindPath(start, goal, g, edge, math.Sqrt2); err == nil && !samePath(p.Path, first.Path) {
		p.Strategy = StrategyEdgePreferring
		paths = append(paths, p)
	}

	if p, err := FindPath(start, goal, g, density, directCost); err == nil && !seen(paths, p.Path) {
		p.Strategy = StrategyDirectRoute
		paths = append(paths, p)
	}

	for i := range paths {
		paths[i].Smoothed = Smooth(paths[i].Path, g)
	}
	return paths, nil
}

func heuristic(a, b models.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func reconstruct(cameFrom []int, end, n int) []models.Point {
	var path []models.Point
	for i := end; i != -1; i = cameFrom[i] {
		path = append(path, models.Point{X: i / n, Y: i % n})
	}
	slices.Reverse(path)
	return path
}

func samePath(a, b []models.Point) bool {
	return slices.Equal(a, b)
}

func seen(paths []models.GridPath, p []models.Point) bool {
	for _, existing := range paths {
		if samePath(existing.Path, p) {
			return true
		}
	}
	return false
}

type node struct {
	p   models.Point
	f   float64
	seq int
}

// openSet is a min-heap on f; equal f values pop in insertion order.
type openSet struct {
	items []*node
	seq   int
}

func (s *openSet) Len() int { return len(s.items) }

func (s *openSet) Less(i, j int) bool {
	if s.items[i].f == s.items[j].f {
		return s.items[i].seq < s.items[j].seq
	}
	return s.items[i].f < s.items[j].f
}

func (s *openSet) Swap(i, j int) { s.items[i], s.items[j] = s.items[j], s.items[i] }

func (s *openSet) Push(x any) {
	n := x.(*node)
	n.seq = s.seq
	s.seq++
	s.items = append(s.items, n)
}

func (s *openSet) Pop() any {
	old := s.items
	n := old[len(old)-1]
	old[len(old)-1] = nil
	s.items = old[:len(old)-1]
	return n
}

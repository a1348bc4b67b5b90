package pathfinding

import (
	"slices"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

// Smooth drops waypoints that can be skipped along a straight, obstacle-free line.
func Smooth(path []models.Point, g Grid) []models.Point {
	if len(path) <= 2 {
		return slices.Clone(path)
	}

	out := []models.Point{path[0]}
	i := 0
	for i < len(path)-1 {
		next := i + 1
		for j := len(path) - 1; j > i; j-- {
			if LineOfSight(path[i], path[j], g) {
				next = j
				break
			}
		}
		out = append(out, path[next])
		i = next
	}
	return out
}

// LineOfSight walks the Bresenham line from a to b and fails on the first cell that
// is outside the grid or an obstacle.
func LineOfSight(a, b models.Point, g Grid) bool {
	dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
	sx, sy := 1, 1
	if b.X < a.X {
		sx = -1
	}
	if b.Y < a.Y {
		sy = -1
	}

	x, y := a.X, a.Y
	e := dx - dy
	for {
		if !g.walkable(models.Point{X: x, Y: y}) {
			return false
		}
		if x == b.X && y == b.Y {
			return true
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x += sx
		}
		if e2 < dx {
			e += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

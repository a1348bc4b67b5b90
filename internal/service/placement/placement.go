package placement

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

const (
	DefaultUnits      = 5
	DefaultMinSpacing = 30.0
	// candidatePercentile is the heat percentile a border cell must exceed.
	candidatePercentile = 60
	minVoronoiUnits     = 4
)

var neighbours4 = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

type candidate struct {
	p     models.Point
	value float64
}

// Place picks up to units positions on and just around cluster borders, hottest first, keeping them
// at least minSpacing cells apart. When that leaves units unplaced, a second pass
// accepts half the spacing.
func Place(heat []float64, size int, clusters [][]models.Point, units int, minSpacing float64) []models.Point {
	if units <= 0 || len(clusters) == 0 {
		return nil
	}
	threshold := percentile(heat, candidatePercentile)

	var candidates []candidate
	for _, cluster := range clusters {
		for _, p := range border(cluster, size) {
			if v := heat[p.X*size+p.Y]; v > threshold {
				candidates = append(candidates, candidate{p: p, value: v})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].value > candidates[j].value
	})

	placed := make([]models.Point, 0, units)
	greedy := func(spacing float64) {
		for _, c := range candidates {
			if len(placed) >= units {
				return
			}
			if farFrom(c.p, placed, spacing) {
				placed = append(placed, c.p)
			}
		}
	}
	greedy(minSpacing)
	if len(placed) < units {
		greedy(minSpacing / 2)
	}
	return placed
}

// border returns the edge of a cluster on a size x size grid: the cluster cells with a
// 4-neighbour outside the cluster plus the in-grid cells just outside it. Cells beyond
// the grid edge count as outside. Points are in row-major order.
func border(cluster []models.Point, size int) []models.Point {
	in := make(map[models.Point]struct{}, len(cluster))
	for _, p := range cluster {
		in[p] = struct{}{}
	}

	seen := make(map[models.Point]struct{})
	out := make([]models.Point, 0)
	add := func(p models.Point) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	for _, p := range cluster {
		for _, d := range neighbours4 {
			n := models.Point{X: p.X + d[0], Y: p.Y + d[1]}
			if _, ok := in[n]; ok {
				continue
			}
			add(p)
			if n.X >= 0 && n.X < size && n.Y >= 0 && n.Y < size {
				add(n)
			}
		}
	}

	slices.SortFunc(out, func(a, b models.Point) int {
		if a.X != b.X {
			return cmp.Compare(a.X, b.X)
		}
		return cmp.Compare(a.Y, b.Y)
	})
	return out
}

func farFrom(p models.Point, placed []models.Point, spacing float64) bool {
	for _, q := range placed {
		if q == p || cellDistance(p, q) < spacing {
			return false
		}
	}
	return true
}

// Allocate splits the grid between positions by nearest position and gives each a
// resource weight in [1, 10] proportional to the heat it covers. With fewer than
// four positions every unit gets weight 1.
func Allocate(heat []float64, size int, positions []models.Point) []models.Placement {
	out := make([]models.Placement, len(positions))
	for i, p := range positions {
		out[i] = models.Placement{Point: p, Resources: 1}
	}
	if len(positions) < minVoronoiUnits {
		return out
	}

	sums := make([]float64, len(positions))
	for i, v := range heat {
		cell := models.Point{X: i / size, Y: i % size}
		nearest, best := 0, math.Inf(1)
		for k, p := range positions {
			if d := cellDistance(cell, p); d < best {
				nearest, best = k, d
			}
		}
		sums[nearest] += v
	}

	top := slices.Max(sums)
	if top <= 0 {
		return out
	}
	for i, s := range sums {
		out[i].Resources = s/top*9 + 1
	}
	return out
}

// Plan runs the whole placement pipeline on a heat grid.
func Plan(heat []float64, size, units int) []models.Placement {
	clusters := Clusters(heat, size, DefaultEps, DefaultMinSamples)
	positions := Place(heat, size, clusters, units, DefaultMinSpacing)
	return Allocate(heat, size, positions)
}

func cellDistance(a, b models.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// percentile uses linear interpolation between the closest ranks.
func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	rank := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

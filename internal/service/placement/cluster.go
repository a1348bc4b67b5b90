package placement

import (
	"math"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

const (
	DefaultEps        = 10.0
	DefaultMinSamples = 20
)

const (
	unvisited = 0
	noise     = -1
)

// Clusters groups the cells hotter than the grid mean with DBSCAN. A cell is a core
// cell when at least minSamples hot cells, itself included, lie within eps of it.
// Noise cells are dropped. Clusters are returned in row-major discovery order.
func Clusters(heat []float64, size int, eps float64, minSamples int) [][]models.Point {
	if size == 0 || len(heat) != size*size {
		return nil
	}

	var mean float64
	for _, v := range heat {
		mean += v
	}
	mean /= float64(len(heat))

	// hot[cell] is the index into points, or -1
	hot := make([]int, len(heat))
	points := make([]models.Point, 0)
	for i, v := range heat {
		hot[i] = -1
		if v > mean {
			hot[i] = len(points)
			points = append(points, models.Point{X: i / size, Y: i % size})
		}
	}
	if len(points) == 0 {
		return nil
	}

	reach := int(math.Floor(eps))
	neighbours := func(p models.Point) []int {
		var out []int
		for x := max(0, p.X-reach); x <= min(size-1, p.X+reach); x++ {
			for y := max(0, p.Y-reach); y <= min(size-1, p.Y+reach); y++ {
				j := hot[x*size+y]
				if j < 0 {
					continue
				}
				if math.Hypot(float64(x-p.X), float64(y-p.Y)) <= eps {
					out = append(out, j)
				}
			}
		}
		return out
	}

	labels := make([]int, len(points))
	cluster := 0
	for i, p := range points {
		if labels[i] != unvisited {
			continue
		}
		seeds := neighbours(p)
		if len(seeds) < minSamples {
			labels[i] = noise
			continue
		}

		cluster++
		labels[i] = cluster
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == noise {
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			if more := neighbours(points[j]); len(more) >= minSamples {
				seeds = append(seeds, more...)
			}
		}
	}

	out := make([][]models.Point, cluster)
	for i, l := range labels {
		if l > 0 {
			out[l-1] = append(out[l-1], points[i])
		}
	}
	return out
}

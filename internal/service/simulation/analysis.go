package simulation

import (
	"fmt"
	"math"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
)

const (
	DefaultBlurSigma = 1.5
	// CellMeters is the ground size of one grid cell when frames are projected onto a map.
	CellMeters       = 20.0
)

// Blur applies a separable Gaussian filter to a size x size grid. The kernel is
// truncated at 4 sigma and borders are mirrored (d c b a | a b c d).
func Blur(values []float64, size int, sigma float64) []float64 {
	out := append([]float64(nil), values...)
	if sigma <= 0 || size == 0 {
		return out
	}

	radius := int(4*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	tmp := make([]float64, len(values))
	// rows
	for x := range size {
		for y := range size {
			var acc float64
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * values[x*size+reflect(y+k, size)]
			}
			tmp[x*size+y] = acc
		}
	}
	// columns
	for x := range size {
		for y := range size {
			var acc float64
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * tmp[reflect(x+k, size)*size+y]
			}
			out[x*size+y] = acc
		}
	}
	return out
}

func reflect(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// Accuracy compares a predicted grid with the real one. prev is the real grid of
// the previous step and may be nil, in which case direction accuracy is 0.
func Accuracy(prev, actual, pred *models.Frame) (models.Accuracy, error) {
	if actual == nil || pred == nil || actual.Size != pred.Size || len(actual.Cells) != len(pred.Cells) {
		return models.Accuracy{}, fmt.Errorf("%w: frames must have the same size", types.ErrInvalidGrid)
	}
	size := actual.Size
	total := len(actual.Cells)

	var acc models.Accuracy

	matching, realPeople, shared := 0, 0, 0
	for i := range actual.Cells {
		if actual.Cells[i] == pred.Cells[i] {
			matching++
		}
		if actual.Cells[i] == models.CellPerson {
			realPeople++
			if pred.Cells[i] == models.CellPerson {
				shared++
			}
		}
	}
	if total > 0 {
		acc.Overall = float64(matching) / float64(total) * 100
	}
	if realPeople > 0 {
		acc.Position = float64(shared) / float64(realPeople) * 100
	}

	var clustering float64
	counted := 0
	for x := 1; x < size-1; x++ {
		for y := 1; y < size-1; y++ {
			if actual.At(x, y) != models.CellPerson {
				continue
			}
			counted++
			r := neighbours(actual, x, y)
			p := neighbours(pred, x, y)
			if r > 0 || p > 0 {
				clustering += 1 - math.Abs(float64(r-p))/math.Max(8, float64(max(r, p)))
			}
		}
	}
	if counted > 0 {
		acc.Clustering = clustering / float64(counted) * 100
	}

	if prev != nil && prev.Size == size {
		px, py := centroid(prev)
		rx, ry := centroid(actual)
		qx, qy := centroid(pred)
		rdx, rdy := rx-px, ry-py
		pdx, pdy := qx-px, qy-py
		if math.Abs(rdx)+math.Abs(rdy) > 0.1 {
			sim := 1 - (math.Abs(rdx-pdx)+math.Abs(rdy-pdy))/(math.Abs(rdx)+math.Abs(rdy)+1e-6)
			acc.Direction = math.Max(0, sim*100)
		}
	}

	return acc, nil
}

// neighbours counts people in the 3x3 block around (x, y), excluding the centre.
func neighbours(f *models.Frame, x, y int) int {
	n := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if (dx != 0 || dy != 0) && f.At(x+dx, y+dy) == models.CellPerson {
				n++
			}
		}
	}
	return n
}

func centroid(f *models.Frame) (float64, float64) {
	var sx, sy float64
	n := 0
	for i, c := range f.Cells {
		if c == models.CellPerson {
			sx += float64(i / f.Size)
			sy += float64(i % f.Size)
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sx / float64(n), sy / float64(n)
}

// ToZones aggregates a frame into blocks x blocks zones centred on origin, so
// simulated crowds can be planned and displayed like predicted ones.
func ToZones(frame *models.Frame, blocks int, origin models.Location) []models.Zone {
	if frame == nil || blocks <= 0 || frame.Validate() != nil {
		return nil
	}
	if blocks > frame.Size {
		blocks = frame.Size
	}

	type block struct {
		people, free   int
		sumRow, sumCol float64
		cells          int
	}
	agg := make([]block, blocks*blocks)

	for i, c := range frame.Cells {
		row, col := i/frame.Size, i%frame.Size
		b := &agg[(row*blocks/frame.Size)*blocks+col*blocks/frame.Size]
		b.cells++
		b.sumRow += float64(row)
		b.sumCol += float64(col)
		switch c {
		case models.CellPerson:
			b.people++
			b.free++
		case models.CellEmpty:
			b.free++
		}
	}

	busiest := 0
	for _, b := range agg {
		busiest = max(busiest, b.people)
	}

	half := float64(frame.Size-1) / 2
	blockMeters := float64(frame.Size) / float64(blocks) * CellMeters

	zones := make([]models.Zone, 0, len(agg))
	for i, b := range agg {
		if b.cells == 0 {
			continue
		}
		density := 0.0
		if busiest > 0 {
			density = float64(b.people) / float64(busiest) * 100
		}

		row := b.sumRow / float64(b.cells)
		col := b.sumCol / float64(b.cells)
		lat, lng := geocalc.Offset(origin.Lat, origin.Lng, (half-row)*CellMeters, (col-half)*CellMeters)

		r, c := i/blocks, i%blocks
		zones = append(zones, models.Zone{
			ID:              fmt.Sprintf("sim_%d_%d", r, c),
			Lat:             lat,
			Lng:             lng,
			Density:         math.Round(density*10) / 10,
			Radius:          blockMeters / 2,
			RiskLevel:       RiskFor(density),
			AreaName:        fmt.Sprintf("Sector %d-%d", r+1, c+1),
			CurrentCapacity: float64(b.people),
			MaxCapacity:     float64(b.free),
		})
	}
	return zones
}

// RiskFor maps a 0..100 density to a risk level.
func RiskFor(density float64) types.RiskLevel {
	switch {
	case density >= 90:
		return types.RiskCritical
	case density >= 75:
		return types.RiskHigh
	case density >= 50:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

func pt(x, y int) models.Point { return models.Point{X: x, Y: y} }

// twoBlocks is a 30x30 grid with two hot 6x6 blocks far apart and one stray hot cell.
func twoBlocks() ([]float64, int) {
	const size = 30
	heat := make([]float64, size*size)
	for x := 2; x < 8; x++ {
		for y := 2; y < 8; y++ {
			heat[x*size+y] = 10
		}
	}
	for x := 20; x < 26; x++ {
		for y := 20; y < 26; y++ {
			heat[x*size+y] = 10
		}
	}
	heat[0*size+29] = 10
	return heat, size
}

func TestClusters(t *testing.T) {
	heat, size := twoBlocks()

	clusters := Clusters(heat, size, DefaultEps, DefaultMinSamples)
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0], 36)
	assert.Len(t, clusters[1], 36)
	assert.Equal(t, pt(2, 2), clusters[0][0])
	assert.NotContains(t, clusters[0], pt(0, 29))
	assert.NotContains(t, clusters[1], pt(0, 29))
}

func TestClustersUniformHeat(t *testing.T) {
	heat := make([]float64, 100)
	for i := range heat {
		heat[i] = 4
	}
	assert.Empty(t, Clusters(heat, 10, DefaultEps, DefaultMinSamples))
	assert.Nil(t, Clusters(heat, 9, DefaultEps, DefaultMinSamples))
}

func TestClustersSmallMinSamples(t *testing.T) {
	heat, size := twoBlocks()
	clusters := Clusters(heat, size, DefaultEps, 1)
	assert.Len(t, clusters, 3)
}

func TestBorder(t *testing.T) {
	var cluster []models.Point
	for x := 4; x < 7; x++ {
		for y := 4; y < 7; y++ {
			cluster = append(cluster, pt(x, y))
		}
	}
	b := border(cluster, 10)
	assert.Len(t, b, 20, "8 edge cells and 12 cells around them")
	assert.NotContains(t, b, pt(5, 5))
	assert.Contains(t, b, pt(3, 5))
	assert.Contains(t, b, pt(7, 4))
	assert.NotContains(t, b, pt(3, 3), "diagonal cells are not adjacent")
	assert.Equal(t, pt(3, 4), b[0])

	assert.Equal(t, []models.Point{pt(0, 0), pt(0, 1), pt(1, 0)}, border([]models.Point{pt(0, 0)}, 10))
}

func TestPlaceUsesCellsAroundCluster(t *testing.T) {
	const size = 10
	heat := make([]float64, size*size)
	for i := range heat {
		heat[i] = 2
	}
	heat[4*size+4] = 1
	heat[3*size+4] = 9

	placed := Place(heat, size, [][]models.Point{{pt(4, 4)}}, 1, DefaultMinSpacing)
	assert.Equal(t, []models.Point{pt(3, 4)}, placed)
}

func TestPlaceRespectsSpacing(t *testing.T) {
	heat, size := twoBlocks()
	clusters := Clusters(heat, size, DefaultEps, DefaultMinSamples)

	// (22,25) is the first border cell of the second block at least 30 cells from (2,2)
	placed := Place(heat, size, clusters, 2, DefaultMinSpacing)
	assert.Equal(t, []models.Point{pt(2, 2), pt(22, 25)}, placed)

	// the relaxed pass cannot place more than one unit per block
	assert.Len(t, Place(heat, size, clusters, 10, DefaultMinSpacing), 2)
}

func TestPlacePrefersHotterBorder(t *testing.T) {
	heat, size := twoBlocks()
	heat[25*size+25] = 50
	clusters := Clusters(heat, size, DefaultEps, DefaultMinSamples)

	placed := Place(heat, size, clusters, 1, DefaultMinSpacing)
	assert.Equal(t, []models.Point{pt(25, 25)}, placed)
}

func TestPlaceNothingToDo(t *testing.T) {
	heat, size := twoBlocks()
	assert.Empty(t, Place(heat, size, nil, 3, DefaultMinSpacing))
	assert.Empty(t, Place(heat, size, [][]models.Point{{pt(2, 2)}}, 0, DefaultMinSpacing))
}

func TestAllocateFewUnits(t *testing.T) {
	heat, size := twoBlocks()
	out := Allocate(heat, size, []models.Point{pt(2, 2), pt(22, 25)})
	require.Len(t, out, 2)
	for _, p := range out {
		assert.Equal(t, 1.0, p.Resources)
	}
}

func TestAllocateVoronoi(t *testing.T) {
	const size = 10
	heat := make([]float64, size*size)
	heat[0] = 9
	heat[size*size-1] = 3

	out := Allocate(heat, size, []models.Point{pt(0, 0), pt(0, 9), pt(9, 0), pt(9, 9)})
	require.Len(t, out, 4)
	assert.InDelta(t, 10.0, out[0].Resources, 1e-9)
	assert.InDelta(t, 1.0, out[1].Resources, 1e-9)
	assert.InDelta(t, 1.0, out[2].Resources, 1e-9)
	assert.InDelta(t, 4.0, out[3].Resources, 1e-9)
	assert.Equal(t, pt(9, 9), out[3].Point)
}

func TestAllocateColdGrid(t *testing.T) {
	out := Allocate(make([]float64, 100), 10, []models.Point{pt(0, 0), pt(0, 9), pt(9, 0), pt(9, 9)})
	for _, p := range out {
		assert.Equal(t, 1.0, p.Resources)
	}
}

func TestPlan(t *testing.T) {
	heat, size := twoBlocks()
	out := Plan(heat, size, 2)
	require.Len(t, out, 2)
	assert.Equal(t, pt(2, 2), out[0].Point)
	assert.Empty(t, Plan(make([]float64, 100), 10, 3))
}

func TestPercentile(t *testing.T) {
	assert.InDelta(t, 3.4, percentile([]float64{5, 1, 3, 2, 4}, 60), 1e-9)
	assert.InDelta(t, 7.0, percentile([]float64{7}, 60), 1e-9)
	assert.Zero(t, percentile(nil, 60))
}

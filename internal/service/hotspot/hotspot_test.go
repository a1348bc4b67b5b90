package hotspot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
)

type fakeUpstream struct {
	enabled    bool
	predicted  []models.PredictedHotspot
	predictErr error
	live       []models.LiveHotspot
	liveErr    error
}

func (f *fakeUpstream) Enabled() bool { return f.enabled }

func (f *fakeUpstream) PredictHotspots(context.Context, int) ([]models.PredictedHotspot, error) {
	return f.predicted, f.predictErr
}

func (f *fakeUpstream) LiveHotspots(context.Context, float64, float64) ([]models.LiveHotspot, error) {
	return f.live, f.liveErr
}

type fakeFrames struct {
	frame *models.Frame
}

func (f *fakeFrames) Latest() (*models.Frame, bool) {
	return f.frame, f.frame != nil
}

func TestPredictRejectsBadTimeframes(t *testing.T) {
	svc := New(&fakeUpstream{}, nil, 0, logger.Nop())
	for _, m := range []int{0, 5, 15, 130, -10} {
		_, err := svc.Predict(context.Background(), m)
		assert.ErrorIs(t, err, types.ErrInvalidTimeframe, "minutes=%d", m)
	}
}

func TestPredictUsesUpstream(t *testing.T) {
	up := &fakeUpstream{
		enabled:   true,
		predicted: []models.PredictedHotspot{{Lat: 1, Lng: 2, Intensity: types.DensityHigh, Radius: 400}},
	}
	svc := New(up, nil, 0, logger.Nop())

	got, err := svc.Predict(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, types.SourceUpstream, got.Source)
	assert.Equal(t, 40, got.Minutes)
	assert.Equal(t, up.predicted, got.Hotspots)
}

func TestPredictFallback(t *testing.T) {
	svc := New(&fakeUpstream{enabled: true, predictErr: errors.New("503")}, nil, 0, logger.Nop())

	cases := map[int]int{10: 0, 20: 0, 30: 2, 50: 2, 60: 4, 120: 4}
	for minutes, want := range cases {
		got, err := svc.Predict(context.Background(), minutes)
		require.NoError(t, err)
		assert.Equal(t, types.SourceMock, got.Source)
		assert.NotNil(t, got.Hotspots)
		assert.Len(t, got.Hotspots, want, "minutes=%d", minutes)
	}

	got, err := svc.Predict(context.Background(), 60)
	require.NoError(t, err)
	assert.Equal(t, models.PredictedHotspot{Lat: 28.6328, Lng: 77.2197, Intensity: types.DensityHigh, Radius: 400}, got.Hotspots[0])
	assert.Equal(t, types.DensityLow, got.Hotspots[3].Intensity)
}

func TestPredictWithoutUpstream(t *testing.T) {
	svc := New(nil, nil, 0, logger.Nop())
	got, err := svc.Predict(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, types.SourceMock, got.Source)
}

func TestCrowdSamples(t *testing.T) {
	got := CrowdSamples()
	require.Len(t, got, 18)
	assert.Equal(t, "Connaught Place", got[0].Location)
	assert.Equal(t, 500, got[0].Radius)

	bands := map[types.DensityBand]int{}
	for _, s := range got {
		bands[s.Density]++
		assert.Equal(t, s.Density.Radius(), s.Radius)
	}
	assert.Equal(t, map[types.DensityBand]int{
		types.DensityHigh:    4,
		types.DensityMedium:  5,
		types.DensityLow:     5,
		types.DensityVeryLow: 4,
	}, bands)
}

func TestLiveValidatesCoordinates(t *testing.T) {
	svc := New(&fakeUpstream{}, nil, 0, logger.Nop())
	_, err := svc.Live(context.Background(), 91, 0)
	assert.ErrorIs(t, err, types.ErrInvalidCoordinates)
}

func TestLiveUsesUpstream(t *testing.T) {
	up := &fakeUpstream{enabled: true, live: []models.LiveHotspot{{Lat: 1, Lng: 1, Severity: 2, Radius: 200}}}
	svc := New(up, &fakeFrames{}, 0, logger.Nop())

	got, err := svc.Live(context.Background(), 28.6, 77.2)
	require.NoError(t, err)
	assert.Equal(t, up.live, got)
}

func TestLiveWithoutAnySource(t *testing.T) {
	svc := New(&fakeUpstream{enabled: true, liveErr: errors.New("down")}, &fakeFrames{}, 0, logger.Nop())

	got, err := svc.Live(context.Background(), 28.6, 77.2)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLiveFromSimulationFrame(t *testing.T) {
	const size = 10
	frame := &models.Frame{Size: size, Cells: make([]int8, size*size)}
	for _, idx := range []int{0, 1, 10, 11} {
		frame.Cells[idx] = models.CellPerson
	}
	frame.Cells[9*size+9] = models.CellPerson
	frame.Cells[9*size+8] = models.CellPerson

	svc := New(&fakeUpstream{}, &fakeFrames{frame: frame}, 5, logger.Nop())

	got, err := svc.Live(context.Background(), 28.6139, 77.209)
	require.NoError(t, err)
	require.Len(t, got, 2)

	severities := []int{got[0].Severity, got[1].Severity}
	assert.ElementsMatch(t, []int{3, 1}, severities)
	for _, h := range got {
		assert.InDelta(t, 20.0, h.Radius, 1e-9)
	}
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, 3, Severity(90))
	assert.Equal(t, 2, Severity(89.9))
	assert.Equal(t, 2, Severity(75))
	assert.Equal(t, 1, Severity(50))
	assert.Equal(t, 0, Severity(49))
}

func TestValidTimeframe(t *testing.T) {
	assert.True(t, ValidTimeframe(10))
	assert.True(t, ValidTimeframe(120))
	assert.False(t, ValidTimeframe(125))
}

package nearby

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

const (
	lat = 28.6139
	lng = 77.209
)

type fakeUpstream struct {
	enabled  bool
	services []models.EmergencyService
	err      error
}

func (f *fakeUpstream) Enabled() bool { return f.enabled }

func (f *fakeUpstream) NearbyServices(context.Context, float64, float64, float64) ([]models.EmergencyService, error) {
	return f.services, f.err
}

type fakeCatalog struct {
	services []models.EmergencyService
	err      error
}

func (f *fakeCatalog) List(context.Context) ([]models.EmergencyService, error) {
	return f.services, f.err
}

func names(services []models.EmergencyService) []string {
	out := make([]string, 0, len(services))
	for _, s := range services {
		out = append(out, s.Name)
	}
	return out
}

func TestSearchBuiltInCatalog(t *testing.T) {
	svc := New(nil, nil, logger.Nop())

	got, err := svc.Search(context.Background(), lat, lng, 1.5)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Community Center",
		"Public Library",
		"Fire Station",
		"City Police Station",
		"Bus Terminal",
		"Metro Station",
	}, names(got))

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].DistanceKm, got[i].DistanceKm)
	}
	assert.InDelta(t, 0.59, got[0].DistanceKm, 0.005)
}

func TestSearchSmallRadius(t *testing.T) {
	svc := New(nil, nil, logger.Nop())

	got, err := svc.Search(context.Background(), lat, lng, 0.7)
	require.NoError(t, err)
	assert.Equal(t, []string{"Community Center", "Public Library"}, names(got))

	got, err = svc.Search(context.Background(), lat, lng, 5)
	require.NoError(t, err)
	assert.Len(t, got, 8)
	assert.Equal(t, "Central Hospital", got[7].Name)
}

func TestSearchFarAway(t *testing.T) {
	svc := New(nil, nil, logger.Nop())
	got, err := svc.Search(context.Background(), 51.5, -0.12, 50)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchValidation(t *testing.T) {
	svc := New(nil, nil, logger.Nop())

	for _, r := range []float64{0, -1, 50.01} {
		_, err := svc.Search(context.Background(), lat, lng, r)
		assert.ErrorIs(t, err, types.ErrInvalidRadius, "radius=%v", r)
	}

	_, err := svc.Search(context.Background(), 95, lng, 1)
	assert.ErrorIs(t, err, types.ErrInvalidCoordinates)

	_, err = svc.Search(context.Background(), lat, lng, 50)
	assert.NoError(t, err)
}

func TestSearchPrefersUpstream(t *testing.T) {
	up := &fakeUpstream{enabled: true, services: []models.EmergencyService{
		{ID: 10, Name: "Far", Lat: 28.70, Lng: 77.209},
		{ID: 11, Name: "Near", Lat: 28.6140, Lng: 77.209},
	}}
	svc := New(up, &fakeCatalog{services: BuiltIn()}, logger.Nop())

	got, err := svc.Search(context.Background(), lat, lng, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Near"}, names(got))
}

func TestSearchFallsBackToCatalog(t *testing.T) {
	up := &fakeUpstream{enabled: true, err: errors.New("timeout")}
	catalog := &fakeCatalog{services: []models.EmergencyService{{ID: 1, Name: "Depot", Lat: lat, Lng: lng}}}
	svc := New(up, catalog, logger.Nop())

	got, err := svc.Search(context.Background(), lat, lng, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Depot"}, names(got))
	assert.Zero(t, got[0].DistanceKm)
}

func TestSearchCatalogFailure(t *testing.T) {
	svc := New(nil, &fakeCatalog{err: errors.New("conn refused")}, logger.Nop())

	_, err := svc.Search(context.Background(), lat, lng, 1)
	assert.ErrorIs(t, err, types.ErrDatabaseFailed)
}

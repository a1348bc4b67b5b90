package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/crowdguard/internal/adapter/locationiq"
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
)

type fakeHotspots struct {
	minutes  int
	lat, lng float64
}

func (f *fakeHotspots) Predict(_ context.Context, minutes int) (*models.HotspotPrediction, error) {
	f.minutes = minutes
	return &models.HotspotPrediction{Minutes: minutes, Source: types.SourceMock}, nil
}

func (f *fakeHotspots) CrowdSamples() []models.CrowdSample { return nil }

func (f *fakeHotspots) Live(_ context.Context, lat, lng float64) ([]models.LiveHotspot, error) {
	f.lat, f.lng = lat, lng
	return []models.LiveHotspot{}, nil
}

func TestPredictTimeframe(t *testing.T) {
	tests := []struct {
		query   string
		code    int
		minutes int
	}{
		{query: "", code: http.StatusOK, minutes: 30},
		{query: "?minutes=120", code: http.StatusOK, minutes: 120},
		{query: "?minutes=15", code: http.StatusUnprocessableEntity},
		{query: "?minutes=130", code: http.StatusUnprocessableEntity},
		{query: "?minutes=soon", code: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			s := &fakeHotspots{}
			rec := httptest.NewRecorder()
			NewHotspot(s, logger.Nop()).Predict(rec, httptest.NewRequest(http.MethodGet, "/v1/hotspots/predict"+tt.query, nil))

			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, tt.minutes, s.minutes)
			}
		})
	}
}

func TestLiveHotspotsValidation(t *testing.T) {
	tests := []struct {
		body string
		code int
	}{
		{body: `{"lat":51.5,"lng":-0.12}`, code: http.StatusOK},
		{body: `{"lat":0,"lng":0}`, code: http.StatusOK},
		{body: `{"lat":51.5}`, code: http.StatusUnprocessableEntity},
		{body: `{"lat":91,"lng":0}`, code: http.StatusUnprocessableEntity},
		{body: `{"lat":"north","lng":0}`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHotspot(&fakeHotspots{}, logger.Nop()).Live(rec, httptest.NewRequest(http.MethodPost, "/v1/hotspots/live", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

type fakeNearby struct {
	radius float64
}

func (f *fakeNearby) Search(_ context.Context, _, _, radiusKm float64) ([]models.EmergencyService, error) {
	f.radius = radiusKm
	return []models.EmergencyService{{ID: 1, Name: "St Thomas", DistanceKm: 0.4}}, nil
}

func TestNearbySearch(t *testing.T) {
	s := &fakeNearby{}
	rec := httptest.NewRecorder()
	NewNearby(s, logger.Nop()).Search(rec, httptest.NewRequest(http.MethodGet, "/v1/services/nearby?lat=51.5&lng=-0.12", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1.0, s.radius, 1e-9)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	for _, q := range []string{"?lat=51.5", "?lat=51.5&lng=-0.12&radius=0", "?lat=51.5&lng=-0.12&radius=51", "?lat=100&lng=0"} {
		rec = httptest.NewRecorder()
		NewNearby(s, logger.Nop()).Search(rec, httptest.NewRequest(http.MethodGet, "/v1/services/nearby"+q, nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, q)
	}
}

type fakeTravel struct {
	err error
}

func (f fakeTravel) Path(_ context.Context, source, destination string) (*models.TravelPath, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.TravelPath{Source: source, Destination: destination}, nil
}

func TestTravelPath(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		code int
	}{
		{name: "ok", body: `{"source":" Big Ben ","destination":"Tower Bridge"}`, code: http.StatusOK},
		{name: "blank source", body: `{"source":" ","destination":"Tower Bridge"}`, code: http.StatusUnprocessableEntity},
		{name: "unknown place", body: `{"source":"Nowhere","destination":"Tower Bridge"}`, err: locationiq.ErrLocationNotFound, code: http.StatusNotFound},
		{name: "two values", body: `{"source":"a","destination":"b"}{}`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewTravel(fakeTravel{err: tt.err}, logger.Nop()).Path(rec, httptest.NewRequest(http.MethodPost, "/v1/travel/path", strings.NewReader(tt.body)))

			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.code == http.StatusOK {
				assert.Equal(t, "Big Ben", decode(t, rec)["source"])
			}
		})
	}
}

type fakeGrid struct {
	rows  [][]int8
	units int
	err   error
}

func (f *fakeGrid) Routes(_ context.Context, rows [][]int8, start, goal models.Point) (*models.GridRoutes, error) {
	f.rows = rows
	if f.err != nil {
		return nil, f.err
	}
	return &models.GridRoutes{Paths: []models.GridPath{{Strategy: "shortest", Path: []models.Point{start, goal}}}}, nil
}

func (f *fakeGrid) Placement(_ context.Context, units int) (*models.UnitPlacement, error) {
	f.units = units
	if f.err != nil {
		return nil, f.err
	}
	return &models.UnitPlacement{Units: units}, nil
}

func TestGridRoutes(t *testing.T) {
	s := &fakeGrid{}
	rec := httptest.NewRecorder()
	NewGrid(s, logger.Nop()).Routes(rec, httptest.NewRequest(http.MethodPost, "/v1/grid/path",
		strings.NewReader(`{"grid":[[0,0],[0,0]],"start":[0,0],"goal":[1,1]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.rows, 2)

	rec = httptest.NewRecorder()
	NewGrid(s, logger.Nop()).Routes(rec, httptest.NewRequest(http.MethodPost, "/v1/grid/path",
		strings.NewReader(`{"start":[0],"goal":[1,1]}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	NewGrid(&fakeGrid{err: types.ErrNoFrame}, logger.Nop()).Routes(rec, httptest.NewRequest(http.MethodPost, "/v1/grid/path",
		strings.NewReader(`{"start":[0,0],"goal":[1,1]}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGridPlacementUnits(t *testing.T) {
	s := &fakeGrid{}
	rec := httptest.NewRecorder()
	NewGrid(s, logger.Nop()).Placement(rec, httptest.NewRequest(http.MethodGet, "/v1/placement?units=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, s.units)

	for _, q := range []string{"?units=0", "?units=21", "?units=x"} {
		rec = httptest.NewRecorder()
		NewGrid(s, logger.Nop()).Placement(rec, httptest.NewRequest(http.MethodGet, "/v1/placement"+q, nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, q)
	}
}

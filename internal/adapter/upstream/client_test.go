package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL:      srv.URL + "/",
		Timeout:      2 * time.Second,
		RetryMax:     1,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
}

func TestHeatmapPredictions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/heatmap-predictions", r.URL.Path)
		_, _ = io.WriteString(w, `{"zones":[{"id":"z1","lat":1.5,"lng":2.5,"density":72,"risk_level":"high","area_name":"Docks","current_capacity":10,"max_capacity":20}]}`)
	})

	zones, err := c.HeatmapPredictions(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "z1", zones[0].ID)
	assert.Equal(t, types.RiskHigh, zones[0].RiskLevel)
	assert.InDelta(t, 72.0, zones[0].Density, 1e-9)
	assert.InDelta(t, 20.0, zones[0].MaxCapacity, 1e-9)
}

func TestNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.PersonnelRecommendations(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "/api/personnel-recommendations", se.Endpoint)
}

func TestServerErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"redirections":[{"id":"redirect_a_b","estimated_crowd_size":120,"status":"active"}]}`)
	})

	plans, err := c.RedirectionPlan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, plans, 1)
	assert.Equal(t, types.RedirectionActive, plans[0].Status)
}

func TestPersistentServerErrorIsStatusError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.HeatmapPredictions(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())

	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "/api/heatmap-predictions", se.Endpoint)
}

func TestUndecodableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	})

	_, err := c.HeatmapPredictions(context.Background())
	require.Error(t, err)
}

func TestDisabledClient(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.Enabled())

	_, err := c.HeatmapPredictions(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamDisabled)
}

func TestConfirmDeploymentSendsPosition(t *testing.T) {
	var got models.RecommendedPosition
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/confirm-deployment", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	pos := models.RecommendedPosition{ID: "police_zone_1", Type: types.Police, Status: types.PositionConfirmed}
	require.NoError(t, c.ConfirmDeployment(context.Background(), pos))
	assert.Equal(t, pos, got)
}

func TestUpdateRedirectionStatusBody(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	require.NoError(t, c.UpdateRedirectionStatus(context.Background(), "redirect_a_b", types.RedirectionPaused))
	assert.Equal(t, map[string]string{"redirectionId": "redirect_a_b", "status": "paused"}, got)
}

func TestPredictHotspotsDefaultsRadius(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("minutes"))
		_, _ = io.WriteString(w, `{"hotspots":[{"lat":28.6,"lng":77.2,"intensity":"high"},{"lat":28.7,"lng":77.1,"intensity":"low","radius":150}]}`)
	})

	hs, err := c.PredictHotspots(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, types.DensityHigh, hs[0].Intensity)
	assert.Equal(t, models.DefaultPredictionRadius, hs[0].Radius)
	assert.Equal(t, 150, hs[1].Radius)
}

func TestLiveHotspots(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var loc models.Location
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&loc))
		assert.InDelta(t, 28.61, loc.Lat, 1e-9)
		_, _ = io.WriteString(w, `{"hotspots":[{"lat":28.62,"lng":77.21,"severity":3},{"lat":28.63,"lng":77.22,"severity":1,"radius":90}]}`)
	})

	hs, err := c.LiveHotspots(context.Background(), 28.61, 77.2)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, 3, hs[0].Severity)
	assert.InDelta(t, float64(models.DefaultHotspotRadius), hs[0].Radius, 1e-9)
	assert.InDelta(t, 90.0, hs[1].Radius, 1e-9)
}

func TestPathAcceptsBothPointFormats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Home", body["source"])
		assert.Equal(t, "Stadium", body["destination"])
		_, _ = io.WriteString(w, `{"path":[[28.61,77.2],{"lat":28.62,"lng":77.21,"intensity":0.95},{"lat":28.63,"lng":77.22}]}`)
	})

	points, err := c.Path(context.Background(), "Home", "Stadium")
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.InDelta(t, 28.61, points[0].Lat, 1e-9)
	assert.InDelta(t, 0.5, points[0].Intensity, 1e-9)
	assert.Equal(t, "moderate", points[0].Band)

	assert.InDelta(t, 0.95, points[1].Intensity, 1e-9)
	assert.Equal(t, "severe", points[1].Band)

	assert.InDelta(t, 0.5, points[2].Intensity, 1e-9)
}

func TestPathRejectsMalformedPoint(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"path":[[28.61]]}`)
	})

	_, err := c.Path(context.Background(), "a", "b")
	require.Error(t, err)
}

func TestNearbyServicesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "28.6139", q.Get("lat"))
		assert.Equal(t, "77.209", q.Get("lng"))
		assert.Equal(t, "1.5", q.Get("radius"))
		_, _ = io.WriteString(w, `[{"id":1,"name":"Central Hospital","lat":28.6129,"lng":77.229}]`)
	})

	services, err := c.NearbyServices(context.Background(), 28.6139, 77.209, 1.5)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Central Hospital", services[0].Name)
}

func TestRequestIDForwarded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `{"zones":[]}`)
	})

	ctx := types.WithRequestIDContext(context.Background(), "req-42")
	_, err := c.HeatmapPredictions(ctx)
	require.NoError(t, err)
}

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
	"github.com/hashicorp/go-retryablehttp"
)

var ErrUpstreamDisabled = errors.New("upstream api is not configured")

// StatusError is returned when the upstream API answers with a non-2xx status.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s responded with status %d", e.Endpoint, e.Code)
}

type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client talks to the prediction backend under /api.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

func New(cfg Config) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	// hand back the last response so an exhausted 5xx still maps to StatusError
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    rc,
	}
}

// Enabled reports whether a base URL was configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

func (c *Client) HeatmapPredictions(ctx context.Context) ([]models.Zone, error) {
	const op = "Client.HeatmapPredictions"

	var resp zonesResponse
	if err := c.do(ctx, http.MethodGet, "/api/heatmap-predictions", nil, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return resp.Zones, nil
}

func (c *Client) PersonnelRecommendations(ctx context.Context) ([]models.RecommendedPosition, error) {
	const op = "Client.PersonnelRecommendations"

	var resp recommendationsResponse
	if err := c.do(ctx, http.MethodGet, "/api/personnel-recommendations", nil, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return resp.Recommendations, nil
}

func (c *Client) RedirectionPlan(ctx context.Context) ([]models.RedirectionPlan, error) {
	const op = "Client.RedirectionPlan"

	var resp redirectionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/crowd-redirection-plan", nil, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return resp.Redirections, nil
}

// ConfirmDeployment forwards a confirmed position to the backend.
func (c *Client) ConfirmDeployment(ctx context.Context, pos models.RecommendedPosition) error {
	const op = "Client.ConfirmDeployment"

	if err := c.do(ctx, http.MethodPost, "/api/confirm-deployment", pos, nil); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (c *Client) UpdateRedirectionStatus(ctx context.Context, id string, status types.RedirectionStatus) error {
	const op = "Client.UpdateRedirectionStatus"

	body := statusUpdateRequest{RedirectionID: id, Status: status}
	if err := c.do(ctx, http.MethodPut, "/api/update-redirection-status", body, nil); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (c *Client) PredictHotspots(ctx context.Context, minutes int) ([]models.PredictedHotspot, error) {
	const op = "Client.PredictHotspots"

	path := "/api/predict-hotspots?minutes=" + strconv.Itoa(minutes)

	var resp predictedHotspotsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	for i := range resp.Hotspots {
		if resp.Hotspots[i].Radius <= 0 {
			resp.Hotspots[i].Radius = models.DefaultPredictionRadius
		}
	}
	return resp.Hotspots, nil
}

// LiveHotspots returns the current hotspots around a tracked position.
func (c *Client) LiveHotspots(ctx context.Context, lat, lng float64) ([]models.LiveHotspot, error) {
	const op = "Client.LiveHotspots"

	var resp liveHotspotsResponse
	if err := c.do(ctx, http.MethodPost, "/api/get-hotspots", models.Location{Lat: lat, Lng: lng}, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	for i := range resp.Hotspots {
		if resp.Hotspots[i].Radius <= 0 {
			resp.Hotspots[i].Radius = models.DefaultHotspotRadius
		}
	}
	return resp.Hotspots, nil
}

// Path asks the backend for a crowd-aware path between two place names.
func (c *Client) Path(ctx context.Context, source, destination string) ([]models.PathPoint, error) {
	const op = "Client.Path"

	body := pathRequest{Source: source, Destination: destination}

	var resp pathResponse
	if err := c.do(ctx, http.MethodPost, "/api/get-path", body, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	points := make([]models.PathPoint, 0, len(resp.Path))
	for _, p := range resp.Path {
		points = append(points, models.PathPoint{
			Lat:       p.Lat,
			Lng:       p.Lng,
			Intensity: p.Intensity,
			Band:      models.IntensityBand(p.Intensity),
		})
	}
	return points, nil
}

func (c *Client) NearbyServices(ctx context.Context, lat, lng, radiusKm float64) ([]models.EmergencyService, error) {
	const op = "Client.NearbyServices"

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))

	var services []models.EmergencyService
	if err := c.do(ctx, http.MethodGet, "/api/nearby-services?"+q.Encode(), nil, &services); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return services, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (err error) {
	if !c.Enabled() {
		return ErrUpstreamDisabled
	}

	endpoint, _, _ := strings.Cut(path, "?")
	start := time.Now()
	defer func() {
		metrics.RecordUpstream(endpoint, err, time.Since(start))
	}()

	var reqBody any
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := types.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionExternalServiceFailed), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

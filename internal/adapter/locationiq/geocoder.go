package locationiq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
)

const DefaultBaseURL = "https://us1.locationiq.com"

var ErrLocationNotFound = errors.New("location not found")

type Config struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// Geocoder resolves place names to coordinates with the LocationIQ search API.
type Geocoder struct {
	apiKey  string
	baseURL string
	http    *retryablehttp.Client
}

func New(cfg Config) *Geocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = cfg.RetryMax
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	return &Geocoder{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    rc,
	}
}

// Enabled reports whether an API key was configured.
func (g *Geocoder) Enabled() bool {
	return g != nil && g.apiKey != ""
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// GetLocation returns the coordinates of the best match for place.
func (g *Geocoder) GetLocation(ctx context.Context, place string) (loc models.Location, err error) {
	const op = "Geocoder.GetLocation"
	ctx = wrap.WithAction(ctx, "locationiq_get_location")

	start := time.Now()
	defer func() { metrics.RecordUpstream("locationiq/search", err, time.Since(start)) }()

	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return loc, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	resp, err := g.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return loc, wrap.Error(ctx, fmt.Errorf("%s: request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return loc, wrap.Error(ctx, fmt.Errorf("%s: %q: %w", op, place, ErrLocationNotFound))
	}
	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return loc, wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var results []searchResult
	if err = json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return loc, wrap.Error(ctx, fmt.Errorf("%s: decode LocationIQ response: %w", op, err))
	}
	if len(results) == 0 {
		return loc, wrap.Error(ctx, fmt.Errorf("%s: %q: %w", op, place, ErrLocationNotFound))
	}

	if loc.Lat, err = strconv.ParseFloat(results[0].Lat, 64); err != nil {
		return loc, wrap.Error(ctx, fmt.Errorf("%s: parse latitude: %w", op, err))
	}
	if loc.Lng, err = strconv.ParseFloat(results[0].Lon, 64); err != nil {
		return loc, wrap.Error(ctx, fmt.Errorf("%s: parse longitude: %w", op, err))
	}
	return loc, nil
}

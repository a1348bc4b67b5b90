package hotspot

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
	"github.com/Temutjin2k/crowdguard/internal/service/simulation"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
)

const (
	// DefaultBlocks is how many zones per side a simulation frame is split into.
	DefaultBlocks = 5

	minTimeframe  = 10
	maxTimeframe  = 120
	timeframeStep = 10
)

type Service struct {
	upstream Upstream
	frames   FrameSource
	blocks   int
	l        logger.Logger
}

func New(upstream Upstream, frames FrameSource, blocks int, l logger.Logger) *Service {
	if blocks <= 0 {
		blocks = DefaultBlocks
	}
	return &Service{
		upstream: upstream,
		frames:   frames,
		blocks:   blocks,
		l:        l,
	}
}

// ValidTimeframe reports whether minutes is a supported forecast horizon.
func ValidTimeframe(minutes int) bool {
	return minutes >= minTimeframe && minutes <= maxTimeframe && minutes%timeframeStep == 0
}

// Predict returns the hotspots expected in the given number of minutes.
func (s *Service) Predict(ctx context.Context, minutes int) (*models.HotspotPrediction, error) {
	if !ValidTimeframe(minutes) {
		return nil, wrap.Error(ctx, types.ErrInvalidTimeframe)
	}

	if s.upstreamOn() {
		hotspots, err := s.upstream.PredictHotspots(ctx, minutes)
		if err == nil {
			return &models.HotspotPrediction{
				Minutes:  minutes,
				Hotspots: nonNil(hotspots),
				Source:   types.SourceUpstream,
			}, nil
		}
		s.l.Warn(wrap.WithAction(ctx, types.ActionUpstreamFallback), "hotspot prediction failed, using fallback",
			"minutes", minutes,
			"error", err.Error(),
		)
	}
	metrics.FallbacksTotal.WithLabelValues("predicted_hotspots").Inc()

	return &models.HotspotPrediction{
		Minutes:  minutes,
		Hotspots: predictedAt(minutes),
		Source:   types.SourceMock,
	}, nil
}

func (s *Service) CrowdSamples() []models.CrowdSample {
	return CrowdSamples()
}

// Live returns the current hotspots around a location. Without the upstream API the
// latest simulation frame is projected around the caller; with neither the list is empty.
func (s *Service) Live(ctx context.Context, lat, lng float64) ([]models.LiveHotspot, error) {
	const op = "Service.Live"

	if !geocalc.ValidCoordinate(lat, lng) {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrInvalidCoordinates))
	}

	if s.upstreamOn() {
		hotspots, err := s.upstream.LiveHotspots(ctx, lat, lng)
		if err == nil {
			return nonNil(hotspots), nil
		}
		s.l.Debug(ctx, "live hotspots unavailable upstream", "error", err.Error())
	}
	metrics.FallbacksTotal.WithLabelValues("live_hotspots").Inc()

	if s.frames == nil {
		return []models.LiveHotspot{}, nil
	}
	frame, ok := s.frames.Latest()
	if !ok {
		return []models.LiveHotspot{}, nil
	}
	return FromZones(simulation.ToZones(frame, s.blocks, models.Location{Lat: lat, Lng: lng})), nil
}

func (s *Service) upstreamOn() bool {
	return s.upstream != nil && s.upstream.Enabled()
}

// FromZones turns zones with a density of at least 50 into live hotspots.
func FromZones(zones []models.Zone) []models.LiveHotspot {
	out := make([]models.LiveHotspot, 0)
	for _, z := range zones {
		severity := Severity(z.Density)
		if severity == 0 {
			continue
		}
		out = append(out, models.LiveHotspot{
			Lat:      z.Lat,
			Lng:      z.Lng,
			Severity: severity,
			Radius:   z.Radius,
		})
	}
	return out
}

// Severity maps a 0..100 density to a hotspot severity, 0 meaning no hotspot.
func Severity(density float64) int {
	switch {
	case density >= 90:
		return 3
	case density >= 75:
		return 2
	case density >= 50:
		return 1
	default:
		return 0
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package travel

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
)

const (
	DefaultSegments = 8
	// defaultIntensity is used for points outside every known zone.
	defaultIntensity = 0.5
)

type Upstream interface {
	Enabled() bool
	Path(ctx context.Context, source, destination string) ([]models.PathPoint, error)
}

type Geocoder interface {
	Enabled() bool
	GetLocation(ctx context.Context, place string) (models.Location, error)
}

// ZoneSource exposes the zones of the current dashboard snapshot.
type ZoneSource interface {
	Current() *models.Snapshot
}

type Service struct {
	upstream Upstream
	geocoder Geocoder
	zones    ZoneSource
	segments int
	l        logger.Logger
}

func New(upstream Upstream, geocoder Geocoder, zones ZoneSource, segments int, l logger.Logger) *Service {
	if segments <= 0 {
		segments = DefaultSegments
	}
	return &Service{
		upstream: upstream,
		geocoder: geocoder,
		zones:    zones,
		segments: segments,
		l:        l,
	}
}

// Path returns a crowd-annotated route between two place names.
func (s *Service) Path(ctx context.Context, source, destination string) (*models.TravelPath, error) {
	const op = "Service.Path"

	source, destination = strings.TrimSpace(source), strings.TrimSpace(destination)
	if source == "" || destination == "" {
		return nil, wrap.Error(ctx, types.ErrEmptyPlace)
	}

	if s.upstream != nil && s.upstream.Enabled() {
		points, err := s.upstream.Path(ctx, source, destination)
		if err == nil && len(points) > 0 {
			return newPath(source, destination, points, types.SourceUpstream), nil
		}
		if err != nil {
			s.l.Warn(wrap.WithAction(ctx, types.ActionUpstreamFallback), "path unavailable upstream, geocoding",
				"error", err.Error(),
			)
		}
	}
	metrics.FallbacksTotal.WithLabelValues("travel_path").Inc()

	if s.geocoder == nil || !s.geocoder.Enabled() {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: no route provider configured", op, types.ErrNoPath))
	}

	var from, to models.Location
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		from, err = s.geocoder.GetLocation(gctx, source)
		return err
	})
	g.Go(func() (err error) {
		to, err = s.geocoder.GetLocation(gctx, destination)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrNoPath, err))
	}

	var zones []models.Zone
	if s.zones != nil {
		if snap := s.zones.Current(); snap != nil {
			zones = snap.Zones
		}
	}

	line := geocalc.Interpolate(from, to, s.segments)
	points := make([]models.PathPoint, 0, len(line))
	for _, p := range line {
		intensity := IntensityAt(p, zones)
		points = append(points, models.PathPoint{
			Lat:       p.Lat,
			Lng:       p.Lng,
			Intensity: intensity,
			Band:      models.IntensityBand(intensity),
		})
	}

	return newPath(source, destination, points, types.SourceDerived), nil
}

// IntensityAt is density/100 of the nearest zone whose radius covers p, or 0.5.
func IntensityAt(p models.Location, zones []models.Zone) float64 {
	best := math.Inf(1)
	intensity := defaultIntensity
	for _, z := range zones {
		d := geocalc.Distance(p.Lat, p.Lng, z.Lat, z.Lng) * 1000
		if d <= z.Radius && d < best {
			best = d
			intensity = math.Min(1, math.Max(0, z.Density/100))
		}
	}
	return intensity
}

func newPath(source, destination string, points []models.PathPoint, origin types.Source) *models.TravelPath {
	var km float64
	for i := 1; i < len(points); i++ {
		km += geocalc.Distance(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
	}
	return &models.TravelPath{
		Source:      source,
		Destination: destination,
		Points:      points,
		DistanceKm:  math.Round(km*100) / 100,
		Origin:      string(origin),
	}
}

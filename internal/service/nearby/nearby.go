package nearby

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
)

const (
	DefaultRadiusKm = 1.0
	MaxRadiusKm     = 50.0
)

type Upstream interface {
	Enabled() bool
	NearbyServices(ctx context.Context, lat, lng, radiusKm float64) ([]models.EmergencyService, error)
}

type Catalog interface {
	List(ctx context.Context) ([]models.EmergencyService, error)
}

type Service struct {
	upstream Upstream
	catalog  Catalog
	l        logger.Logger
}

// New creates the service. A nil catalog falls back to the built-in service list.
func New(upstream Upstream, catalog Catalog, l logger.Logger) *Service {
	return &Service{
		upstream: upstream,
		catalog:  catalog,
		l:        l,
	}
}

// ValidRadius reports whether radiusKm is in (0, 50].
func ValidRadius(radiusKm float64) bool {
	return radiusKm > 0 && radiusKm <= MaxRadiusKm
}

// Search returns emergency services within radiusKm of the point, nearest first.
func (s *Service) Search(ctx context.Context, lat, lng, radiusKm float64) ([]models.EmergencyService, error) {
	const op = "Service.Search"

	if !geocalc.ValidCoordinate(lat, lng) {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrInvalidCoordinates))
	}
	if !ValidRadius(radiusKm) {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrInvalidRadius))
	}

	candidates, err := s.candidates(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return within(candidates, lat, lng, radiusKm), nil
}

func (s *Service) candidates(ctx context.Context, lat, lng, radiusKm float64) ([]models.EmergencyService, error) {
	if s.upstream != nil && s.upstream.Enabled() {
		services, err := s.upstream.NearbyServices(ctx, lat, lng, radiusKm)
		if err == nil {
			return services, nil
		}
		s.l.Warn(wrap.WithAction(ctx, types.ActionUpstreamFallback), "nearby services unavailable upstream, using catalog",
			"error", err.Error(),
		)
	}
	metrics.FallbacksTotal.WithLabelValues("nearby_services").Inc()

	if s.catalog == nil {
		return BuiltIn(), nil
	}
	services, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrDatabaseFailed, err)
	}
	return services, nil
}

// within recomputes distances, drops services beyond radiusKm and sorts the rest.
func within(services []models.EmergencyService, lat, lng, radiusKm float64) []models.EmergencyService {
	type ranked struct {
		svc models.EmergencyService
		d   float64
	}

	found := make([]ranked, 0, len(services))
	for _, svc := range services {
		if d := geocalc.Distance(lat, lng, svc.Lat, svc.Lng); d <= radiusKm {
			found = append(found, ranked{svc: svc, d: d})
		}
	}
	slices.SortStableFunc(found, func(a, b ranked) int {
		return cmp.Compare(a.d, b.d)
	})

	out := make([]models.EmergencyService, 0, len(found))
	for _, r := range found {
		r.svc.DistanceKm = math.Round(r.d*100) / 100
		out = append(out, r.svc)
	}
	return out
}

// BuiltIn is the service catalog around central New Delhi used without a database.
func BuiltIn() []models.EmergencyService {
	return []models.EmergencyService{
		{ID: 1, Name: "Central Hospital", Lat: 28.6129, Lng: 77.229, Category: "hospital"},
		{ID: 2, Name: "City Police Station", Lat: 28.6159, Lng: 77.219, Category: "police"},
		{ID: 3, Name: "Metro Station", Lat: 28.6149, Lng: 77.224, Category: "transit"},
		{ID: 4, Name: "Public Library", Lat: 28.6169, Lng: 77.214, Category: "public"},
		{ID: 5, Name: "Shopping Mall", Lat: 28.6109, Lng: 77.227, Category: "public"},
		{ID: 6, Name: "Fire Station", Lat: 28.6179, Lng: 77.217, Category: "fire"},
		{ID: 7, Name: "Bus Terminal", Lat: 28.6119, Lng: 77.221, Category: "transit"},
		{ID: 8, Name: "Community Center", Lat: 28.6189, Lng: 77.211, Category: "public"},
	}
}

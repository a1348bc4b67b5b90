package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
)

type candidate struct {
	zone     models.Zone
	distance float64
}

// PlanRedirections pairs every dense zone with its nearest quiet zones and
// estimates how many people can be moved between them. Plans whose crowd
// size would not be positive are dropped.
func (p *Planner) PlanRedirections(zones []models.Zone) []models.RedirectionPlan {
	var sources, targets []models.Zone
	for _, z := range zones {
		if z.Density > p.rules.SourceDensity {
			sources = append(sources, z)
		}
		if z.Density < p.rules.TargetDensity {
			targets = append(targets, z)
		}
	}

	plans := make([]models.RedirectionPlan, 0)
	for _, src := range sources {
		for _, c := range p.nearest(src, targets) {
			crowd := p.crowdToRedirect(src, c.zone)
			if crowd <= 0 {
				continue
			}
			plans = append(plans, p.plan(src, c, crowd))
		}
	}

	return plans
}

func (p *Planner) nearest(src models.Zone, targets []models.Zone) []candidate {
	cands := make([]candidate, 0, len(targets))
	for _, t := range targets {
		if t.ID == src.ID {
			continue
		}
		cands = append(cands, candidate{zone: t, distance: geocalc.ZoneDistance(src, t)})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].distance < cands[j].distance
	})

	if len(cands) > p.rules.TargetsPerSource {
		cands = cands[:p.rules.TargetsPerSource]
	}
	return cands
}

// crowdToRedirect is the smaller of what the source must shed to reach its safe
// capacity and what the target still has room for.
func (p *Planner) crowdToRedirect(src, dst models.Zone) float64 {
	excess := src.CurrentCapacity - src.MaxCapacity*p.rules.SafeCapacity
	room := dst.MaxCapacity - dst.CurrentCapacity
	return math.Min(excess, room)
}

func (p *Planner) plan(src models.Zone, dst candidate, crowd float64) models.RedirectionPlan {
	size := geocalc.Round(crowd)

	method := types.FootGuidance
	if crowd > p.rules.GuidedCrowd {
		method = types.GuidedTransport
	}

	effectiveness := 0
	if src.CurrentCapacity > 0 {
		effectiveness = geocalc.Round(crowd / src.CurrentCapacity * 100)
	}

	return models.RedirectionPlan{
		ID:                  fmt.Sprintf("redirect_%s_%s", src.ID, dst.zone.ID),
		FromZone:            src,
		ToZone:              dst.zone,
		EstimatedCrowdSize:  size,
		RouteCoords:         []models.Coord{{src.Lat, src.Lng}, {dst.zone.Lat, dst.zone.Lng}},
		EstimatedTravelTime: geocalc.TravelMinutes(dst.distance, p.rules.MinutesPerKm),
		RedirectionMethod:   method,
		Priority:            src.RiskLevel,
		Status:              types.RedirectionPlanned,
		EffectivenessScore:  effectiveness,
		AlternativeRoutes:   p.AlternativeRoutes(src, dst.zone),
	}
}

// AlternativeRoutes returns the main route and two routes bent around the midpoint.
func (p *Planner) AlternativeRoutes(src, dst models.Zone) []models.Route {
	from := models.Coord{src.Lat, src.Lng}
	to := models.Coord{dst.Lat, dst.Lng}
	mid := geocalc.Midpoint(from, to)
	off := p.rules.AltRouteOffset
	km := geocalc.ZoneDistance(src, dst)

	return []models.Route{
		{
			Name:          "Main Route",
			Coords:        []models.Coord{from, to},
			EstimatedTime: geocalc.TravelMinutes(km, p.rules.MinutesPerKm),
		},
		{
			Name:          "Alternative Route A",
			Coords:        []models.Coord{from, {mid.Lat() + off, mid.Lng() - off}, to},
			EstimatedTime: geocalc.TravelMinutes(km, p.rules.AltRouteAFactor),
		},
		{
			Name:          "Alternative Route B",
			Coords:        []models.Coord{from, {mid.Lat() - off, mid.Lng() + off}, to},
			EstimatedTime: geocalc.TravelMinutes(km, p.rules.AltRouteBFactor),
		},
	}
}

package planner

import (
	"fmt"
	"strconv"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
)

// unit describes how one service type is placed around a zone.
type unit struct {
	typ         types.ServiceType
	dLat, dLng  float64
	demand      float64
	defaultTime string
	reason      string
}

var (
	policeUnit = unit{
		typ: types.Police, dLat: 0.002, dLng: 0.002, demand: 0.6, defaultTime: "15:30",
		reason: "High crowd density predicted (%s%%)",
	}
	ambulanceUnit = unit{
		typ: types.Ambulance, dLat: -0.002, dLng: -0.002, demand: 0.4, defaultTime: "15:45",
		reason: "Medical emergency risk zone (%s%% density)",
	}
	fireUnit = unit{
		typ: types.Fire, dLat: 0.001, dLng: -0.003, demand: 0.3, defaultTime: "16:00",
		reason: "Fire safety concern in dense area (%s%%)",
	}
)

// RecommendPositions returns the recommended emergency unit positions for zones,
// in zone order. A zone above the police threshold always gets police; high and
// critical zones add an ambulance; zones above the fire threshold add fire service.
func (p *Planner) RecommendPositions(zones []models.Zone) []models.RecommendedPosition {
	positions := make([]models.RecommendedPosition, 0, len(zones))

	for _, zone := range zones {
		if zone.Density <= p.rules.PoliceDensity {
			continue
		}

		positions = append(positions, place(zone, policeUnit))

		if zone.RiskLevel.Severe() {
			positions = append(positions, place(zone, ambulanceUnit))
		}

		if zone.Density > p.rules.FireDensity {
			positions = append(positions, place(zone, fireUnit))
		}
	}

	return positions
}

func place(zone models.Zone, u unit) models.RecommendedPosition {
	optimal := zone.ExpectedPeakTime
	if optimal == "" {
		optimal = u.defaultTime
	}

	return models.RecommendedPosition{
		ID:              fmt.Sprintf("%s_%s", u.typ, zone.ID),
		Lat:             zone.Lat + u.dLat,
		Lng:             zone.Lng + u.dLng,
		Type:            u.typ,
		Priority:        zone.RiskLevel,
		CoverageArea:    zone.AreaName,
		PredictedDemand: geocalc.Round(zone.Density * u.demand),
		OptimalTime:     optimal,
		Reason:          fmt.Sprintf(u.reason, formatDensity(zone.Density)),
		Status:          types.PositionPending,
	}
}

func formatDensity(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

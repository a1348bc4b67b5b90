package planner

import (
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
)

// Summarize computes the dashboard headline numbers.
func Summarize(zones []models.Zone, positions []models.RecommendedPosition, plans []models.RedirectionPlan) models.DashboardSummary {
	s := models.DashboardSummary{
		TotalRecommendations: len(positions),
		TotalRedirections:    len(plans),
	}

	for _, z := range zones {
		switch z.RiskLevel {
		case types.RiskCritical:
			s.CriticalZones++
		case types.RiskHigh:
			s.HighRiskZones++
		}
	}

	if len(plans) == 0 {
		return s
	}

	var effectiveness, travel int
	for _, p := range plans {
		s.PeopleToRedirect += p.EstimatedCrowdSize
		effectiveness += p.EffectivenessScore
		travel += p.EstimatedTravelTime
	}
	s.AvgEffectiveness = geocalc.Round(float64(effectiveness) / float64(len(plans)))
	s.AvgTravelTime = geocalc.Round(float64(travel) / float64(len(plans)))

	return s
}

// CountByRisk returns the number of zones per risk level.
func CountByRisk(zones []models.Zone) map[types.RiskLevel]int {
	out := map[types.RiskLevel]int{
		types.RiskLow:      0,
		types.RiskMedium:   0,
		types.RiskHigh:     0,
		types.RiskCritical: 0,
	}
	for _, z := range zones {
		out[z.RiskLevel]++
	}
	return out
}

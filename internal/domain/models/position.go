package models

import "github.com/Temutjin2k/crowdguard/internal/domain/types"

// RecommendedPosition is a suggested placement of an emergency unit near a zone.
type RecommendedPosition struct {
	ID              string               `json:"id"`
	Lat             float64              `json:"lat"`
	Lng             float64              `json:"lng"`
	Type            types.ServiceType    `json:"type"`
	Priority        types.RiskLevel      `json:"priority"`
	CoverageArea    string               `json:"coverage_area"`
	PredictedDemand int                  `json:"predicted_demand"`
	OptimalTime     string               `json:"optimal_time"`
	Reason          string               `json:"reason"`
	Status          types.PositionStatus `json:"status"`
}

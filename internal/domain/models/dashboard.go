package models

import (
	"time"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

// DashboardSummary holds the aggregate numbers shown above the map.
type DashboardSummary struct {
	TotalRecommendations int `json:"total_recommendations"`
	CriticalZones        int `json:"critical_zones"`
	HighRiskZones        int `json:"high_risk_zones"`
	TotalRedirections    int `json:"total_redirections"`
	PeopleToRedirect     int `json:"people_to_redirect"`
	AvgEffectiveness     int `json:"avg_effectiveness"`
	AvgTravelTime        int `json:"avg_travel_time"`
}

// Sources records where each dataset of a snapshot came from.
type Sources struct {
	Zones           types.Source `json:"zones"`
	Recommendations types.Source `json:"recommendations"`
	Redirections    types.Source `json:"redirections"`
}

// Snapshot is one complete dashboard refresh.
type Snapshot struct {
	Zones           []Zone                `json:"zones"`
	Recommendations []RecommendedPosition `json:"recommendations"`
	Redirections    []RedirectionPlan     `json:"redirections"`
	Summary         DashboardSummary      `json:"summary"`
	Sources         Sources               `json:"sources"`
	PredictionTime  time.Time             `json:"prediction_time"`
}

// Clone returns a deep copy of the slices so callers can't mutate the cached snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Zones = append([]Zone(nil), s.Zones...)
	out.Recommendations = append([]RecommendedPosition(nil), s.Recommendations...)
	out.Redirections = append([]RedirectionPlan(nil), s.Redirections...)
	return &out
}

// SnapshotRecord is a persisted snapshot header used by the history endpoint.
type SnapshotRecord struct {
	ID             int64            `json:"id"`
	PredictionTime time.Time        `json:"prediction_time"`
	Summary        DashboardSummary `json:"summary"`
	Sources        Sources          `json:"sources"`
}

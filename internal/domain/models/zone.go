package models

import "github.com/Temutjin2k/crowdguard/internal/domain/types"

// Zone is a predicted crowd area.
type Zone struct {
	ID               string          `json:"id"`
	Lat              float64         `json:"lat"`
	Lng              float64         `json:"lng"`
	Density          float64         `json:"density"`
	Radius           float64         `json:"radius"`
	RiskLevel        types.RiskLevel `json:"risk_level"`
	AreaName         string          `json:"area_name"`
	CurrentCapacity  float64         `json:"current_capacity"`
	MaxCapacity      float64         `json:"max_capacity"`
	ExpectedPeakTime string          `json:"expected_peak_time,omitempty"`
}

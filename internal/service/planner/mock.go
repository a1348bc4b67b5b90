package planner

import (
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

// MockZones returns the built-in London sample zones used when no prediction source answers.
func MockZones() []models.Zone {
	return []models.Zone{
		{
			ID: "zone_1", Lat: 51.505, Lng: -0.09, Density: 85, Radius: 800,
			RiskLevel: types.RiskHigh, AreaName: "Westminster",
			CurrentCapacity: 2500, MaxCapacity: 3000, ExpectedPeakTime: "16:30",
		},
		{
			ID: "zone_2", Lat: 51.515, Lng: -0.1, Density: 70, Radius: 600,
			RiskLevel: types.RiskMedium, AreaName: "Oxford Street",
			CurrentCapacity: 1800, MaxCapacity: 2500, ExpectedPeakTime: "17:00",
		},
		{
			ID: "zone_3", Lat: 51.52, Lng: -0.08, Density: 95, Radius: 900,
			RiskLevel: types.RiskCritical, AreaName: "King's Cross",
			CurrentCapacity: 3200, MaxCapacity: 3500, ExpectedPeakTime: "15:45",
		},
		{
			ID: "zone_4", Lat: 51.51, Lng: -0.12, Density: 60, Radius: 500,
			RiskLevel: types.RiskMedium, AreaName: "Hyde Park Corner",
			CurrentCapacity: 1200, MaxCapacity: 2000, ExpectedPeakTime: "16:15",
		},
		{
			ID: "zone_5", Lat: 51.5, Lng: -0.07, Density: 45, Radius: 400,
			RiskLevel: types.RiskLow, AreaName: "London Bridge",
			CurrentCapacity: 800, MaxCapacity: 1800, ExpectedPeakTime: "17:30",
		},
	}
}

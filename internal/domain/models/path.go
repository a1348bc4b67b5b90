package models

// PathPoint is one point of a travel path with the crowd intensity along it.
type PathPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"`
	Band      string  `json:"band"`
}

// IntensityBand classifies a path intensity in [0, 1].
func IntensityBand(i float64) string {
	switch {
	case i < 0.3:
		return "very-low"
	case i < 0.5:
		return "low"
	case i < 0.7:
		return "moderate"
	case i < 0.9:
		return "high"
	default:
		return "severe"
	}
}

// TravelPath is the result of a travel path lookup.
type TravelPath struct {
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Points      []PathPoint `json:"points"`
	DistanceKm  float64     `json:"distance_km"`
	Origin      string      `json:"origin"`
}

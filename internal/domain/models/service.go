package models

// EmergencyService is a facility that can help during an incident.
type EmergencyService struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Category   string  `json:"category"`
	DistanceKm float64 `json:"distance_km"`
}

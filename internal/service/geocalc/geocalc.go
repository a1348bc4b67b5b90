// Package geocalc holds the geographic helpers shared by the planners.
package geocalc

import (
	"math"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

const EarthRadiusKm = 6371.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Distance calculates the haversine distance in kilometers between two points.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	deltaLat := lat2Rad - lat1Rad
	deltaLng := degreesToRadians(lng2 - lng1)

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLng/2), 2)

	// rounding can push a slightly out of [0, 1]
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ZoneDistance is Distance between two zone centers.
func ZoneDistance(a, b models.Zone) float64 {
	return Distance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Midpoint returns the arithmetic midpoint of two coordinates.
// Good enough for the sub-kilometer spans between neighbouring zones.
func Midpoint(a, b models.Coord) models.Coord {
	return models.Coord{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

// Round rounds half away from zero to the nearest integer.
func Round(v float64) int {
	return int(math.Round(v))
}

// TravelMinutes estimates walking time for km at minutesPerKm.
func TravelMinutes(km, minutesPerKm float64) int {
	return Round(km * minutesPerKm)
}

// ValidCoordinate reports whether lat/lng are inside the WGS84 range.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Offset moves a point by a number of meters north and east.
func Offset(lat, lng, northM, eastM float64) (float64, float64) {
	dLat := northM / (EarthRadiusKm * 1000) * 180 / math.Pi
	dLng := eastM / (EarthRadiusKm * 1000 * math.Cos(degreesToRadians(lat))) * 180 / math.Pi
	return lat + dLat, lng + dLng
}

// Interpolate returns n+1 evenly spaced points from a to b inclusive.
func Interpolate(a, b models.Location, n int) []models.Location {
	if n < 1 {
		n = 1
	}
	out := make([]models.Location, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		out = append(out, models.Location{
			Lat: a.Lat + (b.Lat-a.Lat)*t,
			Lng: a.Lng + (b.Lng-a.Lng)*t,
		})
	}
	return out
}

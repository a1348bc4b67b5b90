package hotspot

import (
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

type sample struct {
	name     string
	lat, lng float64
	band     types.DensityBand
}

var samples = []sample{
	{"Connaught Place", 28.6562, 77.2410, types.DensityHigh},
	{"Rajiv Chowk Metro", 28.6507, 77.2334, types.DensityHigh},
	{"India Gate", 28.6139, 77.2090, types.DensityHigh},
	{"Khan Market", 28.6169, 77.2295, types.DensityHigh},

	{"Greater Noida", 28.5355, 77.3910, types.DensityMedium},
	{"Gurgaon Sector 29", 28.4595, 77.0266, types.DensityMedium},
	{"Delhi University", 28.7041, 77.1025, types.DensityMedium},
	{"Nehru Place", 28.5494, 77.2499, types.DensityMedium},
	{"Lajpat Nagar", 28.6304, 77.2177, types.DensityMedium},

	{"Noida Sector 18", 28.6692, 77.4538, types.DensityLow},
	{"Faridabad", 28.4089, 77.3178, types.DensityLow},
	{"Rohini", 28.7196, 77.0369, types.DensityLow},
	{"Dwarka", 28.5167, 77.0833, types.DensityLow},
	{"Mayur Vihar", 28.6000, 77.3667, types.DensityLow},

	{"Outer Delhi", 28.7500, 77.1167, types.DensityVeryLow},
	{"Greater Noida West", 28.4744, 77.5040, types.DensityVeryLow},
	{"Manesar", 28.3974, 77.0728, types.DensityVeryLow},
	{"Narela", 28.8386, 77.0851, types.DensityVeryLow},
}

// CrowdSamples returns the reference density readings across New Delhi.
func CrowdSamples() []models.CrowdSample {
	out := make([]models.CrowdSample, 0, len(samples))
	for _, s := range samples {
		out = append(out, models.CrowdSample{
			Lat:      s.lat,
			Lng:      s.lng,
			Density:  s.band,
			Location: s.name,
			Radius:   s.band.Radius(),
		})
	}
	return out
}

// predictedAt is the built-in forecast used when the prediction API is unavailable.
// Longer horizons add hotspots on top of the shorter ones.
func predictedAt(minutes int) []models.PredictedHotspot {
	out := make([]models.PredictedHotspot, 0, 4)
	if minutes >= 30 {
		out = append(out,
			predicted(28.6328, 77.2197, types.DensityHigh),
			predicted(28.6745, 77.1200, types.DensityMedium),
		)
	}
	if minutes >= 60 {
		out = append(out,
			predicted(28.5921, 77.0460, types.DensityMedium),
			predicted(28.5672, 77.3507, types.DensityLow),
		)
	}
	return out
}

func predicted(lat, lng float64, band types.DensityBand) models.PredictedHotspot {
	return models.PredictedHotspot{
		Lat:       lat,
		Lng:       lng,
		Intensity: band,
		Radius:    models.DefaultPredictionRadius,
	}
}

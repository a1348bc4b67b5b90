package models

import "github.com/Temutjin2k/crowdguard/internal/domain/types"

const (
	DefaultHotspotRadius    = 200
	DefaultPredictionRadius = 400
)

// LiveHotspot is a current crowd hotspot around a tracked location.
type LiveHotspot struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Severity int     `json:"severity"`
	Radius   float64 `json:"radius"`
}

// SeverityLabel names a hotspot severity level.
func SeverityLabel(severity int) string {
	switch severity {
	case 3:
		return "severe"
	case 2:
		return "elevated"
	case 1:
		return "watch"
	default:
		return "unknown"
	}
}

// CrowdSample is a reference density reading at a named location.
type CrowdSample struct {
	Lat      float64           `json:"lat"`
	Lng      float64           `json:"lng"`
	Density  types.DensityBand `json:"density"`
	Location string            `json:"location"`
	Radius   int               `json:"radius"`
}

// PredictedHotspot is a hotspot expected after a given number of minutes.
type PredictedHotspot struct {
	Lat       float64           `json:"lat"`
	Lng       float64           `json:"lng"`
	Intensity types.DensityBand `json:"intensity"`
	Radius    int               `json:"radius"`
}

// HotspotPrediction is the answer for one timeframe.
type HotspotPrediction struct {
	Minutes  int                `json:"minutes"`
	Hotspots []PredictedHotspot `json:"hotspots"`
	Source   types.Source       `json:"source"`
}

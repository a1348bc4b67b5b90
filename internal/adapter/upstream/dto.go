package upstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

const defaultIntensity = 0.5

type zonesResponse struct {
	Zones []models.Zone `json:"zones"`
}

type recommendationsResponse struct {
	Recommendations []models.RecommendedPosition `json:"recommendations"`
}

type redirectionsResponse struct {
	Redirections []models.RedirectionPlan `json:"redirections"`
}

type predictedHotspotsResponse struct {
	Hotspots []models.PredictedHotspot `json:"hotspots"`
}

type liveHotspotsResponse struct {
	Hotspots []models.LiveHotspot `json:"hotspots"`
}

type statusUpdateRequest struct {
	RedirectionID string                  `json:"redirectionId"`
	Status        types.RedirectionStatus `json:"status"`
}

type pathRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type pathResponse struct {
	Path []pathPoint `json:"path"`
}

// pathPoint accepts both {"lat":..,"lng":..,"intensity":..} and [lat, lng].
type pathPoint struct {
	Lat       float64
	Lng       float64
	Intensity float64
}

var errBadPathPoint = errors.New("path point must be an object or a [lat, lng] pair")

func (p *pathPoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errBadPathPoint
	}

	switch data[0] {
	case '[':
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("decode path pair: %w", err)
		}
		if len(pair) < 2 {
			return errBadPathPoint
		}
		p.Lat, p.Lng, p.Intensity = pair[0], pair[1], defaultIntensity
		return nil
	case '{':
		var obj struct {
			Lat       float64  `json:"lat"`
			Lng       float64  `json:"lng"`
			Intensity *float64 `json:"intensity"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("decode path point: %w", err)
		}
		p.Lat, p.Lng, p.Intensity = obj.Lat, obj.Lng, defaultIntensity
		if obj.Intensity != nil {
			p.Intensity = *obj.Intensity
		}
		return nil
	default:
		return errBadPathPoint
	}
}

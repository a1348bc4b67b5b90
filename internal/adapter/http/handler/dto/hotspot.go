package dto

import (
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

type LocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (r *LocationRequest) Validate(v *validator.Validator) {
	v.Check(r.Lat != nil, "lat", "must be provided")
	v.Check(r.Lng != nil, "lng", "must be provided")
	if r.Lat != nil {
		v.Check(validator.Between(*r.Lat, -90, 90), "lat", "must be between -90 and 90")
	}
	if r.Lng != nil {
		v.Check(validator.Between(*r.Lng, -180, 180), "lng", "must be between -180 and 180")
	}
}

// Location must only be called on a validated request.
func (r *LocationRequest) Location() models.Location {
	return models.Location{Lat: *r.Lat, Lng: *r.Lng}
}

type LiveHotspotsResponse struct {
	Location models.Location      `json:"location"`
	Hotspots []models.LiveHotspot `json:"hotspots"`
}

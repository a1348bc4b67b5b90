package models

import "github.com/Temutjin2k/crowdguard/internal/domain/types"

// Route is one way of walking a crowd from one zone to another.
type Route struct {
	Name          string  `json:"name"`
	Coords        []Coord `json:"coords"`
	EstimatedTime int     `json:"estimated_time"`
}

// RedirectionPlan moves part of a crowd from a dense zone to a nearby quiet one.
type RedirectionPlan struct {
	ID                  string                  `json:"id"`
	FromZone            Zone                    `json:"from_zone"`
	ToZone              Zone                    `json:"to_zone"`
	EstimatedCrowdSize  int                     `json:"estimated_crowd_size"`
	RouteCoords         []Coord                 `json:"route_coords"`
	EstimatedTravelTime int                     `json:"estimated_travel_time"`
	RedirectionMethod   types.RedirectionMethod `json:"redirection_method"`
	Priority            types.RiskLevel         `json:"priority"`
	Status              types.RedirectionStatus `json:"status"`
	EffectivenessScore  int                     `json:"effectiveness_score"`
	AlternativeRoutes   []Route                 `json:"alternative_routes"`
}

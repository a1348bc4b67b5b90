package models

// Live feed message types.
const (
	LiveMessageHotspots = "hotspots"
	LiveMessageLocation = "location"
	LiveMessageFrame    = "frame"
	LiveMessageError    = "error"
)

// LiveHotspotsMessage is pushed to a live tracker subscriber.
type LiveHotspotsMessage struct {
	Type     string        `json:"type"`
	Location Location      `json:"location"`
	Hotspots []LiveHotspot `json:"hotspots"`
}

// FrameSummaryMessage is broadcast to live subscribers when a new simulation frame arrives.
type FrameSummaryMessage struct {
	Type  string `json:"type"`
	SimID string `json:"sim_id"`
	Step  int    `json:"step"`
	Zones []Zone `json:"zones"`
}

// LiveErrorMessage reports a rejected client message.
type LiveErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

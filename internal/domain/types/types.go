package types

type ServiceMode string

// Monitor Service - serves the dashboard API, refreshes predictions and pushes live hotspots
// Simulation Service - runs the crowd grid simulation and publishes density frames
const (
	MonitorService    ServiceMode = "monitor-service"
	SimulationService ServiceMode = "simulation-service"
)

func (m ServiceMode) String() string {
	return string(m)
}

// RiskLevel of a zone
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (r RiskLevel) String() string {
	return string(r)
}

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Severe reports whether zones of this level need medical coverage.
func (r RiskLevel) Severe() bool {
	return r == RiskHigh || r == RiskCritical
}

// ServiceType of emergency personnel
type ServiceType string

const (
	Police    ServiceType = "police"
	Ambulance ServiceType = "ambulance"
	Fire      ServiceType = "fire"
)

func (s ServiceType) String() string {
	return string(s)
}

type PositionStatus string

const (
	PositionPending   PositionStatus = "pending"
	PositionConfirmed PositionStatus = "confirmed"
)

type RedirectionMethod string

const (
	GuidedTransport RedirectionMethod = "guided_transport"
	FootGuidance    RedirectionMethod = "foot_guidance"
)

type RedirectionStatus string

const (
	RedirectionPlanned   RedirectionStatus = "planned"
	RedirectionActive    RedirectionStatus = "active"
	RedirectionPaused    RedirectionStatus = "paused"
	RedirectionCompleted RedirectionStatus = "completed"
)

func (s RedirectionStatus) String() string {
	return string(s)
}

func (s RedirectionStatus) Valid() bool {
	switch s {
	case RedirectionPlanned, RedirectionActive, RedirectionPaused, RedirectionCompleted:
		return true
	}
	return false
}

// DensityBand is a coarse crowd density class used by hotspot samples and predictions
type DensityBand string

const (
	DensityHigh    DensityBand = "high"
	DensityMedium  DensityBand = "medium"
	DensityLow     DensityBand = "low"
	DensityVeryLow DensityBand = "very-low"
)

// Radius returns the display radius in meters for the band.
func (b DensityBand) Radius() int {
	switch b {
	case DensityHigh:
		return 500
	case DensityMedium:
		return 400
	case DensityLow:
		return 300
	case DensityVeryLow:
		return 200
	default:
		return 250
	}
}

// Source tells where a dashboard dataset came from
type Source string

const (
	SourceUpstream Source = "upstream"
	SourceDerived  Source = "derived"
	SourceMock     Source = "mock"
)

// UserRole carried in the access token
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleDispatcher UserRole = "DISPATCHER"
	RoleViewer     UserRole = "VIEWER"
)

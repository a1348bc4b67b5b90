package models

import (
	"time"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/google/uuid"
)

// Deployment is a confirmed recommended position.
type Deployment struct {
	ID           uuid.UUID         `json:"id"`
	PositionID   string            `json:"position_id"`
	Type         types.ServiceType `json:"type"`
	Lat          float64           `json:"lat"`
	Lng          float64           `json:"lng"`
	CoverageArea string            `json:"coverage_area"`
	Priority     types.RiskLevel   `json:"priority"`
	ConfirmedBy  string            `json:"confirmed_by"`
	ConfirmedAt  time.Time         `json:"confirmed_at"`
}

// RedirectionStatusChange is a recorded status transition of a plan.
type RedirectionStatusChange struct {
	PlanID    string                  `json:"plan_id"`
	Status    types.RedirectionStatus `json:"status"`
	ChangedBy string                  `json:"changed_by"`
	ChangedAt time.Time               `json:"changed_at"`
}

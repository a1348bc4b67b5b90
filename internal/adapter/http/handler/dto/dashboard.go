package dto

import (
	"strings"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

type ConfirmDeploymentRequest struct {
	PositionID string `json:"position_id"`
}

func (r *ConfirmDeploymentRequest) Validate(v *validator.Validator) {
	r.PositionID = strings.TrimSpace(r.PositionID)
	v.Check(r.PositionID != "", "position_id", "must be provided")
	v.Check(len(r.PositionID) <= 255, "position_id", "must not be more than 255 characters long")
}

type RedirectionStatusRequest struct {
	Status string `json:"status"`
}

func (r *RedirectionStatusRequest) Validate(v *validator.Validator) {
	v.Check(r.Status != "", "status", "must be provided")
	if r.Status != "" {
		v.Check(types.RedirectionStatus(r.Status).Valid(), "status", "must be one of planned, active, paused or completed")
	}
}

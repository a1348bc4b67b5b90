package dto

import (
	"strings"

	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

type TravelPathRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (r *TravelPathRequest) Validate(v *validator.Validator) {
	r.Source = strings.TrimSpace(r.Source)
	r.Destination = strings.TrimSpace(r.Destination)

	v.Check(r.Source != "", "source", "must be provided")
	v.Check(len(r.Source) <= 255, "source", "must not be more than 255 characters long")
	v.Check(r.Destination != "", "destination", "must be provided")
	v.Check(len(r.Destination) <= 255, "destination", "must not be more than 255 characters long")
}

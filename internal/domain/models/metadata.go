package models

import (
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// HistoryFilter limits the snapshot history listing.
type HistoryFilter struct {
	Limit int
}

func (f HistoryFilter) Validate(v *validator.Validator) {
	v.Check(f.Limit > 0, "limit", "must be greater than zero")
	v.Check(f.Limit <= MaxHistoryLimit, "limit", "must be a maximum of 200")
}

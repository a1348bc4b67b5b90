package dto

import (
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

const MaxGridSize = 500

type GridPathRequest struct {
	Grid  [][]int8 `json:"grid,omitempty"`
	Start []int    `json:"start"`
	Goal  []int    `json:"goal"`
}

func (r *GridPathRequest) Validate(v *validator.Validator) {
	v.Check(len(r.Start) == 2, "start", "must be a [x, y] pair")
	v.Check(len(r.Goal) == 2, "goal", "must be a [x, y] pair")
	v.Check(len(r.Grid) <= MaxGridSize, "grid", "must not have more than 500 rows")
}

// Points must only be called on a validated request.
func (r *GridPathRequest) Points() (models.Point, models.Point) {
	return models.Point{X: r.Start[0], Y: r.Start[1]}, models.Point{X: r.Goal[0], Y: r.Goal[1]}
}

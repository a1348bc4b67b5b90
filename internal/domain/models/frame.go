package models

import (
	"fmt"
	"time"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

// Cell values of a simulation grid.
const (
	CellEmpty    int8 = 0
	CellObstacle int8 = -1
	CellPerson   int8 = 1
)

// Frame is one published state of the crowd simulation.
type Frame struct {
	SimID     string    `json:"sim_id"`
	Step      int       `json:"step"`
	Size      int       `json:"size"`
	Cells     []int8    `json:"cells"`
	Heat      []float64 `json:"heat"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that the frame is a square grid whose cells and heat line up with Size.
func (f *Frame) Validate() error {
	if f.Size <= 0 {
		return fmt.Errorf("%w: size %d", types.ErrInvalidGrid, f.Size)
	}
	n := f.Size * f.Size
	if len(f.Cells) != n {
		return fmt.Errorf("%w: %d cells for size %d", types.ErrInvalidGrid, len(f.Cells), f.Size)
	}
	if len(f.Heat) != 0 && len(f.Heat) != n {
		return fmt.Errorf("%w: %d heat values for size %d", types.ErrInvalidGrid, len(f.Heat), f.Size)
	}
	return nil
}

// At returns the cell at row x, column y.
func (f *Frame) At(x, y int) int8 {
	return f.Cells[x*f.Size+y]
}

// Point is a grid cell coordinate (row, column).
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GridPath is a path found on a simulation grid.
type GridPath struct {
	Strategy string  `json:"strategy"`
	Path     []Point `json:"path"`
	Smoothed []Point `json:"smoothed,omitempty"`
	Cost     float64 `json:"cost"`
	Explored int     `json:"explored"`
}

// Placement is a proposed emergency unit location on a grid with its share of resources.
type Placement struct {
	Point     Point   `json:"point"`
	Resources float64 `json:"resources"`
}

// Accuracy compares a predicted grid with the real one, in percent.
type Accuracy struct {
	Overall    float64 `json:"overall"`
	Position   float64 `json:"position"`
	Clustering float64 `json:"clustering"`
	Direction  float64 `json:"direction"`
}

// GridRoutes are the alternative routes found on one grid.
type GridRoutes struct {
	SimID string     `json:"sim_id,omitempty"`
	Step  int        `json:"step,omitempty"`
	Paths []GridPath `json:"paths"`
}

// UnitPlacement is a placement plan computed on a simulation frame.
type UnitPlacement struct {
	SimID      string      `json:"sim_id"`
	Step       int         `json:"step"`
	Units      int         `json:"units"`
	Placements []Placement `json:"placements"`
}

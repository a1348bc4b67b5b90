package models

// Location is a plain coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Coord is a [lat, lng] pair as used by route polylines.
type Coord [2]float64

func (c Coord) Lat() float64 { return c[0] }
func (c Coord) Lng() float64 { return c[1] }

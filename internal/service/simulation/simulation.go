package simulation

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

const (
	DefaultGridSize      = 50
	DefaultPeople        = 100
	DefaultObstacleRatio = 0.02
)

type Config struct {
	SimID         string
	GridSize      int
	People        int
	ObstacleRatio float64
	// Seed makes a run reproducible. Zero picks a random seed.
	Seed uint64
}

func (c Config) withDefaults() Config {
	if c.GridSize == 0 {
		c.GridSize = DefaultGridSize
	}
	if c.People == 0 {
		c.People = DefaultPeople
	}
	if c.ObstacleRatio == 0 {
		c.ObstacleRatio = DefaultObstacleRatio
	}
	if c.Seed == 0 {
		c.Seed = rand.Uint64()
	}
	if c.SimID == "" {
		c.SimID = uuid.NewString()
	}
	return c
}

// Simulation is a grid of people drifting towards each other around fixed obstacles.
type Simulation struct {
	id     string
	size   int
	cells  []int8
	heat   []float64
	people []int
	step   int
	rng    *rand.Rand
}

var neighbours4 = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

func New(cfg Config) (*Simulation, error) {
	cfg = cfg.withDefaults()

	n := cfg.GridSize * cfg.GridSize
	obstacles := int(float64(n) * cfg.ObstacleRatio)
	if cfg.GridSize < 2 || cfg.People < 0 || cfg.ObstacleRatio < 0 || obstacles+cfg.People > n {
		return nil, fmt.Errorf("%w: %d people and %d obstacles on a %dx%d grid",
			types.ErrInvalidGrid, cfg.People, obstacles, cfg.GridSize, cfg.GridSize)
	}

	s := &Simulation{
		id:     cfg.SimID,
		size:   cfg.GridSize,
		cells:  make([]int8, n),
		heat:   make([]float64, n),
		people: make([]int, 0, cfg.People),
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}

	// distinct cells: obstacles first, people on the next free ones
	perm := s.rng.Perm(n)
	for _, idx := range perm[:obstacles] {
		s.cells[idx] = models.CellObstacle
	}
	for _, idx := range perm[obstacles : obstacles+cfg.People] {
		s.cells[idx] = models.CellPerson
		s.people = append(s.people, idx)
	}

	return s, nil
}

func (s *Simulation) ID() string { return s.id }
func (s *Simulation) Size() int  { return s.size }
func (s *Simulation) Steps() int { return s.step }

// Step moves every person once, in random order. Heat is counted on the cell a
// person occupied before moving.
func (s *Simulation) Step() {
	s.rng.Shuffle(len(s.people), func(i, j int) {
		s.people[i], s.people[j] = s.people[j], s.people[i]
	})

	for i, idx := range s.people {
		s.cells[idx] = models.CellEmpty
		next := s.bestMove(idx)
		s.cells[next] = models.CellPerson
		s.people[i] = next
		s.heat[idx]++
	}
	s.step++
}

// bestMove picks the free 4-neighbour with the most adjacent people; ties are
// broken at random. A blocked person stays.
func (s *Simulation) bestMove(idx int) int {
	x, y := idx/s.size, idx%s.size

	best := -1
	moves := make([]int, 0, 4)
	for _, d := range neighbours4 {
		nx, ny := x+d[0], y+d[1]
		if !s.inside(nx, ny) || s.cells[nx*s.size+ny] != models.CellEmpty {
			continue
		}

		score := 0
		for _, a := range neighbours4 {
			ax, ay := nx+a[0], ny+a[1]
			if s.inside(ax, ay) && s.cells[ax*s.size+ay] == models.CellPerson {
				score++
			}
		}

		switch {
		case score > best:
			best = score
			moves = append(moves[:0], nx*s.size+ny)
		case score == best:
			moves = append(moves, nx*s.size+ny)
		}
	}

	if len(moves) == 0 {
		return idx
	}
	return moves[s.rng.IntN(len(moves))]
}

func (s *Simulation) inside(x, y int) bool {
	return x >= 0 && x < s.size && y >= 0 && y < s.size
}

// Frame returns a copy of the current state.
func (s *Simulation) Frame() models.Frame {
	return models.Frame{
		SimID:     s.id,
		Step:      s.step,
		Size:      s.size,
		Cells:     append([]int8(nil), s.cells...),
		Heat:      append([]float64(nil), s.heat...),
		CreatedAt: time.Now().UTC(),
	}
}

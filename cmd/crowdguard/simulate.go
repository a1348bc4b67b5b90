package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/service/placement"
	"github.com/Temutjin2k/crowdguard/internal/service/planner"
	"github.com/Temutjin2k/crowdguard/internal/service/simulation"
)

type simulateOptions struct {
	steps       int
	reportEvery int
	gridSize    int
	people      int
	obstacles   float64
	seed        uint64
	units       int
	blocks      int
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulation offline and report prediction accuracy and unit placement",
		Long: `Runs the crowd simulation without a broker. Every reported step compares the
persistence forecast (the current grid reused as the next one) with the real
next grid, then plans unit placement and zone redirections on the final grid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.steps, "steps", 30, "number of steps to simulate")
	cmd.Flags().IntVar(&opts.reportEvery, "report-every", 5, "print accuracy every n steps")
	cmd.Flags().IntVar(&opts.gridSize, "grid", simulation.DefaultGridSize, "grid side length")
	cmd.Flags().IntVar(&opts.people, "people", simulation.DefaultPeople, "number of people")
	cmd.Flags().Float64Var(&opts.obstacles, "obstacles", simulation.DefaultObstacleRatio, "share of obstacle cells")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one")
	cmd.Flags().IntVar(&opts.units, "units", 5, "security units to place")
	cmd.Flags().IntVar(&opts.blocks, "blocks", 5, "zones per grid side")

	return cmd
}

func runSimulate(w io.Writer, opts *simulateOptions) error {
	if opts.steps < 1 {
		return fmt.Errorf("steps must be positive")
	}
	if opts.reportEvery < 1 {
		opts.reportEvery = 1
	}

	sim, err := simulation.New(simulation.Config{
		GridSize:      opts.gridSize,
		People:        opts.people,
		ObstacleRatio: opts.obstacles,
		Seed:          opts.seed,
	})
	if err != nil {
		return err
	}

	acc := table.NewWriter()
	acc.SetOutputMirror(w)
	acc.SetStyle(table.StyleLight)
	acc.SetTitle("simulation " + sim.ID())
	acc.AppendHeader(table.Row{"Step", "Overall %", "Position %", "Clustering %", "Direction %"})

	var prev *models.Frame
	cur := sim.Frame()
	for i := 1; i <= opts.steps; i++ {
		sim.Step()
		next := sim.Frame()

		if i%opts.reportEvery == 0 || i == opts.steps {
			a, err := simulation.Accuracy(prev, &next, &cur)
			if err != nil {
				return err
			}
			acc.AppendRow(table.Row{next.Step, pct(a.Overall), pct(a.Position), pct(a.Clustering), pct(a.Direction)})
		}

		last := cur
		prev = &last
		cur = next
	}
	acc.Render()

	heat := simulation.Blur(cur.Heat, cur.Size, 2.0)
	units := placement.Plan(heat, cur.Size, opts.units)

	pt := table.NewWriter()
	pt.SetOutputMirror(w)
	pt.SetStyle(table.StyleLight)
	pt.SetTitle("unit placement")
	pt.AppendHeader(table.Row{"Unit", "Row", "Col", "Resources"})
	for i, u := range units {
		pt.AppendRow(table.Row{i + 1, u.Point.X, u.Point.Y, fmt.Sprintf("%.1f", u.Resources)})
	}
	pt.Render()

	zones := simulation.ToZones(&cur, opts.blocks, models.Location{})
	p := planner.New(planner.DefaultRules())
	positions := p.RecommendPositions(zones)
	plans := p.PlanRedirections(zones)
	summary := planner.Summarize(zones, positions, plans)

	st := table.NewWriter()
	st.SetOutputMirror(w)
	st.SetStyle(table.StyleLight)
	st.SetTitle("zone plan")
	st.AppendRows([]table.Row{
		{"zones", len(zones)},
		{"critical zones", summary.CriticalZones},
		{"high risk zones", summary.HighRiskZones},
		{"recommended positions", summary.TotalRecommendations},
		{"redirections", summary.TotalRedirections},
		{"people to redirect", summary.PeopleToRedirect},
	})
	st.Render()

	return nil
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

package config

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

const HelpMessage = `crowdguard - crowd safety dashboard data service

Modes:
  monitor-service     dashboard API, live tracker websocket, frame consumer
  simulation-service  crowd grid simulation publishing density frames

Every setting can be overridden by the environment variable shown by PrintConfig.
`

// PrintConfig writes the effective configuration as a table. Secrets are masked.
func PrintConfig(w io.Writer, cfg *Config) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("crowdguard " + cfg.Version)
	t.AppendHeader(table.Row{"Setting", "Value"})

	t.AppendRows([]table.Row{
		{"mode", cfg.Mode},
		{"log level", cfg.LogLevel},
		{"database", cfg.Database.Host + ":" + cfg.Database.Port + "/" + cfg.Database.Database},
		{"rabbitmq", cfg.RabbitMQ.Host + ":" + cfg.RabbitMQ.Port},
	})
	t.AppendSeparator()

	switch cfg.Mode {
	case types.SimulationService:
		t.AppendRows([]table.Row{
			{"grid size", cfg.Simulation.GridSize},
			{"people", cfg.Simulation.People},
			{"obstacle ratio", cfg.Simulation.ObstacleRatio},
			{"step interval", cfg.Simulation.StepInterval},
			{"max steps", cfg.Simulation.MaxSteps},
		})
	default:
		t.AppendRows([]table.Row{
			{"http port", cfg.Server.Port},
			{"allowed origins", orAll(cfg.Server.AllowedOrigins)},
			{"upstream", orNone(cfg.Upstream.BaseURL)},
			{"locationiq key", mask(cfg.ExternalAPI.LocationIQAPIKey)},
			{"refresh interval", cfg.Dashboard.RefreshInterval},
			{"live interval", cfg.Dashboard.LiveInterval},
			{"jwt secret", mask(cfg.Auth.JWTSecret)},
		})
	}

	t.Render()
}

func mask(s string) string {
	if s == "" {
		return "-"
	}
	return strings.Repeat("*", 8)
}

func orNone(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}

func orAll(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ", ")
}

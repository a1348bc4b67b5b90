package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/configparser"
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode not provided")
	ErrInvalidMode     = errors.New("invalid mode")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode     types.ServiceMode
		Version  string `env:"APP_VERSION" default:"dev"`
		LogLevel string `env:"LOG_LEVEL" default:"INFO"`

		Database    DatabaseConfig
		RabbitMQ    RabbitMQConfig
		Server      ServerConfig
		Upstream    UpstreamConfig
		ExternalAPI ExternalAPIConfig
		Dashboard   DashboardConfig
		Simulation  SimulationConfig
		Auth        Auth
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"crowdguard"`
		Password string `env:"DATABASE_PASSWORD" default:"crowdguard"`
		Database string `env:"DATABASE_DATABASE" default:"crowdguard"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	ServerConfig struct {
		Port            string        `env:"SERVER_PORT" default:"8080"`
		AllowedOrigins  []string      `env:"SERVER_ALLOWED_ORIGINS"`
		RateLimit       float64       `env:"SERVER_RATE_LIMIT" default:"5"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"5s"`
	}

	// UpstreamConfig points at the prediction backend. An empty base URL disables it.
	UpstreamConfig struct {
		BaseURL  string        `env:"UPSTREAM_BASE_URL"`
		Timeout  time.Duration `env:"UPSTREAM_TIMEOUT" default:"10s"`
		RetryMax int           `env:"UPSTREAM_RETRY_MAX" default:"1"`
	}

	ExternalAPIConfig struct {
		LocationIQAPIKey  string `env:"LOCATIONIQ_API_KEY"`
		LocationIQBaseURL string `env:"LOCATIONIQ_BASE_URL" default:"https://us1.locationiq.com"`
	}

	DashboardConfig struct {
		RefreshInterval time.Duration `env:"DASHBOARD_REFRESH_INTERVAL" default:"5m"`
		LiveInterval    time.Duration `env:"DASHBOARD_LIVE_INTERVAL" default:"10s"`
		PathSegments    int           `env:"DASHBOARD_PATH_SEGMENTS" default:"8"`
		// OriginLat/OriginLng anchor simulation frames on the map.
		OriginLat  float64 `env:"DASHBOARD_ORIGIN_LAT" default:"51.5074"`
		OriginLng  float64 `env:"DASHBOARD_ORIGIN_LNG" default:"-0.1278"`
		ZoneBlocks int     `env:"DASHBOARD_ZONE_BLOCKS" default:"5"`
	}

	SimulationConfig struct {
		GridSize      int           `env:"SIMULATION_GRID_SIZE" default:"50"`
		People        int           `env:"SIMULATION_PEOPLE" default:"100"`
		ObstacleRatio float64       `env:"SIMULATION_OBSTACLE_RATIO" default:"0.02"`
		Seed          uint64        `env:"SIMULATION_SEED" default:"0"`
		StepInterval  time.Duration `env:"SIMULATION_STEP_INTERVAL" default:"1s"`
		MaxSteps      int           `env:"SIMULATION_MAX_STEPS" default:"0"`
	}

	Auth struct {
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"12h"`
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// PoolLimits tunes the pgx pool.
func (c DatabaseConfig) PoolLimits() (maxConns, minConns int32, maxLifetime, maxIdle time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// NewConfig loads .env, the YAML file at filepath and the environment into a Config
// running in the given mode.
func NewConfig(filepath string, mode types.ServiceMode) (*Config, error) {
	cfg := &Config{}

	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := setMode(cfg, mode); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setMode(cfg *Config, mode types.ServiceMode) error {
	switch mode {
	case "":
		return ErrModeNotProvided
	case types.MonitorService, types.SimulationService:
		cfg.Mode = mode
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
)

type Health struct {
	serviceName string
	version     string
	startedAt   time.Time
	log         logger.Logger
}

func NewHealth(serviceName, version string, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		version:     version,
		startedAt:   time.Now(),
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the service
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	response := envelope{
		"status": "available",
		"system_info": map[string]string{
			"service-name": a.serviceName,
			"version":      a.version,
			"uptime":       time.Since(a.startedAt).Truncate(time.Second).String(),
		},
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
	}
}

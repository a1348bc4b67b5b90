package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
	"github.com/Temutjin2k/crowdguard/internal/service/nearby"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

type NearbyService interface {
	Search(ctx context.Context, lat, lng, radiusKm float64) ([]models.EmergencyService, error)
}

type Nearby struct {
	s NearbyService
	l logger.Logger
}

func NewNearby(s NearbyService, l logger.Logger) *Nearby {
	return &Nearby{
		s: s,
		l: l,
	}
}

// Search godoc
// @Summary      Nearby emergency services
// @Description  Services within radius km of the location, nearest first
// @Tags         Services
// @Produce      json
// @Param        lat     query  number  true   "latitude"
// @Param        lng     query  number  true   "longitude"
// @Param        radius  query  number  false  "radius in km (0-50]"  default(1)
// @Success      200  {object}  map[string]any
// @Failure      422  {object}  map[string]any
// @Router       /v1/services/nearby [get]
func (h *Nearby) Search(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "nearby_services")

	v := validator.New()
	qs := r.URL.Query()
	v.Check(qs.Has("lat"), "lat", "must be provided")
	v.Check(qs.Has("lng"), "lng", "must be provided")
	lat := readFloat(qs, "lat", 0, v)
	lng := readFloat(qs, "lng", 0, v)
	radius := readFloat(qs, "radius", nearby.DefaultRadiusKm, v)

	v.Check(geocalc.ValidCoordinate(lat, lng), "location", types.ErrInvalidCoordinates.Error())
	v.Check(nearby.ValidRadius(radius), "radius", types.ErrInvalidRadius.Error())
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	services, err := h.s.Search(ctx, lat, lng, radius)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to search nearby services", err)
		serviceErrorResponse(w, err)
		return
	}

	env := envelope{"services": services, "count": len(services), "radius_km": radius}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

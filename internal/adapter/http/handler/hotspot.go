package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/crowdguard/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/hotspot"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

const defaultTimeframe = 30

type HotspotService interface {
	Predict(ctx context.Context, minutes int) (*models.HotspotPrediction, error)
	CrowdSamples() []models.CrowdSample
	Live(ctx context.Context, lat, lng float64) ([]models.LiveHotspot, error)
}

type Hotspot struct {
	s HotspotService
	l logger.Logger
}

func NewHotspot(s HotspotService, l logger.Logger) *Hotspot {
	return &Hotspot{
		s: s,
		l: l,
	}
}

// Predict godoc
// @Summary      Predicted hotspots
// @Description  Hotspots expected after the given number of minutes
// @Tags         Hotspots
// @Produce      json
// @Param        minutes  query  int  false  "10, 20, ... 120"  default(30)
// @Success      200  {object}  models.HotspotPrediction
// @Failure      422  {object}  map[string]any
// @Router       /v1/hotspots/predict [get]
func (h *Hotspot) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "predict_hotspots")

	v := validator.New()
	minutes := readInt(r.URL.Query(), "minutes", defaultTimeframe, v)
	v.Check(hotspot.ValidTimeframe(minutes), "minutes", types.ErrInvalidTimeframe.Error())
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	prediction, err := h.s.Predict(ctx, minutes)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to predict hotspots", err)
		serviceErrorResponse(w, err)
		return
	}

	h.write(ctx, w, prediction)
}

// Samples godoc
// @Summary      Reference crowd samples
// @Tags         Hotspots
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/hotspots/samples [get]
func (h *Hotspot) Samples(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "crowd_samples")

	samples := h.s.CrowdSamples()
	h.write(ctx, w, envelope{"samples": samples, "count": len(samples)})
}

// Live godoc
// @Summary      Live hotspots around a location
// @Tags         Hotspots
// @Accept       json
// @Produce      json
// @Param        request  body  dto.LocationRequest  true  "tracked location"
// @Success      200  {object}  dto.LiveHotspotsResponse
// @Failure      422  {object}  map[string]any
// @Failure      429  {object}  map[string]string
// @Router       /v1/hotspots/live [post]
func (h *Hotspot) Live(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionLiveHotspotsPoll)

	var req dto.LocationRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	if req.Validate(v); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	loc := req.Location()
	hotspots, err := h.s.Live(ctx, loc.Lat, loc.Lng)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get live hotspots", err)
		serviceErrorResponse(w, err)
		return
	}

	h.write(ctx, w, dto.LiveHotspotsResponse{Location: loc, Hotspots: hotspots})
}

func (h *Hotspot) write(ctx context.Context, w http.ResponseWriter, data any) {
	if err := writeJSON(w, http.StatusOK, data, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

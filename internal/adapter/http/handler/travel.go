package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/crowdguard/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

type TravelService interface {
	Path(ctx context.Context, source, destination string) (*models.TravelPath, error)
}

type Travel struct {
	s TravelService
	l logger.Logger
}

func NewTravel(s TravelService, l logger.Logger) *Travel {
	return &Travel{
		s: s,
		l: l,
	}
}

// Path godoc
// @Summary      Crowd-annotated travel path
// @Tags         Travel
// @Accept       json
// @Produce      json
// @Param        request  body  dto.TravelPathRequest  true  "place names"
// @Success      200  {object}  models.TravelPath
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /v1/travel/path [post]
func (h *Travel) Path(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "travel_path")

	var req dto.TravelPathRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	if req.Validate(v); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	path, err := h.s.Path(ctx, req.Source, req.Destination)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to find travel path", err,
			"source", req.Source,
			"destination", req.Destination,
		)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, path, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

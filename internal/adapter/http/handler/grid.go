package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/crowdguard/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/service/crowdgrid"
	"github.com/Temutjin2k/crowdguard/internal/service/placement"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

type GridService interface {
	Routes(ctx context.Context, rows [][]int8, start, goal models.Point) (*models.GridRoutes, error)
	Placement(ctx context.Context, units int) (*models.UnitPlacement, error)
}

type Grid struct {
	s GridService
	l logger.Logger
}

func NewGrid(s GridService, l logger.Logger) *Grid {
	return &Grid{
		s: s,
		l: l,
	}
}

// Routes godoc
// @Summary      Density-aware grid routes
// @Description  Up to three alternative routes between two cells. Without a grid the
// @Description  latest simulation frame is used.
// @Tags         Simulation
// @Accept       json
// @Produce      json
// @Param        request  body  dto.GridPathRequest  true  "grid and endpoints"
// @Success      200  {object}  models.GridRoutes
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /v1/grid/path [post]
func (h *Grid) Routes(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "grid_path")

	var req dto.GridPathRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	if req.Validate(v); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	start, goal := req.Points()
	routes, err := h.s.Routes(ctx, req.Grid, start, goal)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to find grid routes", err)
		serviceErrorResponse(w, err)
		return
	}

	h.write(ctx, w, routes)
}

// Placement godoc
// @Summary      Emergency unit placement
// @Description  Unit positions on the borders of crowd clusters of the latest simulation frame
// @Tags         Simulation
// @Produce      json
// @Param        units  query  int  false  "number of units (1-20)"  default(5)
// @Success      200  {object}  models.UnitPlacement
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /v1/placement [get]
func (h *Grid) Placement(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "unit_placement")

	v := validator.New()
	units := readInt(r.URL.Query(), "units", placement.DefaultUnits, v)
	v.Check(units > 0, "units", "must be greater than zero")
	v.Check(units <= crowdgrid.MaxUnits, "units", "must be a maximum of 20")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	plan, err := h.s.Placement(ctx, units)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to place units", err)
		serviceErrorResponse(w, err)
		return
	}

	h.write(ctx, w, plan)
}

func (h *Grid) write(ctx context.Context, w http.ResponseWriter, data any) {
	if err := writeJSON(w, http.StatusOK, data, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

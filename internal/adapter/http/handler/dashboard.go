package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/crowdguard/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
)

type DashboardService interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Refresh(ctx context.Context) (*models.Snapshot, error)
	History(ctx context.Context, filter models.HistoryFilter) ([]models.SnapshotRecord, error)
	ConfirmDeployment(ctx context.Context, positionID, confirmedBy string) (*models.Deployment, error)
	UpdateRedirectionStatus(ctx context.Context, planID string, status types.RedirectionStatus, changedBy string) (*models.RedirectionStatusChange, error)
}

type Dashboard struct {
	s DashboardService
	l logger.Logger
}

func NewDashboard(s DashboardService, l logger.Logger) *Dashboard {
	return &Dashboard{
		s: s,
		l: l,
	}
}

// GetDashboard godoc
// @Summary      Dashboard snapshot
// @Description  Zones, recommended positions, redirection plans and summary of the latest refresh
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Failure      500  {object}  map[string]string
// @Router       /v1/dashboard [get]
func (h *Dashboard) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_dashboard")

	snap, ok := h.snapshot(ctx, w)
	if !ok {
		return
	}

	h.write(ctx, w, http.StatusOK, snap)
}

// GetZones godoc
// @Summary      Predicted zones
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/zones [get]
func (h *Dashboard) GetZones(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_zones")

	snap, ok := h.snapshot(ctx, w)
	if !ok {
		return
	}

	h.write(ctx, w, http.StatusOK, envelope{
		"zones":           snap.Zones,
		"source":          snap.Sources.Zones,
		"prediction_time": snap.PredictionTime,
	})
}

// GetRecommendations godoc
// @Summary      Recommended personnel positions
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/recommendations [get]
func (h *Dashboard) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_recommendations")

	snap, ok := h.snapshot(ctx, w)
	if !ok {
		return
	}

	h.write(ctx, w, http.StatusOK, envelope{
		"recommendations": snap.Recommendations,
		"source":          snap.Sources.Recommendations,
		"prediction_time": snap.PredictionTime,
	})
}

// GetRedirections godoc
// @Summary      Crowd redirection plans
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/redirections [get]
func (h *Dashboard) GetRedirections(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_redirections")

	snap, ok := h.snapshot(ctx, w)
	if !ok {
		return
	}

	h.write(ctx, w, http.StatusOK, envelope{
		"redirections":    snap.Redirections,
		"summary":         snap.Summary,
		"source":          snap.Sources.Redirections,
		"prediction_time": snap.PredictionTime,
	})
}

// Refresh godoc
// @Summary      Force a dashboard refresh
// @Description  Concurrent callers share one upstream round
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Router       /v1/dashboard/refresh [post]
func (h *Dashboard) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionDashboardRefresh)

	snap, err := h.s.Refresh(ctx)
	if err != nil && snap == nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to refresh dashboard", err)
		serviceErrorResponse(w, err)
		return
	}
	if err != nil {
		// the snapshot is served even if history could not be saved
		h.l.Warn(ctx, "refreshed snapshot not persisted", "error", err.Error())
	}

	h.write(ctx, w, http.StatusOK, snap)
}

// GetHistory godoc
// @Summary      Snapshot history
// @Tags         Dashboard
// @Produce      json
// @Param        limit  query  int  false  "number of snapshots (1-200)"  default(20)
// @Success      200  {object}  map[string]any
// @Failure      422  {object}  map[string]any
// @Router       /v1/dashboard/history [get]
func (h *Dashboard) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_dashboard_history")

	v := validator.New()
	filter := models.HistoryFilter{
		Limit: readInt(r.URL.Query(), "limit", models.DefaultHistoryLimit, v),
	}

	if filter.Validate(v); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	records, err := h.s.History(ctx, filter)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list snapshot history", err)
		serviceErrorResponse(w, err)
		return
	}

	h.write(ctx, w, http.StatusOK, envelope{"history": records, "count": len(records)})
}

// ConfirmDeployment godoc
// @Summary      Confirm a recommended position
// @Tags         Dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  dto.ConfirmDeploymentRequest  true  "position to deploy"
// @Success      201  {object}  models.Deployment
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /v1/deployments [post]
func (h *Dashboard) ConfirmDeployment(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionConfirmDeployment)

	var req dto.ConfirmDeploymentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	if req.Validate(v); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	principal := models.PrincipalFromContext(ctx)
	ctx = wrap.WithUserID(ctx, principal.Subject)

	deployment, err := h.s.ConfirmDeployment(ctx, req.PositionID, principal.Subject)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to confirm deployment", err, "position_id", req.PositionID)
		serviceErrorResponse(w, err)
		return
	}

	h.l.Info(ctx, "deployment confirmed", "position_id", req.PositionID, "deployment_id", deployment.ID.String())

	h.write(ctx, w, http.StatusCreated, deployment)
}

// UpdateRedirectionStatus godoc
// @Summary      Change the status of a redirection plan
// @Tags         Dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                        true  "redirection plan id"
// @Param        request  body  dto.RedirectionStatusRequest  true  "new status"
// @Success      200  {object}  models.RedirectionStatusChange
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /v1/redirections/{id}/status [put]
func (h *Dashboard) UpdateRedirectionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionRedirectionUpdate)

	planID := r.PathValue("id")
	ctx = wrap.WithPlanID(ctx, planID)

	var req dto.RedirectionStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	v.Check(planID != "", "id", "must be provided")
	if req.Validate(v); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	principal := models.PrincipalFromContext(ctx)
	ctx = wrap.WithUserID(ctx, principal.Subject)

	change, err := h.s.UpdateRedirectionStatus(ctx, planID, types.RedirectionStatus(req.Status), principal.Subject)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update redirection status", err)
		serviceErrorResponse(w, err)
		return
	}

	h.write(ctx, w, http.StatusOK, change)
}

func (h *Dashboard) snapshot(ctx context.Context, w http.ResponseWriter) (*models.Snapshot, bool) {
	snap, err := h.s.Snapshot(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get dashboard snapshot", err)
		serviceErrorResponse(w, err)
		return nil, false
	}
	return snap, true
}

func (h *Dashboard) write(ctx context.Context, w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

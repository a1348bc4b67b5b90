package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
)

// ConfirmDeployment records that a recommended position has been staffed.
// The deployment row and its dispatch event are committed together; forwarding
// to the upstream API is best effort.
func (s *Service) ConfirmDeployment(ctx context.Context, positionID, confirmedBy string) (*models.Deployment, error) {
	const op = "Service.ConfirmDeployment"
	ctx = wrap.WithAction(ctx, types.ActionConfirmDeployment)

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	pos, ok := findPosition(snap, positionID)
	if !ok {
		return nil, wrap.Error(ctx, types.ErrPositionNotFound)
	}

	d := &models.Deployment{
		ID:           uuid.New(),
		PositionID:   pos.ID,
		Type:         pos.Type,
		Lat:          pos.Lat,
		Lng:          pos.Lng,
		CoverageArea: pos.CoverageArea,
		Priority:     pos.Priority,
		ConfirmedBy:  confirmedBy,
		ConfirmedAt:  s.now().UTC(),
	}

	err = s.trm.Do(ctx, func(ctx context.Context) error {
		if err := s.deployments.Create(ctx, d); err != nil {
			return fmt.Errorf("%w: %w", types.ErrDatabaseFailed, err)
		}
		return s.dispatch.PublishDeploymentConfirmed(ctx, *d)
	})
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.mu.Lock()
	s.confirmed[pos.ID] = struct{}{}
	if s.current != nil {
		s.applyActions(s.current)
	}
	s.mu.Unlock()

	pos.Status = types.PositionConfirmed
	if s.upstream != nil && s.upstream.Enabled() {
		if err := s.upstream.ConfirmDeployment(ctx, pos); err != nil {
			s.l.Warn(ctx, "could not forward deployment upstream", "position_id", pos.ID, "error", err.Error())
		}
	}

	metrics.DeploymentsConfirmed.WithLabelValues(pos.Type.String()).Inc()
	s.l.Info(ctx, "deployment confirmed", "position_id", pos.ID, "deployment_id", d.ID.String(), "type", pos.Type)

	return d, nil
}

// UpdateRedirectionStatus records a new status for a redirection plan.
func (s *Service) UpdateRedirectionStatus(ctx context.Context, planID string, status types.RedirectionStatus, changedBy string) (*models.RedirectionStatusChange, error) {
	const op = "Service.UpdateRedirectionStatus"
	ctx = wrap.WithPlanID(wrap.WithAction(ctx, types.ActionRedirectionUpdate), planID)

	if !status.Valid() {
		return nil, wrap.Error(ctx, types.ErrInvalidStatus)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if !hasPlan(snap, planID) {
		return nil, wrap.Error(ctx, types.ErrRedirectionNotFound)
	}

	change := &models.RedirectionStatusChange{
		PlanID:    planID,
		Status:    status,
		ChangedBy: changedBy,
		ChangedAt: s.now().UTC(),
	}

	err = s.trm.Do(ctx, func(ctx context.Context) error {
		if err := s.redirections.Create(ctx, change); err != nil {
			return fmt.Errorf("%w: %w", types.ErrDatabaseFailed, err)
		}
		return s.dispatch.PublishRedirectionStatus(ctx, *change)
	})
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.mu.Lock()
	s.statuses[planID] = status
	if s.current != nil {
		s.applyActions(s.current)
	}
	s.mu.Unlock()

	if s.upstream != nil && s.upstream.Enabled() {
		if err := s.upstream.UpdateRedirectionStatus(ctx, planID, status); err != nil {
			s.l.Warn(ctx, "could not forward redirection status upstream", "error", err.Error())
		}
	}

	metrics.RedirectionStatusUpdates.WithLabelValues(status.String()).Inc()
	s.l.Info(ctx, "redirection status updated", "status", status)

	return change, nil
}

func findPosition(snap *models.Snapshot, id string) (models.RecommendedPosition, bool) {
	for _, p := range snap.Recommendations {
		if p.ID == id {
			return p, true
		}
	}
	return models.RecommendedPosition{}, false
}

func hasPlan(snap *models.Snapshot, id string) bool {
	for _, p := range snap.Redirections {
		if p.ID == id {
			return true
		}
	}
	return false
}

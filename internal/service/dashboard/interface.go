package dashboard

import (
	"context"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

type Upstream interface {
	Enabled() bool
	HeatmapPredictions(ctx context.Context) ([]models.Zone, error)
	PersonnelRecommendations(ctx context.Context) ([]models.RecommendedPosition, error)
	RedirectionPlan(ctx context.Context) ([]models.RedirectionPlan, error)
	ConfirmDeployment(ctx context.Context, pos models.RecommendedPosition) error
	UpdateRedirectionStatus(ctx context.Context, id string, status types.RedirectionStatus) error
}

type SnapshotRepo interface {
	Save(ctx context.Context, snap *models.Snapshot) (int64, error)
	List(ctx context.Context, limit int) ([]models.SnapshotRecord, error)
	Latest(ctx context.Context) (*models.Snapshot, error)
}

type DeploymentRepo interface {
	Create(ctx context.Context, d *models.Deployment) error
	ConfirmedPositions(ctx context.Context) (map[string]struct{}, error)
}

type RedirectionRepo interface {
	Create(ctx context.Context, c *models.RedirectionStatusChange) error
	LatestStatuses(ctx context.Context) (map[string]types.RedirectionStatus, error)
}

type DispatchPublisher interface {
	PublishDeploymentConfirmed(ctx context.Context, d models.Deployment) error
	PublishRedirectionStatus(ctx context.Context, c models.RedirectionStatusChange) error
}

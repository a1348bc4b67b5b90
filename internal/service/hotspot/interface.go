package hotspot

import (
	"context"

	"github.com/google/uuid"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

type Upstream interface {
	Enabled() bool
	PredictHotspots(ctx context.Context, minutes int) ([]models.PredictedHotspot, error)
	LiveHotspots(ctx context.Context, lat, lng float64) ([]models.LiveHotspot, error)
}

// FrameSource gives access to the latest simulation frame.
type FrameSource interface {
	Latest() (*models.Frame, bool)
}

// LiveSource answers the live hotspot query for one location.
type LiveSource interface {
	Live(ctx context.Context, lat, lng float64) ([]models.LiveHotspot, error)
}

// Hub delivers messages to websocket subscribers.
type Hub interface {
	SendTo(id uuid.UUID, msg any) error
	Broadcast(msg any) []uuid.UUID
	Delete(id uuid.UUID) error
}

package hotspot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
	"github.com/Temutjin2k/crowdguard/internal/service/simulation"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
)

const DefaultLiveInterval = 10 * time.Second

type FeedConfig struct {
	Interval time.Duration
	// Origin is where frame summaries are projected for broadcast.
	Origin models.Location
	Blocks int
}

type subscriber struct {
	mu      sync.Mutex
	loc     models.Location
	polling bool
	// moved is set when the location changes while a poll is running
	moved bool
}

func (s *subscriber) move(loc models.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = loc
	s.moved = true
}

// claim marks the subscriber as polling and returns the location to poll.
func (s *subscriber) claim() (models.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.polling {
		return models.Location{}, false
	}
	s.polling, s.moved = true, false
	return s.loc, true
}

// release ends a poll, or hands back the new location if it moved meanwhile.
func (s *subscriber) release() (models.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moved {
		s.moved = false
		return s.loc, true
	}
	s.polling = false
	return models.Location{}, false
}

// LiveFeed pushes live hotspots to websocket subscribers. A single ticker polls every
// subscriber; a subscriber whose previous poll is still running is skipped, and a
// location that moves during a poll is polled again as soon as it finishes.
type LiveFeed struct {
	source LiveSource
	hub    Hub
	cfg    FeedConfig
	l      logger.Logger

	mu   sync.RWMutex
	subs map[uuid.UUID]*subscriber
	wg   sync.WaitGroup
}

func NewLiveFeed(source LiveSource, hub Hub, cfg FeedConfig, l logger.Logger) *LiveFeed {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultLiveInterval
	}
	if cfg.Blocks <= 0 {
		cfg.Blocks = DefaultBlocks
	}
	return &LiveFeed{
		source: source,
		hub:    hub,
		cfg:    cfg,
		l:      l,
		subs:   make(map[uuid.UUID]*subscriber),
	}
}

// Subscribe starts tracking loc for the websocket client id and pushes its first update.
func (f *LiveFeed) Subscribe(ctx context.Context, id uuid.UUID, loc models.Location) error {
	if !geocalc.ValidCoordinate(loc.Lat, loc.Lng) {
		return types.ErrInvalidCoordinates
	}

	sub := &subscriber{loc: loc}
	f.mu.Lock()
	f.subs[id] = sub
	n := len(f.subs)
	f.mu.Unlock()

	metrics.WebSocketConnectionsGauge.WithLabelValues("live").Set(float64(n))
	f.l.Info(ctx, "live subscriber added", "subscriber_id", id.String())

	f.poll(ctx, id, sub)
	return nil
}

// Unsubscribe stops tracking id. It does not close the connection.
func (f *LiveFeed) Unsubscribe(id uuid.UUID) {
	f.mu.Lock()
	delete(f.subs, id)
	n := len(f.subs)
	f.mu.Unlock()

	metrics.WebSocketConnectionsGauge.WithLabelValues("live").Set(float64(n))
}

func (f *LiveFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// UpdateLocation replaces the tracked location and polls right away.
func (f *LiveFeed) UpdateLocation(ctx context.Context, id uuid.UUID, loc models.Location) error {
	if !geocalc.ValidCoordinate(loc.Lat, loc.Lng) {
		return types.ErrInvalidCoordinates
	}

	f.mu.RLock()
	sub, ok := f.subs[id]
	f.mu.RUnlock()
	if !ok {
		return types.ErrNotFound
	}

	sub.move(loc)
	f.poll(ctx, id, sub)
	return nil
}

// HandleMessage processes one client message. Only location updates are understood;
// a bad location is reported back to the client and keeps the connection open.
func (f *LiveFeed) HandleMessage(ctx context.Context, id uuid.UUID, msg map[string]any) error {
	if t, _ := msg["type"].(string); t != models.LiveMessageLocation {
		return nil
	}

	lat, latOK := msg["lat"].(float64)
	lng, lngOK := msg["lng"].(float64)
	if !latOK || !lngOK {
		return f.sendError(id, types.ErrInvalidCoordinates)
	}

	err := f.UpdateLocation(ctx, id, models.Location{Lat: lat, Lng: lng})
	if errors.Is(err, types.ErrInvalidCoordinates) {
		return f.sendError(id, err)
	}
	return err
}

func (f *LiveFeed) sendError(id uuid.UUID, err error) error {
	return f.hub.SendTo(id, models.LiveErrorMessage{Type: models.LiveMessageError, Message: err.Error()})
}

// Run polls every subscriber on each tick until ctx is done.
func (f *LiveFeed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.wg.Wait()
			return
		case <-ticker.C:
			f.tick(ctx)
		}
	}
}

func (f *LiveFeed) tick(ctx context.Context) {
	f.mu.RLock()
	subs := make(map[uuid.UUID]*subscriber, len(f.subs))
	for id, sub := range f.subs {
		subs[id] = sub
	}
	f.mu.RUnlock()

	for id, sub := range subs {
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			f.poll(ctx, id, sub)
		}()
	}
}

// poll fetches and pushes hotspots for one subscriber unless a poll is already running for it.
func (f *LiveFeed) poll(ctx context.Context, id uuid.UUID, sub *subscriber) {
	loc, ok := sub.claim()
	if !ok {
		return
	}

	ctx = wrap.WithAction(ctx, types.ActionLiveHotspotsPoll)
	for {
		if !f.push(ctx, id, loc) {
			return
		}
		if loc, ok = sub.release(); !ok {
			return
		}
	}
}

// push sends the hotspots around loc and reports whether the subscriber is still connected.
func (f *LiveFeed) push(ctx context.Context, id uuid.UUID, loc models.Location) bool {
	hotspots, err := f.source.Live(ctx, loc.Lat, loc.Lng)
	if err != nil {
		f.l.Error(wrap.ErrorCtx(ctx, err), "failed to get live hotspots", err, "subscriber_id", id.String())
		return true
	}

	msg := models.LiveHotspotsMessage{
		Type:     models.LiveMessageHotspots,
		Location: loc,
		Hotspots: hotspots,
	}
	if err := f.hub.SendTo(id, msg); err != nil {
		f.drop(ctx, id, fmt.Errorf("send hotspots: %w", err))
		return false
	}
	return true
}

// BroadcastFrame tells every subscriber about a new simulation frame.
func (f *LiveFeed) BroadcastFrame(ctx context.Context, frame models.Frame) {
	msg := models.FrameSummaryMessage{
		Type:  models.LiveMessageFrame,
		SimID: frame.SimID,
		Step:  frame.Step,
		Zones: simulation.ToZones(&frame, f.cfg.Blocks, f.cfg.Origin),
	}
	for _, id := range f.hub.Broadcast(msg) {
		f.drop(ctx, id, errors.New("broadcast frame failed"))
	}
}

func (f *LiveFeed) drop(ctx context.Context, id uuid.UUID, reason error) {
	f.l.Warn(ctx, "dropping live subscriber", "subscriber_id", id.String(), "reason", reason.Error())
	f.Unsubscribe(id)
	_ = f.hub.Delete(id)
}

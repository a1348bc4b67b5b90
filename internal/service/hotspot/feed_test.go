package hotspot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
)

type fakeHub struct {
	mu         sync.Mutex
	sent       map[uuid.UUID][]any
	broadcasts []any
	sendErr    error
	failed     []uuid.UUID
	deleted    []uuid.UUID
}

func newFakeHub() *fakeHub {
	return &fakeHub{sent: make(map[uuid.UUID][]any)}
}

func (h *fakeHub) SendTo(id uuid.UUID, msg any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sendErr != nil {
		return h.sendErr
	}
	h.sent[id] = append(h.sent[id], msg)
	return nil
}

func (h *fakeHub) Broadcast(msg any) []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, msg)
	return h.failed
}

func (h *fakeHub) Delete(id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, id)
	return nil
}

func (h *fakeHub) messages(id uuid.UUID) []any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]any(nil), h.sent[id]...)
}

type fakeSource struct {
	calls atomic.Int32
	block chan struct{}
	err   error
}

func (s *fakeSource) Live(_ context.Context, lat, lng float64) ([]models.LiveHotspot, error) {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return []models.LiveHotspot{{Lat: lat, Lng: lng, Severity: 1, Radius: 200}}, nil
}

var delhi = models.Location{Lat: 28.6139, Lng: 77.209}

func newFeed(src LiveSource, hub Hub) *LiveFeed {
	return NewLiveFeed(src, hub, FeedConfig{Interval: 5 * time.Millisecond, Origin: delhi}, logger.Nop())
}

func TestSubscribePushesImmediately(t *testing.T) {
	hub := newFakeHub()
	feed := newFeed(&fakeSource{}, hub)
	id := uuid.New()

	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))
	assert.Equal(t, 1, feed.Len())

	msgs := hub.messages(id)
	require.Len(t, msgs, 1)
	msg, ok := msgs[0].(models.LiveHotspotsMessage)
	require.True(t, ok)
	assert.Equal(t, models.LiveMessageHotspots, msg.Type)
	assert.Equal(t, delhi, msg.Location)
	assert.Len(t, msg.Hotspots, 1)
}

func TestSubscribeRejectsBadLocation(t *testing.T) {
	feed := newFeed(&fakeSource{}, newFakeHub())
	err := feed.Subscribe(context.Background(), uuid.New(), models.Location{Lat: 100})
	assert.ErrorIs(t, err, types.ErrInvalidCoordinates)
	assert.Zero(t, feed.Len())
}

func TestHandleLocationMessage(t *testing.T) {
	hub := newFakeHub()
	feed := newFeed(&fakeSource{}, hub)
	id := uuid.New()
	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))

	err := feed.HandleMessage(context.Background(), id, map[string]any{"type": "location", "lat": 19.07, "lng": 72.87})
	require.NoError(t, err)

	msgs := hub.messages(id)
	require.Len(t, msgs, 2)
	last := msgs[1].(models.LiveHotspotsMessage)
	assert.Equal(t, models.Location{Lat: 19.07, Lng: 72.87}, last.Location)
}

func TestHandleBadLocationReportsError(t *testing.T) {
	hub := newFakeHub()
	feed := newFeed(&fakeSource{}, hub)
	id := uuid.New()
	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))

	require.NoError(t, feed.HandleMessage(context.Background(), id, map[string]any{"type": "location", "lat": "x"}))
	require.NoError(t, feed.HandleMessage(context.Background(), id, map[string]any{"type": "location", "lat": 0.0, "lng": 500.0}))

	msgs := hub.messages(id)
	require.Len(t, msgs, 3)
	for _, m := range msgs[1:] {
		e, ok := m.(models.LiveErrorMessage)
		require.True(t, ok)
		assert.Equal(t, models.LiveMessageError, e.Type)
		assert.Equal(t, types.ErrInvalidCoordinates.Error(), e.Message)
	}
}

func TestHandleIgnoresOtherMessages(t *testing.T) {
	hub := newFakeHub()
	feed := newFeed(&fakeSource{}, hub)
	id := uuid.New()

	require.NoError(t, feed.HandleMessage(context.Background(), id, map[string]any{"type": "ping"}))
	assert.Empty(t, hub.messages(id))
}

func TestUpdateUnknownSubscriber(t *testing.T) {
	feed := newFeed(&fakeSource{}, newFakeHub())
	err := feed.UpdateLocation(context.Background(), uuid.New(), delhi)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestPollSkipsWhileInFlight(t *testing.T) {
	src := &fakeSource{}
	hub := newFakeHub()
	feed := newFeed(src, hub)
	id := uuid.New()
	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))

	sub := feed.subs[id]
	_, ok := sub.claim()
	require.True(t, ok)
	feed.poll(context.Background(), id, sub)

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Len(t, hub.messages(id), 1)
}

func TestLocationMovedDuringPollIsPushed(t *testing.T) {
	src := &fakeSource{}
	hub := newFakeHub()
	feed := newFeed(src, hub)
	id := uuid.New()
	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))

	src.block = make(chan struct{})
	feed.tick(context.Background())
	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, time.Millisecond)

	moved := models.Location{Lat: 28.70, Lng: 77.10}
	require.NoError(t, feed.UpdateLocation(context.Background(), id, moved))

	close(src.block)
	feed.wg.Wait()

	msgs := hub.messages(id)
	require.Len(t, msgs, 3)
	assert.Equal(t, delhi, msgs[1].(models.LiveHotspotsMessage).Location)
	assert.Equal(t, moved, msgs[2].(models.LiveHotspotsMessage).Location)

	// the next poll starts normally
	feed.poll(context.Background(), id, feed.subs[id])
	assert.Len(t, hub.messages(id), 4)
}

func TestFailedSendDropsSubscriber(t *testing.T) {
	hub := newFakeHub()
	feed := newFeed(&fakeSource{}, hub)
	hub.sendErr = errors.New("peer gone")
	id := uuid.New()

	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))
	assert.Zero(t, feed.Len())
	assert.Equal(t, []uuid.UUID{id}, hub.deleted)
}

func TestSourceErrorKeepsSubscriber(t *testing.T) {
	hub := newFakeHub()
	feed := newFeed(&fakeSource{err: errors.New("boom")}, hub)
	id := uuid.New()

	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))
	assert.Equal(t, 1, feed.Len())
	assert.Empty(t, hub.messages(id))
}

func TestBroadcastFrame(t *testing.T) {
	hub := newFakeHub()
	feed := newFeed(&fakeSource{}, hub)

	gone := uuid.New()
	require.NoError(t, feed.Subscribe(context.Background(), gone, delhi))
	hub.failed = []uuid.UUID{gone}

	frame := models.Frame{SimID: "sim", Step: 7, Size: 10, Cells: make([]int8, 100)}
	feed.BroadcastFrame(context.Background(), frame)

	require.Len(t, hub.broadcasts, 1)
	msg := hub.broadcasts[0].(models.FrameSummaryMessage)
	assert.Equal(t, models.LiveMessageFrame, msg.Type)
	assert.Equal(t, "sim", msg.SimID)
	assert.Equal(t, 7, msg.Step)
	assert.Len(t, msg.Zones, DefaultBlocks*DefaultBlocks)

	assert.Zero(t, feed.Len())
	assert.Contains(t, hub.deleted, gone)
}

func TestRunPollsOnEveryTick(t *testing.T) {
	src := &fakeSource{}
	hub := newFakeHub()
	feed := newFeed(src, hub)
	id := uuid.New()
	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(hub.messages(id)) >= 4 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunDoesNotOverlapSlowPolls(t *testing.T) {
	src := &fakeSource{}
	hub := newFakeHub()
	feed := newFeed(src, hub)
	id := uuid.New()
	require.NoError(t, feed.Subscribe(context.Background(), id, delhi))
	src.block = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), src.calls.Load())

	cancel()
	close(src.block)
	<-done
}

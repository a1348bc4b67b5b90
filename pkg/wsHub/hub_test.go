package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/crowdguard/pkg/logger"
)

// startServer registers every upgraded connection in hub and echoes what it reads.
func startServer(t *testing.T, hub *ConnectionHub) (string, <-chan uuid.UUID) {
	t.Helper()

	registered := make(chan uuid.UUID, 4)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		id := uuid.MustParse(r.URL.Query().Get("id"))
		conn := NewConn(context.Background(), id, raw)
		if err := hub.Add(conn); err != nil {
			_ = conn.Close()
			return
		}
		registered <- id

		_ = conn.Listen(func(msg map[string]any) error {
			return hub.SendTo(id, map[string]any{"echo": msg["type"]})
		})
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), registered
}

func dial(t *testing.T, url string, id uuid.UUID) *websocket.Conn {
	t.Helper()

	c, _, err := websocket.DefaultDialer.Dial(url+"?id="+id.String(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func waitRegistered(t *testing.T, ch <-chan uuid.UUID) uuid.UUID {
	t.Helper()

	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not registered")
		return uuid.Nil
	}
}

func readMsg(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, c.ReadJSON(&msg))
	return msg
}

func TestHubSendTo(t *testing.T) {
	hub := NewConnHub(logger.Nop())
	url, registered := startServer(t, hub)

	id := uuid.New()
	client := dial(t, url, id)
	assert.Equal(t, id, waitRegistered(t, registered))
	assert.Equal(t, 1, hub.Len())

	require.NoError(t, hub.SendTo(id, map[string]any{"type": "zone_summary", "zones": 3}))

	msg := readMsg(t, client)
	assert.Equal(t, "zone_summary", msg["type"])
	assert.EqualValues(t, 3, msg["zones"])

	assert.ErrorIs(t, hub.SendTo(uuid.New(), "x"), ErrConnIsNotFound)
}

func TestHubListenDispatchesClientMessages(t *testing.T) {
	hub := NewConnHub(logger.Nop())
	url, registered := startServer(t, hub)

	client := dial(t, url, uuid.New())
	waitRegistered(t, registered)

	require.NoError(t, client.WriteJSON(map[string]any{"type": "location"}))

	assert.Equal(t, "location", readMsg(t, client)["echo"])
}

func TestHubBroadcast(t *testing.T) {
	hub := NewConnHub(logger.Nop())
	url, registered := startServer(t, hub)

	a := dial(t, url, uuid.New())
	b := dial(t, url, uuid.New())
	waitRegistered(t, registered)
	waitRegistered(t, registered)

	failed := hub.Broadcast(map[string]any{"type": "frame"})
	assert.Empty(t, failed)

	assert.Equal(t, "frame", readMsg(t, a)["type"])
	assert.Equal(t, "frame", readMsg(t, b)["type"])
}

func TestHubDelete(t *testing.T) {
	hub := NewConnHub(logger.Nop())
	url, registered := startServer(t, hub)

	id := uuid.New()
	client := dial(t, url, id)
	waitRegistered(t, registered)

	require.NoError(t, hub.Delete(id))
	assert.Equal(t, 0, hub.Len())
	assert.ErrorIs(t, hub.Delete(id), ErrConnIsNotFound)
	assert.ErrorIs(t, hub.SendTo(id, "x"), ErrConnIsNotFound)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHubAddReplacesExisting(t *testing.T) {
	hub := NewConnHub(logger.Nop())
	url, registered := startServer(t, hub)

	id := uuid.New()
	dial(t, url, id)
	waitRegistered(t, registered)
	first, err := hub.GetConn(id)
	require.NoError(t, err)

	second := dial(t, url, id)
	waitRegistered(t, registered)

	select {
	case <-first.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("replaced connection was not closed")
	}
	assert.ErrorIs(t, first.Send("x"), ErrConnClosed)
	assert.Equal(t, 1, hub.Len())

	require.NoError(t, hub.SendTo(id, map[string]any{"type": "hello"}))
	assert.Equal(t, "hello", readMsg(t, second)["type"])
}

func TestHubAddNil(t *testing.T) {
	hub := NewConnHub(logger.Nop())
	assert.ErrorIs(t, hub.Add(nil), ErrEmptyConn)
}

func TestHubClose(t *testing.T) {
	hub := NewConnHub(logger.Nop())
	url, registered := startServer(t, hub)

	dial(t, url, uuid.New())
	dial(t, url, uuid.New())
	waitRegistered(t, registered)
	waitRegistered(t, registered)

	hub.Close()
	assert.Equal(t, 0, hub.Len())
}

func TestConnCloseIsIdempotent(t *testing.T) {
	c := NewConn(context.Background(), uuid.New(), nil)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send("x"), ErrConnClosed)
	assert.ErrorIs(t, c.Listen(func(map[string]any) error { return nil }), ErrConnClosed)
}

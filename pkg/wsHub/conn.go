package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4 << 10
)

var ErrConnClosed = errors.New("connection closed")

// Conn is one websocket client. Writes are serialized; a single goroutine must call Listen.
type Conn struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
}

func NewConn(ctx context.Context, id uuid.UUID, conn *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	return &Conn{
		conn:   conn,
		id:     id,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the identifier the connection is registered under.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Done is closed when the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Send writes msg as JSON.
func (c *Conn) Send(msg any) error {
	return c.write(func(conn *websocket.Conn) error {
		return conn.WriteJSON(msg)
	})
}

func (c *Conn) ping() error {
	return c.write(func(conn *websocket.Conn) error {
		return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	})
}

func (c *Conn) write(fn func(conn *websocket.Conn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.ctx.Err() != nil {
		return ErrConnClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return fn(c.conn)
}

// Listen reads JSON messages and passes them to handler until the peer goes away,
// stops answering pings, the connection is closed or handler fails.
func (c *Conn) Listen(handler func(msg map[string]any) error) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrConnClosed
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.keepalive()

	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			if c.ctx.Err() != nil {
				return ErrConnClosed
			}
			return fmt.Errorf("read failed: %w", err)
		}
		if err := handler(msg); err != nil {
			return fmt.Errorf("handler failed: %w", err)
		}
	}
}

func (c *Conn) keepalive() {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-t.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

// Close sends a close frame and closes the connection. Later calls are no-ops.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()
	if c.conn == nil {
		return nil
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	err := c.conn.Close()
	c.conn = nil
	return err
}

package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
)

const (
	heartbeat         = 10 * time.Second
	reconnectAttempts = 5
	reconnectBackoff  = 2 * time.Second
	// consumers get at most this many unacked frames at once
	prefetchCount = 16
)

var ErrClosed = errors.New("rabbitmq client closed")

// RabbitMQ owns one connection and one channel and redials them when the broker drops us.
type RabbitMQ struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	dsn    string
	closed bool // set by Close, never reset

	log logger.Logger
}

// New dials the broker and opens a channel.
func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{
		dsn: dsn,
		log: log,
	}

	conn, ch, err := dial(dsn)
	if err != nil {
		return nil, err
	}
	r.conn, r.ch = conn, ch
	r.notify(conn, ch)

	log.Info(wrap.WithAction(ctx, types.ActionRabbitMQConnected), "connected to rabbitMQ")
	return r, nil
}

func dial(dsn string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(dsn, amqp.Config{Heartbeat: heartbeat})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to set qos: %w", err)
	}

	return conn, ch, nil
}

func (r *RabbitMQ) notify(conn *amqp.Connection, ch *amqp.Channel) {
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

	go r.watch(conn, connClosed, chClosed)
}

func (r *RabbitMQ) watch(conn *amqp.Connection, connClosed, chClosed <-chan *amqp.Error) {
	ctx := wrap.WithAction(context.Background(), types.ActionRabbitConnectionClosed)

	var amqpErr *amqp.Error
	select {
	case amqpErr = <-connClosed:
	case amqpErr = <-chClosed:
		// a dead channel on a live connection is useless to us
		_ = conn.Close()
	}

	if amqpErr == nil {
		r.log.Debug(ctx, "rabbitMQ connection closed gracefully")
		return
	}
	r.log.Error(ctx, "rabbitMQ connection lost", amqpErr, "code", amqpErr.Code, "server", amqpErr.Server)
}

// Channel returns the current channel. It may be closed; call EnsureConnection first.
func (r *RabbitMQ) Channel() *amqp.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch
}

// IsConnectionClosed reports whether the connection or its channel is gone.
func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed || r.conn == nil || r.ch == nil || r.conn.IsClosed() || r.ch.IsClosed()
}

// DeclareTopic declares a durable topic exchange.
func (r *RabbitMQ) DeclareTopic(name string) error {
	if err := r.Channel().ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", name, err)
	}
	return nil
}

// EnsureConnection redials the broker if the connection was lost.
func (r *RabbitMQ) EnsureConnection(ctx context.Context) error {
	if !r.IsConnectionClosed() {
		return nil
	}

	r.log.Warn(ctx, "rabbit connection closed, reconnecting")
	if err := r.Reconnect(ctx); err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}
	return nil
}

// Reconnect redials with a linear backoff. Concurrent callers wait for the first one.
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.conn != nil && !r.conn.IsClosed() && r.ch != nil && !r.ch.IsClosed() {
		return nil
	}
	if r.dsn == "" {
		return errors.New("dsn is empty: can't reconnect")
	}

	var (
		conn *amqp.Connection
		ch   *amqp.Channel
		err  error
	)
	for i := range reconnectAttempts {
		if conn, ch, err = dial(r.dsn); err == nil {
			break
		}

		wait := time.Duration(i+1) * reconnectBackoff
		r.log.Debug(ctx, "reconnect attempt failed", "attempt", i+1, "retry_in", wait.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return err
	}

	r.conn, r.ch = conn, ch
	r.notify(conn, ch)

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitReconnected), "rabbitMQ reconnected")
	return nil
}

// Close closes the channel and the connection. Later calls are no-ops.
func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosing)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	ch, conn := r.ch, r.conn
	r.ch, r.conn = nil, nil
	r.mu.Unlock()

	if ch != nil {
		if err := withContext(ctx, ch.Close); err != nil && ctx.Err() == nil {
			r.log.Warn(ctx, "error closing channel", "error", err.Error())
		}
	}

	if conn != nil {
		if err := withContext(ctx, conn.Close); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitConnectionClosed), "rabbitMQ closed")
	return nil
}

// withContext runs fn and gives up waiting for it when ctx is done.
func withContext(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

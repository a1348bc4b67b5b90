package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
	"github.com/Temutjin2k/crowdguard/pkg/rabbit"
)

const (
	ExchangeCrowdTopic = "crowd_topic"

	FrameBindingKey = "crowd.frame.*"
)

// FrameRoutingKey is the routing key of frames produced by one simulation.
func FrameRoutingKey(simID string) string {
	return "crowd.frame." + simID
}

type FrameHandlerFunc func(ctx context.Context, frame models.Frame) error

// FrameBroker publishes and consumes simulation frames on crowd_topic.
type FrameBroker struct {
	publisher
	l logger.Logger
}

func NewFrameBroker(client *rabbit.RabbitMQ, service string, l logger.Logger) *FrameBroker {
	return &FrameBroker{
		publisher: publisher{client: client, service: service},
		l:         l,
	}
}

// Setup declares the crowd_topic exchange.
func (b *FrameBroker) Setup() error {
	return b.client.DeclareTopic(ExchangeCrowdTopic)
}

func (b *FrameBroker) PublishFrame(ctx context.Context, frame models.Frame) error {
	ctx = wrap.WithAction(wrap.WithSimID(ctx, frame.SimID), "rabbitmq_publish_frame")

	if err := b.publish(ctx, ExchangeCrowdTopic, FrameRoutingKey(frame.SimID), frame); err != nil {
		return wrap.Error(ctx, err)
	}
	return nil
}

// ConsumeFrames binds a private queue to crowd_topic and passes every frame to fn
// until ctx is done. The queue is re-declared after every reconnect.
func (b *FrameBroker) ConsumeFrames(ctx context.Context, fn FrameHandlerFunc) error {
	const op = "FrameBroker.ConsumeFrames"

	for {
		if ctx.Err() != nil {
			b.l.Debug(ctx, "consume frames stopped by context")
			return nil
		}

		if err := b.client.EnsureConnection(ctx); err != nil {
			b.l.Error(ctx, "ensure connection failed", err, "op", op)
			sleepCtx(ctx, 2*time.Second)
			continue
		}

		msgs, err := b.subscribe()
		if err != nil {
			b.l.Error(ctx, "subscribe failed", err, "op", op)
			sleepCtx(ctx, 2*time.Second)
			continue
		}

		b.l.Info(ctx, "start consuming simulation frames", "exchange", ExchangeCrowdTopic)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				b.l.Info(ctx, "frame consumer shutting down", "op", op)
				return nil

			case msg, ok := <-msgs:
				if !ok {
					b.l.Warn(ctx, "message channel closed, reconnecting...", "op", op)
					sleepCtx(ctx, 2*time.Second)
					break consumeLoop
				}
				b.handleFrame(ctx, fn, msg)
			}
		}
	}
}

func (b *FrameBroker) subscribe() (<-chan amqp.Delivery, error) {
	if err := b.client.DeclareTopic(ExchangeCrowdTopic); err != nil {
		return nil, err
	}

	q, err := b.client.Channel().QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := b.client.Channel().QueueBind(q.Name, FrameBindingKey, ExchangeCrowdTopic, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := b.client.Channel().Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, nil
}

func (b *FrameBroker) handleFrame(ctx context.Context, fn FrameHandlerFunc, msg amqp.Delivery) {
	ctx = wrap.WithAction(ctx, types.ActionFrameConsumed)

	var frame models.Frame
	if err := json.Unmarshal(msg.Body, &frame); err != nil {
		b.l.Error(ctx, "decode frame failed", err)
		metrics.RecordRabbitMQConsume(b.service, ExchangeCrowdTopic, err)
		_ = msg.Nack(false, false)
		return
	}

	ctx = wrap.WithRequestID(wrap.WithSimID(ctx, frame.SimID), msg.CorrelationId)

	if err := frame.Validate(); err != nil {
		b.l.Error(ctx, "malformed frame dropped", err, "step", frame.Step)
		metrics.RecordRabbitMQConsume(b.service, ExchangeCrowdTopic, err)
		_ = msg.Nack(false, false)
		return
	}

	err := fn(ctx, frame)
	metrics.RecordRabbitMQConsume(b.service, ExchangeCrowdTopic, err)
	if err != nil {
		b.l.Error(wrap.ErrorCtx(ctx, err), "failed to handle frame", err)
		_ = msg.Nack(false, isRecoverableError(err))
		return
	}

	if err := msg.Ack(false); err != nil {
		b.l.Warn(ctx, "ack failed", "error", err.Error())
	}
}

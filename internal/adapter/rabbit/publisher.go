package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
	"github.com/Temutjin2k/crowdguard/pkg/rabbit"
)

const (
	publishAttempts = 3
	publishBackoff  = time.Second
)

// publisher is shared by the brokers of this package.
type publisher struct {
	client  *rabbit.RabbitMQ
	service string
}

func (p *publisher) publish(ctx context.Context, exchange, routingKey string, msg any) (err error) {
	defer func() {
		metrics.RecordRabbitMQPublish(p.service, exchange, err)
	}()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := p.client.EnsureConnection(ctx); err != nil {
		return fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		Timestamp:     time.Now(),
		CorrelationId: wrap.GetRequestID(ctx),
	}

	if err := retry(ctx, publishAttempts, publishBackoff, func() error {
		return p.client.Channel().PublishWithContext(ctx, exchange, routingKey, false, false, pub)
	}); err != nil {
		return fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
	}
	return nil
}

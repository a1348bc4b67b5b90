package rabbit

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/rabbit"
)

const ExchangeDispatchTopic = "dispatch_topic"

// DispatchBroker publishes dispatch events for field teams.
type DispatchBroker struct {
	publisher
}

func NewDispatchBroker(client *rabbit.RabbitMQ, service string) *DispatchBroker {
	return &DispatchBroker{
		publisher: publisher{client: client, service: service},
	}
}

// Setup declares the dispatch_topic exchange.
func (b *DispatchBroker) Setup() error {
	return b.client.DeclareTopic(ExchangeDispatchTopic)
}

// PublishDeploymentConfirmed sends to 'dispatch_topic' with key 'deployment.confirmed.{type}'.
func (b *DispatchBroker) PublishDeploymentConfirmed(ctx context.Context, d models.Deployment) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_deployment")
	key := fmt.Sprintf("deployment.confirmed.%s", d.Type)

	msg := models.DeploymentConfirmedMessage{Deployment: d, Timestamp: time.Now()}
	if err := b.publish(ctx, ExchangeDispatchTopic, key, msg); err != nil {
		return wrap.Error(ctx, err)
	}
	return nil
}

// PublishRedirectionStatus sends to 'dispatch_topic' with key 'redirection.status.{status}'.
func (b *DispatchBroker) PublishRedirectionStatus(ctx context.Context, c models.RedirectionStatusChange) error {
	ctx = wrap.WithAction(wrap.WithPlanID(ctx, c.PlanID), "rabbitmq_publish_redirection_status")
	key := fmt.Sprintf("redirection.status.%s", c.Status)

	msg := models.RedirectionStatusMessage{Change: c, Timestamp: time.Now()}
	if err := b.publish(ctx, ExchangeDispatchTopic, key, msg); err != nil {
		return wrap.Error(ctx, err)
	}
	return nil
}

package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/selah-app/selah-backend/internal/models"
)

// EventPublisher publishes API-side notification events on a channel.
type EventPublisher struct {
	ch *amqp.Channel
}

// NewEventPublisher wraps a channel for publishing.
func NewEventPublisher(ch *amqp.Channel) *EventPublisher {
	return &EventPublisher{ch: ch}
}

// PublishPasswordReset hands a reset token to the notification queue.
func (p *EventPublisher) PublishPasswordReset(event models.PasswordResetEvent) error {
	return PublishMessage(p.ch, "notifications", RoutingKeyPasswordReset, event)
}

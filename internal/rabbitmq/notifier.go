package rabbitmq

import (
	"github.com/streadway/amqp"
)

// Notifier publishes notification events to the notifications exchange.
// It is the producer side handed to the service layer.
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier wraps a channel set up by SetupChannel.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// Publish sends a JSON message with the given routing key.
func (n *Notifier) Publish(routingKey string, message any) error {
	return PublishMessage(n.ch, NotificationsExchange, routingKey, message)
}

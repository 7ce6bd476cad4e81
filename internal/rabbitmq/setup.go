package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/greenspire/plant-rental/internal/models"
)

// Exchange and queue names of the notification pipeline.
const (
	NotificationsExchange = "notifications"
	SubscriptionQueue     = "notifications.subscription"
	VisitQueue            = "notifications.visit"
)

// SetupChannel opens a channel, declares the durable notifications exchange
// and binds the subscription-created and visit-confirmed queues.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(maxInFlight, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bindings := []struct {
		queue      string
		routingKey string
	}{
		{SubscriptionQueue, models.RoutingSubscriptionCreated},
		{VisitQueue, models.RoutingVisitConfirmed},
	}
	for _, b := range bindings {
		_, err = ch.QueueDeclare(
			b.queue,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, b.queue, err)
		}
		if err = ch.QueueBind(b.queue, b.routingKey, NotificationsExchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return ch, nil
}

package rabbitmq

import (
	"context"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// maxInFlight caps the number of deliveries handled concurrently per consumer.
const maxInFlight = 10

// ConsumerMessage consumes messages from a queue until ctx is cancelled,
// handing each body to handler. Failed handlers nack with requeue.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	deliveries, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go consumeLoop(ctx, deliveries, handler)
	return nil
}

func consumeLoop(ctx context.Context, deliveries <-chan amqp.Delivery, handler func([]byte) error) {
	inFlight := make(chan struct{}, maxInFlight)
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			inFlight <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-inFlight }()
				handleDelivery(d, handler)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

func handleDelivery(d amqp.Delivery, handler func([]byte) error) {
	if err := handler(d.Body); err != nil {
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Printf("failed to nack message: %v", nackErr)
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Printf("failed to ack message: %v", ackErr)
	}
}

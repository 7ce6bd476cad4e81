// Package rabbitmq contains the RabbitMQ plumbing for notification events:
// connecting, declaring the exchange and queues, publishing and consuming.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect dials RabbitMQ, retrying with a fixed delay between attempts.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var lastErr error

	for attempt := 0; attempt < retries; attempt++ {
		conn, err := amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: after %d attempts: %w", op, retries, lastErr)
}

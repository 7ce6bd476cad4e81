package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenspire/plant-rental/internal/models"
)

func openTestChannel(ctx context.Context, t *testing.T) (*amqp.Channel, func()) {
	amqpURI, cleanupContainer := amqpURIForTest(ctx, t)

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)

	ch, err := conn.Channel()
	require.NoError(t, err)

	cleanup := func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
		cleanupContainer()
	}
	return ch, cleanup
}

func TestConsumerMessage_HandlesEvents(t *testing.T) {
	if os.Getenv("SKIP_RABBITMQ_TESTS") != "" {
		t.Skip("Skipping RabbitMQ tests in CI")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ch, cleanup := openTestChannel(ctx, t)
	defer cleanup()

	queueName := "visit-events-test"
	_, err := ch.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	events := []models.NotificationEvent{
		{Email: "asha@example.com", Name: "Asha", PackageName: "Green Office", SubscriptionID: 42},
		{Email: "jordan@example.com", Name: "Jordan", PackageName: "Lobby Jungle", SubscriptionID: 43, VisitID: 7},
	}

	var wg sync.WaitGroup
	wg.Add(len(events))

	var mu sync.Mutex
	received := make([]string, 0, len(events))

	handler := func(body []byte) error {
		var event models.NotificationEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return err
		}
		mu.Lock()
		received = append(received, event.Email)
		mu.Unlock()
		wg.Done()
		return nil
	}

	require.NoError(t, ConsumerMessage(ctx, ch, queueName, handler))

	for _, event := range events {
		require.NoError(t, PublishMessage(ch, "", queueName, event))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for events to be processed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"asha@example.com", "jordan@example.com"}, received)
}

func TestConsumerMessage_HandlerErrorTriggersNack(t *testing.T) {
	if os.Getenv("SKIP_RABBITMQ_TESTS") != "" {
		t.Skip("Skipping RabbitMQ tests in CI")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ch, cleanup := openTestChannel(ctx, t)
	defer cleanup()

	queueName := "visit-events-nack-test"
	_, err := ch.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	// The handler always fails so the message must come back to the queue.
	handler := func(_ []byte) error {
		return fmt.Errorf("handler failed")
	}
	require.NoError(t, ConsumerMessage(ctx, ch, queueName, handler))

	err = ch.Publish("", queueName, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        []byte("poison"),
	})
	require.NoError(t, err)

	deliveries, err := ch.Consume(queueName, "requeue-check", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.Equal(t, "poison", string(d.Body))
	case <-time.After(10 * time.Second):
		t.Fatal("did not receive requeued message after nack")
	}
}

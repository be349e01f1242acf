package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/store"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

// MockWriter records written messages and fails while Err is set
type MockWriter struct {
	mu       sync.Mutex
	Messages []kafkaGo.Message
	Err      error
	Calls    int
	Closed   bool
}

func (m *MockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockWriter) Close() error {
	m.Closed = true
	return nil
}

// FailingOutboxRepository fails every read
type FailingOutboxRepository struct {
	Err error
}

func (f FailingOutboxRepository) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	return nil, f.Err
}

func (f FailingOutboxRepository) MarkEventAsProcessed(context.Context, int) error {
	return f.Err
}

func enqueue(t *testing.T, s *store.MemoryStore, aggregateIDs ...string) {
	t.Helper()
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		for _, id := range aggregateIDs {
			payload := json.RawMessage(fmt.Sprintf(`{"order_id":%q}`, id))
			if err := tx.EnqueueEvent(ctx, &repository.OutboxEvent{
				AggregateId: id,
				EventType:   "order_created",
				Payload:     payload,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	s := store.NewMemoryStore()
	enqueue(t, s, "order-1", "order-2")
	writer := &MockWriter{}
	poller := newOutboxPoller(s, writer, nil, time.Second)

	assert.Equal(t, 2, poller.processUnpublishedEvents(context.Background()))

	require.Len(t, writer.Messages, 2)
	assert.Equal(t, "order-1", string(writer.Messages[0].Key))
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(writer.Messages[0].Value))
	assert.Equal(t, "event_type", writer.Messages[0].Headers[0].Key)
	assert.Equal(t, "order_created", string(writer.Messages[0].Headers[0].Value))

	pending, err := s.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Equal(t, 0, poller.processUnpublishedEvents(context.Background()))
}

func TestProcessUnpublishedEvents_KeepsEventsOnWriteFailure(t *testing.T) {
	s := store.NewMemoryStore()
	enqueue(t, s, "order-1", "order-2")
	writer := &MockWriter{Err: errors.New("broker unavailable")}
	poller := newOutboxPoller(s, writer, nil, time.Second)

	assert.Equal(t, 0, poller.processUnpublishedEvents(context.Background()))
	assert.Equal(t, 1, writer.Calls)

	pending, err := s.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	writer.Err = nil
	assert.Equal(t, 2, poller.processUnpublishedEvents(context.Background()))
}

func TestProcessUnpublishedEvents_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	s := store.NewMemoryStore()
	enqueue(t, s, "order-1")
	writer := &MockWriter{Err: errors.New("broker unavailable")}
	poller := newOutboxPoller(s, writer, nil, time.Second)

	for i := 0; i < 8; i++ {
		poller.processUnpublishedEvents(context.Background())
	}

	assert.Equal(t, "open", poller.breaker.State())
	assert.Equal(t, 5, writer.Calls)
}

func TestProcessUnpublishedEvents_RepositoryError(t *testing.T) {
	writer := &MockWriter{}
	poller := newOutboxPoller(FailingOutboxRepository{Err: errors.New("db down")}, writer, nil, time.Second)

	assert.Equal(t, 0, poller.processUnpublishedEvents(context.Background()))
	assert.Zero(t, writer.Calls)
}

func TestOutboxPoller_RunStopsOnCancel(t *testing.T) {
	s := store.NewMemoryStore()
	enqueue(t, s, "order-1")
	writer := &MockWriter{}
	poller := newOutboxPoller(s, writer, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		writer.mu.Lock()
		defer writer.mu.Unlock()
		return len(writer.Messages) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}

	poller.Close()
	assert.True(t, writer.Closed)
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	const topic = "storefront-orders-test"
	createTopic(t, brokerAddr, topic)

	s := store.NewMemoryStore()
	enqueue(t, s, "order-42")

	poller := NewOutboxPoller(s, nil, topic, 500*time.Millisecond, brokerAddr)
	defer poller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go poller.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    topic,
		GroupID:  "storefront-test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "order-42", string(msg.Key))
	assert.JSONEq(t, `{"order_id":"order-42"}`, string(msg.Value))

	require.Eventually(t, func() bool {
		pending, err := s.GetUnprocessedEvents(context.Background(), 10)
		return err == nil && len(pending) == 0
	}, 10*time.Second, 100*time.Millisecond)
}

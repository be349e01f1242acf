package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic     = "storefront-orders"
	defaultBatchSize = 100
)

// MessageWriter is the subset of *kafka.Writer used by the poller.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller publishes outbox rows written by checkout to Kafka and marks
// them processed. Delivery is at least once.
type OutboxPoller struct {
	eventTick time.Duration
	batchSize int
	repo      repository.OutboxRepository
	writer    MessageWriter
	breaker   *circuitbreaker.Breaker[struct{}]
	logger    *slog.Logger
}

func NewOutboxPoller(repo repository.OutboxRepository, logger *slog.Logger, topic string, interval time.Duration, brokers ...string) *OutboxPoller {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return newOutboxPoller(repo, w, logger, interval)
}

func newOutboxPoller(repo repository.OutboxRepository, writer MessageWriter, logger *slog.Logger, interval time.Duration) *OutboxPoller {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	cfg := circuitbreaker.DefaultConfig("kafka-outbox")
	cfg.OnStateChange = func(name, from, to string) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	}
	return &OutboxPoller{
		eventTick: interval,
		batchSize: defaultBatchSize,
		repo:      repo,
		writer:    writer,
		breaker:   circuitbreaker.New[struct{}](cfg),
		logger:    logger,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("error closing kafka writer", "error", err)
	}
}

// processUnpublishedEvents returns the number of events published. It stops at
// the first failed publish so events of one order keep their order.
func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) int {
	events, err := p.repo.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to fetch outbox events", "error", err)
		return 0
	}

	published := 0
	for _, event := range events {
		_, errPublish := p.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, p.publishToKafka(ctx, event)
		})
		if errPublish != nil {
			if !circuitbreaker.IsOpen(errPublish) {
				p.logger.ErrorContext(ctx, "failed to publish outbox event", "event_id", event.ID, "error", errPublish)
			}
			return published
		}

		if errMark := p.repo.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			p.logger.ErrorContext(ctx, "failed to mark outbox event as processed", "event_id", event.ID, "error", errMark)
			return published
		}
		published++
	}
	if published > 0 {
		p.logger.DebugContext(ctx, "outbox events published", "count", published)
	}
	return published
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *repository.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateId), // order id keeps one order on one partition
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
		Time: event.CreatedAt,
	}
	return p.writer.WriteMessages(ctx, msg)
}

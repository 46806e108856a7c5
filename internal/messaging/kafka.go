package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/pkg/models"
)

// Estate event types published by the marketplace.
const (
	EventEstateCreated       = "estate.created"
	EventEstateUpdated       = "estate.updated"
	EventEstateDeleted       = "estate.deleted"
	EventFavoriteAdded       = "favorite.added"
	EventFavoriteRemoved     = "favorite.removed"
	EventReviewCreated       = "review.created"
	EventTransactionApproved = "transaction.approved"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
	maxReadBackoff    = 30 * time.Second
)

// EstateEvent is a change notification from the marketplace. UserID is set
// for user-scoped events (favorites, reviews, rentals).
type EstateEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       string    `json:"type"`
	EstateID   uuid.UUID `json:"estate_id"`
	UserID     uuid.UUID `json:"user_id"`
	Timestamp  time.Time `json:"timestamp"`
	RetryCount int       `json:"retry_count"`
}

// EstateEventHandler processes one event. A returned error triggers a retry.
type EstateEventHandler func(ctx context.Context, event EstateEvent) error

type KafkaProducer struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

// messageReader is the part of *kafka.Reader the consumer loop uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Stats() kafka.ReaderStats
	Close() error
}

type KafkaConsumer struct {
	reader messageReader
	logger *logrus.Logger
}

type MessageBus struct {
	producer   *KafkaProducer
	consumer   *KafkaConsumer
	dlqWriter  *kafka.Writer
	logger     *logrus.Logger
	eventTopic string
	maxRetries int
	baseDelay  time.Duration
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) (*MessageBus, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}

	// Recommendation events are keyed by user so a user's events stay ordered
	producer := &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topics.RecommendationEvents,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		logger: logger,
	}

	consumer := &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.Topics.EstateEvents,
			GroupID:        cfg.Kafka.GroupID,
			MinBytes:       1,
			MaxBytes:       10e6, // 10MB
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		logger: logger,
	}

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.EstateEventsDLQ,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &MessageBus{
		producer:   producer,
		consumer:   consumer,
		dlqWriter:  dlqWriter,
		logger:     logger,
		eventTopic: cfg.Kafka.Topics.EstateEvents,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}, nil
}

// PublishRecommendationEvent records which estates were served to a user.
func (mb *MessageBus) PublishRecommendationEvent(ctx context.Context, event models.RecommendationEvent) error {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation event: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: messageBytes,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "strategy", Value: []byte(event.Strategy)},
			{Key: "timestamp", Value: []byte(time.Unix(event.Timestamp, 0).UTC().Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mb.producer.writer.WriteMessages(ctx, kafkaMessage); err != nil {
		mb.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to publish recommendation event")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"user_id":  event.UserID,
		"strategy": event.Strategy,
		"topic":    mb.producer.writer.Topic,
	}).Debug("Recommendation event published")

	return nil
}

// ConsumeEstateEvents blocks, feeding estate events to handler until ctx is done.
// Events that still fail after all retries are sent to the dead letter topic.
func (mb *MessageBus) ConsumeEstateEvents(ctx context.Context, handler EstateEventHandler) error {
	readFailures := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := mb.consumer.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				readFailures++
				delay := readBackoff(mb.baseDelay, readFailures)
				mb.logger.WithError(err).WithFields(logrus.Fields{
					"failures": readFailures,
					"delay":    delay,
				}).Error("Failed to read message from Kafka")

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			readFailures = 0

			var event EstateEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				mb.logger.WithError(err).WithField("offset", message.Offset).Error("Failed to unmarshal estate event")
				continue
			}

			if err := mb.processWithRetry(ctx, event, handler); err != nil {
				mb.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to process estate event after retries")

				if ctx.Err() == nil {
					if dlqErr := mb.sendToDLQ(ctx, event, err); dlqErr != nil {
						mb.logger.WithError(dlqErr).Error("Failed to send message to DLQ")
					}
				}
			}
		}
	}
}

func (mb *MessageBus) processWithRetry(ctx context.Context, event EstateEvent, handler EstateEventHandler) error {
	for attempt := 0; attempt <= mb.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			delay := backoffDelay(mb.baseDelay, attempt)
			mb.logger.WithFields(logrus.Fields{
				"event_id": event.EventID,
				"attempt":  attempt,
				"delay":    delay,
			}).Info("Retrying estate event")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		event.RetryCount = attempt
		if err := handler(ctx, event); err != nil {
			mb.logger.WithError(err).WithFields(logrus.Fields{
				"event_id": event.EventID,
				"type":     event.Type,
				"attempt":  attempt,
			}).Warn("Estate event processing failed")

			if attempt == mb.maxRetries {
				return fmt.Errorf("max retries exceeded: %w", err)
			}
			continue
		}

		mb.logger.WithFields(logrus.Fields{
			"event_id": event.EventID,
			"type":     event.Type,
			"attempt":  attempt,
		}).Debug("Estate event processed")
		return nil
	}

	return fmt.Errorf("unexpected retry loop exit")
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<uint(attempt-1))
}

// readBackoff grows like backoffDelay for consecutive read failures, capped at maxReadBackoff.
func readBackoff(base time.Duration, failures int) time.Duration {
	if failures > 16 {
		failures = 16
	}
	if delay := backoffDelay(base, failures); delay < maxReadBackoff {
		return delay
	}
	return maxReadBackoff
}

func (mb *MessageBus) sendToDLQ(ctx context.Context, event EstateEvent, originalError error) error {
	kafkaMessage, err := dlqMessage(event, originalError, mb.eventTopic)
	if err != nil {
		return err
	}

	if err := mb.dlqWriter.WriteMessages(ctx, kafkaMessage); err != nil {
		return fmt.Errorf("failed to write message to DLQ: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"error":    originalError.Error(),
	}).Warn("Message sent to DLQ")

	return nil
}

func dlqMessage(event EstateEvent, originalError error, originalTopic string) (kafka.Message, error) {
	payload := map[string]interface{}{
		"original_message": event,
		"error":            originalError.Error(),
		"dlq_timestamp":    time.Now(),
	}

	dlqBytes, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.EventID.String()),
		Value: dlqBytes,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "original_topic", Value: []byte(originalTopic)},
			{Key: "error", Value: []byte(originalError.Error())},
		},
	}, nil
}

func (mb *MessageBus) Close() error {
	var errs []error

	if err := mb.producer.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}

	if err := mb.consumer.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
	}

	if err := mb.dlqWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close DLQ writer: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing message bus: %v", errs)
	}

	return nil
}

// GetMetrics returns Kafka metrics for monitoring
func (mb *MessageBus) GetMetrics() map[string]interface{} {
	stats := mb.consumer.reader.Stats()
	return map[string]interface{}{
		"consumer_lag":    stats.Lag,
		"consumer_offset": stats.Offset,
		"messages_read":   stats.Messages,
		"bytes_read":      stats.Bytes,
		"rebalances":      stats.Rebalances,
		"timeouts":        stats.Timeouts,
		"errors":          stats.Errors,
	}
}

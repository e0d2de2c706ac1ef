package consumer

import (
	"context"
	"encoding/json"

	"go-hrms/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader used by the consumers.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// NotificationSink persists the notification carried by a domain event.
type NotificationSink interface {
	PersistEvent(ctx context.Context, event events.DomainEvent) (bool, error)
}

// ConsumeDomainEvents turns addressed domain events into notifications until
// ctx is cancelled. Offsets are committed only after the notification is
// stored, so a crash replays the message and the sink deduplicates it.
func ConsumeDomainEvents(
	ctx context.Context,
	reader MessageReader,
	sink NotificationSink,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.notifications")
	log.Info("domain event consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("domain event consumer stopped")
				return
			}
			log.Error("fetch domain event failed", zap.Error(err))
			continue
		}

		if err := HandleMessage(ctx, msg, sink, log); err != nil {
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit domain event failed", zap.Error(err))
		}
	}
}

// HandleMessage processes one message. A nil error means the message can be
// committed, which includes undecodable and unaddressed events.
func HandleMessage(ctx context.Context, msg kafkago.Message, sink NotificationSink, log *zap.Logger) error {
	var event events.DomainEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode domain event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	if event.RecipientID == "" {
		log.Debug("domain event has no recipient, skipping",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
		)
		return nil
	}

	created, err := sink.PersistEvent(ctx, event)
	if err != nil {
		log.Error("persist notification failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		return err
	}

	if !created {
		log.Warn("notification already exists for event, skipping",
			zap.String("event_id", event.ID),
		)
		return nil
	}

	log.Info("notification persisted from domain event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("request_id", event.RequestID),
		zap.String("organization_id", event.OrganizationID),
	)
	return nil
}

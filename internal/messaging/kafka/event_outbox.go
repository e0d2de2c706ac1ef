package kafka

import (
	"context"
	"database/sql"
	"encoding/json"

	"go-hrms/internal/events"
)

// EventOutbox writes domain events as pending outbox rows.
type EventOutbox struct {
	repo  OutboxRepository
	topic string
}

func NewEventOutbox(repo OutboxRepository, topic string) *EventOutbox {
	if topic == "" {
		topic = events.DomainEventsTopic
	}
	return &EventOutbox{repo: repo, topic: topic}
}

func (o *EventOutbox) Enqueue(ctx context.Context, tx *sql.Tx, evts ...events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	repo := o.repo.WithTx(tx)
	for _, e := range evts {
		payload, err := json.Marshal(e)
		if err != nil {
			return err
		}
		row := OutboxEvent{
			ID:             e.ID,
			RequestID:      e.RequestID,
			OrganizationID: e.OrganizationID,
			AggregateType:  e.AggregateType,
			AggregateID:    e.AggregateID,
			EventType:      string(e.Type),
			Topic:          o.topic,
			Payload:        payload,
			Status:         OutboxStatusPending,
		}
		if e.RecipientID != "" {
			recipient := e.RecipientID
			row.RecipientID = &recipient
		}
		if err := repo.Create(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

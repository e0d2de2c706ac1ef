// Package events defines the domain events emitted by workflow services.
// Events are written to the transactional outbox together with the state
// change that produced them and delivered to Kafka by the outbox worker.
package events

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const DomainEventsTopic = "hr.domain.events.v1"

type Type string

const (
	EmployeeCreated  Type = "employee.created"
	LeaveRequested   Type = "leave.requested"
	LeaveApproved    Type = "leave.approved"
	LeaveRejected    Type = "leave.rejected"
	LeaveCancelled   Type = "leave.cancelled"
	PayrollGenerated Type = "payroll.generated"
	DocumentCreated  Type = "document.created"
)

// NotificationKind mirrors the notification categories shown to users.
type NotificationKind string

const (
	KindLeave    NotificationKind = "leave"
	KindPayroll  NotificationKind = "payroll"
	KindDocument NotificationKind = "document"
	KindSystem   NotificationKind = "system"
)

// DomainEvent is the payload published on DomainEventsTopic. RecipientID is
// the principal to notify; events without a recipient are not turned into
// notifications.
type DomainEvent struct {
	ID             string           `json:"id"`
	Type           Type             `json:"event_type"`
	RequestID      string           `json:"request_id,omitempty"`
	OrganizationID string           `json:"organization_id"`
	AggregateType  string           `json:"aggregate_type"`
	AggregateID    string           `json:"aggregate_id"`
	RecipientID    string           `json:"recipient_id,omitempty"`
	SenderID       string           `json:"sender_id,omitempty"`
	Kind           NotificationKind `json:"kind"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Link           string           `json:"link,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// New returns an event with a fresh id stamped at now.
func New(typ Type, organizationID uuid.UUID, aggregateType string, aggregateID uuid.UUID, now time.Time) DomainEvent {
	return DomainEvent{
		ID:             uuid.NewString(),
		Type:           typ,
		OrganizationID: organizationID.String(),
		AggregateType:  aggregateType,
		AggregateID:    aggregateID.String(),
		Kind:           KindSystem,
		OccurredAt:     now.UTC(),
	}
}

// Notify addresses the event to recipient. A nil recipient leaves the event
// unaddressed.
func (e DomainEvent) Notify(recipient *uuid.UUID, kind NotificationKind, title, message, link string) DomainEvent {
	if recipient != nil && *recipient != uuid.Nil {
		e.RecipientID = recipient.String()
	}
	e.Kind = kind
	e.Title = title
	e.Message = message
	e.Link = link
	return e
}

// From records the principal that caused the event.
func (e DomainEvent) From(sender uuid.UUID) DomainEvent {
	if sender != uuid.Nil {
		e.SenderID = sender.String()
	}
	return e
}

// Outbox persists events inside the caller's transaction.
//
//go:generate mockgen -source=domain_event.go -destination=mock/outbox_mock.go -package=mock
type Outbox interface {
	Enqueue(ctx context.Context, tx *sql.Tx, events ...DomainEvent) error
}

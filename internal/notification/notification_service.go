package notification

import (
	"context"
	"time"

	"go-hrms/internal/events"
	notificationerrors "go-hrms/internal/notification/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID, req ListNotificationsRequest) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, userID uuid.UUID, id string) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (ReadAllResponse, error)
	// PersistEvent stores the notification carried by a domain event. Events
	// delivered more than once produce a single notification.
	PersistEvent(ctx context.Context, event events.DomainEvent) (bool, error)
}

type service struct {
	repo    Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewService(repo Repository, m *metrics.Metrics, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, metrics: m, logger: l}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, req ListNotificationsRequest) ([]NotificationResponse, error) {
	items, err := s.repo.ListByRecipient(ctx, userID, req.Unread)
	if err != nil {
		return nil, err
	}

	out := make([]NotificationResponse, 0, len(items))
	for i := range items {
		out = append(out, mapToResponse(&items[i]))
	}
	return out, nil
}

func (s *service) MarkRead(ctx context.Context, userID uuid.UUID, id string) error {
	nid, err := uuid.Parse(id)
	if err != nil {
		return notificationerrors.ErrNotificationNotFound
	}

	n, err := s.repo.MarkRead(ctx, userID, nid)
	if err != nil {
		return err
	}
	if n == 0 {
		return notificationerrors.ErrNotificationNotFound
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (ReadAllResponse, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return ReadAllResponse{}, err
	}
	return ReadAllResponse{Updated: n}, nil
}

func (s *service) PersistEvent(ctx context.Context, event events.DomainEvent) (bool, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	recipient, err := uuid.Parse(event.RecipientID)
	if err != nil {
		return false, notificationerrors.ErrInvalidEvent
	}

	n := &Notification{
		EventID:        event.ID,
		RecipientID:    recipient,
		OrganizationID: parseOptional(event.OrganizationID),
		SenderID:       parseOptional(event.SenderID),
		Kind:           string(event.Kind),
		Title:          event.Title,
		Message:        event.Message,
		Link:           event.Link,
		CreatedAt:      event.OccurredAt,
	}
	if n.Kind == "" {
		n.Kind = string(events.KindSystem)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	created, err := s.repo.CreateIfAbsent(ctx, n)
	if err != nil {
		log.Error("persist notification failed", zap.String("event_id", event.ID), zap.Error(err))
		return false, err
	}
	if created {
		s.metrics.NotificationPersisted()
	}
	return created, nil
}

func parseOptional(raw string) *uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func mapToResponse(n *Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if n.OrganizationID != nil {
		v := n.OrganizationID.String()
		resp.OrganizationID = &v
	}
	if n.SenderID != nil {
		v := n.SenderID.String()
		resp.SenderID = &v
	}
	return resp
}

package kafka

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go-hrms/internal/shared/connection"

	"gorm.io/gorm"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

const (
	maxErrorMessageLen = 500
	retryStep          = 15 * time.Second
	maxRetrySteps      = 10
)

// OutboxEvent is one row of outbox_events. OrganizationID and RecipientID
// are copied out of the payload so rows can be inspected per tenant and per
// addressee without decoding JSON.
type OutboxEvent struct {
	ID             string     `gorm:"type:uuid;primaryKey"`
	RequestID      string     `gorm:"type:varchar(100)"`
	OrganizationID string     `gorm:"type:varchar(64);not null;index"`
	AggregateType  string     `gorm:"type:varchar(50);not null"`
	AggregateID    string     `gorm:"type:varchar(64);not null"`
	EventType      string     `gorm:"type:varchar(100);not null"`
	RecipientID    *string    `gorm:"type:varchar(64);index"`
	Topic          string     `gorm:"type:varchar(150);not null"`
	Payload        []byte     `gorm:"type:jsonb;not null"`
	Status         string     `gorm:"type:varchar(20);not null;index:idx_outbox_events_status_created,priority:1"`
	RetryCount     int        `gorm:"not null"`
	ErrorMessage   *string    `gorm:"type:varchar(500)"`
	NextRetryAt    *time.Time `gorm:"index"`
	ProcessedAt    *time.Time
	CreatedAt      time.Time `gorm:"not null;index:idx_outbox_events_status_created,priority:2"`
	UpdatedAt      time.Time
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: connection.BindTx(r.db, tx)}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	event.RetryCount = 0
	return r.db.WithContext(ctx).Create(&event).Error
}

// ListPending returns pending rows and failed rows whose retry time has
// passed, oldest first.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	events := make([]OutboxEvent, 0, limit)
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{OutboxStatusPending, OutboxStatusFailed}).
		Where("next_retry_at IS NULL OR next_retry_at <= ?", time.Now().UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        OutboxStatusSent,
			"processed_at":  now,
			"error_message": nil,
			"updated_at":    now,
		}).Error
}

// MarkFailed records the failure and pushes the next attempt back by
// retryStep per attempt, capped at maxRetrySteps steps.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	var row OutboxEvent
	err := r.db.WithContext(ctx).
		Select("id", "retry_count").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return err
	}

	retries := row.RetryCount + 1
	now := time.Now().UTC()
	next := now.Add(time.Duration(min(retries, maxRetrySteps)) * retryStep)
	msg := truncate(reason, maxErrorMessageLen)

	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        OutboxStatusFailed,
			"retry_count":   retries,
			"error_message": msg,
			"next_retry_at": next,
			"updated_at":    now,
		}).Error
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.OrganizationID == "" {
		return errors.New("outbox organization is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}

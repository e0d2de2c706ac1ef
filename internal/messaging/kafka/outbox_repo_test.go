package kafka_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka"
	kafkaMock "go-hrms/internal/messaging/kafka/mock"
	"go-hrms/internal/shared/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func newOutboxEvent(eventType string) kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:             uuid.NewString(),
		RequestID:      "rid-1",
		OrganizationID: uuid.NewString(),
		AggregateType:  "leave_request",
		AggregateID:    uuid.NewString(),
		EventType:      eventType,
		Topic:          events.DomainEventsTopic,
		Payload:        []byte(`{"id":"x"}`),
		Status:         kafka.OutboxStatusPending,
	}
}

func countOutbox(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&kafka.OutboxEvent{}).Count(&n).Error)
	return n
}

func TestOutboxRepository_CreateInsideTx(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &kafka.OutboxEvent{})
	sqlDB, err := db.DB()
	require.NoError(t, err)
	ctx := context.Background()
	repo := kafka.NewOutboxRepository(db)

	t.Run("rolled back with the transaction", func(t *testing.T) {
		tx, err := sqlDB.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, repo.WithTx(tx).Create(ctx, newOutboxEvent("leave.requested")))
		require.NoError(t, tx.Rollback())

		assert.Zero(t, countOutbox(t, db))
	})

	t.Run("committed with the transaction", func(t *testing.T) {
		event := newOutboxEvent("leave.approved")
		recipient := uuid.NewString()
		event.RecipientID = &recipient

		tx, err := sqlDB.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, repo.WithTx(tx).Create(ctx, event))
		require.NoError(t, tx.Commit())

		var stored kafka.OutboxEvent
		require.NoError(t, db.Where("id = ?", event.ID).First(&stored).Error)
		assert.Equal(t, event.OrganizationID, stored.OrganizationID)
		require.NotNil(t, stored.RecipientID)
		assert.Equal(t, recipient, *stored.RecipientID)
		assert.Equal(t, "rid-1", stored.RequestID)
		assert.Equal(t, kafka.OutboxStatusPending, stored.Status)
		assert.Zero(t, stored.RetryCount)
		assert.False(t, stored.CreatedAt.IsZero())
	})
}

func TestOutboxRepository_CreateRejectsInvalidEvent(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &kafka.OutboxEvent{})
	repo := kafka.NewOutboxRepository(db)

	tests := []struct {
		name    string
		mutate  func(e *kafka.OutboxEvent)
		wantErr string
	}{
		{"missing topic", func(e *kafka.OutboxEvent) { e.Topic = "" }, "outbox topic is required"},
		{"missing organization", func(e *kafka.OutboxEvent) { e.OrganizationID = "" }, "outbox organization is required"},
		{"empty payload", func(e *kafka.OutboxEvent) { e.Payload = nil }, "outbox payload is required"},
		{"unknown status", func(e *kafka.OutboxEvent) { e.Status = "queued" }, "invalid outbox status: queued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newOutboxEvent("leave.requested")
			tt.mutate(&e)
			assert.EqualError(t, repo.Create(context.Background(), e), tt.wantErr)
		})
	}
	assert.Zero(t, countOutbox(t, db))
}

func TestOutboxRepository_ListPendingAndMark(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &kafka.OutboxEvent{})
	repo := kafka.NewOutboxRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	first := newOutboxEvent("leave.requested")
	first.CreatedAt = base
	second := newOutboxEvent("payroll.generated")
	second.CreatedAt = base.Add(time.Minute)
	third := newOutboxEvent("document.created")
	third.CreatedAt = base.Add(2 * time.Minute)
	for _, e := range []kafka.OutboxEvent{third, first, second} {
		require.NoError(t, repo.Create(ctx, e))
	}

	pending, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
	assert.Equal(t, third.ID, pending[2].ID)

	limited, err := repo.ListPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, first.ID, limited[0].ID)

	require.NoError(t, repo.MarkSent(ctx, first.ID))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, strings.Repeat("x", 600)))

	var sent kafka.OutboxEvent
	require.NoError(t, db.Where("id = ?", first.ID).First(&sent).Error)
	assert.Equal(t, kafka.OutboxStatusSent, sent.Status)
	assert.NotNil(t, sent.ProcessedAt)
	assert.Nil(t, sent.ErrorMessage)

	var failed kafka.OutboxEvent
	require.NoError(t, db.Where("id = ?", second.ID).First(&failed).Error)
	assert.Equal(t, kafka.OutboxStatusFailed, failed.Status)
	assert.Equal(t, 1, failed.RetryCount)
	require.NotNil(t, failed.ErrorMessage)
	assert.Len(t, *failed.ErrorMessage, 500)
	require.NotNil(t, failed.NextRetryAt)
	assert.True(t, failed.NextRetryAt.After(time.Now().UTC()))

	pending, err = repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, third.ID, pending[0].ID)

	t.Run("failed row comes back once its retry time passes", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Second)
		require.NoError(t, db.Model(&kafka.OutboxEvent{}).Where("id = ?", second.ID).Update("next_retry_at", past).Error)

		pending, err := repo.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, second.ID, pending[0].ID)
		assert.Equal(t, 1, pending[0].RetryCount)

		require.NoError(t, repo.MarkFailed(ctx, second.ID, "timeout"))
		var again kafka.OutboxEvent
		require.NoError(t, db.Where("id = ?", second.ID).First(&again).Error)
		assert.Equal(t, 2, again.RetryCount)
		assert.Equal(t, "timeout", *again.ErrorMessage)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, repo.MarkFailed(ctx, uuid.NewString(), "timeout"), gorm.ErrRecordNotFound)
	})
}

func TestEventOutbox_Enqueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := kafkaMock.NewMockOutboxRepository(ctrl)
	outbox := kafka.NewEventOutbox(repo, "")
	ctx := context.Background()

	orgID, leaveID, recipient := uuid.New(), uuid.New(), uuid.New()
	evt := events.New(events.LeaveApproved, orgID, "leave_request", leaveID, time.Now()).
		Notify(&recipient, events.KindLeave, "Leave approved", "Your leave request has been approved", "")
	unaddressed := events.New(events.EmployeeCreated, orgID, "employee", uuid.New(), time.Now())

	repo.EXPECT().WithTx(gomock.Nil()).Return(repo)
	first := repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
		assert.Equal(t, evt.ID, e.ID)
		assert.Equal(t, "leave.approved", e.EventType)
		assert.Equal(t, events.DomainEventsTopic, e.Topic)
		assert.Equal(t, kafka.OutboxStatusPending, e.Status)
		assert.Equal(t, orgID.String(), e.OrganizationID)
		require.NotNil(t, e.RecipientID)
		assert.Equal(t, recipient.String(), *e.RecipientID)

		var decoded events.DomainEvent
		assert.NoError(t, json.Unmarshal(e.Payload, &decoded))
		assert.Equal(t, recipient.String(), decoded.RecipientID)
		assert.Equal(t, events.KindLeave, decoded.Kind)
		return nil
	})
	repo.EXPECT().Create(ctx, gomock.Any()).After(first).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
		assert.Equal(t, unaddressed.ID, e.ID)
		assert.Nil(t, e.RecipientID)
		return nil
	})

	assert.NoError(t, outbox.Enqueue(ctx, nil, evt, unaddressed))
	assert.NoError(t, outbox.Enqueue(ctx, nil))
}

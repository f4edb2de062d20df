package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"taixiu/domain/entities"
	"taixiu/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func TestNATSEventPublisher_PublishWrapsEventInEnvelope(t *testing.T) {
	messages := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(messages, NewEventSubjectMapper())

	event := events.ApprovalRequestedEvent{
		RequestID: 7,
		Kind:      entities.RequestKindWithdrawal,
		AccountID: 42,
		Amount:    150000,
	}

	var sent []byte
	messages.On("Publish", mock.Anything, "approval.requested", mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(2).([]byte)
		}).
		Return(nil).Once()

	require.NoError(t, publisher.Publish(event))
	messages.AssertExpectations(t)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(sent, &envelope))
	assert.Equal(t, "approval_requested", envelope.EventType)
	assert.Equal(t, sourceService, envelope.SourceService)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.ApprovalRequestedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestNATSEventPublisher_LocalHandlersRunBeforePublish(t *testing.T) {
	messages := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(messages, NewEventSubjectMapper())

	var calls []string
	publisher.RegisterLocalHandler(events.EventTypeSchedulerStalled, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "first")
		return errors.New("handler failure is logged only")
	})
	publisher.RegisterLocalHandler(events.EventTypeSchedulerStalled, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "second")
		return nil
	})
	messages.On("Publish", mock.Anything, "scheduler.stalled", mock.Anything).
		Run(func(args mock.Arguments) {
			calls = append(calls, "nats")
		}).
		Return(nil).Once()

	require.NoError(t, publisher.Publish(events.SchedulerStalledEvent{LastRoundID: 3}))
	assert.Equal(t, []string{"first", "second", "nats"}, calls)
}

func TestNATSEventPublisher_PublishErrors(t *testing.T) {
	t.Run("missing stream is ignored", func(t *testing.T) {
		messages := &MockMessagePublisher{}
		messages.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("nats: no response from stream")).Once()

		publisher := NewNATSEventPublisher(messages, NewEventSubjectMapper())
		assert.NoError(t, publisher.Publish(events.RoundOpenedEvent{RoundID: 1}))
	})

	t.Run("other failures are returned", func(t *testing.T) {
		messages := &MockMessagePublisher{}
		messages.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("connection closed")).Once()

		publisher := NewNATSEventPublisher(messages, NewEventSubjectMapper())
		assert.Error(t, publisher.Publish(events.RoundOpenedEvent{RoundID: 1}))
	})

	t.Run("without a message bus only local handlers run", func(t *testing.T) {
		publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
		handled := false
		publisher.RegisterLocalHandler(events.EventTypeRoundOpened, func(ctx context.Context, event events.Event) error {
			handled = true
			return nil
		})

		assert.NoError(t, publisher.Publish(events.RoundOpenedEvent{RoundID: 1}))
		assert.True(t, handled)
	})
}

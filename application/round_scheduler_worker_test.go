package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"taixiu/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRoundSchedulerWorker_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns settled summary", func(t *testing.T) {
		settler := &mockSettler{}
		settler.On("SettleDue", ctx, now).Return(&entities.SettlementSummary{RoundID: 5, NextRoundID: 6}, nil).Once()
		worker := NewRoundSchedulerWorker(settler)
		worker.now = func() time.Time { return now }

		summary := worker.RunOnce(ctx)

		assert.Equal(t, int64(5), summary.RoundID)
		settler.AssertExpectations(t)
	})

	t.Run("nothing due", func(t *testing.T) {
		settler := &mockSettler{}
		settler.On("SettleDue", ctx, now).Return(nil, nil).Once()
		worker := NewRoundSchedulerWorker(settler)
		worker.now = func() time.Time { return now }

		assert.Nil(t, worker.RunOnce(ctx))
	})

	t.Run("failure leaves the round for the next tick", func(t *testing.T) {
		settler := &mockSettler{}
		settler.On("SettleDue", ctx, now).Return(nil, errors.New("deadlock detected")).Once()
		worker := NewRoundSchedulerWorker(settler)
		worker.now = func() time.Time { return now }

		assert.Nil(t, worker.RunOnce(ctx))
		settler.AssertExpectations(t)
	})
}

func TestRoundSchedulerWorker_StartTicksUntilStopped(t *testing.T) {
	var calls atomic.Int32
	settler := &mockSettler{}
	settler.On("SettleDue", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).
		Return(nil, nil)

	worker := NewRoundSchedulerWorker(settler)
	worker.tick = 10 * time.Millisecond

	stop := worker.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	stop()

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestRoundSchedulerWorker_StopsOnContextCancel(t *testing.T) {
	settler := &mockSettler{}
	settler.On("SettleDue", mock.Anything, mock.Anything).Return(nil, nil)

	worker := NewRoundSchedulerWorker(settler)
	worker.tick = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	stop := worker.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

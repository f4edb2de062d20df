package utils

import (
	"context"
	"errors"
	"testing"

	"taixiu/domain/entities"
	"taixiu/domain/events"
	"taixiu/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRecordBalanceChange(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockEventPublisher.On("Publish", mock.MatchedBy(func(event interface{}) bool {
		e, ok := event.(events.BalanceChangeEvent)
		return ok && e.AccountID == 123456 && e.ChangeAmount == 500 && e.NewBalance == 1500
	})).Return(nil)

	history := entities.NewBalanceHistory(123456, 1500, 500, entities.TransactionTypeDeposit, 9, entities.RelatedTypeRequest, nil)

	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.NoError(t, err)

	mockBalanceHistoryRepo.AssertExpectations(t)
	mockEventPublisher.AssertExpectations(t)
}

func TestRecordBalanceChange_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockEventPublisher.On("Publish", mock.Anything).Return(errors.New("nats down"))

	history := entities.NewBalanceHistory(1, 100, -50, entities.TransactionTypeBetPlaced, 3, entities.RelatedTypeBet, nil)

	assert.NoError(t, RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history))
}

func TestRecordBalanceChange_RejectsInconsistentHistory(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	history := &entities.BalanceHistory{AccountID: 1, BalanceBefore: 10, BalanceAfter: 30, ChangeAmount: 5}

	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.Error(t, err)
	mockBalanceHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestRecordBalanceChange_RecordFailure(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(errors.New("db error"))

	history := entities.NewBalanceHistory(1, 150, 50, entities.TransactionTypeBonus, 1, entities.RelatedTypeRequest, nil)

	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.Error(t, err)
	mockEventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

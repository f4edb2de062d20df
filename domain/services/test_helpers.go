package services

import (
	"testing"
	"time"

	"taixiu/domain/entities"
	"taixiu/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestAdminID        = int64(999999)
	TestAccountID      = int64(123456789)
	TestOtherAccountID = int64(987654321)
	TestRoundID        = int64(42)
	TestNextRoundID    = int64(43)
	TestInitialBalance = int64(100000)
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	AccountRepo        *testhelpers.MockAccountRepository
	HouseRepo          *testhelpers.MockHouseRepository
	RoundRepo          *testhelpers.MockRoundRepository
	BetRepo            *testhelpers.MockBetRepository
	StatsRepo          *testhelpers.MockStatsRepository
	RequestRepo        *testhelpers.MockApprovalRequestRepository
	BalanceHistoryRepo *testhelpers.MockBalanceHistoryRepository
	SchedulerStateRepo *testhelpers.MockSchedulerStateRepository
	PromoRepo          *testhelpers.MockPromoRepository
	EventPublisher     *testhelpers.MockEventPublisher
	RandomSource       *testhelpers.MockRandomSource
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		AccountRepo:        &testhelpers.MockAccountRepository{},
		HouseRepo:          &testhelpers.MockHouseRepository{},
		RoundRepo:          &testhelpers.MockRoundRepository{},
		BetRepo:            &testhelpers.MockBetRepository{},
		StatsRepo:          &testhelpers.MockStatsRepository{},
		RequestRepo:        &testhelpers.MockApprovalRequestRepository{},
		BalanceHistoryRepo: &testhelpers.MockBalanceHistoryRepository{},
		SchedulerStateRepo: &testhelpers.MockSchedulerStateRepository{},
		PromoRepo:          &testhelpers.MockPromoRepository{},
		EventPublisher:     &testhelpers.MockEventPublisher{},
		RandomSource:       &testhelpers.MockRandomSource{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.HouseRepo.AssertExpectations(t)
	m.RoundRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.StatsRepo.AssertExpectations(t)
	m.RequestRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.SchedulerStateRepo.AssertExpectations(t)
	m.PromoRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.RandomSource.AssertExpectations(t)
}

// ExpectEnsureAccount sets up the upsert and stats row of an existing account
func (m *TestMocks) ExpectEnsureAccount(account *entities.Account) {
	m.AccountRepo.On("Upsert", mock.Anything, account.ID, mock.AnythingOfType("string")).Return(account, false, nil).Once()
	m.StatsRepo.On("EnsureExists", mock.Anything, account.ID).Return(nil).Once()
}

// ExpectBalanceHistory accepts any history row and its balance change event
func (m *TestMocks) ExpectBalanceHistory() {
	m.BalanceHistoryRepo.On("Record", mock.Anything, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil)
	m.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
}

// ExpectDailyWithdrawals sets up the account lock and today's approved withdrawal total,
// the request being decided included
func (m *TestMocks) ExpectDailyWithdrawals(total int64) {
	m.AccountRepo.On("GetForUpdate", mock.Anything, TestAccountID).Return(NewTestAccount(TestAccountID, total), nil).Once()
	m.RequestRepo.On("SumApproved", mock.Anything, entities.RequestKindWithdrawal, TestAccountID, mock.AnythingOfType("time.Time")).
		Return(total, nil).Once()
}

// NewTestAccount creates an account that has already claimed its bonus
func NewTestAccount(id, balance int64) *entities.Account {
	return &entities.Account{
		ID:           id,
		DisplayName:  "player",
		Balance:      balance,
		BonusClaimed: true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// NewOpenRound creates an open round started the given duration ago
func NewOpenRound(id int64, age time.Duration) *entities.Round {
	return &entities.Round{
		ID:        id,
		StartedAt: time.Now().UTC().Add(-age),
	}
}

// NewTestBet creates an unsettled bet
func NewTestBet(id, accountID int64, side entities.Side, amount int64) *entities.Bet {
	return &entities.Bet{
		ID:        id,
		AccountID: accountID,
		RoundID:   TestRoundID,
		Side:      side,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
}

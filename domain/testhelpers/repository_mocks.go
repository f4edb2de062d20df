package testhelpers

import (
	"context"
	"time"

	"taixiu/domain/entities"
	"taixiu/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Upsert(ctx context.Context, id int64, displayName string) (*entities.Account, bool, error) {
	args := m.Called(ctx, id, displayName)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ClaimBonus(ctx context.Context, id int64, amount int64) (int64, bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, id int64) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) TotalBalance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) TopByBalance(ctx context.Context, limit int) ([]*entities.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

// MockHouseRepository is a mock implementation of HouseRepository
type MockHouseRepository struct {
	mock.Mock
}

func (m *MockHouseRepository) Get(ctx context.Context) (*entities.HouseAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HouseAccount), args.Error(1)
}

func (m *MockHouseRepository) GetForUpdate(ctx context.Context) (*entities.HouseAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HouseAccount), args.Error(1)
}

func (m *MockHouseRepository) AddBalance(ctx context.Context, amount int64) (int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHouseRepository) DeductBalance(ctx context.Context, amount int64) (int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHouseRepository) RecordLedger(ctx context.Context, entry *entities.HouseLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockRoundRepository is a mock implementation of RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id int64) (*entities.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetOpen(ctx context.Context) (*entities.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetOpenForUpdate(ctx context.Context) (*entities.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) CreateOpen(ctx context.Context) (*entities.Round, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Round), args.Bool(1), args.Error(2)
}

func (m *MockRoundRepository) MarkClosed(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockRoundRepository) SaveRoll(ctx context.Context, round *entities.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundRepository) ListRolled(ctx context.Context, limit int) ([]*entities.Round, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Round), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) ListByRound(ctx context.Context, roundID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) SaveResult(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) SummarizeRound(ctx context.Context, roundID int64) (*entities.RoundBetSummary, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RoundBetSummary), args.Error(1)
}

func (m *MockBetRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Bet, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

// MockStatsRepository is a mock implementation of StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) EnsureExists(ctx context.Context, accountID int64) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockStatsRepository) GetByAccount(ctx context.Context, accountID int64) (*entities.Stats, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Stats), args.Error(1)
}

func (m *MockStatsRepository) RecordWin(ctx context.Context, accountID int64) (*entities.Stats, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Stats), args.Error(1)
}

func (m *MockStatsRepository) RecordLoss(ctx context.Context, accountID int64) (*entities.Stats, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Stats), args.Error(1)
}

func (m *MockStatsRepository) TopByMaxStreak(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

// MockApprovalRequestRepository is a mock implementation of ApprovalRequestRepository
type MockApprovalRequestRepository struct {
	mock.Mock
}

func (m *MockApprovalRequestRepository) Create(ctx context.Context, request *entities.ApprovalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockApprovalRequestRepository) GetByID(ctx context.Context, id int64) (*entities.ApprovalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRequestRepository) FindLatestPending(ctx context.Context, kind entities.RequestKind, accountID, amount int64) (*entities.ApprovalRequest, error) {
	args := m.Called(ctx, kind, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRequestRepository) Resolve(ctx context.Context, id int64, status entities.RequestStatus, decidedBy int64, at time.Time) (*entities.ApprovalRequest, error) {
	args := m.Called(ctx, id, status, decidedBy, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRequestRepository) ListPending(ctx context.Context, kind entities.RequestKind, limit int) ([]*entities.ApprovalRequest, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRequestRepository) SumApproved(ctx context.Context, kind entities.RequestKind, accountID int64, since time.Time) (int64, error) {
	args := m.Called(ctx, kind, accountID, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockSchedulerStateRepository is a mock implementation of SchedulerStateRepository
type MockSchedulerStateRepository struct {
	mock.Mock
}

func (m *MockSchedulerStateRepository) Get(ctx context.Context) (*entities.SchedulerState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SchedulerState), args.Error(1)
}

func (m *MockSchedulerStateRepository) RecordSettlement(ctx context.Context, roundID int64, at time.Time) error {
	args := m.Called(ctx, roundID, at)
	return args.Error(0)
}

func (m *MockSchedulerStateRepository) SetOutcomeMode(ctx context.Context, mode entities.OutcomeMode, setBy int64) error {
	args := m.Called(ctx, mode, setBy)
	return args.Error(0)
}

func (m *MockSchedulerStateRepository) ResetOutcomeMode(ctx context.Context, expected entities.OutcomeMode) (bool, error) {
	args := m.Called(ctx, expected)
	return args.Bool(0), args.Error(1)
}

// MockPromoRepository is a mock implementation of PromoRepository
type MockPromoRepository struct {
	mock.Mock
}

func (m *MockPromoRepository) CreateCode(ctx context.Context, code *entities.PromoCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockPromoRepository) GetCode(ctx context.Context, code string) (*entities.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PromoCode), args.Error(1)
}

func (m *MockPromoRepository) MarkRedeemed(ctx context.Context, code string, accountID int64, at time.Time) (*entities.PromoCode, error) {
	args := m.Called(ctx, code, accountID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PromoCode), args.Error(1)
}

func (m *MockPromoRepository) CreateRedemption(ctx context.Context, redemption *entities.PromoRedemption) error {
	args := m.Called(ctx, redemption)
	return args.Error(0)
}

func (m *MockPromoRepository) AdvanceWager(ctx context.Context, accountID, roundID int64) ([]*entities.PromoRedemption, error) {
	args := m.Called(ctx, accountID, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PromoRedemption), args.Error(1)
}

func (m *MockPromoRepository) ListActive(ctx context.Context, accountID int64) ([]*entities.PromoRedemption, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PromoRedemption), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockRandomSource is a mock implementation of RandomSource
type MockRandomSource struct {
	mock.Mock
}

func (m *MockRandomSource) Roll() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

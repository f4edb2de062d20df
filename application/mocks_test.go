package application

import (
	"context"
	"time"

	"taixiu/domain/entities"
	"taixiu/domain/interfaces"
	"taixiu/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// mockUnitOfWork hands out repository mocks and records its transaction calls
type mockUnitOfWork struct {
	mock.Mock

	accountRepo        *testhelpers.MockAccountRepository
	houseRepo          *testhelpers.MockHouseRepository
	roundRepo          *testhelpers.MockRoundRepository
	betRepo            *testhelpers.MockBetRepository
	statsRepo          *testhelpers.MockStatsRepository
	requestRepo        *testhelpers.MockApprovalRequestRepository
	balanceHistoryRepo *testhelpers.MockBalanceHistoryRepository
	schedulerStateRepo *testhelpers.MockSchedulerStateRepository
	promoRepo          *testhelpers.MockPromoRepository
	eventBus           *testhelpers.MockEventPublisher
}

func newMockUnitOfWork() *mockUnitOfWork {
	return &mockUnitOfWork{
		accountRepo:        &testhelpers.MockAccountRepository{},
		houseRepo:          &testhelpers.MockHouseRepository{},
		roundRepo:          &testhelpers.MockRoundRepository{},
		betRepo:            &testhelpers.MockBetRepository{},
		statsRepo:          &testhelpers.MockStatsRepository{},
		requestRepo:        &testhelpers.MockApprovalRequestRepository{},
		balanceHistoryRepo: &testhelpers.MockBalanceHistoryRepository{},
		schedulerStateRepo: &testhelpers.MockSchedulerStateRepository{},
		promoRepo:          &testhelpers.MockPromoRepository{},
		eventBus:           &testhelpers.MockEventPublisher{},
	}
}

// expectTransaction allows Begin and the deferred Rollback, and Commit when committed is set
func (m *mockUnitOfWork) expectTransaction(committed bool) {
	m.On("Begin", mock.Anything).Return(nil).Once()
	m.On("Rollback").Return(nil).Once()
	if committed {
		m.On("Commit").Return(nil).Once()
	}
}

func (m *mockUnitOfWork) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Commit() error {
	return m.Called().Error(0)
}

func (m *mockUnitOfWork) Rollback() error {
	return m.Called().Error(0)
}

func (m *mockUnitOfWork) AccountRepository() interfaces.AccountRepository { return m.accountRepo }
func (m *mockUnitOfWork) HouseRepository() interfaces.HouseRepository     { return m.houseRepo }
func (m *mockUnitOfWork) RoundRepository() interfaces.RoundRepository     { return m.roundRepo }
func (m *mockUnitOfWork) BetRepository() interfaces.BetRepository         { return m.betRepo }
func (m *mockUnitOfWork) StatsRepository() interfaces.StatsRepository     { return m.statsRepo }
func (m *mockUnitOfWork) ApprovalRequestRepository() interfaces.ApprovalRequestRepository {
	return m.requestRepo
}
func (m *mockUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return m.balanceHistoryRepo
}
func (m *mockUnitOfWork) SchedulerStateRepository() interfaces.SchedulerStateRepository {
	return m.schedulerStateRepo
}
func (m *mockUnitOfWork) PromoRepository() interfaces.PromoRepository { return m.promoRepo }
func (m *mockUnitOfWork) EventBus() interfaces.EventPublisher         { return m.eventBus }

// singleUnitOfWorkFactory always returns the same unit of work
type singleUnitOfWorkFactory struct {
	uow     *mockUnitOfWork
	created int
}

func (f *singleUnitOfWorkFactory) Create() UnitOfWork {
	f.created++
	return f.uow
}

// mockSettler is a RoundSettler returning canned results
type mockSettler struct {
	mock.Mock
}

func (m *mockSettler) SettleDue(ctx context.Context, now time.Time) (*entities.SettlementSummary, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SettlementSummary), args.Error(1)
}

// mockMonitor is a ScheduleMonitor returning canned health readings
type mockMonitor struct {
	mock.Mock
}

func (m *mockMonitor) ScheduleHealth(ctx context.Context, now time.Time) (*entities.ScheduleHealth, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ScheduleHealth), args.Error(1)
}

func (m *mockMonitor) ReportStall(ctx context.Context, health *entities.ScheduleHealth) error {
	return m.Called(ctx, health).Error(0)
}

// recordingNotifier keeps every message it was asked to deliver
type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) NotifyAdmins(ctx context.Context, message string) error {
	n.messages = append(n.messages, message)
	return nil
}

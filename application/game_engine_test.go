package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"taixiu/domain/entities"
	"taixiu/domain/events"
	"taixiu/domain/services"
	"taixiu/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testAdminID   = int64(999999)
	testAccountID = int64(123456789)
	testRoundID   = int64(42)
)

func newTestEngine(uow *mockUnitOfWork) (*GameEngine, *singleUnitOfWorkFactory) {
	factory := &singleUnitOfWorkFactory{uow: uow}
	return NewGameEngine(factory, &testhelpers.MockRandomSource{}), factory
}

func TestGameEngine_PlaceBet_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	uow := newMockUnitOfWork()
	uow.expectTransaction(true)
	engine, _ := newTestEngine(uow)

	round := services.NewOpenRound(testRoundID, 10*time.Second)
	account := services.NewTestAccount(testAccountID, 5000)

	uow.roundRepo.On("GetOpen", ctx).Return(round, nil)
	uow.roundRepo.On("GetByIDForShare", ctx, testRoundID).Return(round, nil)
	uow.accountRepo.On("Upsert", ctx, testAccountID, "player").Return(account, false, nil)
	uow.statsRepo.On("EnsureExists", ctx, testAccountID).Return(nil)
	uow.accountRepo.On("DeductBalance", ctx, testAccountID, int64(1000)).Return(int64(4000), nil)
	uow.betRepo.On("Create", ctx, mock.AnythingOfType("*entities.Bet")).
		Run(func(args mock.Arguments) { args.Get(1).(*entities.Bet).ID = 7 }).
		Return(nil)
	uow.balanceHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil)
	uow.eventBus.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
	uow.eventBus.On("Publish", mock.AnythingOfType("events.BetPlacedEvent")).Return(nil)
	uow.promoRepo.On("AdvanceWager", ctx, testAccountID, testRoundID).Return(nil, nil).Once()

	bet, err := engine.PlaceBet(ctx, testAccountID, "player", entities.SideHigh, 1000)

	require.NoError(t, err)
	uow.promoRepo.AssertExpectations(t)
	assert.Equal(t, int64(7), bet.ID)
	assert.Equal(t, testRoundID, bet.RoundID)
	uow.AssertExpectations(t)
	uow.accountRepo.AssertExpectations(t)
	uow.betRepo.AssertExpectations(t)
}

func TestGameEngine_PlaceBet_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	uow := newMockUnitOfWork()
	uow.expectTransaction(false)
	engine, _ := newTestEngine(uow)

	uow.roundRepo.On("GetOpen", ctx).Return(nil, nil)

	bet, err := engine.PlaceBet(ctx, testAccountID, "player", entities.SideLow, 1000)

	assert.ErrorIs(t, err, entities.ErrRoundClosed)
	assert.Nil(t, bet)
	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit")
}

func TestGameEngine_PlaceBet_BeginFailure(t *testing.T) {
	uow := newMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(errors.New("pool exhausted")).Once()
	engine, _ := newTestEngine(uow)

	_, err := engine.PlaceBet(context.Background(), testAccountID, "player", entities.SideLow, 1000)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	uow.AssertNotCalled(t, "Rollback")
}

func TestGameEngine_ForceRoll_RequiresAdmin(t *testing.T) {
	uow := newMockUnitOfWork()
	engine, factory := newTestEngine(uow)

	summary, err := engine.ForceRoll(context.Background(), testAccountID, 6, 6, 6)

	assert.ErrorIs(t, err, entities.ErrNotAuthorized)
	assert.Nil(t, summary)
	assert.Zero(t, factory.created)
}

func TestGameEngine_ForceRoll_RejectsInvalidDice(t *testing.T) {
	uow := newMockUnitOfWork()
	engine, factory := newTestEngine(uow)

	_, err := engine.ForceRoll(context.Background(), testAdminID, 0, 3, 7)

	assert.ErrorIs(t, err, entities.ErrInvalidDiceValue)
	assert.Zero(t, factory.created)
}

func TestGameEngine_SettleDue_NothingDue(t *testing.T) {
	ctx := context.Background()
	uow := newMockUnitOfWork()
	uow.expectTransaction(true)
	engine, _ := newTestEngine(uow)

	uow.roundRepo.On("GetOpenForUpdate", ctx).Return(services.NewOpenRound(testRoundID, 5*time.Second), nil)

	summary, err := engine.SettleDue(ctx, time.Now())

	require.NoError(t, err)
	assert.Nil(t, summary)
	uow.AssertExpectations(t)
}

func TestGameEngine_DecideRequest_NonAdminIsRejected(t *testing.T) {
	ctx := context.Background()
	uow := newMockUnitOfWork()
	uow.expectTransaction(false)
	engine, _ := newTestEngine(uow)

	resolved, err := engine.DecideRequest(ctx, 1, entities.DecisionApprove, testAccountID)

	assert.ErrorIs(t, err, entities.ErrNotAuthorized)
	assert.Nil(t, resolved)
	uow.requestRepo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGameEngine_RequestWithdrawal_BlockedByPendingWager(t *testing.T) {
	ctx := context.Background()
	uow := newMockUnitOfWork()
	uow.expectTransaction(false)
	engine, _ := newTestEngine(uow)

	uow.accountRepo.On("Upsert", ctx, testAccountID, "player").Return(services.NewTestAccount(testAccountID, 90000), false, nil)
	uow.statsRepo.On("EnsureExists", ctx, testAccountID).Return(nil)
	uow.promoRepo.On("ListActive", ctx, testAccountID).Return([]*entities.PromoRedemption{
		{Code: "WELCOME1", AccountID: testAccountID, Amount: 50000, WagerRequired: 5, WagerProgress: 2, Active: true},
	}, nil).Once()

	request, err := engine.RequestWithdrawal(ctx, testAccountID, "player", 60000)

	assert.ErrorIs(t, err, entities.ErrWagerPending)
	assert.Contains(t, err.Error(), "3 rounds left on promo WELCOME1")
	assert.Nil(t, request)
	uow.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestGameEngine_RequestDeposit_IgnoresPendingWager(t *testing.T) {
	ctx := context.Background()
	uow := newMockUnitOfWork()
	uow.expectTransaction(true)
	engine, _ := newTestEngine(uow)

	uow.accountRepo.On("Upsert", ctx, testAccountID, mock.AnythingOfType("string")).Return(services.NewTestAccount(testAccountID, 0), false, nil)
	uow.statsRepo.On("EnsureExists", ctx, testAccountID).Return(nil)
	uow.requestRepo.On("Create", ctx, mock.AnythingOfType("*entities.ApprovalRequest")).Return(nil)
	uow.eventBus.On("Publish", mock.AnythingOfType("events.ApprovalRequestedEvent")).Return(nil)

	_, err := engine.RequestDeposit(ctx, testAccountID, "player", 60000)

	require.NoError(t, err)
	uow.promoRepo.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestGameEngine_SetOutcomeMode(t *testing.T) {
	t.Run("admin sets mode", func(t *testing.T) {
		ctx := context.Background()
		uow := newMockUnitOfWork()
		uow.expectTransaction(true)
		engine, _ := newTestEngine(uow)

		uow.schedulerStateRepo.On("SetOutcomeMode", ctx, entities.OutcomeModeStreakLow, testAdminID).Return(nil).Once()
		uow.eventBus.On("Publish", events.OutcomeModeChangedEvent{Mode: entities.OutcomeModeStreakLow, ChangedBy: testAdminID}).Return(nil).Once()

		require.NoError(t, engine.SetOutcomeMode(ctx, testAdminID, entities.OutcomeModeStreakLow))
		uow.AssertExpectations(t)
		uow.schedulerStateRepo.AssertExpectations(t)
		uow.eventBus.AssertExpectations(t)
	})

	t.Run("non-admin", func(t *testing.T) {
		engine, factory := newTestEngine(newMockUnitOfWork())

		err := engine.SetOutcomeMode(context.Background(), testAccountID, entities.OutcomeModeForceHigh)
		assert.ErrorIs(t, err, entities.ErrNotAuthorized)
		assert.Zero(t, factory.created)
	})

	t.Run("unknown mode", func(t *testing.T) {
		engine, factory := newTestEngine(newMockUnitOfWork())

		err := engine.SetOutcomeMode(context.Background(), testAdminID, entities.OutcomeMode("sideways"))
		assert.ErrorIs(t, err, entities.ErrInvalidOutcomeMode)
		assert.Zero(t, factory.created)
	})
}

func TestGameEngine_TopBalances(t *testing.T) {
	t.Run("defaults the limit", func(t *testing.T) {
		ctx := context.Background()
		uow := newMockUnitOfWork()
		uow.expectTransaction(false)
		engine, _ := newTestEngine(uow)

		rich := []*entities.Account{services.NewTestAccount(1, 900), services.NewTestAccount(2, 100)}
		uow.accountRepo.On("TopByBalance", ctx, 50).Return(rich, nil).Once()

		accounts, err := engine.TopBalances(ctx, testAdminID, 0)
		require.NoError(t, err)
		assert.Equal(t, rich, accounts)
		uow.AssertExpectations(t)
	})

	t.Run("non-admin", func(t *testing.T) {
		engine, factory := newTestEngine(newMockUnitOfWork())

		_, err := engine.TopBalances(context.Background(), testAccountID, 10)
		assert.ErrorIs(t, err, entities.ErrNotAuthorized)
		assert.Zero(t, factory.created)
	})
}

func TestGameEngine_HousePot(t *testing.T) {
	ctx := context.Background()

	t.Run("returns house balance", func(t *testing.T) {
		uow := newMockUnitOfWork()
		uow.expectTransaction(false)
		engine, _ := newTestEngine(uow)
		uow.houseRepo.On("Get", ctx).Return(&entities.HouseAccount{Balance: 9000}, nil)

		pot, err := engine.HousePot(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(9000), pot)
		uow.AssertNotCalled(t, "Commit")
	})

	t.Run("missing house row", func(t *testing.T) {
		uow := newMockUnitOfWork()
		uow.expectTransaction(false)
		engine, _ := newTestEngine(uow)
		uow.houseRepo.On("Get", ctx).Return(nil, nil)

		_, err := engine.HousePot(ctx)

		assert.Error(t, err)
	})
}

func TestGameEngine_CurrentRound(t *testing.T) {
	ctx := context.Background()
	uow := newMockUnitOfWork()
	uow.expectTransaction(true)
	engine, _ := newTestEngine(uow)

	round := services.NewOpenRound(testRoundID, 20*time.Second)
	summary := &entities.RoundBetSummary{BetCount: 3, TotalWagered: 3500, HighWagered: 2500, LowWagered: 1000}
	uow.roundRepo.On("GetOpen", ctx).Return(round, nil)
	uow.betRepo.On("SummarizeRound", ctx, testRoundID).Return(summary, nil)

	view, err := engine.CurrentRound(ctx)

	require.NoError(t, err)
	assert.Same(t, round, view.Round)
	assert.Equal(t, int64(3500), view.Summary.TotalWagered)
}

func TestGameEngine_ScheduleHealth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	roundID := int64(9)

	tests := []struct {
		name        string
		state       *entities.SchedulerState
		wantStalled bool
		wantOverdue time.Duration
	}{
		{
			name:  "never settled",
			state: nil,
		},
		{
			name: "within window",
			state: &entities.SchedulerState{
				LastSettledAt: timePtr(now.Add(-80 * time.Second)),
				LastRoundID:   &roundID,
			},
		},
		{
			name: "past window",
			state: &entities.SchedulerState{
				LastSettledAt: timePtr(now.Add(-100 * time.Second)),
				LastRoundID:   &roundID,
			},
			wantStalled: true,
			wantOverdue: 10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := newMockUnitOfWork()
			uow.expectTransaction(false)
			engine, _ := newTestEngine(uow)
			uow.schedulerStateRepo.On("Get", ctx).Return(tt.state, nil)

			health, err := engine.ScheduleHealth(ctx, now)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStalled, health.Stalled)
			assert.Equal(t, tt.wantOverdue, health.Overdue)
		})
	}
}

func TestGameEngine_ReportStall(t *testing.T) {
	ctx := context.Background()
	settledAt := time.Now().Add(-5 * time.Minute)
	roundID := int64(11)

	t.Run("publishes stall event", func(t *testing.T) {
		uow := newMockUnitOfWork()
		uow.expectTransaction(true)
		engine, _ := newTestEngine(uow)
		uow.eventBus.On("Publish", events.SchedulerStalledEvent{
			LastSettledAt: settledAt,
			LastRoundID:   roundID,
			Overdue:       4 * time.Minute,
		}).Return(nil).Once()

		err := engine.ReportStall(ctx, &entities.ScheduleHealth{
			LastSettledAt: &settledAt,
			LastRoundID:   &roundID,
			Stalled:       true,
			Overdue:       4 * time.Minute,
		})

		require.NoError(t, err)
		uow.eventBus.AssertExpectations(t)
	})

	t.Run("healthy schedule is ignored", func(t *testing.T) {
		uow := newMockUnitOfWork()
		engine, factory := newTestEngine(uow)

		err := engine.ReportStall(ctx, &entities.ScheduleHealth{LastSettledAt: &settledAt})

		require.NoError(t, err)
		assert.Zero(t, factory.created)
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}

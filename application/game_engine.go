package application

import (
	"context"
	"fmt"
	"time"

	"taixiu/config"
	"taixiu/domain/entities"
	"taixiu/domain/events"
	"taixiu/domain/interfaces"
	"taixiu/domain/services"
	"taixiu/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const defaultTopBalances = 50

// CurrentRoundView is the open round together with the bets placed on it so far
type CurrentRoundView struct {
	Round   *entities.Round
	Summary *entities.RoundBetSummary
}

// GameEngine is the operation surface the transport layer calls.
// Every operation runs in its own unit of work.
type GameEngine struct {
	uowFactory   UnitOfWorkFactory
	randomSource interfaces.RandomSource
	config       *config.Config
}

// NewGameEngine creates a new game engine
func NewGameEngine(uowFactory UnitOfWorkFactory, randomSource interfaces.RandomSource) *GameEngine {
	return &GameEngine{
		uowFactory:   uowFactory,
		randomSource: randomSource,
		config:       config.Get(),
	}
}

// inTransaction runs fn in a fresh unit of work and commits when it succeeds
func (e *GameEngine) inTransaction(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// readOnly runs fn in a unit of work that is always rolled back
func (e *GameEngine) readOnly(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return fn(uow)
}

func (e *GameEngine) settlementService(uow UnitOfWork) interfaces.SettlementService {
	return services.NewSettlementService(
		uow.AccountRepository(),
		uow.HouseRepository(),
		uow.RoundRepository(),
		uow.BetRepository(),
		uow.StatsRepository(),
		uow.BalanceHistoryRepository(),
		uow.SchedulerStateRepository(),
		uow.EventBus(),
		e.randomSource,
	)
}

func accountService(uow UnitOfWork) interfaces.AccountService {
	return services.NewAccountService(
		uow.AccountRepository(),
		uow.StatsRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
	)
}

func approvalService(uow UnitOfWork) interfaces.ApprovalService {
	return services.NewApprovalService(
		uow.AccountRepository(),
		uow.StatsRepository(),
		uow.ApprovalRequestRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
	)
}

func promoService(uow UnitOfWork) interfaces.PromoService {
	return services.NewPromoService(
		uow.AccountRepository(),
		uow.StatsRepository(),
		uow.PromoRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
	)
}

// PlaceBet wagers amount on side in the open round
func (e *GameEngine) PlaceBet(ctx context.Context, accountID int64, displayName string, side entities.Side, amount int64) (*entities.Bet, error) {
	var bet *entities.Bet
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		svc := services.NewBettingService(
			uow.AccountRepository(),
			uow.StatsRepository(),
			uow.RoundRepository(),
			uow.BetRepository(),
			uow.BalanceHistoryRepository(),
			uow.EventBus(),
		)

		var err error
		bet, err = svc.PlaceBet(ctx, interfaces.PlaceBetParams{
			AccountID:   accountID,
			DisplayName: displayName,
			Side:        side,
			Amount:      amount,
		})
		if err != nil {
			return err
		}
		return promoService(uow).RecordWager(ctx, accountID, bet.RoundID)
	})
	if err != nil {
		return nil, err
	}

	observability.GetMetrics().RecordBetPlaced(string(bet.Side), bet.Amount)
	return bet, nil
}

// ForceRoll settles the open round immediately with administrator-chosen dice
func (e *GameEngine) ForceRoll(ctx context.Context, adminID int64, d1, d2, d3 int) (*entities.SettlementSummary, error) {
	if !e.config.IsAdmin(adminID) {
		return nil, entities.ErrNotAuthorized
	}
	dice, err := entities.NewDice(d1, d2, d3)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"adminID": adminID,
		"dice":    dice.String(),
	}).Info("forcing round roll")

	return e.settle(ctx, func(svc interfaces.SettlementService) (*entities.SettlementSummary, error) {
		return svc.Settle(ctx, &dice)
	})
}

// SettleDue settles the open round once it has been open for the round interval.
// Returns nil when nothing was due.
func (e *GameEngine) SettleDue(ctx context.Context, now time.Time) (*entities.SettlementSummary, error) {
	return e.settle(ctx, func(svc interfaces.SettlementService) (*entities.SettlementSummary, error) {
		return svc.SettleDue(ctx, now)
	})
}

func (e *GameEngine) settle(ctx context.Context, run func(svc interfaces.SettlementService) (*entities.SettlementSummary, error)) (*entities.SettlementSummary, error) {
	start := time.Now()

	var summary *entities.SettlementSummary
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		var err error
		summary, err = run(e.settlementService(uow))
		return err
	})
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, nil
	}

	observability.GetMetrics().RecordRoundSettled(
		string(summary.Outcome),
		summary.Overridden,
		summary.HouseGain,
		summary.Jackpot != nil && summary.Jackpot.Distributed,
		time.Since(start),
	)
	return summary, nil
}

// RequestWithdrawal files a withdrawal for administrator approval
func (e *GameEngine) RequestWithdrawal(ctx context.Context, accountID int64, displayName string, amount int64) (*entities.ApprovalRequest, error) {
	return e.request(ctx, entities.RequestKindWithdrawal, accountID, displayName, amount)
}

// RequestDeposit files a deposit for administrator confirmation
func (e *GameEngine) RequestDeposit(ctx context.Context, accountID int64, displayName string, amount int64) (*entities.ApprovalRequest, error) {
	return e.request(ctx, entities.RequestKindDeposit, accountID, displayName, amount)
}

func (e *GameEngine) request(ctx context.Context, kind entities.RequestKind, accountID int64, displayName string, amount int64) (*entities.ApprovalRequest, error) {
	var request *entities.ApprovalRequest
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		if _, err := accountService(uow).EnsureAccount(ctx, accountID, displayName); err != nil {
			return err
		}
		if kind == entities.RequestKindWithdrawal {
			pending, err := promoService(uow).PendingWager(ctx, accountID)
			if err != nil {
				return err
			}
			if len(pending) > 0 {
				return fmt.Errorf("%d rounds left on promo %s: %w", pending[0].RemainingRounds(), pending[0].Code, entities.ErrWagerPending)
			}
		}

		var err error
		request, err = approvalService(uow).Request(ctx, kind, accountID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// DecideRequest resolves a pending request by its ID
func (e *GameEngine) DecideRequest(ctx context.Context, requestID int64, decision entities.Decision, deciderID int64) (*entities.ApprovalRequest, error) {
	return e.decide(ctx, func(svc interfaces.ApprovalService) (*entities.ApprovalRequest, error) {
		return svc.Decide(ctx, requestID, decision, e.config.IsAdmin(deciderID), deciderID)
	})
}

// DecideRequestByMatch resolves the newest pending request matching kind, account and amount
func (e *GameEngine) DecideRequestByMatch(ctx context.Context, kind entities.RequestKind, accountID, amount int64, decision entities.Decision, deciderID int64) (*entities.ApprovalRequest, error) {
	return e.decide(ctx, func(svc interfaces.ApprovalService) (*entities.ApprovalRequest, error) {
		return svc.DecideByMatch(ctx, kind, accountID, amount, decision, e.config.IsAdmin(deciderID), deciderID)
	})
}

func (e *GameEngine) decide(ctx context.Context, run func(svc interfaces.ApprovalService) (*entities.ApprovalRequest, error)) (*entities.ApprovalRequest, error) {
	var resolved *entities.ApprovalRequest
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		var err error
		resolved, err = run(approvalService(uow))
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.GetMetrics().RecordApprovalDecision(string(resolved.Kind), string(resolved.Status))
	return resolved, nil
}

// PendingRequests lists pending requests of a kind, oldest first
func (e *GameEngine) PendingRequests(ctx context.Context, kind entities.RequestKind) ([]*entities.ApprovalRequest, error) {
	var requests []*entities.ApprovalRequest
	err := e.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		requests, err = approvalService(uow).Pending(ctx, kind, 0)
		return err
	})
	return requests, err
}

// Leaderboard ranks accounts by their longest win streak
func (e *GameEngine) Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	var entries []*entities.LeaderboardEntry
	err := e.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		entries, err = services.NewStatsService(uow.StatsRepository()).Leaderboard(ctx, limit)
		return err
	})
	return entries, err
}

// TopBalances ranks accounts by balance for administrators. A non-positive limit means 50.
func (e *GameEngine) TopBalances(ctx context.Context, adminID int64, limit int) ([]*entities.Account, error) {
	if !e.config.IsAdmin(adminID) {
		return nil, entities.ErrNotAuthorized
	}
	if limit <= 0 {
		limit = defaultTopBalances
	}

	var accounts []*entities.Account
	err := e.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		accounts, err = uow.AccountRepository().TopByBalance(ctx, limit)
		return err
	})
	return accounts, err
}

// CreatePromoCode issues a single-use promo code
func (e *GameEngine) CreatePromoCode(ctx context.Context, adminID, amount int64, wagerRounds int) (*entities.PromoCode, error) {
	var promo *entities.PromoCode
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		var err error
		promo, err = promoService(uow).CreateCode(ctx, adminID, amount, wagerRounds)
		return err
	})
	return promo, err
}

// RedeemPromoCode credits a promo code and returns the wager tracker and new balance
func (e *GameEngine) RedeemPromoCode(ctx context.Context, accountID int64, displayName, code string) (*entities.PromoRedemption, int64, error) {
	var (
		redemption *entities.PromoRedemption
		balance    int64
	)
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		var err error
		redemption, balance, err = promoService(uow).Redeem(ctx, accountID, displayName, code)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return redemption, balance, nil
}

// SetOutcomeMode steers settlements that roll without explicit dice.
// The force modes last one round, the streak modes until reset to random.
func (e *GameEngine) SetOutcomeMode(ctx context.Context, adminID int64, mode entities.OutcomeMode) error {
	if !e.config.IsAdmin(adminID) {
		return entities.ErrNotAuthorized
	}
	if !mode.IsValid() {
		return entities.ErrInvalidOutcomeMode
	}

	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		if err := uow.SchedulerStateRepository().SetOutcomeMode(ctx, mode, adminID); err != nil {
			return err
		}
		if err := uow.EventBus().Publish(events.OutcomeModeChangedEvent{Mode: mode, ChangedBy: adminID}); err != nil {
			log.WithError(err).Error("failed to publish outcome mode event")
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"adminID": adminID,
		"mode":    mode,
	}).Warn("outcome mode changed")
	return nil
}

// ClaimBonus credits the one-time bonus. Returns false when it was already claimed.
func (e *GameEngine) ClaimBonus(ctx context.Context, accountID int64, displayName string) (bool, error) {
	var claimed bool
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		var err error
		claimed, err = accountService(uow).ClaimBonus(ctx, accountID, displayName)
		return err
	})
	return claimed, err
}

// AdminCredit adds funds to an account on an administrator's behalf
func (e *GameEngine) AdminCredit(ctx context.Context, adminID, accountID, amount int64) (int64, error) {
	var balance int64
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		var err error
		balance, err = accountService(uow).Credit(ctx, accountID, amount, adminID)
		return err
	})
	return balance, err
}

// Balance returns an account's balance, creating the account on first read
func (e *GameEngine) Balance(ctx context.Context, accountID int64, displayName string) (int64, error) {
	var balance int64
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		account, err := accountService(uow).EnsureAccount(ctx, accountID, displayName)
		if err != nil {
			return err
		}
		balance = account.Balance
		return nil
	})
	return balance, err
}

// HousePot returns the current house balance
func (e *GameEngine) HousePot(ctx context.Context) (int64, error) {
	var balance int64
	err := e.readOnly(ctx, func(uow UnitOfWork) error {
		house, err := uow.HouseRepository().Get(ctx)
		if err != nil {
			return err
		}
		if house == nil {
			return fmt.Errorf("house account is missing")
		}
		balance = house.Balance
		return nil
	})
	return balance, err
}

// RoundHistory returns the most recently rolled rounds
func (e *GameEngine) RoundHistory(ctx context.Context, limit int) ([]*entities.Round, error) {
	var rounds []*entities.Round
	err := e.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		rounds, err = services.NewRoundService(uow.RoundRepository(), uow.EventBus()).History(ctx, limit)
		return err
	})
	return rounds, err
}

// CurrentRound returns the open round, opening one if none exists, with its bet totals
func (e *GameEngine) CurrentRound(ctx context.Context) (*CurrentRoundView, error) {
	var view *CurrentRoundView
	err := e.inTransaction(ctx, func(uow UnitOfWork) error {
		round, err := services.NewRoundService(uow.RoundRepository(), uow.EventBus()).EnsureOpenRound(ctx)
		if err != nil {
			return err
		}
		summary, err := uow.BetRepository().SummarizeRound(ctx, round.ID)
		if err != nil {
			return fmt.Errorf("failed to summarize round %d: %w", round.ID, err)
		}
		view = &CurrentRoundView{Round: round, Summary: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ScheduleHealth reports whether settlements are keeping up with the round interval
func (e *GameEngine) ScheduleHealth(ctx context.Context, now time.Time) (*entities.ScheduleHealth, error) {
	var health *entities.ScheduleHealth
	err := e.readOnly(ctx, func(uow UnitOfWork) error {
		state, err := uow.SchedulerStateRepository().Get(ctx)
		if err != nil {
			return err
		}
		health = e.evaluateHealth(state, now)
		return nil
	})
	return health, err
}

func (e *GameEngine) evaluateHealth(state *entities.SchedulerState, now time.Time) *entities.ScheduleHealth {
	health := &entities.ScheduleHealth{}
	if state == nil {
		return health
	}

	health.LastSettledAt = state.LastSettledAt
	health.LastRoundID = state.LastRoundID
	health.Stalled = state.IsStalled(now, e.config.RoundInterval, e.config.ScheduleGrace)
	if health.Stalled {
		health.Overdue = now.Sub(*state.LastSettledAt) - e.config.RoundInterval - e.config.ScheduleGrace
	}
	return health
}

// ReportStall publishes a scheduler stall alert for a stalled health reading
func (e *GameEngine) ReportStall(ctx context.Context, health *entities.ScheduleHealth) error {
	if health == nil || !health.Stalled || health.LastSettledAt == nil {
		return nil
	}

	event := events.SchedulerStalledEvent{
		LastSettledAt: *health.LastSettledAt,
		Overdue:       health.Overdue,
	}
	if health.LastRoundID != nil {
		event.LastRoundID = *health.LastRoundID
	}

	return e.inTransaction(ctx, func(uow UnitOfWork) error {
		if err := uow.EventBus().Publish(event); err != nil {
			return fmt.Errorf("failed to publish scheduler stall: %w", err)
		}
		return nil
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taixiu/config"
	"taixiu/domain/entities"
	"taixiu/domain/events"
	"taixiu/domain/interfaces"
	"taixiu/domain/utils"

	log "github.com/sirupsen/logrus"
)

// settlementService rolls the open round and applies every bet's result
type settlementService struct {
	accountRepo        interfaces.AccountRepository
	houseRepo          interfaces.HouseRepository
	roundRepo          interfaces.RoundRepository
	betRepo            interfaces.BetRepository
	statsRepo          interfaces.StatsRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	schedulerStateRepo interfaces.SchedulerStateRepository
	eventPublisher     interfaces.EventPublisher
	randomSource       interfaces.RandomSource
	payouts            PayoutCalculator
	config             *config.Config
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	accountRepo interfaces.AccountRepository,
	houseRepo interfaces.HouseRepository,
	roundRepo interfaces.RoundRepository,
	betRepo interfaces.BetRepository,
	statsRepo interfaces.StatsRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	schedulerStateRepo interfaces.SchedulerStateRepository,
	eventPublisher interfaces.EventPublisher,
	randomSource interfaces.RandomSource,
) interfaces.SettlementService {
	cfg := config.Get()
	return &settlementService{
		accountRepo:        accountRepo,
		houseRepo:          houseRepo,
		roundRepo:          roundRepo,
		betRepo:            betRepo,
		statsRepo:          statsRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		schedulerStateRepo: schedulerStateRepo,
		eventPublisher:     eventPublisher,
		randomSource:       randomSource,
		payouts:            NewPayoutCalculator(cfg.PayoutMultiplier, cfg.HouseEdgeShare),
		config:             cfg,
	}
}

// Settle rolls the open round, creating one first if none exists
func (s *settlementService) Settle(ctx context.Context, override *entities.Dice) (*entities.SettlementSummary, error) {
	round, _, err := s.lockOpenRound(ctx)
	if err != nil {
		return nil, err
	}
	return s.settleLocked(ctx, round, override, time.Now().UTC())
}

// SettleDue settles the open round once it has been open for the round interval.
// A round this call had to create is settled immediately.
func (s *settlementService) SettleDue(ctx context.Context, now time.Time) (*entities.SettlementSummary, error) {
	round, created, err := s.lockOpenRound(ctx)
	if err != nil {
		return nil, err
	}
	if !created && !round.IsDue(now, s.config.RoundInterval) {
		return nil, nil
	}
	return s.settleLocked(ctx, round, nil, now.UTC())
}

// lockOpenRound takes the exclusive lock on the open round. Placements hold a shared
// lock on the same row, so this waits for any placement still in flight.
func (s *settlementService) lockOpenRound(ctx context.Context) (*entities.Round, bool, error) {
	round, err := s.roundRepo.GetOpenForUpdate(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock open round: %w", err)
	}
	if round != nil {
		return round, false, nil
	}

	opened, created, err := openRound(ctx, s.roundRepo, s.eventPublisher)
	if err != nil {
		return nil, false, err
	}
	round, err = s.roundRepo.GetOpenForUpdate(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock open round: %w", err)
	}
	if round == nil {
		return nil, false, errors.New("open round disappeared before it could be locked")
	}
	return round, created && round.ID == opened.ID, nil
}

func (s *settlementService) settleLocked(ctx context.Context, round *entities.Round, override *entities.Dice, now time.Time) (*entities.SettlementSummary, error) {
	if err := round.Close(now); err != nil {
		return nil, fmt.Errorf("failed to close round %d: %w", round.ID, err)
	}
	if err := s.roundRepo.MarkClosed(ctx, round.ID, now); err != nil {
		return nil, fmt.Errorf("failed to close round: %w", err)
	}

	house, err := s.houseRepo.GetForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock house: %w", err)
	}
	if house == nil {
		return nil, errors.New("house account not found")
	}

	var dice entities.Dice
	mode := entities.OutcomeModeRandom
	if override != nil {
		dice = *override
	} else {
		if mode, err = s.outcomeMode(ctx); err != nil {
			return nil, err
		}
		dice, err = RollForMode(s.randomSource, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to roll dice: %w", err)
		}
	}

	if err := round.Roll(dice, house.Balance, override != nil, now); err != nil {
		return nil, fmt.Errorf("failed to roll round %d: %w", round.ID, err)
	}
	if err := s.roundRepo.SaveRoll(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save roll: %w", err)
	}

	summary := &entities.SettlementSummary{
		RoundID:          round.ID,
		Dice:             dice,
		Outcome:          dice.Outcome(),
		Overridden:       override != nil,
		OutcomeMode:      mode,
		Winners:          []entities.WinnerPayout{},
		HousePotSnapshot: house.Balance,
		HouseBalance:     house.Balance,
	}

	bets, err := s.betRepo.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	for _, bet := range bets {
		if bet.Side == summary.Outcome {
			err = s.payWinner(ctx, round, bet, summary)
		} else {
			err = s.collectLoser(ctx, round, bet, summary)
		}
		if err != nil {
			return nil, err
		}
	}

	if dice.IsJackpot() {
		if err := s.distributeJackpot(ctx, round, summary); err != nil {
			return nil, err
		}
	}

	if err := s.schedulerStateRepo.RecordSettlement(ctx, round.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record scheduler state: %w", err)
	}

	next, _, err := openRound(ctx, s.roundRepo, s.eventPublisher)
	if err != nil {
		return nil, err
	}
	summary.NextRoundID = next.ID

	if err := s.eventPublisher.Publish(events.RoundSettledEvent{Summary: *summary}); err != nil {
		log.WithError(err).WithField("roundID", round.ID).Error("failed to publish round settled event")
	}

	log.WithFields(log.Fields{
		"roundID":    round.ID,
		"dice":       dice.String(),
		"outcome":    summary.Outcome,
		"overridden": summary.Overridden,
		"mode":       summary.OutcomeMode,
		"winners":    len(summary.Winners),
		"losers":     summary.LoserCount,
		"houseGain":  summary.HouseGain,
		"jackpot":    summary.Jackpot != nil && summary.Jackpot.Distributed,
	}).Info("round settled")

	return summary, nil
}

// outcomeMode reads the administrator-selected mode and consumes it when it only applies
// to a single round
func (s *settlementService) outcomeMode(ctx context.Context) (entities.OutcomeMode, error) {
	state, err := s.schedulerStateRepo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read outcome mode: %w", err)
	}
	mode := state.CurrentOutcomeMode()
	if !mode.IsOneShot() {
		return mode, nil
	}

	if _, err := s.schedulerStateRepo.ResetOutcomeMode(ctx, mode); err != nil {
		return "", err
	}
	log.WithField("mode", mode).Info("one-round outcome mode consumed")
	return mode, nil
}

func (s *settlementService) payWinner(ctx context.Context, round *entities.Round, bet *entities.Bet, summary *entities.SettlementSummary) error {
	payout := s.payouts.Winning(bet.Amount)

	newBalance, err := s.accountRepo.AddBalance(ctx, bet.AccountID, payout.Net)
	if err != nil {
		return fmt.Errorf("failed to credit winner %d: %w", bet.AccountID, err)
	}

	history := entities.NewBalanceHistory(
		bet.AccountID,
		newBalance,
		payout.Net,
		entities.TransactionTypeBetWin,
		bet.ID,
		entities.RelatedTypeBet,
		map[string]any{
			"round_id":   round.ID,
			"stake":      payout.Stake,
			"gross":      payout.Gross,
			"house_take": payout.HouseTake,
		},
	)
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record winner balance change: %w", err)
	}

	if payout.HouseTake > 0 {
		if err := s.creditHouse(ctx, payout.HouseTake, entities.HouseReasonWinnerTake, round.ID, bet.ID, summary); err != nil {
			return err
		}
	}

	bet.MarkWon(payout.Net)
	if err := s.betRepo.SaveResult(ctx, bet); err != nil {
		return fmt.Errorf("failed to save bet result: %w", err)
	}

	if _, err := s.statsRepo.RecordWin(ctx, bet.AccountID); err != nil {
		return fmt.Errorf("failed to record win: %w", err)
	}

	summary.Winners = append(summary.Winners, entities.WinnerPayout{
		AccountID: bet.AccountID,
		BetID:     bet.ID,
		Stake:     bet.Amount,
		NetPayout: payout.Net,
		HouseTake: payout.HouseTake,
	})
	return nil
}

func (s *settlementService) collectLoser(ctx context.Context, round *entities.Round, bet *entities.Bet, summary *entities.SettlementSummary) error {
	if err := s.creditHouse(ctx, bet.Amount, entities.HouseReasonLostStake, round.ID, bet.ID, summary); err != nil {
		return err
	}

	bet.MarkLost()
	if err := s.betRepo.SaveResult(ctx, bet); err != nil {
		return fmt.Errorf("failed to save bet result: %w", err)
	}

	if _, err := s.statsRepo.RecordLoss(ctx, bet.AccountID); err != nil {
		return fmt.Errorf("failed to record loss: %w", err)
	}

	summary.LoserCount++
	return nil
}

func (s *settlementService) creditHouse(ctx context.Context, amount int64, reason entities.HouseLedgerReason, roundID, betID int64, summary *entities.SettlementSummary) error {
	balance, err := s.houseRepo.AddBalance(ctx, amount)
	if err != nil {
		return fmt.Errorf("failed to credit house: %w", err)
	}

	entry := &entities.HouseLedgerEntry{
		ChangeAmount: amount,
		BalanceAfter: balance,
		Reason:       reason,
		RoundID:      &roundID,
		BetID:        &betID,
	}
	if err := s.houseRepo.RecordLedger(ctx, entry); err != nil {
		return fmt.Errorf("failed to record house ledger: %w", err)
	}

	summary.HouseGain += amount
	summary.HouseBalance = balance
	return nil
}

// distributeJackpot splits the whole house balance evenly among the round's distinct
// winning accounts. The integer division remainder stays with the house.
func (s *settlementService) distributeJackpot(ctx context.Context, round *entities.Round, summary *entities.SettlementSummary) error {
	recipients := summary.WinnerAccounts()
	pot := summary.HouseBalance

	result := &entities.JackpotResult{
		Pot:        pot,
		Recipients: recipients,
		Remainder:  pot,
	}
	summary.Jackpot = result

	if pot <= 0 || len(recipients) == 0 {
		return nil
	}

	share := pot / int64(len(recipients))
	if share == 0 {
		return nil
	}

	for _, accountID := range recipients {
		newBalance, err := s.accountRepo.AddBalance(ctx, accountID, share)
		if err != nil {
			return fmt.Errorf("failed to credit jackpot share to %d: %w", accountID, err)
		}

		history := entities.NewBalanceHistory(
			accountID,
			newBalance,
			share,
			entities.TransactionTypeJackpot,
			round.ID,
			entities.RelatedTypeRound,
			map[string]any{
				"pot":        pot,
				"recipients": len(recipients),
				"dice":       summary.Dice.String(),
			},
		)
		if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
			return fmt.Errorf("failed to record jackpot balance change: %w", err)
		}
	}

	paid := share * int64(len(recipients))
	balance, err := s.houseRepo.DeductBalance(ctx, paid)
	if err != nil {
		return fmt.Errorf("failed to debit house for jackpot: %w", err)
	}

	roundID := round.ID
	if err := s.houseRepo.RecordLedger(ctx, &entities.HouseLedgerEntry{
		ChangeAmount: -paid,
		BalanceAfter: balance,
		Reason:       entities.HouseReasonJackpotPaid,
		RoundID:      &roundID,
	}); err != nil {
		return fmt.Errorf("failed to record house ledger: %w", err)
	}

	result.Share = share
	result.Remainder = balance
	result.Distributed = true
	summary.HouseBalance = balance

	log.WithFields(log.Fields{
		"roundID":    round.ID,
		"pot":        pot,
		"share":      share,
		"recipients": len(recipients),
		"remainder":  balance,
	}).Info("jackpot distributed")

	return nil
}

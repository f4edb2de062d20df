package services

import (
	"context"
	"fmt"

	"taixiu/config"
	"taixiu/domain/entities"
	"taixiu/domain/events"
	"taixiu/domain/interfaces"
	"taixiu/domain/utils"

	log "github.com/sirupsen/logrus"
)

// bettingService accepts wagers against the open round
type bettingService struct {
	accountRepo        interfaces.AccountRepository
	statsRepo          interfaces.StatsRepository
	roundRepo          interfaces.RoundRepository
	betRepo            interfaces.BetRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	config             *config.Config
}

// NewBettingService creates a new betting service
func NewBettingService(
	accountRepo interfaces.AccountRepository,
	statsRepo interfaces.StatsRepository,
	roundRepo interfaces.RoundRepository,
	betRepo interfaces.BetRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.BettingService {
	return &bettingService{
		accountRepo:        accountRepo,
		statsRepo:          statsRepo,
		roundRepo:          roundRepo,
		betRepo:            betRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		config:             config.Get(),
	}
}

// PlaceBet debits the stake and records the bet. A zero RoundID targets the open round.
func (s *bettingService) PlaceBet(ctx context.Context, params interfaces.PlaceBetParams) (*entities.Bet, error) {
	if params.Amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}
	if !params.Side.IsValid() {
		return nil, entities.ErrInvalidSide
	}
	if params.Amount < s.config.MinimumBet {
		return nil, fmt.Errorf("%w: minimum is %d", entities.ErrBelowMinimumBet, s.config.MinimumBet)
	}

	// The round lock is taken before any account row is touched. Settlement locks the
	// round first and accounts second, so placement must acquire them in the same order.
	round, err := s.lockOpenRound(ctx, params.RoundID)
	if err != nil {
		return nil, err
	}

	account, err := ensureAccount(ctx, s.accountRepo, s.statsRepo, s.eventPublisher, params.AccountID, params.DisplayName)
	if err != nil {
		return nil, err
	}

	if account.WagerCapApplies() && params.Amount > s.config.BonusMaxBet {
		return nil, fmt.Errorf("%w: maximum is %d until the bonus is claimed", entities.ErrBonusBetLimit, s.config.BonusMaxBet)
	}

	newBalance, err := s.accountRepo.DeductBalance(ctx, params.AccountID, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}

	bet := &entities.Bet{
		AccountID: params.AccountID,
		RoundID:   round.ID,
		Side:      params.Side,
		Amount:    params.Amount,
	}
	if err := s.betRepo.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	history := entities.NewBalanceHistory(
		params.AccountID,
		newBalance,
		-params.Amount,
		entities.TransactionTypeBetPlaced,
		bet.ID,
		entities.RelatedTypeBet,
		map[string]any{
			"round_id": round.ID,
			"side":     string(params.Side),
		},
	)
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := s.eventPublisher.Publish(events.BetPlacedEvent{
		BetID:     bet.ID,
		AccountID: bet.AccountID,
		RoundID:   bet.RoundID,
		Side:      bet.Side,
		Amount:    bet.Amount,
	}); err != nil {
		log.WithError(err).WithField("betID", bet.ID).Error("failed to publish bet placed event")
	}

	log.WithFields(log.Fields{
		"betID":     bet.ID,
		"accountID": bet.AccountID,
		"roundID":   bet.RoundID,
		"side":      bet.Side,
		"amount":    bet.Amount,
	}).Debug("bet placed")

	return bet, nil
}

func (s *bettingService) lockOpenRound(ctx context.Context, roundID int64) (*entities.Round, error) {
	if roundID == 0 {
		open, err := s.roundRepo.GetOpen(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get open round: %w", err)
		}
		if open == nil {
			return nil, entities.ErrRoundClosed
		}
		roundID = open.ID
	}

	round, err := s.roundRepo.GetByIDForShare(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock round: %w", err)
	}
	if round == nil || !round.IsOpen() {
		return nil, entities.ErrRoundClosed
	}
	return round, nil
}

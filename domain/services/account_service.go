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

// accountService implements account bootstrap, the one-time bonus and administrative credits
type accountService struct {
	accountRepo        interfaces.AccountRepository
	statsRepo          interfaces.StatsRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	config             *config.Config
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo interfaces.AccountRepository,
	statsRepo interfaces.StatsRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.AccountService {
	return &accountService{
		accountRepo:        accountRepo,
		statsRepo:          statsRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		config:             config.Get(),
	}
}

// EnsureAccount creates the account and its stats row if absent
func (s *accountService) EnsureAccount(ctx context.Context, accountID int64, displayName string) (*entities.Account, error) {
	return ensureAccount(ctx, s.accountRepo, s.statsRepo, s.eventPublisher, accountID, displayName)
}

// ClaimBonus credits the one-time bonus if the account has not claimed it yet
func (s *accountService) ClaimBonus(ctx context.Context, accountID int64, displayName string) (bool, error) {
	if _, err := s.EnsureAccount(ctx, accountID, displayName); err != nil {
		return false, err
	}

	newBalance, claimed, err := s.accountRepo.ClaimBonus(ctx, accountID, s.config.BonusAmount)
	if err != nil {
		return false, fmt.Errorf("failed to claim bonus: %w", err)
	}
	if !claimed {
		return false, nil
	}

	if s.config.BonusAmount > 0 {
		history := &entities.BalanceHistory{
			AccountID:       accountID,
			BalanceBefore:   newBalance - s.config.BonusAmount,
			BalanceAfter:    newBalance,
			ChangeAmount:    s.config.BonusAmount,
			TransactionType: entities.TransactionTypeBonus,
			TransactionMetadata: map[string]any{
				"bonus_amount": s.config.BonusAmount,
			},
		}
		if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
			return false, fmt.Errorf("failed to record bonus: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"accountID":  accountID,
		"amount":     s.config.BonusAmount,
		"newBalance": newBalance,
	}).Info("bonus claimed")

	return true, nil
}

// Credit adds funds to an account on an administrator's behalf
func (s *accountService) Credit(ctx context.Context, accountID int64, amount int64, adminID int64) (int64, error) {
	if !s.config.IsAdmin(adminID) {
		return 0, entities.ErrNotAuthorized
	}
	if amount <= 0 {
		return 0, entities.ErrInvalidAmount
	}

	if _, err := s.EnsureAccount(ctx, accountID, ""); err != nil {
		return 0, err
	}

	newBalance, err := s.accountRepo.AddBalance(ctx, accountID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit account: %w", err)
	}

	history := &entities.BalanceHistory{
		AccountID:       accountID,
		BalanceBefore:   newBalance - amount,
		BalanceAfter:    newBalance,
		ChangeAmount:    amount,
		TransactionType: entities.TransactionTypeAdminCredit,
		TransactionMetadata: map[string]any{
			"admin_id": adminID,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return 0, fmt.Errorf("failed to record admin credit: %w", err)
	}

	return newBalance, nil
}

// ensureAccount upserts the account and its stats row. The display name is only
// refreshed when a non-empty one is given.
func ensureAccount(
	ctx context.Context,
	accountRepo interfaces.AccountRepository,
	statsRepo interfaces.StatsRepository,
	eventPublisher interfaces.EventPublisher,
	accountID int64,
	displayName string,
) (*entities.Account, error) {
	account, created, err := accountRepo.Upsert(ctx, accountID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}

	if err := statsRepo.EnsureExists(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to ensure stats: %w", err)
	}

	if created {
		if err := eventPublisher.Publish(events.AccountCreatedEvent{
			AccountID:   accountID,
			DisplayName: account.DisplayName,
		}); err != nil {
			log.WithError(err).WithField("accountID", accountID).Error("failed to publish account created event")
		}
	}

	return account, nil
}

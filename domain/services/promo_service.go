package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taixiu/config"
	"taixiu/domain/entities"
	"taixiu/domain/events"
	"taixiu/domain/interfaces"
	"taixiu/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const promoCodeLength = 8

// promoService implements promo code issuance, redemption and wager tracking
type promoService struct {
	accountRepo        interfaces.AccountRepository
	statsRepo          interfaces.StatsRepository
	promoRepo          interfaces.PromoRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	config             *config.Config
}

// NewPromoService creates a new promo service
func NewPromoService(
	accountRepo interfaces.AccountRepository,
	statsRepo interfaces.StatsRepository,
	promoRepo interfaces.PromoRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.PromoService {
	return &promoService{
		accountRepo:        accountRepo,
		statsRepo:          statsRepo,
		promoRepo:          promoRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		config:             config.Get(),
	}
}

// CreateCode issues a fresh single-use code
func (s *promoService) CreateCode(ctx context.Context, adminID, amount int64, wagerRounds int) (*entities.PromoCode, error) {
	if !s.config.IsAdmin(adminID) {
		return nil, entities.ErrNotAuthorized
	}
	if amount <= 0 || wagerRounds < 0 {
		return nil, entities.ErrInvalidAmount
	}

	promo := &entities.PromoCode{
		Code:        newPromoCode(),
		Amount:      amount,
		WagerRounds: wagerRounds,
		CreatedBy:   adminID,
	}
	if err := s.promoRepo.CreateCode(ctx, promo); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"code":        promo.Code,
		"amount":      amount,
		"wagerRounds": wagerRounds,
		"adminID":     adminID,
	}).Info("promo code created")

	return promo, nil
}

// Redeem claims the code, credits its amount and starts the wager requirement
func (s *promoService) Redeem(ctx context.Context, accountID int64, displayName, code string) (*entities.PromoRedemption, int64, error) {
	code = NormalizePromoCode(code)
	if code == "" {
		return nil, 0, entities.ErrNotFound
	}

	if _, err := ensureAccount(ctx, s.accountRepo, s.statsRepo, s.eventPublisher, accountID, displayName); err != nil {
		return nil, 0, err
	}

	existing, err := s.promoRepo.GetCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	if existing == nil {
		return nil, 0, entities.ErrNotFound
	}
	if existing.IsRedeemed() {
		return nil, 0, entities.ErrPromoCodeUsed
	}

	promo, err := s.promoRepo.MarkRedeemed(ctx, code, accountID, time.Now().UTC())
	if err != nil {
		return nil, 0, err
	}
	if promo == nil {
		return nil, 0, entities.ErrPromoCodeUsed
	}

	newBalance, err := s.accountRepo.AddBalance(ctx, accountID, promo.Amount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to credit promo: %w", err)
	}

	redemption := &entities.PromoRedemption{
		Code:          promo.Code,
		AccountID:     accountID,
		Amount:        promo.Amount,
		WagerRequired: promo.WagerRounds,
	}
	if err := s.promoRepo.CreateRedemption(ctx, redemption); err != nil {
		return nil, 0, err
	}

	history := entities.NewBalanceHistory(
		accountID, newBalance, promo.Amount,
		entities.TransactionTypePromo, redemption.ID, entities.RelatedTypePromo,
		map[string]any{"code": promo.Code, "wager_rounds": promo.WagerRounds},
	)
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, 0, fmt.Errorf("failed to record promo credit: %w", err)
	}

	if err := s.eventPublisher.Publish(events.PromoRedeemedEvent{
		Code:          promo.Code,
		AccountID:     accountID,
		Amount:        promo.Amount,
		WagerRequired: promo.WagerRounds,
	}); err != nil {
		log.WithError(err).WithField("code", promo.Code).Error("failed to publish promo redeemed event")
	}

	log.WithFields(log.Fields{
		"code":       promo.Code,
		"accountID":  accountID,
		"amount":     promo.Amount,
		"newBalance": newBalance,
	}).Info("promo code redeemed")

	return redemption, newBalance, nil
}

// RecordWager counts a round the account bet in against its pending promo wagers
func (s *promoService) RecordWager(ctx context.Context, accountID, roundID int64) error {
	advanced, err := s.promoRepo.AdvanceWager(ctx, accountID, roundID)
	if err != nil {
		return err
	}

	for _, redemption := range advanced {
		if redemption.Active {
			continue
		}
		if err := s.eventPublisher.Publish(events.PromoWagerCompletedEvent{
			Code:      redemption.Code,
			AccountID: accountID,
			Amount:    redemption.Amount,
			RoundID:   roundID,
		}); err != nil {
			log.WithError(err).WithField("code", redemption.Code).Error("failed to publish promo completed event")
		}
	}
	return nil
}

// PendingWager lists the account's redemptions that still block withdrawals
func (s *promoService) PendingWager(ctx context.Context, accountID int64) ([]*entities.PromoRedemption, error) {
	return s.promoRepo.ListActive(ctx, accountID)
}

// NormalizePromoCode canonicalizes user input to the stored code form
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func newPromoCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:promoCodeLength])
}

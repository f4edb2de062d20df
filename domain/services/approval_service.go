package services

import (
	"context"
	"fmt"
	"time"

	"taixiu/config"
	"taixiu/domain/entities"
	"taixiu/domain/events"
	"taixiu/domain/interfaces"
	"taixiu/domain/utils"

	log "github.com/sirupsen/logrus"
)

const DefaultPendingLimit = 50

// approvalService implements the request/decide workflow shared by deposits and withdrawals
type approvalService struct {
	accountRepo        interfaces.AccountRepository
	statsRepo          interfaces.StatsRepository
	requestRepo        interfaces.ApprovalRequestRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	config             *config.Config
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	accountRepo interfaces.AccountRepository,
	statsRepo interfaces.StatsRepository,
	requestRepo interfaces.ApprovalRequestRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.ApprovalService {
	return &approvalService{
		accountRepo:        accountRepo,
		statsRepo:          statsRepo,
		requestRepo:        requestRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		config:             config.Get(),
	}
}

// Request creates a PENDING request. Withdrawals are checked against the minimum, the daily
// cap and the current balance but nothing is debited until approval.
func (s *approvalService) Request(ctx context.Context, kind entities.RequestKind, accountID, amount int64) (*entities.ApprovalRequest, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unsupported request kind %q", kind)
	}
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	account, err := ensureAccount(ctx, s.accountRepo, s.statsRepo, s.eventPublisher, accountID, "")
	if err != nil {
		return nil, err
	}

	if kind == entities.RequestKindWithdrawal {
		if amount < s.config.WithdrawMinimum {
			return nil, fmt.Errorf("%w: minimum is %d", entities.ErrBelowMinimum, s.config.WithdrawMinimum)
		}
		if s.config.WithdrawDailyCap > 0 && amount > s.config.WithdrawDailyCap {
			return nil, fmt.Errorf("%w: cap is %d", entities.ErrDailyWithdrawLimit, s.config.WithdrawDailyCap)
		}
		if err := account.ValidateDebit(amount); err != nil {
			return nil, err
		}
	}

	request := &entities.ApprovalRequest{
		Kind:      kind,
		AccountID: accountID,
		Amount:    amount,
		Status:    entities.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := s.eventPublisher.Publish(events.ApprovalRequestedEvent{
		RequestID: request.ID,
		Kind:      request.Kind,
		AccountID: request.AccountID,
		Amount:    request.Amount,
	}); err != nil {
		log.WithError(err).WithField("requestID", request.ID).Error("failed to publish approval requested event")
	}

	log.WithFields(log.Fields{
		"requestID": request.ID,
		"kind":      request.Kind,
		"accountID": accountID,
		"amount":    amount,
	}).Info("approval request created")

	return request, nil
}

// Decide resolves a PENDING request by its ID
func (s *approvalService) Decide(ctx context.Context, requestID int64, decision entities.Decision, deciderIsAdmin bool, deciderID int64) (*entities.ApprovalRequest, error) {
	if err := checkDecider(decision, deciderIsAdmin); err != nil {
		return nil, err
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil || !request.IsPending() {
		return nil, entities.ErrNotFound
	}

	return s.resolve(ctx, request, decision, deciderID)
}

// DecideByMatch resolves the newest PENDING request matching kind, account and amount
func (s *approvalService) DecideByMatch(ctx context.Context, kind entities.RequestKind, accountID, amount int64, decision entities.Decision, deciderIsAdmin bool, deciderID int64) (*entities.ApprovalRequest, error) {
	if err := checkDecider(decision, deciderIsAdmin); err != nil {
		return nil, err
	}

	request, err := s.requestRepo.FindLatestPending(ctx, kind, accountID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to find request: %w", err)
	}
	if request == nil {
		return nil, entities.ErrNotFound
	}

	return s.resolve(ctx, request, decision, deciderID)
}

// Pending lists PENDING requests of a kind, oldest first
func (s *approvalService) Pending(ctx context.Context, kind entities.RequestKind, limit int) ([]*entities.ApprovalRequest, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	requests, err := s.requestRepo.ListPending(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

func checkDecider(decision entities.Decision, deciderIsAdmin bool) error {
	if !deciderIsAdmin {
		return entities.ErrNotAuthorized
	}
	if !decision.IsValid() {
		return fmt.Errorf("unsupported decision %q", decision)
	}
	return nil
}

// resolve moves the request to its terminal status and applies the balance effect.
// The status flip is conditional on PENDING so a request is only ever applied once.
func (s *approvalService) resolve(ctx context.Context, request *entities.ApprovalRequest, decision entities.Decision, deciderID int64) (*entities.ApprovalRequest, error) {
	status, err := entities.TerminalStatusFor(request.Kind, decision)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	resolved, err := s.requestRepo.Resolve(ctx, request.ID, status, deciderID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request: %w", err)
	}
	if resolved == nil {
		return nil, entities.ErrNotFound
	}

	switch status {
	case entities.RequestStatusConfirmed:
		newBalance, err := s.accountRepo.AddBalance(ctx, resolved.AccountID, resolved.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to credit deposit: %w", err)
		}
		if err := s.recordBalanceChange(ctx, resolved, newBalance, resolved.Amount, entities.TransactionTypeDeposit, deciderID); err != nil {
			return nil, err
		}

	case entities.RequestStatusApproved:
		if err := s.checkDailyCap(ctx, resolved, now); err != nil {
			return nil, err
		}
		newBalance, err := s.accountRepo.DeductBalance(ctx, resolved.AccountID, resolved.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to debit withdrawal: %w", err)
		}
		if err := s.recordBalanceChange(ctx, resolved, newBalance, -resolved.Amount, entities.TransactionTypeWithdrawal, deciderID); err != nil {
			return nil, err
		}
	}

	if err := s.eventPublisher.Publish(events.ApprovalDecidedEvent{
		RequestID: resolved.ID,
		Kind:      resolved.Kind,
		AccountID: resolved.AccountID,
		Amount:    resolved.Amount,
		Status:    resolved.Status,
		DecidedBy: deciderID,
	}); err != nil {
		log.WithError(err).WithField("requestID", resolved.ID).Error("failed to publish approval decided event")
	}

	log.WithFields(log.Fields{
		"requestID": resolved.ID,
		"kind":      resolved.Kind,
		"status":    resolved.Status,
		"deciderID": deciderID,
	}).Info("approval request decided")

	return resolved, nil
}

// checkDailyCap fails when the approved withdrawals of the account for the UTC day of now,
// this one included, exceed the cap. The account row lock makes concurrent approvals for
// the same account count one after another.
func (s *approvalService) checkDailyCap(ctx context.Context, request *entities.ApprovalRequest, now time.Time) error {
	if s.config.WithdrawDailyCap <= 0 {
		return nil
	}

	if _, err := s.accountRepo.GetForUpdate(ctx, request.AccountID); err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	total, err := s.requestRepo.SumApproved(ctx, entities.RequestKindWithdrawal, request.AccountID, dayStart)
	if err != nil {
		return fmt.Errorf("failed to total today's withdrawals: %w", err)
	}
	if total > s.config.WithdrawDailyCap {
		log.WithFields(log.Fields{
			"requestID":     request.ID,
			"accountID":     request.AccountID,
			"approvedToday": total - request.Amount,
			"cap":           s.config.WithdrawDailyCap,
		}).Warn("withdrawal over daily cap")
		return fmt.Errorf("%w: %d already approved today, cap is %d",
			entities.ErrDailyWithdrawLimit, total-request.Amount, s.config.WithdrawDailyCap)
	}
	return nil
}

func (s *approvalService) recordBalanceChange(ctx context.Context, request *entities.ApprovalRequest, newBalance, change int64, txType entities.TransactionType, deciderID int64) error {
	history := entities.NewBalanceHistory(
		request.AccountID,
		newBalance,
		change,
		txType,
		request.ID,
		entities.RelatedTypeRequest,
		map[string]any{
			"decided_by": deciderID,
		},
	)
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record %s: %w", txType, err)
	}
	return nil
}

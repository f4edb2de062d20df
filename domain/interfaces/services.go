package interfaces

import (
	"context"
	"time"

	"taixiu/domain/entities"
)

// RandomSource produces independent, uniformly distributed die faces in [1,6]
type RandomSource interface {
	Roll() (int, error)
}

// AccountService defines account bootstrap and direct balance operations
type AccountService interface {
	// EnsureAccount creates the account and its stats row if absent
	EnsureAccount(ctx context.Context, accountID int64, displayName string) (*entities.Account, error)

	// ClaimBonus credits the one-time bonus. Returns false if it was already claimed.
	ClaimBonus(ctx context.Context, accountID int64, displayName string) (bool, error)

	// Credit adds funds on an administrator's behalf
	Credit(ctx context.Context, accountID int64, amount int64, adminID int64) (int64, error)
}

// PlaceBetParams contains the inputs of a bet placement
type PlaceBetParams struct {
	AccountID   int64
	DisplayName string
	Side        entities.Side
	Amount      int64
	RoundID     int64
}

// BettingService defines wager intake against the open round
type BettingService interface {
	// PlaceBet reserves the stake from the bettor's balance and records the bet
	PlaceBet(ctx context.Context, params PlaceBetParams) (*entities.Bet, error)
}

// RoundService defines round lifecycle queries
type RoundService interface {
	// EnsureOpenRound returns the open round, creating one if none exists
	EnsureOpenRound(ctx context.Context) (*entities.Round, error)

	// History returns recently rolled rounds
	History(ctx context.Context, limit int) ([]*entities.Round, error)

	// IsDue reports whether the round has been open for the configured interval
	IsDue(round *entities.Round, now time.Time) bool
}

// SettlementService defines round settlement
type SettlementService interface {
	// Settle rolls the open round (creating one if none exists) and applies every bet's result.
	// A non-nil override replaces the random roll and marks the round overridden.
	Settle(ctx context.Context, override *entities.Dice) (*entities.SettlementSummary, error)

	// SettleDue settles the open round once it has been open for the round interval.
	// Returns nil when the open round is not yet due.
	SettleDue(ctx context.Context, now time.Time) (*entities.SettlementSummary, error)
}

// ApprovalService defines the shared deposit/withdrawal request workflow
type ApprovalService interface {
	// Request creates a PENDING request
	Request(ctx context.Context, kind entities.RequestKind, accountID, amount int64) (*entities.ApprovalRequest, error)

	// Decide resolves a PENDING request by its ID
	Decide(ctx context.Context, requestID int64, decision entities.Decision, deciderIsAdmin bool, deciderID int64) (*entities.ApprovalRequest, error)

	// DecideByMatch resolves the newest PENDING request matching kind, account and amount
	DecideByMatch(ctx context.Context, kind entities.RequestKind, accountID, amount int64, decision entities.Decision, deciderIsAdmin bool, deciderID int64) (*entities.ApprovalRequest, error)

	// Pending lists PENDING requests of a kind, oldest first
	Pending(ctx context.Context, kind entities.RequestKind, limit int) ([]*entities.ApprovalRequest, error)
}

// PromoService defines promo code issuance and the wager requirement attached to redemptions
type PromoService interface {
	// CreateCode issues a single-use code worth amount, withdrawable after wagerRounds rounds of betting
	CreateCode(ctx context.Context, adminID, amount int64, wagerRounds int) (*entities.PromoCode, error)

	// Redeem credits the code to the account and returns the wager tracker and new balance
	Redeem(ctx context.Context, accountID int64, displayName, code string) (*entities.PromoRedemption, int64, error)

	// RecordWager counts the round once against each pending requirement of the account
	RecordWager(ctx context.Context, accountID, roundID int64) error

	// PendingWager returns the redemptions whose requirement is incomplete
	PendingWager(ctx context.Context, accountID int64) ([]*entities.PromoRedemption, error)
}

// StatsService defines streak statistics queries
type StatsService interface {
	// Leaderboard returns accounts ranked by maximum win streak
	Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}

package interfaces

import (
	"context"
	"time"

	"taixiu/domain/entities"
	"taixiu/domain/events"
)

// AccountRepository defines data access for participant accounts
type AccountRepository interface {
	// GetByID retrieves an account, returning nil if it does not exist
	GetByID(ctx context.Context, id int64) (*entities.Account, error)

	// Upsert creates the account if absent and refreshes a non-empty display name.
	// The returned flag is true when the row was created by this call.
	Upsert(ctx context.Context, id int64, displayName string) (*entities.Account, bool, error)

	// AddBalance credits the account and returns the new balance
	AddBalance(ctx context.Context, id int64, amount int64) (int64, error)

	// DeductBalance debits the account only if the balance covers the amount.
	// Fails with ErrInsufficientBalance otherwise.
	DeductBalance(ctx context.Context, id int64, amount int64) (int64, error)

	// ClaimBonus credits the bonus and sets the flag if it is unset.
	// The returned flag is false when the bonus had already been claimed.
	ClaimBonus(ctx context.Context, id int64, amount int64) (int64, bool, error)

	// GetForUpdate retrieves an account with a row lock held until commit
	GetForUpdate(ctx context.Context, id int64) (*entities.Account, error)

	// TotalBalance returns the sum of all account balances
	TotalBalance(ctx context.Context) (int64, error)

	// TopByBalance returns the richest accounts, ties broken by account ID
	TopByBalance(ctx context.Context, limit int) ([]*entities.Account, error)
}

// HouseRepository defines data access for the singleton house pot
type HouseRepository interface {
	// Get returns the house account
	Get(ctx context.Context) (*entities.HouseAccount, error)

	// GetForUpdate returns the house account with a row lock held until commit
	GetForUpdate(ctx context.Context) (*entities.HouseAccount, error)

	// AddBalance credits the house and returns the new balance
	AddBalance(ctx context.Context, amount int64) (int64, error)

	// DeductBalance debits the house only if the balance covers the amount
	DeductBalance(ctx context.Context, amount int64) (int64, error)

	// RecordLedger appends an audit row for a house mutation
	RecordLedger(ctx context.Context, entry *entities.HouseLedgerEntry) error
}

// RoundRepository defines data access for rounds
type RoundRepository interface {
	// GetByID retrieves a round by its ID
	GetByID(ctx context.Context, id int64) (*entities.Round, error)

	// GetOpen returns the round that has not been rolled yet, or nil
	GetOpen(ctx context.Context) (*entities.Round, error)

	// GetOpenForUpdate returns the open round with an exclusive row lock.
	// Waits for in-flight bet placements holding a shared lock.
	GetOpenForUpdate(ctx context.Context) (*entities.Round, error)

	// GetByIDForShare returns a round with a shared row lock so settlement cannot close it concurrently
	GetByIDForShare(ctx context.Context, id int64) (*entities.Round, error)

	// CreateOpen inserts a new open round unless one already exists.
	// The returned flag is true when this call created the round.
	CreateOpen(ctx context.Context) (*entities.Round, bool, error)

	// MarkClosed stops betting on the round
	MarkClosed(ctx context.Context, id int64, at time.Time) error

	// SaveRoll persists the committed dice, outcome, snapshot and override flag
	SaveRoll(ctx context.Context, round *entities.Round) error

	// ListRolled returns the most recently rolled rounds, newest first
	ListRolled(ctx context.Context, limit int) ([]*entities.Round, error)
}

// BetRepository defines data access for bets
type BetRepository interface {
	// Create inserts a new bet and fills in its ID and timestamp
	Create(ctx context.Context, bet *entities.Bet) error

	// ListByRound returns every bet of a round in placement order
	ListByRound(ctx context.Context, roundID int64) ([]*entities.Bet, error)

	// SaveResult records the outcome of an unsettled bet
	SaveResult(ctx context.Context, bet *entities.Bet) error

	// SummarizeRound aggregates the bets placed on a round
	SummarizeRound(ctx context.Context, roundID int64) (*entities.RoundBetSummary, error)

	// ListByAccount returns the most recent bets of an account
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Bet, error)
}

// StatsRepository defines data access for streak statistics
type StatsRepository interface {
	// EnsureExists creates the stats row for an account if it is missing
	EnsureExists(ctx context.Context, accountID int64) error

	// GetByAccount returns an account's stats, or nil
	GetByAccount(ctx context.Context, accountID int64) (*entities.Stats, error)

	// RecordWin increments the streak, total wins and the maximum streak
	RecordWin(ctx context.Context, accountID int64) (*entities.Stats, error)

	// RecordLoss resets the streak and increments total losses
	RecordLoss(ctx context.Context, accountID int64) (*entities.Stats, error)

	// TopByMaxStreak returns accounts ordered by maximum win streak descending
	TopByMaxStreak(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}

// ApprovalRequestRepository defines data access for deposit and withdrawal requests
type ApprovalRequestRepository interface {
	// Create inserts a PENDING request and fills in its ID and timestamp
	Create(ctx context.Context, request *entities.ApprovalRequest) error

	// GetByID retrieves a request by its ID
	GetByID(ctx context.Context, id int64) (*entities.ApprovalRequest, error)

	// FindLatestPending returns the newest PENDING request matching kind, account and amount
	FindLatestPending(ctx context.Context, kind entities.RequestKind, accountID, amount int64) (*entities.ApprovalRequest, error)

	// Resolve moves a PENDING request to a terminal status.
	// Returns nil when the request does not exist or is no longer pending.
	Resolve(ctx context.Context, id int64, status entities.RequestStatus, decidedBy int64, at time.Time) (*entities.ApprovalRequest, error)

	// ListPending returns PENDING requests of a kind, oldest first
	ListPending(ctx context.Context, kind entities.RequestKind, limit int) ([]*entities.ApprovalRequest, error)

	// SumApproved totals the account's requests of a kind approved at or after since
	SumApproved(ctx context.Context, kind entities.RequestKind, accountID int64, since time.Time) (int64, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByAccount returns the most recent history entries of an account
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.BalanceHistory, error)
}

// SchedulerStateRepository defines access to the persisted schedule progress
type SchedulerStateRepository interface {
	// Get returns the scheduler state row
	Get(ctx context.Context) (*entities.SchedulerState, error)

	// RecordSettlement stores the time and round of the latest settlement
	RecordSettlement(ctx context.Context, roundID int64, at time.Time) error

	// SetOutcomeMode stores the outcome mode chosen by an administrator
	SetOutcomeMode(ctx context.Context, mode entities.OutcomeMode, setBy int64) error

	// ResetOutcomeMode reverts to random if the mode still equals expected.
	// Returns false when the mode had already changed.
	ResetOutcomeMode(ctx context.Context, expected entities.OutcomeMode) (bool, error)
}

// PromoRepository defines data access for promo codes and their wager tracking
type PromoRepository interface {
	// CreateCode inserts an unredeemed code and fills in its timestamp
	CreateCode(ctx context.Context, code *entities.PromoCode) error

	// GetCode retrieves a code, returning nil if it does not exist
	GetCode(ctx context.Context, code string) (*entities.PromoCode, error)

	// MarkRedeemed claims an unredeemed code for the account.
	// Returns nil when the code does not exist or was already redeemed.
	MarkRedeemed(ctx context.Context, code string, accountID int64, at time.Time) (*entities.PromoCode, error)

	// CreateRedemption inserts the wager tracker of a redeemed code
	CreateRedemption(ctx context.Context, redemption *entities.PromoRedemption) error

	// AdvanceWager counts the round once against every active redemption of the account
	// and returns the redemptions it advanced
	AdvanceWager(ctx context.Context, accountID, roundID int64) ([]*entities.PromoRedemption, error)

	// ListActive returns the account's redemptions whose wager is incomplete
	ListActive(ctx context.Context, accountID int64) ([]*entities.PromoRedemption, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes every buffered event
	Flush(ctx context.Context) error

	// Discard drops every buffered event
	Discard()
}

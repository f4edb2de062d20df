package events

import (
	"time"

	"taixiu/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeAccountCreated   EventType = "account_created"
	EventTypeBetPlaced        EventType = "bet_placed"
	EventTypeRoundOpened      EventType = "round_opened"
	EventTypeRoundSettled     EventType = "round_settled"
	EventTypeApprovalRequest  EventType = "approval_requested"
	EventTypeApprovalDecided  EventType = "approval_decided"
	EventTypeSchedulerStalled EventType = "scheduler_stalled"
	EventTypePromoRedeemed    EventType = "promo_redeemed"
	EventTypePromoCompleted   EventType = "promo_wager_completed"
	EventTypeOutcomeMode      EventType = "outcome_mode_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a committed account balance change
type BalanceChangeEvent struct {
	AccountID       int64                    `json:"account_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                    `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent is emitted the first time an account interacts with the engine
type AccountCreatedEvent struct {
	AccountID   int64  `json:"account_id"`
	DisplayName string `json:"display_name"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// BetPlacedEvent represents a wager accepted against the open round
type BetPlacedEvent struct {
	BetID     int64         `json:"bet_id"`
	AccountID int64         `json:"account_id"`
	RoundID   int64         `json:"round_id"`
	Side      entities.Side `json:"side"`
	Amount    int64         `json:"amount"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// RoundOpenedEvent is emitted when a new round starts accepting bets
type RoundOpenedEvent struct {
	RoundID   int64     `json:"round_id"`
	StartedAt time.Time `json:"started_at"`
}

func (e RoundOpenedEvent) Type() EventType {
	return EventTypeRoundOpened
}

// RoundSettledEvent carries the settlement summary for announcement
type RoundSettledEvent struct {
	Summary entities.SettlementSummary `json:"summary"`
}

func (e RoundSettledEvent) Type() EventType {
	return EventTypeRoundSettled
}

// ApprovalRequestedEvent asks administrators to decide a new request.
// RequestID travels through the notify/decide round trip.
type ApprovalRequestedEvent struct {
	RequestID int64                `json:"request_id"`
	Kind      entities.RequestKind `json:"kind"`
	AccountID int64                `json:"account_id"`
	Amount    int64                `json:"amount"`
}

func (e ApprovalRequestedEvent) Type() EventType {
	return EventTypeApprovalRequest
}

// ApprovalDecidedEvent reports the terminal state of a request
type ApprovalDecidedEvent struct {
	RequestID int64                  `json:"request_id"`
	Kind      entities.RequestKind   `json:"kind"`
	AccountID int64                  `json:"account_id"`
	Amount    int64                  `json:"amount"`
	Status    entities.RequestStatus `json:"status"`
	DecidedBy int64                  `json:"decided_by"`
}

func (e ApprovalDecidedEvent) Type() EventType {
	return EventTypeApprovalDecided
}

// SchedulerStalledEvent is raised when no settlement happened within the allowed window
type SchedulerStalledEvent struct {
	LastSettledAt time.Time     `json:"last_settled_at"`
	LastRoundID   int64         `json:"last_round_id"`
	Overdue       time.Duration `json:"overdue"`
}

func (e SchedulerStalledEvent) Type() EventType {
	return EventTypeSchedulerStalled
}

// PromoRedeemedEvent reports a promo credit and the wager it still requires
type PromoRedeemedEvent struct {
	Code          string `json:"code"`
	AccountID     int64  `json:"account_id"`
	Amount        int64  `json:"amount"`
	WagerRequired int    `json:"wager_required"`
}

func (e PromoRedeemedEvent) Type() EventType {
	return EventTypePromoRedeemed
}

// PromoWagerCompletedEvent tells the redeemer the promo credit is now withdrawable
type PromoWagerCompletedEvent struct {
	Code      string `json:"code"`
	AccountID int64  `json:"account_id"`
	Amount    int64  `json:"amount"`
	RoundID   int64  `json:"round_id"`
}

func (e PromoWagerCompletedEvent) Type() EventType {
	return EventTypePromoCompleted
}

// OutcomeModeChangedEvent audits an administrator steering or releasing the outcome
type OutcomeModeChangedEvent struct {
	Mode      entities.OutcomeMode `json:"mode"`
	ChangedBy int64                `json:"changed_by"`
}

func (e OutcomeModeChangedEvent) Type() EventType {
	return EventTypeOutcomeMode
}

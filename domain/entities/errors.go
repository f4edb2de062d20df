package entities

import "errors"

// Typed failures returned at the engine's operation boundary. Callers match them with errors.Is.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRoundClosed         = errors.New("round is closed for betting")
	ErrBelowMinimum        = errors.New("amount is below the withdrawal minimum")
	ErrBelowMinimumBet     = errors.New("amount is below the minimum bet")
	ErrBonusBetLimit       = errors.New("bet exceeds the bonus wager ceiling")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrNotFound            = errors.New("not found or already resolved")
	ErrInvalidDiceValue    = errors.New("dice value must be between 1 and 6")
	ErrInvalidSide         = errors.New("side must be HIGH or LOW")
	ErrDailyWithdrawLimit  = errors.New("withdrawal exceeds the daily limit")
	ErrPromoCodeUsed       = errors.New("promo code has already been redeemed")
	ErrWagerPending        = errors.New("promo wager requirement is not complete")
	ErrInvalidOutcomeMode  = errors.New("unknown outcome mode")
)

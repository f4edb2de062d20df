package entities

import (
	"fmt"
	"time"
)

// Account is a participant's ledger record
type Account struct {
	ID           int64     `db:"id"`
	DisplayName  string    `db:"display_name"`
	Balance      int64     `db:"balance"`
	BonusClaimed bool      `db:"bonus_claimed"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CanAfford checks if the account balance covers the given amount
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// ValidateDebit checks that a debit of the given amount is allowed
func (a *Account) ValidateDebit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !a.CanAfford(amount) {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, a.Balance, amount)
	}
	return nil
}

// WagerCapApplies reports whether the bonus wager ceiling restricts this account.
// The ceiling is keyed on the bonus flag alone, not on how much of the balance is bonus money.
func (a *Account) WagerCapApplies() bool {
	return !a.BonusClaimed
}

package entities

import "time"

// PromoCode is an admin-issued, single-use credit
type PromoCode struct {
	Code        string     `db:"code"`
	Amount      int64      `db:"amount"`
	WagerRounds int        `db:"wager_rounds"` // Rounds the redeemer must bet in before the credit is withdrawable
	CreatedBy   int64      `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
	RedeemedBy  *int64     `db:"redeemed_by"`
	RedeemedAt  *time.Time `db:"redeemed_at"`
}

// IsRedeemed reports whether the code has been used
func (p *PromoCode) IsRedeemed() bool {
	return p.RedeemedAt != nil
}

// PromoRedemption tracks the wager requirement of a redeemed code
type PromoRedemption struct {
	ID               int64     `db:"id"`
	Code             string    `db:"code"`
	AccountID        int64     `db:"account_id"`
	Amount           int64     `db:"amount"`
	WagerRequired    int       `db:"wager_required"`
	WagerProgress    int       `db:"wager_progress"`
	LastCountedRound *int64    `db:"last_counted_round"`
	Active           bool      `db:"active"`
	RedeemedAt       time.Time `db:"redeemed_at"`
}

// RemainingRounds returns how many more rounds must be wagered
func (r *PromoRedemption) RemainingRounds() int {
	if remaining := r.WagerRequired - r.WagerProgress; remaining > 0 {
		return remaining
	}
	return 0
}

package entities

import "time"

// HouseAccount is the singleton pot that absorbs lost stakes and house takes
type HouseAccount struct {
	Balance   int64     `db:"balance"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HouseLedgerReason describes why the house balance moved
type HouseLedgerReason string

const (
	HouseReasonLostStake   HouseLedgerReason = "lost_stake"
	HouseReasonWinnerTake  HouseLedgerReason = "winner_take"
	HouseReasonJackpotPaid HouseLedgerReason = "jackpot_paid"
)

// HouseLedgerEntry records a single mutation of the house balance
type HouseLedgerEntry struct {
	ID           int64             `db:"id"`
	ChangeAmount int64             `db:"change_amount"`
	BalanceAfter int64             `db:"balance_after"`
	Reason       HouseLedgerReason `db:"reason"`
	RoundID      *int64            `db:"round_id"`
	BetID        *int64            `db:"bet_id"`
	CreatedAt    time.Time         `db:"created_at"`
}

package entities

import "time"

// Bet is a wager placed on a round's outcome. Payout and Won stay NULL until settlement.
type Bet struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	RoundID   int64     `db:"round_id"`
	Side      Side      `db:"side"`
	Amount    int64     `db:"amount"`
	Payout    *int64    `db:"payout"`
	Won       *bool     `db:"won"`
	CreatedAt time.Time `db:"created_at"`
}

// IsSettled returns true once the bet has a result
func (b *Bet) IsSettled() bool {
	return b.Won != nil
}

// MarkWon records a win with the net payout credited to the bettor
func (b *Bet) MarkWon(netPayout int64) {
	won := true
	b.Won = &won
	b.Payout = &netPayout
}

// MarkLost records a loss
func (b *Bet) MarkLost() {
	won := false
	b.Won = &won
	b.Payout = nil
}

// RoundBetSummary aggregates the bets of a round
type RoundBetSummary struct {
	BetCount     int64 `db:"bet_count"`
	TotalWagered int64 `db:"total_wagered"`
	HighWagered  int64 `db:"high_wagered"`
	LowWagered   int64 `db:"low_wagered"`
}

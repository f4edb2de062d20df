package entities

import (
	"errors"
	"time"
)

// Round is one timed betting window, OPEN from creation until it is rolled
type Round struct {
	ID               int64      `db:"id"`
	StartedAt        time.Time  `db:"started_at"`
	ClosedAt         *time.Time `db:"closed_at"` // Set when betting stops, always before RolledAt
	RolledAt         *time.Time `db:"rolled_at"` // NULL while the round is open
	D1               *int       `db:"d1"`
	D2               *int       `db:"d2"`
	D3               *int       `db:"d3"`
	Outcome          *Side      `db:"outcome"`
	HousePotSnapshot int64      `db:"house_pot_snapshot"`
	Overridden       bool       `db:"overridden"`
}

// IsRolled returns true once dice have been committed
func (r *Round) IsRolled() bool {
	return r.RolledAt != nil
}

// IsOpen returns true while bets may still be placed
func (r *Round) IsOpen() bool {
	return r.ClosedAt == nil && r.RolledAt == nil
}

// IsDue reports whether the round has been open for at least the interval.
// Elapsed time is measured from the round's creation, not from any scheduler tick.
func (r *Round) IsDue(now time.Time, interval time.Duration) bool {
	return r.IsOpen() && now.Sub(r.StartedAt) >= interval
}

// Dice returns the committed roll, or false while the round is open
func (r *Round) Dice() (Dice, bool) {
	if r.D1 == nil || r.D2 == nil || r.D3 == nil {
		return Dice{}, false
	}
	return Dice{D1: *r.D1, D2: *r.D2, D3: *r.D3}, true
}

// Close stops betting on the round
func (r *Round) Close(at time.Time) error {
	if !r.IsOpen() {
		return errors.New("round already closed")
	}
	r.ClosedAt = &at
	return nil
}

// Roll commits the dice, outcome and pot snapshot. A rolled round is immutable.
func (r *Round) Roll(dice Dice, potSnapshot int64, overridden bool, at time.Time) error {
	if r.IsRolled() {
		return errors.New("round already rolled")
	}
	if r.ClosedAt == nil {
		r.ClosedAt = &at
	}
	d1, d2, d3 := dice.D1, dice.D2, dice.D3
	outcome := dice.Outcome()
	r.D1, r.D2, r.D3 = &d1, &d2, &d3
	r.Outcome = &outcome
	r.HousePotSnapshot = potSnapshot
	r.Overridden = overridden
	r.RolledAt = &at
	return nil
}

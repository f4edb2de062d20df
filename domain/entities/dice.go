package entities

import "fmt"

const (
	DieMin = 1
	DieMax = 6
)

// Dice holds the three values of a roll
type Dice struct {
	D1 int `json:"d1"`
	D2 int `json:"d2"`
	D3 int `json:"d3"`
}

// NewDice validates that every value is a legal die face
func NewDice(d1, d2, d3 int) (Dice, error) {
	for _, v := range []int{d1, d2, d3} {
		if v < DieMin || v > DieMax {
			return Dice{}, fmt.Errorf("%w: got %d", ErrInvalidDiceValue, v)
		}
	}
	return Dice{D1: d1, D2: d2, D3: d3}, nil
}

// Sum returns the total of the three dice
func (d Dice) Sum() int {
	return d.D1 + d.D2 + d.D3
}

// Outcome returns HIGH or LOW for this roll
func (d Dice) Outcome() Side {
	return OutcomeForSum(d.Sum())
}

// IsJackpot is true for triple one and triple six
func (d Dice) IsJackpot() bool {
	if d.D1 != d.D2 || d.D2 != d.D3 {
		return false
	}
	return d.D1 == DieMin || d.D1 == DieMax
}

func (d Dice) String() string {
	return fmt.Sprintf("%d-%d-%d", d.D1, d.D2, d.D3)
}

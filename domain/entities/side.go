package entities

import "strings"

// Side is one of the two mutually exclusive round outcomes
type Side string

const (
	SideHigh Side = "HIGH"
	SideLow  Side = "LOW"
)

// Sum bounds for a HIGH outcome. Every other sum of three dice, 18 included, is LOW.
const (
	HighMinSum = 11
	HighMaxSum = 17
)

// OutcomeForSum maps a three-dice sum to its outcome
func OutcomeForSum(sum int) Side {
	if sum >= HighMinSum && sum <= HighMaxSum {
		return SideHigh
	}
	return SideLow
}

// IsValid returns true for HIGH and LOW
func (s Side) IsValid() bool {
	return s == SideHigh || s == SideLow
}

// ParseSide accepts HIGH/LOW and the TAI/XIU aliases used by bet commands, case-insensitively
func ParseSide(raw string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HIGH", "H", "TAI", "T":
		return SideHigh, nil
	case "LOW", "L", "XIU", "X":
		return SideLow, nil
	default:
		return "", ErrInvalidSide
	}
}

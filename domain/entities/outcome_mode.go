package entities

import "strings"

// OutcomeMode steers the side a settlement lands on when no explicit dice are given
type OutcomeMode string

const (
	OutcomeModeRandom     OutcomeMode = "random"
	OutcomeModeForceHigh  OutcomeMode = "force_high"  // Next round only
	OutcomeModeForceLow   OutcomeMode = "force_low"   // Next round only
	OutcomeModeStreakHigh OutcomeMode = "streak_high" // Every round until reset
	OutcomeModeStreakLow  OutcomeMode = "streak_low"  // Every round until reset
)

// MaxForcedRerolls bounds the reroll loop of a forced round. The last roll stands even if
// it missed, which happens with probability below 2^-200.
const MaxForcedRerolls = 200

// IsValid returns true for the known modes
func (m OutcomeMode) IsValid() bool {
	switch m {
	case OutcomeModeRandom, OutcomeModeForceHigh, OutcomeModeForceLow, OutcomeModeStreakHigh, OutcomeModeStreakLow:
		return true
	}
	return false
}

// ForcedSide returns the side the mode forces, if any
func (m OutcomeMode) ForcedSide() (Side, bool) {
	switch m {
	case OutcomeModeForceHigh, OutcomeModeStreakHigh:
		return SideHigh, true
	case OutcomeModeForceLow, OutcomeModeStreakLow:
		return SideLow, true
	}
	return "", false
}

// IsOneShot reports whether the mode reverts to random after a single round
func (m OutcomeMode) IsOneShot() bool {
	return m == OutcomeModeForceHigh || m == OutcomeModeForceLow
}

// ParseOutcomeMode accepts the mode names and the short admin aliases, case-insensitively.
// An empty string means random.
func ParseOutcomeMode(raw string) (OutcomeMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "random", "off", "tatbet":
		return OutcomeModeRandom, nil
	case "force_high", "kqtai":
		return OutcomeModeForceHigh, nil
	case "force_low", "kqxiu":
		return OutcomeModeForceLow, nil
	case "streak_high", "bettai":
		return OutcomeModeStreakHigh, nil
	case "streak_low", "betxiu":
		return OutcomeModeStreakLow, nil
	}
	return "", ErrInvalidOutcomeMode
}

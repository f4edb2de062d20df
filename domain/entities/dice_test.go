package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeForSum_EverySum(t *testing.T) {
	t.Parallel()

	for sum := 3; sum <= 18; sum++ {
		expected := SideLow
		if sum >= 11 && sum <= 17 {
			expected = SideHigh
		}
		assert.Equal(t, expected, OutcomeForSum(sum), "sum %d", sum)
	}
}

func TestDice_OutcomeMatchesSum(t *testing.T) {
	t.Parallel()

	// Every combination of three dice resolves through its sum
	for d1 := 1; d1 <= 6; d1++ {
		for d2 := 1; d2 <= 6; d2++ {
			for d3 := 1; d3 <= 6; d3++ {
				dice, err := NewDice(d1, d2, d3)
				require.NoError(t, err)
				assert.Equal(t, OutcomeForSum(d1+d2+d3), dice.Outcome())
			}
		}
	}
}

func TestDice_Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dice    Dice
		outcome Side
		jackpot bool
	}{
		{"triple one is low jackpot", Dice{1, 1, 1}, SideLow, true},
		{"triple six is low jackpot", Dice{6, 6, 6}, SideLow, true},
		{"ten is low", Dice{4, 3, 3}, SideLow, false},
		{"eleven is high", Dice{5, 3, 3}, SideHigh, false},
		{"seventeen is high", Dice{6, 6, 5}, SideHigh, false},
		{"triple three is not a jackpot", Dice{3, 3, 3}, SideLow, false},
		{"twelve is high", Dice{4, 5, 3}, SideHigh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.outcome, tt.dice.Outcome())
			assert.Equal(t, tt.jackpot, tt.dice.IsJackpot())
		})
	}
}

func TestNewDice_RejectsOutOfRange(t *testing.T) {
	t.Parallel()

	invalid := [][3]int{{0, 1, 1}, {1, 7, 1}, {1, 1, -3}, {10, 10, 10}}
	for _, values := range invalid {
		_, err := NewDice(values[0], values[1], values[2])
		assert.ErrorIs(t, err, ErrInvalidDiceValue, "values %v", values)
	}
}

func TestParseSide(t *testing.T) {
	t.Parallel()

	cases := map[string]Side{
		"HIGH": SideHigh,
		"high": SideHigh,
		"Tai":  SideHigh,
		"t":    SideHigh,
		"LOW":  SideLow,
		" xiu": SideLow,
		"X":    SideLow,
	}
	for raw, expected := range cases {
		side, err := ParseSide(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, expected, side, raw)
	}

	_, err := ParseSide("middle")
	assert.ErrorIs(t, err, ErrInvalidSide)
}

package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeMode_ForcedSide(t *testing.T) {
	tests := []struct {
		mode    OutcomeMode
		side    Side
		forced  bool
		oneShot bool
	}{
		{OutcomeModeRandom, "", false, false},
		{OutcomeModeForceHigh, SideHigh, true, true},
		{OutcomeModeForceLow, SideLow, true, true},
		{OutcomeModeStreakHigh, SideHigh, true, false},
		{OutcomeModeStreakLow, SideLow, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			side, forced := tt.mode.ForcedSide()
			assert.Equal(t, tt.side, side)
			assert.Equal(t, tt.forced, forced)
			assert.Equal(t, tt.oneShot, tt.mode.IsOneShot())
			assert.True(t, tt.mode.IsValid())
		})
	}

	assert.False(t, OutcomeMode("rigged").IsValid())
}

func TestParseOutcomeMode(t *testing.T) {
	tests := []struct {
		raw  string
		want OutcomeMode
	}{
		{"", OutcomeModeRandom},
		{"tatbet", OutcomeModeRandom},
		{"KqTai", OutcomeModeForceHigh},
		{"force_low", OutcomeModeForceLow},
		{" bettai ", OutcomeModeStreakHigh},
		{"STREAK_LOW", OutcomeModeStreakLow},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mode, err := ParseOutcomeMode(tt.raw)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}

	_, err := ParseOutcomeMode("always_win")
	assert.ErrorIs(t, err, ErrInvalidOutcomeMode)
}

func TestPromoRedemption_RemainingRounds(t *testing.T) {
	r := &PromoRedemption{WagerRequired: 5, WagerProgress: 2}
	assert.Equal(t, 3, r.RemainingRounds())

	r.WagerProgress = 7
	assert.Equal(t, 0, r.RemainingRounds())

	code := &PromoCode{}
	assert.False(t, code.IsRedeemed())
}

package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound_Lifecycle(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	round := &Round{ID: 7, StartedAt: start}

	assert.True(t, round.IsOpen())
	assert.False(t, round.IsRolled())
	assert.False(t, round.IsDue(start.Add(59*time.Second), time.Minute))
	assert.True(t, round.IsDue(start.Add(time.Minute), time.Minute))
	// A long gap in scheduling still counts from creation
	assert.True(t, round.IsDue(start.Add(10*time.Minute), time.Minute))

	_, ok := round.Dice()
	assert.False(t, ok)

	rolledAt := start.Add(time.Minute)
	require.NoError(t, round.Roll(Dice{4, 5, 3}, 1200, true, rolledAt))

	assert.False(t, round.IsOpen())
	assert.True(t, round.IsRolled())
	assert.Equal(t, rolledAt, *round.ClosedAt)
	assert.Equal(t, SideHigh, *round.Outcome)
	assert.Equal(t, int64(1200), round.HousePotSnapshot)
	assert.True(t, round.Overridden)

	dice, ok := round.Dice()
	require.True(t, ok)
	assert.Equal(t, Dice{4, 5, 3}, dice)

	// Once rolled the round cannot be rolled again
	assert.Error(t, round.Roll(Dice{1, 1, 1}, 0, false, rolledAt))
	unchanged, _ := round.Dice()
	assert.Equal(t, Dice{4, 5, 3}, unchanged)
	assert.False(t, round.IsDue(rolledAt.Add(time.Hour), time.Minute))
}

func TestRound_CloseBeforeRoll(t *testing.T) {
	t.Parallel()

	start := time.Now().UTC()
	round := &Round{ID: 1, StartedAt: start}

	closedAt := start.Add(time.Second)
	require.NoError(t, round.Close(closedAt))
	assert.False(t, round.IsOpen())
	assert.Error(t, round.Close(closedAt))

	require.NoError(t, round.Roll(Dice{2, 2, 2}, 0, false, closedAt.Add(time.Second)))
	assert.Equal(t, closedAt, *round.ClosedAt)
}

func TestBet_MarkResults(t *testing.T) {
	t.Parallel()

	bet := &Bet{ID: 1, Amount: 1000, Side: SideHigh}
	assert.False(t, bet.IsSettled())

	bet.MarkWon(1679)
	assert.True(t, bet.IsSettled())
	assert.True(t, *bet.Won)
	assert.Equal(t, int64(1679), *bet.Payout)

	lost := &Bet{ID: 2, Amount: 500, Side: SideLow}
	lost.MarkLost()
	assert.True(t, lost.IsSettled())
	assert.False(t, *lost.Won)
	assert.Nil(t, lost.Payout)
}

func TestStats_Streaks(t *testing.T) {
	t.Parallel()

	stats := &Stats{AccountID: 1}
	stats.RecordWin()
	stats.RecordWin()
	stats.RecordWin()
	assert.Equal(t, 3, stats.WinStreak)
	assert.Equal(t, 3, stats.MaxWinStreak)

	stats.RecordLoss()
	assert.Equal(t, 0, stats.WinStreak)
	assert.Equal(t, 3, stats.MaxWinStreak)
	assert.Equal(t, 1, stats.TotalLosses)

	stats.RecordWin()
	assert.Equal(t, 1, stats.WinStreak)
	assert.Equal(t, 3, stats.MaxWinStreak)
	assert.Equal(t, 4, stats.TotalWins)
}

func TestSettlementSummary_WinnerAccounts(t *testing.T) {
	t.Parallel()

	summary := &SettlementSummary{
		Winners: []WinnerPayout{
			{AccountID: 3, BetID: 10},
			{AccountID: 1, BetID: 11},
			{AccountID: 3, BetID: 12},
		},
	}
	assert.Equal(t, []int64{3, 1}, summary.WinnerAccounts())
}

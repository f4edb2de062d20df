package repository

import (
	"context"
	"testing"

	"taixiu/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_Streaks(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStatsRepository(testDB.DB)
	ctx := context.Background()
	testutil.SeedAccount(t, testDB.DB, 6001, 0)

	for i := 0; i < 3; i++ {
		_, err := repo.RecordWin(ctx, 6001)
		require.NoError(t, err)
	}
	stats, err := repo.RecordLoss(ctx, 6001)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.WinStreak)
	assert.Equal(t, 3, stats.MaxWinStreak)
	assert.Equal(t, 1, stats.TotalLosses)

	stats, err = repo.RecordWin(ctx, 6001)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.WinStreak)
	assert.Equal(t, 3, stats.MaxWinStreak, "a shorter streak never lowers the maximum")
	assert.Equal(t, 4, stats.TotalWins)

	stored, err := repo.GetByAccount(ctx, 6001)
	require.NoError(t, err)
	assert.Equal(t, stats, stored)

	missing, err := repo.GetByAccount(ctx, 6999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStatsRepository_TopByMaxStreak(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStatsRepository(testDB.DB)
	ctx := context.Background()

	streaks := map[int64]int{7001: 2, 7002: 5, 7003: 2, 7004: 0}
	for id, wins := range streaks {
		testutil.SeedAccount(t, testDB.DB, id, 0)
		for i := 0; i < wins; i++ {
			_, err := repo.RecordWin(ctx, id)
			require.NoError(t, err)
		}
	}
	require.NoError(t, repo.EnsureExists(ctx, 7004))

	top, err := repo.TopByMaxStreak(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 4)
	assert.Equal(t, int64(7002), top[0].AccountID)
	assert.Equal(t, 5, top[0].MaxWinStreak)
	assert.Equal(t, int64(7001), top[1].AccountID)
	assert.Equal(t, int64(7003), top[2].AccountID)
	assert.Equal(t, int64(7004), top[3].AccountID, "accounts without a win are still ranked")
	assert.Equal(t, 0, top[3].MaxWinStreak)

	top, err = repo.TopByMaxStreak(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"taixiu/domain/entities"
	"taixiu/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRepository_CreateOpen(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	first, created, err := repo.CreateOpen(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.IsOpen())

	second, created, err := repo.CreateOpen(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	open, err := repo.GetOpen(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, first.ID, open.ID)
}

func TestRoundRepository_ConcurrentCreateOpenYieldsSingleRound(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	ids := make(chan int64, workers)
	createdCount := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			round, created, err := repo.CreateOpen(ctx)
			if !assert.NoError(t, err) {
				return
			}
			ids <- round.ID
			createdCount <- created
		}()
	}
	wg.Wait()
	close(ids)
	close(createdCount)

	distinct := map[int64]bool{}
	for id := range ids {
		distinct[id] = true
	}
	creators := 0
	for created := range createdCount {
		if created {
			creators++
		}
	}
	assert.Len(t, distinct, 1)
	assert.Equal(t, 1, creators)

	var openCount int
	err := testDB.DB.QueryRow(ctx, `SELECT COUNT(*) FROM rounds WHERE rolled_at IS NULL`).Scan(&openCount)
	require.NoError(t, err)
	assert.Equal(t, 1, openCount)
}

func TestRoundRepository_CloseAndRoll(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	round, _, err := repo.CreateOpen(ctx)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.MarkClosed(ctx, round.ID, now))
	assert.Error(t, repo.MarkClosed(ctx, round.ID, now), "closing twice must fail")

	dice, err := entities.NewDice(6, 5, 4)
	require.NoError(t, err)
	require.NoError(t, round.Close(now))
	require.NoError(t, round.Roll(dice, 777, true, now))
	require.NoError(t, repo.SaveRoll(ctx, round))

	assert.Error(t, repo.SaveRoll(ctx, round), "a rolled round is immutable")

	stored, err := repo.GetByID(ctx, round.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsRolled())
	storedDice, ok := stored.Dice()
	require.True(t, ok)
	assert.Equal(t, dice, storedDice)
	require.NotNil(t, stored.Outcome)
	assert.Equal(t, entities.SideHigh, *stored.Outcome)
	assert.Equal(t, int64(777), stored.HousePotSnapshot)
	assert.True(t, stored.Overridden)

	open, err := repo.GetOpen(ctx)
	require.NoError(t, err)
	assert.Nil(t, open)

	next, created, err := repo.CreateOpen(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Greater(t, next.ID, round.ID)

	history, err := repo.ListRolled(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, round.ID, history[0].ID)
}

package repository

import (
	"context"
	"testing"
	"time"

	"taixiu/domain/entities"
	"taixiu/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoRepository_RedeemOnce(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPromoRepository(testDB.DB)
	ctx := context.Background()
	testutil.SeedAccount(t, testDB.DB, 9101, 0)
	testutil.SeedAccount(t, testDB.DB, 9102, 0)

	code := &entities.PromoCode{Code: "A1B2C3D4", Amount: 50000, WagerRounds: 3, CreatedBy: 999999}
	require.NoError(t, repo.CreateCode(ctx, code))
	assert.False(t, code.CreatedAt.IsZero())
	assert.Error(t, repo.CreateCode(ctx, &entities.PromoCode{Code: "A1B2C3D4", Amount: 1, CreatedBy: 999999}))

	stored, err := repo.GetCode(ctx, "A1B2C3D4")
	require.NoError(t, err)
	assert.False(t, stored.IsRedeemed())

	redeemed, err := repo.MarkRedeemed(ctx, "A1B2C3D4", 9101, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, redeemed)
	assert.True(t, redeemed.IsRedeemed())
	assert.Equal(t, int64(9101), *redeemed.RedeemedBy)

	again, err := repo.MarkRedeemed(ctx, "A1B2C3D4", 9102, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, again, "a code is redeemed at most once")

	missing, err := repo.GetCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPromoRepository_AdvanceWager(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPromoRepository(testDB.DB)
	rounds := NewRoundRepository(testDB.DB)
	ctx := context.Background()
	testutil.SeedAccount(t, testDB.DB, 9201, 0)

	for _, c := range []string{"TWOROUND", "NOWAGER"} {
		wager := 2
		if c == "NOWAGER" {
			wager = 0
		}
		require.NoError(t, repo.CreateCode(ctx, &entities.PromoCode{Code: c, Amount: 1000, WagerRounds: wager, CreatedBy: 999999}))
		redemption := &entities.PromoRedemption{Code: c, AccountID: 9201, Amount: 1000, WagerRequired: wager}
		require.NoError(t, repo.CreateRedemption(ctx, redemption))
		assert.Equal(t, wager > 0, redemption.Active)
	}

	active, err := repo.ListActive(ctx, 9201)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "TWOROUND", active[0].Code)

	first := openRound(t, testDB.DB)
	advanced, err := repo.AdvanceWager(ctx, 9201, first.ID)
	require.NoError(t, err)
	require.Len(t, advanced, 1)
	assert.Equal(t, 1, advanced[0].WagerProgress)
	assert.True(t, advanced[0].Active)

	advanced, err = repo.AdvanceWager(ctx, 9201, first.ID)
	require.NoError(t, err)
	assert.Empty(t, advanced, "a second bet in the same round does not count again")

	now := time.Now().UTC()
	require.NoError(t, rounds.MarkClosed(ctx, first.ID, now))
	closed, err := rounds.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NoError(t, closed.Roll(entities.Dice{D1: 1, D2: 2, D3: 3}, 0, true, now))
	require.NoError(t, rounds.SaveRoll(ctx, closed))

	second := openRound(t, testDB.DB)
	advanced, err = repo.AdvanceWager(ctx, 9201, second.ID)
	require.NoError(t, err)
	require.Len(t, advanced, 1)
	assert.Equal(t, 2, advanced[0].WagerProgress)
	assert.False(t, advanced[0].Active, "reaching the requirement completes the redemption")

	active, err = repo.ListActive(ctx, 9201)
	require.NoError(t, err)
	assert.Empty(t, active)
}

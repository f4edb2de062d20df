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

func TestSchedulerStateRepository_RecordSettlement(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSchedulerStateRepository(testDB.DB)
	ctx := context.Background()

	state, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Nil(t, state.LastSettledAt)
	assert.Equal(t, entities.OutcomeModeRandom, state.CurrentOutcomeMode())

	round := openRound(t, testDB.DB)
	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.RecordSettlement(ctx, round.ID, at))

	state, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.LastRoundID)
	assert.Equal(t, round.ID, *state.LastRoundID)
	assert.True(t, at.Equal(*state.LastSettledAt))
}

func TestSchedulerStateRepository_OutcomeMode(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSchedulerStateRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.SetOutcomeMode(ctx, entities.OutcomeModeForceLow, 999999))

	state, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeModeForceLow, state.OutcomeMode)
	require.NotNil(t, state.OutcomeModeSetBy)
	assert.Equal(t, int64(999999), *state.OutcomeModeSetBy)

	reset, err := repo.ResetOutcomeMode(ctx, entities.OutcomeModeForceHigh)
	require.NoError(t, err)
	assert.False(t, reset, "a mode that changed since it was read is kept")

	reset, err = repo.ResetOutcomeMode(ctx, entities.OutcomeModeForceLow)
	require.NoError(t, err)
	assert.True(t, reset)

	state, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeModeRandom, state.OutcomeMode)

	assert.Error(t, repo.SetOutcomeMode(ctx, entities.OutcomeMode("rigged"), 999999), "the column rejects unknown modes")
}

package repository

import (
	"context"
	"fmt"
	"time"

	"taixiu/database"
	"taixiu/domain/entities"
	"taixiu/infrastructure/observability"

	"github.com/jackc/pgx/v5"
)

// SchedulerStateRepository implements the SchedulerStateRepository interface
type SchedulerStateRepository struct {
	q Queryable
}

// NewSchedulerStateRepository creates a new scheduler state repository
func NewSchedulerStateRepository(db *database.DB) *SchedulerStateRepository {
	return &SchedulerStateRepository{q: db.Pool}
}

func newSchedulerStateRepositoryWithTx(tx Queryable) *SchedulerStateRepository {
	return &SchedulerStateRepository{q: tx}
}

// Get returns the scheduler state row
func (r *SchedulerStateRepository) Get(ctx context.Context) (*entities.SchedulerState, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("scheduler_state", "Get")()

	query := `
		SELECT last_settled_at, last_round_id, outcome_mode, outcome_mode_set_by, updated_at
		FROM scheduler_state
		WHERE id = 1
	`

	var state entities.SchedulerState
	err := r.q.QueryRow(ctx, query).Scan(
		&state.LastSettledAt,
		&state.LastRoundID,
		&state.OutcomeMode,
		&state.OutcomeModeSetBy,
		&state.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduler state: %w", err)
	}
	return &state, nil
}

// RecordSettlement stores the time and round of the latest settlement
func (r *SchedulerStateRepository) RecordSettlement(ctx context.Context, roundID int64, at time.Time) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("scheduler_state", "RecordSettlement")()

	query := `
		INSERT INTO scheduler_state (id, last_settled_at, last_round_id, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET last_settled_at = EXCLUDED.last_settled_at,
		    last_round_id = EXCLUDED.last_round_id,
		    updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, at, roundID); err != nil {
		return fmt.Errorf("failed to record settlement of round %d: %w", roundID, err)
	}
	return nil
}

// SetOutcomeMode stores the outcome mode and the administrator who chose it
func (r *SchedulerStateRepository) SetOutcomeMode(ctx context.Context, mode entities.OutcomeMode, setBy int64) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("scheduler_state", "SetOutcomeMode")()

	query := `
		UPDATE scheduler_state
		SET outcome_mode = $1, outcome_mode_set_by = $2, updated_at = NOW()
		WHERE id = 1
	`

	tag, err := r.q.Exec(ctx, query, mode, setBy)
	if err != nil {
		return fmt.Errorf("failed to set outcome mode %s: %w", mode, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("scheduler state row is missing")
	}
	return nil
}

// ResetOutcomeMode returns the mode to random only if it still equals expected,
// so a mode chosen while the round settled is not lost
func (r *SchedulerStateRepository) ResetOutcomeMode(ctx context.Context, expected entities.OutcomeMode) (bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("scheduler_state", "ResetOutcomeMode")()

	query := `
		UPDATE scheduler_state
		SET outcome_mode = 'random', updated_at = NOW()
		WHERE id = 1 AND outcome_mode = $1
	`

	tag, err := r.q.Exec(ctx, query, expected)
	if err != nil {
		return false, fmt.Errorf("failed to reset outcome mode: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

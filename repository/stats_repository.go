package repository

import (
	"context"
	"fmt"

	"taixiu/database"
	"taixiu/domain/entities"
	"taixiu/infrastructure/observability"

	"github.com/jackc/pgx/v5"
)

const statsColumns = `account_id, win_streak, max_win_streak, total_wins, total_losses`

// StatsRepository implements the StatsRepository interface
type StatsRepository struct {
	q Queryable
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{q: db.Pool}
}

func newStatsRepositoryWithTx(tx Queryable) *StatsRepository {
	return &StatsRepository{q: tx}
}

// EnsureExists creates a zeroed stats row for the account if none exists
func (r *StatsRepository) EnsureExists(ctx context.Context, accountID int64) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("stats", "EnsureExists")()

	_, err := r.q.Exec(ctx, `INSERT INTO stats (account_id) VALUES ($1) ON CONFLICT (account_id) DO NOTHING`, accountID)
	if err != nil {
		return fmt.Errorf("failed to ensure stats for account %d: %w", accountID, err)
	}
	return nil
}

// GetByAccount returns an account's stats
func (r *StatsRepository) GetByAccount(ctx context.Context, accountID int64) (*entities.Stats, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("stats", "GetByAccount")()

	stats, err := scanStats(r.q.QueryRow(ctx, `SELECT `+statsColumns+` FROM stats WHERE account_id = $1`, accountID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for account %d: %w", accountID, err)
	}
	return stats, nil
}

// RecordWin extends the streak and raises the maximum in a single statement
func (r *StatsRepository) RecordWin(ctx context.Context, accountID int64) (*entities.Stats, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("stats", "RecordWin")()

	query := `
		INSERT INTO stats (account_id, win_streak, max_win_streak, total_wins)
		VALUES ($1, 1, 1, 1)
		ON CONFLICT (account_id) DO UPDATE
		SET win_streak = stats.win_streak + 1,
		    max_win_streak = GREATEST(stats.max_win_streak, stats.win_streak + 1),
		    total_wins = stats.total_wins + 1
		RETURNING ` + statsColumns

	stats, err := scanStats(r.q.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to record win for account %d: %w", accountID, err)
	}
	return stats, nil
}

// RecordLoss resets the streak and counts the loss
func (r *StatsRepository) RecordLoss(ctx context.Context, accountID int64) (*entities.Stats, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("stats", "RecordLoss")()

	query := `
		INSERT INTO stats (account_id, total_losses)
		VALUES ($1, 1)
		ON CONFLICT (account_id) DO UPDATE
		SET win_streak = 0,
		    total_losses = stats.total_losses + 1
		RETURNING ` + statsColumns

	stats, err := scanStats(r.q.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to record loss for account %d: %w", accountID, err)
	}
	return stats, nil
}

// TopByMaxStreak ranks every stats row by maximum win streak, ties broken by account ID.
// Accounts that never won are ranked too, with a streak of zero.
func (r *StatsRepository) TopByMaxStreak(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("stats", "TopByMaxStreak")()

	query := `
		SELECT account_id, max_win_streak
		FROM stats
		ORDER BY max_win_streak DESC, account_id
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		var entry entities.LeaderboardEntry
		if err := rows.Scan(&entry.AccountID, &entry.MaxWinStreak); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return entries, nil
}

func scanStats(row pgx.Row) (*entities.Stats, error) {
	var stats entities.Stats
	err := row.Scan(
		&stats.AccountID,
		&stats.WinStreak,
		&stats.MaxWinStreak,
		&stats.TotalWins,
		&stats.TotalLosses,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

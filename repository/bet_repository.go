package repository

import (
	"context"
	"fmt"

	"taixiu/database"
	"taixiu/domain/entities"
	"taixiu/infrastructure/observability"

	"github.com/jackc/pgx/v5"
)

const betColumns = `id, account_id, round_id, side, amount, payout, won, created_at`

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

func newBetRepositoryWithTx(tx Queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts a new bet
func (r *BetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("bet", "Create")()

	query := `
		INSERT INTO bets (account_id, round_id, side, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, bet.AccountID, bet.RoundID, bet.Side, bet.Amount).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

// ListByRound returns every bet of a round in placement order
func (r *BetRepository) ListByRound(ctx context.Context, roundID int64) ([]*entities.Bet, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("bet", "ListByRound")()

	query := `SELECT ` + betColumns + ` FROM bets WHERE round_id = $1 ORDER BY id`
	return r.list(ctx, query, roundID)
}

// ListByAccount returns the most recent bets of an account
func (r *BetRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Bet, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("bet", "ListByAccount")()

	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	return r.list(ctx, query, accountID, limit)
}

// SaveResult records the outcome of a bet that has not been settled yet
func (r *BetRepository) SaveResult(ctx context.Context, bet *entities.Bet) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("bet", "SaveResult")()

	query := `
		UPDATE bets
		SET won = $1, payout = $2
		WHERE id = $3 AND won IS NULL
	`

	result, err := r.q.Exec(ctx, query, bet.Won, bet.Payout, bet.ID)
	if err != nil {
		return fmt.Errorf("failed to save result for bet %d: %w", bet.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found or already settled", bet.ID)
	}
	return nil
}

// SummarizeRound aggregates the bets placed on a round
func (r *BetRepository) SummarizeRound(ctx context.Context, roundID int64) (*entities.RoundBetSummary, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("bet", "SummarizeRound")()

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount), 0)::BIGINT,
			COALESCE(SUM(amount) FILTER (WHERE side = 'HIGH'), 0)::BIGINT,
			COALESCE(SUM(amount) FILTER (WHERE side = 'LOW'), 0)::BIGINT
		FROM bets
		WHERE round_id = $1
	`

	var summary entities.RoundBetSummary
	err := r.q.QueryRow(ctx, query, roundID).Scan(
		&summary.BetCount,
		&summary.TotalWagered,
		&summary.HighWagered,
		&summary.LowWagered,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize round %d: %w", roundID, err)
	}
	return &summary, nil
}

func (r *BetRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}

func scanBet(row pgx.Row) (*entities.Bet, error) {
	var bet entities.Bet
	err := row.Scan(
		&bet.ID,
		&bet.AccountID,
		&bet.RoundID,
		&bet.Side,
		&bet.Amount,
		&bet.Payout,
		&bet.Won,
		&bet.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

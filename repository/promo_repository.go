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

const (
	promoCodeColumns       = `code, amount, wager_rounds, created_by, created_at, redeemed_by, redeemed_at`
	promoRedemptionColumns = `id, code, account_id, amount, wager_required, wager_progress, last_counted_round, active, redeemed_at`
)

// PromoRepository implements the PromoRepository interface
type PromoRepository struct {
	q Queryable
}

// NewPromoRepository creates a new promo repository
func NewPromoRepository(db *database.DB) *PromoRepository {
	return &PromoRepository{q: db.Pool}
}

func newPromoRepositoryWithTx(tx Queryable) *PromoRepository {
	return &PromoRepository{q: tx}
}

// CreateCode inserts an unredeemed code
func (r *PromoRepository) CreateCode(ctx context.Context, code *entities.PromoCode) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("promo", "CreateCode")()

	query := `
		INSERT INTO promo_codes (code, amount, wager_rounds, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, code.Code, code.Amount, code.WagerRounds, code.CreatedBy).Scan(&code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create promo code %s: %w", code.Code, err)
	}
	return nil
}

// GetCode retrieves a code
func (r *PromoRepository) GetCode(ctx context.Context, code string) (*entities.PromoCode, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("promo", "GetCode")()

	promo, err := scanPromoCode(r.q.QueryRow(ctx, `SELECT `+promoCodeColumns+` FROM promo_codes WHERE code = $1`, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code %s: %w", code, err)
	}
	return promo, nil
}

// MarkRedeemed claims the code if nobody has yet. Only one concurrent caller can win.
func (r *PromoRepository) MarkRedeemed(ctx context.Context, code string, accountID int64, at time.Time) (*entities.PromoCode, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("promo", "MarkRedeemed")()

	query := `
		UPDATE promo_codes
		SET redeemed_by = $2, redeemed_at = $3
		WHERE code = $1 AND redeemed_at IS NULL
		RETURNING ` + promoCodeColumns

	promo, err := scanPromoCode(r.q.QueryRow(ctx, query, code, accountID, at))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to redeem promo code %s: %w", code, err)
	}
	return promo, nil
}

// CreateRedemption inserts the wager tracker. A zero requirement starts complete.
func (r *PromoRepository) CreateRedemption(ctx context.Context, redemption *entities.PromoRedemption) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("promo", "CreateRedemption")()

	query := `
		INSERT INTO promo_redemptions (code, account_id, amount, wager_required, active)
		VALUES ($1, $2, $3, $4, $4 > 0)
		RETURNING id, wager_progress, active, redeemed_at
	`

	err := r.q.QueryRow(ctx, query,
		redemption.Code,
		redemption.AccountID,
		redemption.Amount,
		redemption.WagerRequired,
	).Scan(&redemption.ID, &redemption.WagerProgress, &redemption.Active, &redemption.RedeemedAt)
	if err != nil {
		return fmt.Errorf("failed to record redemption of %s: %w", redemption.Code, err)
	}
	return nil
}

// AdvanceWager adds one round of progress to each active redemption not yet counted for
// the round, deactivating those that reach their requirement
func (r *PromoRepository) AdvanceWager(ctx context.Context, accountID, roundID int64) ([]*entities.PromoRedemption, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("promo", "AdvanceWager")()

	query := `
		UPDATE promo_redemptions
		SET wager_progress = wager_progress + 1,
		    last_counted_round = $2,
		    active = wager_progress + 1 < wager_required
		WHERE account_id = $1 AND active
		  AND last_counted_round IS DISTINCT FROM $2
		RETURNING ` + promoRedemptionColumns

	return r.queryRedemptions(ctx, query, accountID, roundID)
}

// ListActive returns the account's incomplete redemptions, oldest first
func (r *PromoRepository) ListActive(ctx context.Context, accountID int64) ([]*entities.PromoRedemption, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("promo", "ListActive")()

	query := `
		SELECT ` + promoRedemptionColumns + `
		FROM promo_redemptions
		WHERE account_id = $1 AND active
		ORDER BY redeemed_at, id
	`
	return r.queryRedemptions(ctx, query, accountID)
}

func (r *PromoRepository) queryRedemptions(ctx context.Context, query string, args ...any) ([]*entities.PromoRedemption, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query promo redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []*entities.PromoRedemption
	for rows.Next() {
		var redemption entities.PromoRedemption
		err := rows.Scan(
			&redemption.ID,
			&redemption.Code,
			&redemption.AccountID,
			&redemption.Amount,
			&redemption.WagerRequired,
			&redemption.WagerProgress,
			&redemption.LastCountedRound,
			&redemption.Active,
			&redemption.RedeemedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo redemption: %w", err)
		}
		redemptions = append(redemptions, &redemption)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate promo redemptions: %w", err)
	}
	return redemptions, nil
}

func scanPromoCode(row pgx.Row) (*entities.PromoCode, error) {
	var promo entities.PromoCode
	err := row.Scan(
		&promo.Code,
		&promo.Amount,
		&promo.WagerRounds,
		&promo.CreatedBy,
		&promo.CreatedAt,
		&promo.RedeemedBy,
		&promo.RedeemedAt,
	)
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

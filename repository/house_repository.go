package repository

import (
	"context"
	"fmt"

	"taixiu/database"
	"taixiu/domain/entities"
	"taixiu/infrastructure/observability"

	"github.com/jackc/pgx/v5"
)

// houseID is the primary key of the singleton house row
const houseID = 1

// HouseRepository implements the HouseRepository interface
type HouseRepository struct {
	q Queryable
}

// NewHouseRepository creates a new house repository
func NewHouseRepository(db *database.DB) *HouseRepository {
	return &HouseRepository{q: db.Pool}
}

func newHouseRepositoryWithTx(tx Queryable) *HouseRepository {
	return &HouseRepository{q: tx}
}

// Get returns the house account
func (r *HouseRepository) Get(ctx context.Context) (*entities.HouseAccount, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("house", "Get")()
	return r.get(ctx, `SELECT balance, updated_at FROM house WHERE id = $1`)
}

// GetForUpdate returns the house account and locks its row until the transaction ends
func (r *HouseRepository) GetForUpdate(ctx context.Context) (*entities.HouseAccount, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("house", "GetForUpdate")()
	return r.get(ctx, `SELECT balance, updated_at FROM house WHERE id = $1 FOR UPDATE`)
}

func (r *HouseRepository) get(ctx context.Context, query string) (*entities.HouseAccount, error) {
	var house entities.HouseAccount
	err := r.q.QueryRow(ctx, query, houseID).Scan(&house.Balance, &house.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get house account: %w", err)
	}
	return &house, nil
}

// AddBalance credits the house and returns the new balance
func (r *HouseRepository) AddBalance(ctx context.Context, amount int64) (int64, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("house", "AddBalance")()

	query := `
		UPDATE house
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	var balance int64
	if err := r.q.QueryRow(ctx, query, amount, houseID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to credit house: %w", err)
	}
	return balance, nil
}

// DeductBalance debits the house only if its balance covers the amount
func (r *HouseRepository) DeductBalance(ctx context.Context, amount int64) (int64, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("house", "DeductBalance")()

	query := `
		UPDATE house
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, houseID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("%w: house cannot cover %d", entities.ErrInsufficientBalance, amount)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit house: %w", err)
	}
	return balance, nil
}

// RecordLedger appends an audit row for a house mutation
func (r *HouseRepository) RecordLedger(ctx context.Context, entry *entities.HouseLedgerEntry) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("house", "RecordLedger")()

	query := `
		INSERT INTO house_ledger (change_amount, balance_after, reason, round_id, bet_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.ChangeAmount,
		entry.BalanceAfter,
		entry.Reason,
		entry.RoundID,
		entry.BetID,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record house ledger entry: %w", err)
	}
	return nil
}

// ListLedgerByRound returns the house ledger rows of a round in insertion order
func (r *HouseRepository) ListLedgerByRound(ctx context.Context, roundID int64) ([]*entities.HouseLedgerEntry, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("house", "ListLedgerByRound")()

	query := `
		SELECT id, change_amount, balance_after, reason, round_id, bet_id, created_at
		FROM house_ledger
		WHERE round_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list house ledger for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var entries []*entities.HouseLedgerEntry
	for rows.Next() {
		var entry entities.HouseLedgerEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ChangeAmount,
			&entry.BalanceAfter,
			&entry.Reason,
			&entry.RoundID,
			&entry.BetID,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan house ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate house ledger: %w", err)
	}
	return entries, nil
}

package repository

import (
	"context"
	"fmt"

	"taixiu/database"
	"taixiu/domain/entities"
	"taixiu/infrastructure/observability"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, display_name, balance, bonus_claimed, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx Queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*entities.Account, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("account", "GetByID")()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

// GetForUpdate retrieves an account and holds its row lock until the transaction ends
func (r *AccountRepository) GetForUpdate(ctx context.Context, id int64) (*entities.Account, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("account", "GetForUpdate")()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return account, nil
}

// Upsert creates the account if absent. A non-empty display name replaces the stored one.
func (r *AccountRepository) Upsert(ctx context.Context, id int64, displayName string) (*entities.Account, bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("account", "Upsert")()

	// xmax is zero only for rows inserted by the current statement
	query := `
		INSERT INTO accounts (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), accounts.display_name),
		    updated_at = CASE
		        WHEN NULLIF(EXCLUDED.display_name, '') IS NULL THEN accounts.updated_at
		        ELSE NOW()
		    END
		RETURNING ` + accountColumns + `, (xmax = 0) AS created
	`

	var account entities.Account
	var created bool
	err := r.q.QueryRow(ctx, query, id, displayName).Scan(
		&account.ID,
		&account.DisplayName,
		&account.Balance,
		&account.BonusClaimed,
		&account.CreatedAt,
		&account.UpdatedAt,
		&created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert account %d: %w", id, err)
	}
	return &account, created, nil
}

// AddBalance credits the account and returns the new balance
func (r *AccountRepository) AddBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("account", "AddBalance")()

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, id).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("account %d not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit account %d: %w", id, err)
	}
	return balance, nil
}

// DeductBalance debits the account only if its balance covers the amount
func (r *AccountRepository) DeductBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("account", "DeductBalance")()

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, id).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("%w: account %d cannot cover %d", entities.ErrInsufficientBalance, id, amount)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit account %d: %w", id, err)
	}
	return balance, nil
}

// ClaimBonus credits the bonus and sets the flag in one statement
func (r *AccountRepository) ClaimBonus(ctx context.Context, id int64, amount int64) (int64, bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("account", "ClaimBonus")()

	query := `
		UPDATE accounts
		SET balance = balance + $1, bonus_claimed = TRUE, updated_at = NOW()
		WHERE id = $2 AND bonus_claimed = FALSE
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, id).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to claim bonus for account %d: %w", id, err)
	}
	return balance, true, nil
}

// TotalBalance returns the sum of every account balance
func (r *AccountRepository) TotalBalance(ctx context.Context) (int64, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("account", "TotalBalance")()

	var total int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0)::BIGINT FROM accounts`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum account balances: %w", err)
	}
	return total, nil
}

// TopByBalance returns the accounts with the largest balances, ties broken by account ID
func (r *AccountRepository) TopByBalance(ctx context.Context, limit int) ([]*entities.Account, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("account", "TopByBalance")()

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY balance DESC, id LIMIT $1`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top balances: %w", err)
	}
	defer rows.Close()

	var accounts []*entities.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	err := row.Scan(
		&account.ID,
		&account.DisplayName,
		&account.Balance,
		&account.BonusClaimed,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

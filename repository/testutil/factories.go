package testutil

import (
	"context"
	"testing"

	"taixiu/database"
	"taixiu/domain/entities"

	"github.com/stretchr/testify/require"
)

// DefaultBalance is the balance seeded accounts start with
const DefaultBalance int64 = 100000

// SeedAccount inserts an account with the given balance and a claimed bonus
func SeedAccount(t *testing.T, db *database.DB, id int64, balance int64) *entities.Account {
	t.Helper()

	account := &entities.Account{ID: id, Balance: balance, BonusClaimed: true}
	err := db.QueryRow(context.Background(), `
		INSERT INTO accounts (id, display_name, balance, bonus_claimed)
		VALUES ($1, $2, $3, TRUE)
		RETURNING created_at, updated_at
	`, id, "", balance).Scan(&account.CreatedAt, &account.UpdatedAt)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), `INSERT INTO stats (account_id) VALUES ($1)`, id)
	require.NoError(t, err)

	return account
}

// SeedHouse sets the house balance directly
func SeedHouse(t *testing.T, db *database.DB, balance int64) {
	t.Helper()

	_, err := db.Exec(context.Background(), `UPDATE house SET balance = $1 WHERE id = 1`, balance)
	require.NoError(t, err)
}

// AccountBalance reads an account's balance
func AccountBalance(t *testing.T, db *database.DB, id int64) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(context.Background(), `SELECT balance FROM accounts WHERE id = $1`, id).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// HouseBalance reads the house balance
func HouseBalance(t *testing.T, db *database.DB) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(context.Background(), `SELECT balance FROM house WHERE id = 1`).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// TotalMoney returns the sum of every account balance plus the house balance
func TotalMoney(t *testing.T, db *database.DB) int64 {
	t.Helper()

	var total int64
	err := db.QueryRow(context.Background(), `
		SELECT COALESCE((SELECT SUM(balance) FROM accounts), 0)::BIGINT
		     + (SELECT balance FROM house WHERE id = 1)
	`).Scan(&total)
	require.NoError(t, err)
	return total
}

package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeBetPlaced   TransactionType = "bet_placed"
	TransactionTypeBetWin      TransactionType = "bet_win"
	TransactionTypeJackpot     TransactionType = "jackpot_share"
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeBonus       TransactionType = "bonus"
	TransactionTypeAdminCredit TransactionType = "admin_credit"
	TransactionTypePromo       TransactionType = "promo_code"
)

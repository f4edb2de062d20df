package entities

import (
	"errors"
	"time"
)

// RelatedType represents what kind of record related_id refers to
type RelatedType string

const (
	RelatedTypeBet     RelatedType = "bet"
	RelatedTypeRound   RelatedType = "round"
	RelatedTypeRequest RelatedType = "approval_request"
	RelatedTypePromo   RelatedType = "promo_redemption"
)

// BalanceHistory is an audit row for one account balance mutation
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	AccountID           int64           `db:"account_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}

// NewBalanceHistory builds a history entry from the post-mutation balance and the signed change
func NewBalanceHistory(accountID, balanceAfter, change int64, txType TransactionType, relatedID int64, relatedType RelatedType, metadata map[string]any) *BalanceHistory {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &BalanceHistory{
		AccountID:           accountID,
		BalanceBefore:       balanceAfter - change,
		BalanceAfter:        balanceAfter,
		ChangeAmount:        change,
		TransactionType:     txType,
		TransactionMetadata: metadata,
		RelatedID:           &relatedID,
		RelatedType:         &relatedType,
	}
}

// Validate checks the entry is internally consistent
func (bh *BalanceHistory) Validate() error {
	if bh.ChangeAmount == 0 {
		return errors.New("change amount cannot be zero")
	}
	if bh.BalanceAfter != bh.BalanceBefore+bh.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}
	if bh.BalanceAfter < 0 {
		return errors.New("balance cannot go negative")
	}
	return nil
}

package entities

// WinnerPayout describes one winning bet of a settled round
type WinnerPayout struct {
	AccountID int64 `json:"account_id"`
	BetID     int64 `json:"bet_id"`
	Stake     int64 `json:"stake"`
	NetPayout int64 `json:"net_payout"`
	HouseTake int64 `json:"house_take"`
}

// JackpotResult describes a triple-one or triple-six pot redistribution
type JackpotResult struct {
	Pot         int64   `json:"pot"`
	Share       int64   `json:"share"`
	Recipients  []int64 `json:"recipients"`
	Remainder   int64   `json:"remainder"` // Left with the house after integer division
	Distributed bool    `json:"distributed"`
}

// SettlementSummary is returned to the transport layer after a round settles
type SettlementSummary struct {
	RoundID          int64          `json:"round_id"`
	Dice             Dice           `json:"dice"`
	Outcome          Side           `json:"outcome"`
	Overridden       bool           `json:"overridden"`
	OutcomeMode      OutcomeMode    `json:"outcome_mode"` // Random unless an administrator steered the roll
	Winners          []WinnerPayout `json:"winners"`
	LoserCount       int            `json:"loser_count"`
	HouseGain        int64          `json:"house_gain"`
	HousePotSnapshot int64          `json:"house_pot_snapshot"`
	HouseBalance     int64          `json:"house_balance"` // After jackpot redistribution
	Jackpot          *JackpotResult `json:"jackpot,omitempty"`
	NextRoundID      int64          `json:"next_round_id,omitempty"`
}

// WinnerAccounts returns the distinct winning accounts in first-win order
func (s *SettlementSummary) WinnerAccounts() []int64 {
	seen := make(map[int64]bool, len(s.Winners))
	accounts := make([]int64, 0, len(s.Winners))
	for _, w := range s.Winners {
		if seen[w.AccountID] {
			continue
		}
		seen[w.AccountID] = true
		accounts = append(accounts, w.AccountID)
	}
	return accounts
}

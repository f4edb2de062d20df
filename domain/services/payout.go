package services

import (
	"github.com/shopspring/decimal"
)

// PayoutBreakdown is the split of a winning stake between bettor and house
type PayoutBreakdown struct {
	Stake     int64
	Gross     int64 // floor(stake × multiplier)
	Edge      int64 // Gross − Stake
	HouseTake int64 // floor(Edge × share)
	Net       int64 // Gross − HouseTake, credited to the bettor
}

// PayoutCalculator computes winning payouts with exact decimal arithmetic
type PayoutCalculator struct {
	multiplier decimal.Decimal
	edgeShare  decimal.Decimal
}

// NewPayoutCalculator creates a calculator for the given multiplier (> 1) and house edge share in [0,1]
func NewPayoutCalculator(multiplier, edgeShare decimal.Decimal) PayoutCalculator {
	return PayoutCalculator{multiplier: multiplier, edgeShare: edgeShare}
}

// Winning returns the payout breakdown for a winning stake
func (c PayoutCalculator) Winning(stake int64) PayoutBreakdown {
	amount := decimal.NewFromInt(stake)
	gross := amount.Mul(c.multiplier).Floor().IntPart()
	edge := gross - stake
	take := decimal.NewFromInt(edge).Mul(c.edgeShare).Floor().IntPart()

	return PayoutBreakdown{
		Stake:     stake,
		Gross:     gross,
		Edge:      edge,
		HouseTake: take,
		Net:       gross - take,
	}
}

package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPayoutCalculator_Winning(t *testing.T) {
	t.Parallel()

	calc := NewPayoutCalculator(decimal.RequireFromString("1.97"), decimal.RequireFromString("0.3"))

	tests := []struct {
		name  string
		stake int64
		want  PayoutBreakdown
	}{
		{
			name:  "reference stake",
			stake: 1000,
			want:  PayoutBreakdown{Stake: 1000, Gross: 1970, Edge: 970, HouseTake: 291, Net: 1679},
		},
		{
			name:  "minimum stake floors everything",
			stake: 1,
			want:  PayoutBreakdown{Stake: 1, Gross: 1, Edge: 0, HouseTake: 0, Net: 1},
		},
		{
			name:  "odd stake",
			stake: 333,
			// 333 × 1.97 = 656.01, edge 323, 323 × 0.3 = 96.9
			want: PayoutBreakdown{Stake: 333, Gross: 656, Edge: 323, HouseTake: 96, Net: 560},
		},
		{
			name:  "exact floor boundary",
			stake: 100,
			// 100 × 1.97 is exactly 197; binary floats give 196.99999999999997
			want: PayoutBreakdown{Stake: 100, Gross: 197, Edge: 97, HouseTake: 29, Net: 168},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.Winning(tt.stake))
		})
	}
}

func TestPayoutCalculator_NetNeverBelowStake(t *testing.T) {
	t.Parallel()

	calc := NewPayoutCalculator(decimal.RequireFromString("1.97"), decimal.RequireFromString("0.3"))

	for stake := int64(1); stake <= 5000; stake++ {
		p := calc.Winning(stake)
		assert.GreaterOrEqual(t, p.Net, stake, "stake %d", stake)
		assert.Equal(t, p.Gross, p.Net+p.HouseTake, "stake %d", stake)
		if t.Failed() {
			return
		}
	}
}

func TestPayoutCalculator_FullEdgeShare(t *testing.T) {
	t.Parallel()

	calc := NewPayoutCalculator(decimal.RequireFromString("2"), decimal.NewFromInt(1))
	p := calc.Winning(500)

	assert.Equal(t, int64(1000), p.Gross)
	assert.Equal(t, int64(500), p.HouseTake)
	assert.Equal(t, int64(500), p.Net)
}

package services

import (
	"fmt"
	"math"

	"taixiu/domain/entities"
	"taixiu/domain/interfaces"
)

// Exact probabilities for three fair dice
const (
	CombinationCount    = 216
	HighCombinations    = 107
	JackpotCombinations = 2
)

// chiSquaredFaceLimit is the 95% critical value for five degrees of freedom
const chiSquaredFaceLimit = 11.07

// OddsReport summarizes simulated rounds drawn from a RandomSource
type OddsReport struct {
	Trials       int
	FaceCounts   [entities.DieMax]int
	HighRounds   int
	JackpotRolls int

	// Credit per wagered unit for a bet on that side placed every round
	HighBetReturn float64
	LowBetReturn  float64
}

// HighRate is the observed share of HIGH outcomes
func (r *OddsReport) HighRate() float64 {
	return float64(r.HighRounds) / float64(r.Trials)
}

// JackpotRate is the observed share of triple one and triple six
func (r *OddsReport) JackpotRate() float64 {
	return float64(r.JackpotRolls) / float64(r.Trials)
}

// FaceChiSquared measures how far the face distribution is from uniform
func (r *OddsReport) FaceChiSquared() float64 {
	expected := float64(r.Trials*3) / float64(entities.DieMax)
	var chi float64
	for _, count := range r.FaceCounts {
		chi += math.Pow(float64(count)-expected, 2) / expected
	}
	return chi
}

// FacesUniform reports whether the face distribution passes the chi-squared test at 95%
func (r *OddsReport) FacesUniform() bool {
	return r.FaceChiSquared() < chiSquaredFaceLimit
}

// AnalyzeOdds rolls trials rounds and measures outcome rates and the return of a unit bet
// on each side under the given payout calculator
func AnalyzeOdds(source interfaces.RandomSource, calculator PayoutCalculator, trials int, stake int64) (*OddsReport, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", trials)
	}
	if stake <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	report := &OddsReport{Trials: trials}
	net := calculator.Winning(stake).Net

	var highCredits, lowCredits int64
	for i := 0; i < trials; i++ {
		dice, err := RollDice(source)
		if err != nil {
			return nil, err
		}
		for _, face := range []int{dice.D1, dice.D2, dice.D3} {
			report.FaceCounts[face-entities.DieMin]++
		}
		if dice.IsJackpot() {
			report.JackpotRolls++
		}
		if dice.Outcome() == entities.SideHigh {
			report.HighRounds++
			highCredits += net
		} else {
			lowCredits += net
		}
	}

	wagered := float64(stake) * float64(trials)
	report.HighBetReturn = float64(highCredits) / wagered
	report.LowBetReturn = float64(lowCredits) / wagered
	return report, nil
}
